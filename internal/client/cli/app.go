package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/franckludovic/travelbuddy/internal/client/client"
	"github.com/franckludovic/travelbuddy/internal/client/config"
	"github.com/franckludovic/travelbuddy/internal/client/media"
	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/client/objectstore"
	"github.com/franckludovic/travelbuddy/internal/client/services"
	"github.com/franckludovic/travelbuddy/internal/client/store"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/logging"
	"github.com/spf13/afero"
)

// App wires the local store, the gateway and the services for one run of the
// CLI.
type App struct {
	cfg    config.Config
	logger logging.Logger

	store    *store.Store
	gateway  *client.HTTPClient
	engine   *services.SyncEngine
	session  *services.Session
	auth     services.AuthService
	journal  *services.Journal
	watcher  *services.Watcher
	uploader services.Uploader

	prompt *Prompter
	out    io.Writer
}

type appOptions struct {
	srcFs, dstFs afero.Fs
	in           io.Reader
	out          io.Writer
	httpClient   *http.Client
	logger       logging.Logger
	uploader     services.Uploader
}

// Option customizes NewApp, mostly for tests.
type Option func(*appOptions)

// WithFs sets the filesystems captures are read from and staged into.
func WithFs(src, dst afero.Fs) Option {
	return func(o *appOptions) { o.srcFs, o.dstFs = src, dst }
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(o *appOptions) { o.in, o.out = in, out }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *appOptions) { o.httpClient = hc }
}

// WithLogger replaces the zap logger NewRootCommand builds from configuration.
func WithLogger(l logging.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithUploader overrides the configured photo uploader.
func WithUploader(u services.Uploader) Option {
	return func(o *appOptions) { o.uploader = u }
}

// NewApp opens the store and builds every service. The caller must Close it.
func NewApp(ctx context.Context, cfg config.Config, logger logging.Logger, opts ...Option) (*App, error) {
	o := appOptions{
		srcFs: afero.NewOsFs(),
		dstFs: afero.NewOsFs(),
		in:    os.Stdin,
		out:   os.Stdout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	st, err := store.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		store:  st,
		prompt: NewPrompter(o.in, o.out),
		out:    o.out,
	}

	gwOpts := []client.Option{
		client.WithTimeout(cfg.APITimeout),
		client.WithTokenSource(func() string { return a.session.Token() }),
	}
	if o.httpClient != nil {
		gwOpts = append(gwOpts, client.WithHTTPClient(o.httpClient))
	}
	a.gateway = client.NewHTTPClient(cfg.APIBaseURL, gwOpts...)

	a.uploader = o.uploader
	if a.uploader == nil {
		if a.uploader, err = newUploader(ctx, cfg.Storage, a.gateway); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	stager := media.NewStager(cfg.MediaDir, media.WithFs(o.srcFs, o.dstFs))
	a.engine = services.NewSyncEngine(st.DB(), a.gateway, a.uploader, stager, logger)
	a.session = services.NewSession(a.engine)
	a.auth = services.NewAuthService(st.DB(), a.session, logger)
	a.journal = services.NewJournal(st, stager, logger)
	a.watcher = services.NewWatcher(a.gateway, a.session, logger)
	return a, nil
}

func newUploader(ctx context.Context, s config.Storage, gw *client.HTTPClient) (services.Uploader, error) {
	if !s.Direct() {
		return services.NewGatewayUploader(gw), nil
	}
	return objectstore.New(ctx, objectstore.Config{
		Bucket:        s.Bucket,
		Region:        s.Region,
		Endpoint:      s.Endpoint,
		AccessKey:     s.AccessKey,
		SecretKey:     s.SecretKey,
		PublicBaseURL: s.PublicBaseURL,
	})
}

// Close releases the store and flushes the logger.
func (a *App) Close() error {
	err := a.store.Close()
	if s, ok := a.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return err
}

var errNotLoggedIn = errors.New("not logged in (use login, or pass --email)")

func (a *App) requireUser() (int64, error) {
	if id := a.session.UserID(); id != 0 {
		return id, nil
	}
	return 0, errNotLoggedIn
}

// ownerRef is the current user as a nullable owner column.
func (a *App) ownerRef() *int64 {
	if id := a.session.UserID(); id != 0 {
		return &id
	}
	return nil
}

// autoLogin opens a session for cfg.UserEmail in one-shot mode.
func (a *App) autoLogin(ctx context.Context) error {
	if a.cfg.UserEmail == "" {
		return nil
	}
	if a.cfg.APIToken != "" {
		_, err := a.auth.LoginWithToken(ctx, models.User{Email: a.cfg.UserEmail, FullName: a.cfg.UserEmail}, a.cfg.APIToken)
		return err
	}
	pw, err := a.prompt.Password("Password for " + a.cfg.UserEmail)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	_, err = a.auth.LoginOffline(ctx, a.cfg.UserEmail, pw)
	return err
}

func (a *App) statusLine() string {
	mode := "offline"
	if a.session.IsOnline() {
		mode = "online"
	}
	if u := a.session.User(); u != nil {
		return fmt.Sprintf("(%s %s)", u.Email, mode)
	}
	return fmt.Sprintf("(%s)", mode)
}

// Shell runs the interactive loop with the connectivity watcher in the
// background.
func (a *App) Shell(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Travel journal (type 'help' for commands)")
	a.watcher.Check(ctx)
	go a.watcher.Run(ctx, a.cfg.OnlineCheckInterval)

	runREPL(ctx, a.prompt, a.out, a.exec, a.statusLine)
	return nil
}

// exec runs one shell line through a fresh command tree so that flag values
// never leak between lines.
func (a *App) exec(ctx context.Context, args []string) error {
	root := newCommandTree(func() *App { return a })
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.out)
	root.SilenceErrors = true
	root.SilenceUsage = true
	return root.ExecuteContext(ctx)
}
