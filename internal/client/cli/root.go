package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/franckludovic/travelbuddy/internal/client/config"
	"github.com/franckludovic/travelbuddy/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the journal command. Flags are bound to keys of v;
// with no subcommand the interactive shell starts.
func NewRootCommand(v *viper.Viper, opts ...Option) *cobra.Command {
	var (
		cfgFile string
		app     *App
	)

	root := &cobra.Command{
		Use:          "journal",
		Short:        "Offline-first travel journal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfigFile(v, cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			o := appOptions{}
			for _, opt := range opts {
				opt(&o)
			}
			logger := o.logger
			if logger == nil {
				zl, err := logging.NewZap(cfg.LogLevel, cfg.LogFile)
				if err != nil {
					return err
				}
				logger = zl
			}

			app, err = NewApp(cmd.Context(), cfg, logger, opts...)
			if err != nil {
				return err
			}
			if cmd == cmd.Root() {
				return nil
			}
			return app.autoLogin(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Shell(cmd.Context())
		},
	}

	setupFlags(root, v, &cfgFile)
	for _, c := range subcommands(func() *App { return app }) {
		root.AddCommand(c)
	}
	return root
}

func setupFlags(cmd *cobra.Command, v *viper.Viper, cfgFile *string) {
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()
	flags.StringVar(cfgFile, "config", "", "Path to configuration file")
	flags.String("database-path", defaults.GetString("database.path"), "SQLite database path")
	flags.String("media-dir", defaults.GetString("media.dir"), "Directory for staged photos")
	flags.String("api-url", defaults.GetString("api.base_url"), "Backend REST base URL")
	flags.String("token", "", "Bearer token issued by the backend")
	flags.String("email", "", "Account used by one-shot commands")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Write logs to this rotating file")

	bindFlag(v, cmd, "database.path", "database-path")
	bindFlag(v, cmd, "media.dir", "media-dir")
	bindFlag(v, cmd, "api.base_url", "api-url")
	bindFlag(v, cmd, "api.token", "token")
	bindFlag(v, cmd, "user.email", "email")
	bindFlag(v, cmd, "log.level", "log-level")
	bindFlag(v, cmd, "log.file", "log-file")
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}

// newCommandTree is the command set used by the shell: the same subcommands
// as the root but without configuration flags or lifecycle hooks.
func newCommandTree(app func() *App) *cobra.Command {
	root := &cobra.Command{Use: "journal"}
	root.CompletionOptions.DisableDefaultCmd = true
	for _, c := range subcommands(app) {
		root.AddCommand(c)
	}
	return root
}

func subcommands(app func() *App) []*cobra.Command {
	return []*cobra.Command{
		newSignupCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newPlaceCmd(app),
		newNoteCmd(app),
		newPhotoCmd(app),
		newFavoriteCmd(app),
		newVisitCmd(app),
		newSyncCmd(app),
		newStatusCmd(app),
		newEvictCmd(app),
		newRemoteCmd(app),
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id " + strconv.Quote(s))
	}
	return id, nil
}
