package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/franckludovic/travelbuddy/internal/client/media"
	"github.com/franckludovic/travelbuddy/internal/client/store"
	"github.com/franckludovic/travelbuddy/internal/client/store/storetest"
	"github.com/franckludovic/travelbuddy/internal/logging"
	"github.com/spf13/afero"
)

type pushCall struct {
	table string
	row   any
}

type fakePusher struct {
	mu     sync.Mutex
	calls  []pushCall
	failIf func(table string, row any) bool
	nextID int64

	started chan struct{}
	release chan struct{}
}

func (p *fakePusher) SyncRow(ctx context.Context, table string, row any) (*int64, error) {
	if p.started != nil {
		p.started <- struct{}{}
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failIf != nil && p.failIf(table, row) {
		return nil, errors.New("request failed: 500 - boom")
	}
	p.calls = append(p.calls, pushCall{table: table, row: row})
	p.nextID++
	id := 1000 + p.nextID
	return &id, nil
}

func (p *fakePusher) tables() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.calls))
	for _, c := range p.calls {
		out = append(out, c.table)
	}
	return out
}

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (u *fakeUploader) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	u.keys = append(u.keys, key)
	return "https://cdn.example/" + key, nil
}

type harness struct {
	st       *store.Store
	fs       afero.Fs
	stager   *media.Stager
	pusher   *fakePusher
	uploader *fakeUploader
	engine   *SyncEngine
	journal  *Journal
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		st:       storetest.Open(t),
		fs:       afero.NewMemMapFs(),
		pusher:   &fakePusher{},
		uploader: &fakeUploader{},
	}
	h.stager = media.NewStager("/media", media.WithFs(h.fs, h.fs))
	h.engine = NewSyncEngine(h.st.DB(), h.pusher, h.uploader, h.stager, logging.Discard())
	h.journal = NewJournal(h.st, h.stager, logging.Discard())
	return h
}

// capture writes a fake camera file and returns its path.
func (h *harness) capture(t *testing.T, name string) string {
	t.Helper()
	path := "/camera/" + name
	if err := afero.WriteFile(h.fs, path, []byte("jpeg:"+name), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func (h *harness) stagedFiles() int {
	n := 0
	_ = afero.Walk(h.fs, "/media", func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return nil
	})
	return n
}

func (h *harness) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := h.st.DB().QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

type fakeSyncer struct {
	mu      sync.Mutex
	runs    []int64
	offline int
	err     error
}

func (f *fakeSyncer) Run(ctx context.Context, userID int64) (PassResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, userID)
	return PassResult{}, f.err
}

func (f *fakeSyncer) MarkOffline() {
	f.mu.Lock()
	f.offline++
	f.mu.Unlock()
}

func (f *fakeSyncer) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}
