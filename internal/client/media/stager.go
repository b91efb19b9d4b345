package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/filex"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const defaultExt = "jpg"

// Stager copies captures into the media root.
type Stager struct {
	src   afero.Fs
	dst   afero.Fs
	root  string
	now   func() time.Time
	newID func() string
}

type Option func(*Stager)

// WithFs sets the filesystems captures are read from and staged into.
func WithFs(src, dst afero.Fs) Option {
	return func(s *Stager) {
		s.src = src
		s.dst = dst
	}
}

// WithClock replaces the time source used in file names.
func WithClock(now func() time.Time) Option {
	return func(s *Stager) { s.now = now }
}

// WithIDGenerator replaces the random suffix generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Stager) { s.newID = f }
}

// NewStager stages into root on the OS filesystem unless overridden.
func NewStager(root string, opts ...Option) *Stager {
	s := &Stager{
		src:   afero.NewOsFs(),
		dst:   afero.NewOsFs(),
		root:  root,
		now:   time.Now,
		newID: func() string { return uuid.NewString()[:8] },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Root is the staging directory.
func (s *Stager) Root() string { return s.root }

// Dir is the per-record staging directory.
func (s *Stager) Dir(table string, recordID int64) string {
	return filepath.Join(s.root, "images", table, strconv.FormatInt(recordID, 10))
}

// Stage copies the capture at uri into the record's directory and returns the
// staged path.
func (s *Stager) Stage(ctx context.Context, uri, table string, recordID int64, imageType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &common.MediaStagingError{Op: "stage", Path: uri, Err: err}
	}
	srcPath, err := localPath(uri)
	if err != nil {
		return "", &common.MediaStagingError{Op: "stage", Path: uri, Err: err}
	}
	if imageType == "" {
		imageType = "image"
	}

	name := fmt.Sprintf("%s_%d_%s.%s", imageType, s.now().UnixMilli(), s.newID(), extension(srcPath))
	dest := filepath.Join(s.Dir(table, recordID), name)

	in, err := s.src.Open(srcPath)
	if err != nil {
		return "", &common.MediaStagingError{Op: "open", Path: srcPath, Err: err}
	}
	defer in.Close()

	if err := filex.AtomicWrite(s.dst, dest, in); err != nil {
		return "", &common.MediaStagingError{Op: "copy", Path: dest, Err: err}
	}
	return dest, nil
}

// Delete removes a staged file. existed is false when it was already absent.
func (s *Stager) Delete(path string) (existed bool, err error) {
	if path == "" {
		return false, nil
	}
	existed, err = filex.RemoveIfExists(s.dst, path)
	if err != nil {
		return false, &common.MediaStagingError{Op: "delete", Path: path, Err: err}
	}
	return existed, nil
}

// Open opens a staged file for reading, e.g. for upload.
func (s *Stager) Open(path string) (io.ReadCloser, error) {
	f, err := s.dst.Open(path)
	if err != nil {
		return nil, &common.MediaStagingError{Op: "open", Path: path, Err: err}
	}
	return f, nil
}

// Exists reports whether a staged file is present.
func (s *Stager) Exists(path string) bool {
	ok, err := afero.Exists(s.dst, path)
	return err == nil && ok
}

// localPath accepts plain paths and file:// URIs.
func localPath(uri string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("empty capture uri")
	}
	if !strings.Contains(uri, "://") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported capture scheme %q", u.Scheme)
	}
	return u.Path, nil
}

func extension(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return defaultExt
	}
	return ext
}
