package media

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStager(t *testing.T) (*Stager, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s := NewStager("/media",
		WithFs(fs, fs),
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
		WithIDGenerator(func() string { return "abcd1234" }),
	)
	return s, fs
}

func TestStage_CopiesIntoRecordDir(t *testing.T) {
	s, fs := newTestStager(t)
	require.NoError(t, afero.WriteFile(fs, "/tmp/a.JPG", []byte("img"), 0o600))

	path, err := s.Stage(context.Background(), "/tmp/a.JPG", "places", 1, "main")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/media", "images", "places", "1", "main_1700000000000_abcd1234.jpg"), path)

	b, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))
	assert.True(t, s.Exists(path))

	src, err := afero.ReadFile(fs, "/tmp/a.JPG")
	require.NoError(t, err)
	assert.Equal(t, "img", string(src), "source is left untouched")
}

func TestStage_FileURIAndDefaultExt(t *testing.T) {
	s, fs := newTestStager(t)
	require.NoError(t, afero.WriteFile(fs, "/cam/shot", []byte("raw"), 0o600))

	path, err := s.Stage(context.Background(), "file:///cam/shot", "note_photos", 7, "")
	require.NoError(t, err)
	assert.Equal(t, "image_1700000000000_abcd1234.jpg", filepath.Base(path))
	assert.Equal(t, s.Dir("note_photos", 7), filepath.Dir(path))
}

func TestStage_MissingSourceIsTypedAndLeavesNothing(t *testing.T) {
	s, fs := newTestStager(t)

	_, err := s.Stage(context.Background(), "/tmp/missing.jpg", "places", 1, "main")
	var me *common.MediaStagingError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "open", me.Op)

	exists, err := afero.DirExists(fs, s.Dir("places", 1))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStage_RejectsRemoteURI(t *testing.T) {
	s, _ := newTestStager(t)
	_, err := s.Stage(context.Background(), "https://example.com/a.jpg", "places", 1, "main")
	var me *common.MediaStagingError
	assert.ErrorAs(t, err, &me)
}

func TestStage_CancelledContext(t *testing.T) {
	s, fs := newTestStager(t)
	require.NoError(t, afero.WriteFile(fs, "/tmp/a.jpg", []byte("img"), 0o600))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Stage(ctx, "/tmp/a.jpg", "places", 1, "main")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelete_Idempotent(t *testing.T) {
	s, fs := newTestStager(t)
	require.NoError(t, afero.WriteFile(fs, "/tmp/a.jpg", []byte("img"), 0o600))
	path, err := s.Stage(context.Background(), "/tmp/a.jpg", "places", 1, "main")
	require.NoError(t, err)

	existed, err := s.Delete(path)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Delete(path)
	require.NoError(t, err)
	assert.False(t, existed)

	existed, err = s.Delete("")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestOpen_StagedFile(t *testing.T) {
	s, fs := newTestStager(t)
	require.NoError(t, afero.WriteFile(fs, "/tmp/a.jpg", []byte("img"), 0o600))
	path, err := s.Stage(context.Background(), "/tmp/a.jpg", "places", 1, "main")
	require.NoError(t, err)

	rc, err := s.Open(path)
	require.NoError(t, err)
	defer rc.Close()

	_, err = s.Open("/nope")
	var me *common.MediaStagingError
	assert.ErrorAs(t, err, &me)
}
