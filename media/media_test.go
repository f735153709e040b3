package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newStore(t *testing.T, max int64) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir(), "/uploads/", max)
	require.NoError(t, err)
	return s
}

func TestUploadAndDelete(t *testing.T) {
	s := newStore(t, 1<<20)
	ctx := context.Background()

	obj, err := s.Upload(ctx, File{Name: "logo.png", Data: pngHeader})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(obj.Handle, ".png"))
	require.Equal(t, "/uploads/"+obj.Handle, obj.URL)
	require.FileExists(t, filepath.Join(s.Dir, obj.Handle))

	require.NoError(t, s.Delete(ctx, obj.Handle))
	_, err = os.Stat(filepath.Join(s.Dir, obj.Handle))
	require.True(t, os.IsNotExist(err))

	// second delete of the same handle is not an error
	require.NoError(t, s.Delete(ctx, obj.Handle))
}

func TestUploadRejects(t *testing.T) {
	s := newStore(t, 32)
	ctx := context.Background()

	_, err := s.Upload(ctx, File{Name: "notes.txt", Data: []byte("hello there")})
	require.ErrorIs(t, err, ErrUnsupportedType)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	_, err = s.Upload(ctx, File{Name: "big.png", Data: big})
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestDeleteRejectsPaths(t *testing.T) {
	s := newStore(t, 0)
	require.Error(t, s.Delete(context.Background(), "../etc/passwd"))
	require.NoError(t, s.Delete(context.Background(), ""))
}
