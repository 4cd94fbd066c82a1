package ioutils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Rock", "01.mp3")
	require.NoError(t, EnsureDir(filepath.Dir(src)))
	require.NoError(t, os.WriteFile(src, []byte("audio"), 0644))

	dst := filepath.Join(dir, "Rock", "Ария", "2002 Штиль", "01 - Штиль.mp3")
	require.NoError(t, MoveFile(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source is gone")
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
}

func TestMoveFile_DestinationExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp3")
	dst := filepath.Join(dir, "b.mp3")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("b"), 0644))

	err := MoveFile(src, dst)
	assert.True(t, errors.Is(err, ErrExists))

	data, _ := os.ReadFile(dst)
	assert.Equal(t, "b", string(data), "destination untouched")
}

func TestMoveFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := MoveFile(filepath.Join(dir, "nope.mp3"), filepath.Join(dir, "x", "y.mp3"))
	assert.Error(t, err)
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.flac")
	dst := filepath.Join(dir, "b.flac")
	require.NoError(t, os.WriteFile(src, []byte("flac"), 0600))

	require.NoError(t, copyFile(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.Error(t, copyFile(src, dst), "never overwrites")
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "Rock/Ария/2002 Штиль/01 - Штиль.mp3", "Rock/Ария/2002 Штиль/01 - Штиль.mp3"},
		{"invalid chars", `Rock/Artist: Live/01 - Song?.mp3`, "Rock/Artist_ Live/01 - Song_.mp3"},
		{"whitespace", "  Rock /A   B/ 01.mp3 ", "Rock/A B/01.mp3"},
		{"trailing dots on dirs", "Rock/Vol.../01.mp3", "Rock/Vol/01.mp3"},
		{"empty levels", "Rock//A/", "Rock/A"},
		{"empty", "", ""},
		{"parent levels", "../a/./..", "a"},
		{"absolute", "/etc/passwd", "etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizePath(tt.in))
		})
	}
}
