package filestore

import (
	"FolderVaultBot/internal/common"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestChatDir_Creates(t *testing.T) {
	s := New(t.TempDir())

	dir, err := s.ChatDir(-100123)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "-100123", filepath.Base(dir))
}

func TestChatDir_StorageError(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, nil, 0o644))

	_, err := New(root).ChatDir(1)
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "12_34", ItemBase(12, 34))
	assert.Equal(t, "12_cover", CoverBase(12))
}

func TestRemoveFolderArtifacts(t *testing.T) {
	s := New(t.TempDir())
	dir, err := s.ChatDir(1)
	require.NoError(t, err)

	for _, n := range []string{"7_1.jpg", "7_2.mp4", "7_cover.png", "17_1.jpg", "70_1.jpg", "YouTube_1.mp4"} {
		touch(t, dir, n)
	}

	removed, err := s.RemoveFolderArtifacts(1, 7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"7_1.jpg", "7_2.mp4", "7_cover.png"}, removed)

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range left {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"17_1.jpg", "70_1.jpg", "YouTube_1.mp4"}, names)
}

func TestRemoveFolderArtifacts_OtherChatUntouched(t *testing.T) {
	s := New(t.TempDir())
	other, err := s.ChatDir(2)
	require.NoError(t, err)
	touch(t, other, "7_1.jpg")

	removed, err := s.RemoveFolderArtifacts(1, 7)
	require.NoError(t, err)
	assert.Empty(t, removed)

	_, err = os.Stat(filepath.Join(other, "7_1.jpg"))
	assert.NoError(t, err)
}

func TestRemoveFiles_OnlyInsideChatDir(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	dir, err := s.ChatDir(1)
	require.NoError(t, err)
	touch(t, dir, "YouTube_1.mp4")

	outside := filepath.Join(root, "secret.txt")
	touch(t, root, "secret.txt")

	removed, err := s.RemoveFiles(1, []string{
		filepath.Join(dir, "YouTube_1.mp4"),
		filepath.Join(dir, "missing.mp4"),
		outside,
		"",
	})

	assert.ErrorIs(t, err, common.ErrStorage)
	assert.Equal(t, []string{"YouTube_1.mp4"}, removed)

	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}
