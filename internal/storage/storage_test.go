package storage

import (
	"FolderVaultBot/pkg/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, size int) *MemoryStorage {
	t.Helper()
	s, err := NewMemoryStorage(size, time.Hour)
	require.NoError(t, err)
	return s
}

func TestSession_SetGetClear(t *testing.T) {
	s := newTestStorage(t, 10)

	_, ok := s.GetSession(1)
	assert.False(t, ok)

	state := &models.CreateFolderState{Step: models.CreateStepFiles, Name: "Trip"}
	s.SetSession(1, state)

	got, ok := s.GetSession(1)
	require.True(t, ok)
	assert.Same(t, state, got.State)
	assert.Equal(t, models.SceneCreateFolder, got.State.Scene())

	s.ClearSession(1)
	_, ok = s.GetSession(1)
	assert.False(t, ok)
}

func TestSession_NewSceneReplacesDraft(t *testing.T) {
	s := newTestStorage(t, 10)

	s.SetSession(1, &models.CreateFolderState{Name: "draft"})
	s.SetSession(1, &models.OpenFolderState{})

	got, ok := s.GetSession(1)
	require.True(t, ok)
	_, isOpen := got.State.(*models.OpenFolderState)
	assert.True(t, isOpen)
}

func TestSession_SetNilClears(t *testing.T) {
	s := newTestStorage(t, 10)
	s.SetSession(1, &models.OpenFolderState{})
	s.SetSession(1, nil)

	_, ok := s.GetSession(1)
	assert.False(t, ok)
}

func TestSession_LRUEviction(t *testing.T) {
	s := newTestStorage(t, 2)

	s.SetSession(1, &models.OpenFolderState{})
	s.SetSession(2, &models.OpenFolderState{})
	s.SetSession(3, &models.OpenFolderState{})

	_, ok := s.GetSession(1)
	assert.False(t, ok)
	_, ok = s.GetSession(3)
	assert.True(t, ok)
}

func TestCleanupExpiredData(t *testing.T) {
	s := newTestStorage(t, 10)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.SetSession(1, &models.OpenFolderState{})
	now = now.Add(30 * time.Minute)
	s.SetSession(2, &models.SearchFoldersState{})
	now = now.Add(45 * time.Minute)

	assert.Equal(t, 1, s.CleanupExpiredData())

	_, ok := s.GetSession(1)
	assert.False(t, ok)
	_, ok = s.GetSession(2)
	assert.True(t, ok)
}

func TestGetStats(t *testing.T) {
	s := newTestStorage(t, 10)
	s.SetSession(1, &models.OpenFolderState{})
	s.SetSession(2, &models.OpenFolderState{})
	s.SetSession(3, &models.DownloadState{})

	stats := s.GetStats()
	assert.Equal(t, 3, stats["active_sessions"])
	assert.Equal(t, map[string]int{"open_folder": 2, "download_video": 1}, stats["by_scene"])
}
