package storage

import (
	"FolderVaultBot/pkg/models"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2"
)

// Константы для настройки
const (
	DefaultCacheSize = 1000
	DefaultMaxAge    = 24 * time.Hour
)

// BotStorage хранит сессии мастеров в памяти процесса, по одной на чат.
type BotStorage interface {
	GetSession(chatID int64) (models.Session, bool)
	SetSession(chatID int64, state models.SceneState)
	ClearSession(chatID int64)
	// Периодическая очистка заброшенных сессий
	CleanupExpiredData() int
	GetStats() map[string]interface{}
}

type MemoryStorage struct {
	mu sync.RWMutex

	// LRU ограничивает память, если чатов слишком много
	sessions *lru.Cache[int64, models.Session]
	capacity int
	maxAge   time.Duration
	now      func() time.Time
}

// NewMemoryStorage создает хранилище с ограничением по размеру.
// Сессии старше maxAge удаляются при CleanupExpiredData.
func NewMemoryStorage(size int, maxAge time.Duration) (*MemoryStorage, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	sessions, err := lru.New[int64, models.Session](size)
	if err != nil {
		return nil, err
	}

	return &MemoryStorage{
		sessions: sessions,
		capacity: size,
		maxAge:   maxAge,
		now:      time.Now,
	}, nil
}

func (s *MemoryStorage) GetSession(chatID int64) (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions.Get(chatID)
	if !exists || session.State == nil {
		return models.Session{}, false
	}
	return session, true
}

// SetSession заменяет сессию чата. Вход в новую сцену сбрасывает черновик
// предыдущей.
func (s *MemoryStorage) SetSession(chatID int64, state models.SceneState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		s.sessions.Remove(chatID)
		return
	}
	s.sessions.Add(chatID, models.Session{State: state, UpdatedAt: s.now()})
}

func (s *MemoryStorage) ClearSession(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions.Remove(chatID)
}

// CleanupExpiredData удаляет сессии, которые не трогали дольше maxAge,
// и возвращает их количество.
func (s *MemoryStorage) CleanupExpiredData() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for _, chatID := range s.sessions.Keys() {
		session, ok := s.sessions.Peek(chatID)
		if ok && now.Sub(session.UpdatedAt) > s.maxAge {
			s.sessions.Remove(chatID)
			removed++
		}
	}
	return removed
}

// GetStats возвращает статистику для мониторинга
func (s *MemoryStorage) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byScene := make(map[string]int)
	for _, chatID := range s.sessions.Keys() {
		if session, ok := s.sessions.Peek(chatID); ok && session.State != nil {
			byScene[string(session.State.Scene())]++
		}
	}

	return map[string]interface{}{
		"active_sessions": s.sessions.Len(),
		"by_scene":        byScene,
		"cache_capacity":  s.capacity,
		"max_age":         s.maxAge.String(),
	}
}
