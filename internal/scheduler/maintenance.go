package scheduler

import (
	"FolderVaultBot/internal/storage"
	"context"
)

// RegisterMaintenance добавляет очистку заброшенных сессий и периодический
// вывод статистики хранилища.
func (s *Scheduler) RegisterMaintenance(store storage.BotStorage, sweepSpec, statsSpec string) error {
	if err := s.AddJob("session_sweep", sweepSpec, func(ctx context.Context) {
		if n := store.CleanupExpiredData(); n > 0 {
			s.log.Info(ctx, "expired sessions removed", "count", n)
		}
	}); err != nil {
		return err
	}

	return s.AddJob("storage_stats", statsSpec, func(ctx context.Context) {
		s.log.Info(ctx, "storage stats", "stats", store.GetStats(), "pending_deletions", s.Pending())
	})
}
