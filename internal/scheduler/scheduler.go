// Package scheduler удаляет сообщения по таймеру и запускает
// периодическое обслуживание.
package scheduler

import (
	"FolderVaultBot/internal/logging"
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
)

// Deleter удаляет сообщения. *tgbotapi.BotAPI подходит.
type Deleter interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type messageKey struct {
	chatID    int64
	messageID int
}

type Scheduler struct {
	api  Deleter
	log  logging.Logger
	cron *cron.Cron

	mu      sync.Mutex
	timers  map[messageKey]*time.Timer
	stopped bool
}

func NewScheduler(api Deleter, log logging.Logger) *Scheduler {
	return &Scheduler{
		api:    api,
		log:    log,
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		timers: make(map[messageKey]*time.Timer),
	}
}

// ScheduleDelete удаляет сообщение через after. Ошибки удаления только
// логируются: сообщение могли уже удалить вручную.
func (s *Scheduler) ScheduleDelete(chatID int64, messageID int, after time.Duration) {
	if messageID == 0 {
		return
	}
	key := messageKey{chatID: chatID, messageID: messageID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(after, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()

		s.deleteMessage(key)
	})
}

func (s *Scheduler) deleteMessage(key messageKey) {
	_, err := s.api.Request(tgbotapi.NewDeleteMessage(key.chatID, key.messageID))
	if err != nil {
		s.log.Warn(context.Background(), "delete message failed",
			"chat_id", key.chatID, "message_id", key.messageID, "error", err)
		return
	}
	s.log.Debug(context.Background(), "message deleted",
		"chat_id", key.chatID, "message_id", key.messageID)
}

// Pending возвращает число ещё не сработавших удалений.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// AddJob регистрирует fn по cron-расписанию вида "@every 30m".
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		started := time.Now()
		fn(ctx)
		s.log.Debug(ctx, "job finished", "job", name, "took", time.Since(started))
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	s.log.Info(context.Background(), "job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop ждёт запущенные задачи и отменяет несработавшие удаления.
func (s *Scheduler) Stop(ctx context.Context) {
	cronCtx := s.cron.Stop()
	select {
	case <-cronCtx.Done():
	case <-ctx.Done():
		s.log.Warn(ctx, "scheduler stop timed out")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
