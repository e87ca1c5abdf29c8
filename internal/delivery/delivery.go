// Package delivery отправляет готовое видео в чат: напрямую, если оно
// укладывается в лимит транспорта, иначе временной ссылкой.
package delivery

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/internal/logging"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender отправляет и редактирует сообщения. *tgbotapi.BotAPI подходит.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Expirer планирует удаление отправленного сообщения.
type Expirer interface {
	ScheduleDelete(chatID int64, messageID int, after time.Duration)
}

type Options struct {
	InlineLimit int64
	Tick        time.Duration
	LinkTTL     time.Duration
	MessageTTL  time.Duration
}

type Strategy struct {
	api      Sender
	uploader Uploader
	expire   Expirer
	opts     Options
	log      logging.Logger
}

func NewStrategy(api Sender, uploader Uploader, expire Expirer, opts Options, log logging.Logger) *Strategy {
	return &Strategy{
		api:      api,
		uploader: uploader,
		expire:   expire,
		opts:     opts,
		log:      log,
	}
}

// Outcome описывает, как файл дошёл до пользователя.
type Outcome struct {
	Inline bool
	Link   string
	Size   int64
}

// Deliver отправляет файл path в чат chatID.
func (s *Strategy) Deliver(ctx context.Context, chatID int64, path string) (Outcome, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: stat %s: %v", common.ErrStorage, path, err)
	}
	size := info.Size()

	if size > s.opts.InlineLimit {
		return s.deliverLink(ctx, chatID, path, size)
	}
	return s.deliverInline(ctx, chatID, path, size)
}

func (s *Strategy) deliverLink(ctx context.Context, chatID int64, path string, size int64) (Outcome, error) {
	link, err := s.uploader.Upload(ctx, path)
	if err != nil {
		return Outcome{}, err
	}

	text := fmt.Sprintf("📦 Файл (%.2f МБ) слишком большой для Telegram.\nСсылка для скачивания (действует %s): %s",
		float64(size)/(1024*1024), formatTTL(s.opts.LinkTTL), link)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	sent, err := s.api.Send(msg)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: send link: %v", common.ErrExternalService, err)
	}
	s.expire.ScheduleDelete(chatID, sent.MessageID, s.opts.MessageTTL)

	s.log.Info(ctx, "download link generated", "chat_id", chatID, "size", size, "link", link)
	return Outcome{Link: link, Size: size}, nil
}

func (s *Strategy) deliverInline(ctx context.Context, chatID int64, path string, size int64) (Outcome, error) {
	status, err := s.api.Send(tgbotapi.NewMessage(chatID, progressText(0)))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: send status: %v", common.ErrExternalService, err)
	}
	s.expire.ScheduleDelete(chatID, status.MessageID, s.opts.MessageTTL)

	stop := s.startProgress(ctx, chatID, status.MessageID)

	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = "🎥 Ваше видео!"
	sent, sendErr := s.api.Send(video)
	stop()

	if sendErr != nil {
		s.edit(ctx, chatID, status.MessageID, "❌ Не удалось отправить видео.")
		return Outcome{}, fmt.Errorf("%w: send video: %v", common.ErrTransferFailed, sendErr)
	}
	s.expire.ScheduleDelete(chatID, sent.MessageID, s.opts.MessageTTL)
	s.edit(ctx, chatID, status.MessageID, "✅ Видео успешно отправлено!")

	s.log.Info(ctx, "video sent", "chat_id", chatID, "size", size, "path", path)
	return Outcome{Inline: true, Size: size}, nil
}

// startProgress раз в тик добавляет 10% к статусу. Прогресс условный:
// реальный ход отправки транспорт не сообщает. Возвращённая функция
// только останавливает тикер и не ждёт редактирования, начатого до неё.
func (s *Strategy) startProgress(ctx context.Context, chatID int64, messageID int) func() {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.opts.Tick)
		defer ticker.Stop()

		progress := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// тик и остановка могли совпасть
				select {
				case <-done:
					return
				default:
				}
				progress += 10
				if progress > 100 {
					continue
				}
				s.edit(ctx, chatID, messageID, progressText(progress))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (s *Strategy) edit(ctx context.Context, chatID int64, messageID int, text string) {
	if _, err := s.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		s.log.Warn(ctx, "edit status failed", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

func progressText(percent int) string {
	return fmt.Sprintf("⏳ Отправка видео... %d%%", percent)
}

func formatTTL(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d ч", int(d/time.Hour))
	}
	return fmt.Sprintf("%d мин", int(d/time.Minute))
}
