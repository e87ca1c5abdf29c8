package bot

import (
	"FolderVaultBot/internal/database"
	"FolderVaultBot/internal/delivery"
	"FolderVaultBot/internal/downloader"
	"FolderVaultBot/internal/filestore"
	"FolderVaultBot/internal/ingest"
	"FolderVaultBot/internal/logging"
	"FolderVaultBot/internal/password"
	"FolderVaultBot/internal/storage"
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// API: часть *tgbotapi.BotAPI, которой пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
}

// Expirer планирует удаление сообщения. Реализован в scheduler.
type Expirer interface {
	ScheduleDelete(chatID int64, messageID int, after time.Duration)
}

type VideoDownloader interface {
	Download(ctx context.Context, dir, url, quality string) (downloader.Result, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, path string) (delivery.Outcome, error)
}

// Settings: ограничения и тексты, которые зависят от конфигурации.
type Settings struct {
	BotUsername   string
	AdminChatID   int64
	MaxTextLength int
	CaptionLimit  int
	MessageTTL    time.Duration
	MediaGroupTTL time.Duration
	Location      *time.Location
}

// Deps собирает все зависимости бота. Глобальных переменных нет:
// main заполняет Deps и передаёт в New.
type Deps struct {
	API        API
	Repo       *database.Repository
	Files      *filestore.Store
	Sessions   storage.BotStorage
	Ingest     *ingest.Pipeline
	Hasher     *password.Hasher
	Downloader VideoDownloader
	Delivery   Deliverer
	Expirer    Expirer
	Settings   Settings
	Log        logging.Logger
}

type Bot struct {
	Deps
	dispatcher *Dispatcher
}

func New(deps Deps) *Bot {
	if deps.Settings.Location == nil {
		deps.Settings.Location = time.UTC
	}
	b := &Bot{Deps: deps}
	b.dispatcher = NewDispatcher(b.HandleUpdate, deps.Log)
	b.dispatcher.onDrop = b.notifyBusy
	return b
}

// notifyBusy отвечает чату, чья очередь переполнена. Отправка идёт в
// отдельной горутине, чтобы не задерживать приём обновлений.
func (b *Bot) notifyBusy(chatID int64) {
	c := &chatContext{ctx: context.Background(), chatID: chatID, log: b.Log.With("chat_id", chatID)}
	go b.replyKeep(c, "⏳ Предыдущий запрос ещё выполняется. Подождите немного.")
}

// Run читает обновления и раздаёт их по очередям чатов, пока канал открыт
// или не отменён ctx. Перед возвратом дожидается начатых обработчиков.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer b.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.Dispatch(update)
		}
	}
}

// Dispatch ставит обновление в очередь его чата.
func (b *Bot) Dispatch(update tgbotapi.Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}
	if b.Settings.AdminChatID != 0 && chatID != b.Settings.AdminChatID {
		b.Log.Debug(context.Background(), "update from foreign chat ignored", "chat_id", chatID)
		return
	}
	b.dispatcher.Submit(chatID, update)
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		if update.Message.From != nil && update.Message.From.IsBot {
			return 0, false
		}
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil:
		if update.CallbackQuery.Message != nil {
			return update.CallbackQuery.Message.Chat.ID, true
		}
		if update.CallbackQuery.From != nil {
			return update.CallbackQuery.From.ID, true
		}
	}
	return 0, false
}

// HandleUpdate обрабатывает одно обновление синхронно.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}

	log := b.Log.With("chat_id", chatID, "trace_id", uuid.NewString())
	c := &chatContext{ctx: ctx, chatID: chatID, log: log}

	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "panic in update handler", "panic", r)
			b.fail(c, errPanic)
		}
	}()

	var err error
	switch {
	case update.Message != nil:
		c.msg = update.Message
		err = b.handleMessage(c)
	case update.CallbackQuery != nil:
		err = b.handleCallback(c, update.CallbackQuery)
	}
	if err != nil {
		b.fail(c, err)
	}
}

// chatContext: всё, что нужно обработчику одного обновления.
type chatContext struct {
	ctx    context.Context
	chatID int64
	msg    *tgbotapi.Message
	log    logging.Logger
}

// Close дожидается обработки уже принятых обновлений.
func (b *Bot) Close() {
	b.dispatcher.Close()
}
