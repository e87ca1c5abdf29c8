package bot

import (
	"FolderVaultBot/internal/config"
	"FolderVaultBot/internal/database"
	"FolderVaultBot/internal/delivery"
	"FolderVaultBot/internal/downloader"
	"FolderVaultBot/internal/filestore"
	"FolderVaultBot/internal/ingest"
	"FolderVaultBot/internal/logging"
	"FolderVaultBot/internal/password"
	"FolderVaultBot/internal/storage"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

const testChatID int64 = 42

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	groups   []tgbotapi.MediaGroupConfig
	nextID   int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = append(f.groups, config)
	msgs := make([]tgbotapi.Message, len(config.Media))
	for i := range msgs {
		f.nextID++
		msgs[i] = tgbotapi.Message{MessageID: f.nextID}
	}
	return msgs, nil
}

// texts возвращает тексты сообщений и подписи фото по порядку.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, m.Caption)
		}
	}
	return out
}

func (f *fakeAPI) lastText() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeExpirer struct {
	mu   sync.Mutex
	ttls map[int]time.Duration
}

func (f *fakeExpirer) ScheduleDelete(_ int64, messageID int, after time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ttls == nil {
		f.ttls = make(map[int]time.Duration)
	}
	f.ttls[messageID] = after
}

func (f *fakeExpirer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ttls)
}

type fakeResolver struct {
	files map[string]tgbotapi.File
}

func (f *fakeResolver) GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error) {
	file, ok := f.files[config.FileID]
	if !ok {
		return tgbotapi.File{}, errors.New("Bad Request: invalid file_id")
	}
	return file, nil
}

type fakeDownloader struct {
	calls   int
	quality string
	err     error
	body    string
}

func (f *fakeDownloader) Download(_ context.Context, dir, url, quality string) (downloader.Result, error) {
	f.calls++
	f.quality = quality
	if f.err != nil {
		return downloader.Result{}, f.err
	}
	base := "YouTube_1700000000000"
	path := filepath.Join(dir, base+".mp4")
	if err := os.WriteFile(path, []byte(f.body), 0o644); err != nil {
		return downloader.Result{}, err
	}
	return downloader.Result{Base: base, Path: path, Size: int64(len(f.body))}, nil
}

type fakeDeliverer struct {
	path  string
	panic bool
}

func (f *fakeDeliverer) Deliver(_ context.Context, _ int64, path string) (delivery.Outcome, error) {
	if f.panic {
		panic("boom")
	}
	f.path = path
	return delivery.Outcome{Inline: true}, nil
}

type harness struct {
	t          *testing.T
	bot        *Bot
	api        *fakeAPI
	expirer    *fakeExpirer
	repo       *database.Repository
	sessions   *storage.MemoryStorage
	files      *filestore.Store
	resolver   *fakeResolver
	downloader *fakeDownloader
	deliverer  *fakeDeliverer
	hasher     *password.Hasher
	nextMsgID  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := database.Open(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "bot.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	sessions, err := storage.NewMemoryStorage(100, time.Hour)
	require.NoError(t, err)

	// файлы отдаются по пути: содержимое = путь
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.TrimPrefix(r.URL.Path, "/")))
	}))
	t.Cleanup(srv.Close)

	resolver := &fakeResolver{files: make(map[string]tgbotapi.File)}
	link := func(f tgbotapi.File) string { return srv.URL + "/" + f.FilePath }

	h := &harness{
		t:          t,
		api:        &fakeAPI{},
		expirer:    &fakeExpirer{},
		repo:       database.NewRepository(db),
		sessions:   sessions,
		files:      filestore.New(t.TempDir()),
		resolver:   resolver,
		downloader: &fakeDownloader{body: "video"},
		deliverer:  &fakeDeliverer{},
		hasher:     password.NewHasher(4),
	}

	h.bot = New(Deps{
		API:        h.api,
		Repo:       h.repo,
		Files:      h.files,
		Sessions:   sessions,
		Ingest:     ingest.New(resolver, link, srv.Client(), 20*config.MiB, logging.Discard()),
		Hasher:     h.hasher,
		Downloader: h.downloader,
		Delivery:   h.deliverer,
		Expirer:    h.expirer,
		Settings: Settings{
			BotUsername:   "folder_vault_bot",
			MaxTextLength: 4000,
			CaptionLimit:  1000,
			MessageTTL:    10 * time.Minute,
			MediaGroupTTL: 30 * time.Second,
		},
		Log: logging.Discard(),
	})
	return h
}

func (h *harness) message(msg *tgbotapi.Message) {
	h.nextMsgID++
	msg.MessageID = 1000 + h.nextMsgID
	msg.Chat = &tgbotapi.Chat{ID: testChatID}
	msg.From = &tgbotapi.User{ID: testChatID}
	h.bot.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func (h *harness) text(s string) {
	h.message(&tgbotapi.Message{Text: s})
}

func (h *harness) command(cmd string) {
	h.message(&tgbotapi.Message{
		Text:     cmd,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	})
}

// photo регистрирует удалённый файл и отправляет его как фото.
func (h *harness) photo(fileID string, size int) {
	h.resolver.files[fileID] = tgbotapi.File{FileID: fileID, FilePath: "photos/" + fileID, FileSize: size}
	h.message(&tgbotapi.Message{Photo: []tgbotapi.PhotoSize{
		{FileID: fileID + "_small", FileSize: 10},
		{FileID: fileID, FileSize: size},
	}})
}

func (h *harness) callback(data string) {
	h.bot.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: testChatID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: testChatID}},
		Data:    data,
	}})
}

func (h *harness) chatDir() string {
	dir, err := h.files.ChatDir(testChatID)
	require.NoError(h.t, err)
	return dir
}
