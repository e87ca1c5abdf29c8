package main

import (
	"FolderVaultBot/internal/bot"
	"FolderVaultBot/internal/config"
	"FolderVaultBot/internal/database"
	"FolderVaultBot/internal/delivery"
	"FolderVaultBot/internal/downloader"
	"FolderVaultBot/internal/filestore"
	"FolderVaultBot/internal/ingest"
	"FolderVaultBot/internal/logging"
	"FolderVaultBot/internal/password"
	"FolderVaultBot/internal/scheduler"
	"FolderVaultBot/internal/server"
	"FolderVaultBot/internal/storage"
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	sessionSweepSpec = "@every 1h"
	storageStatsSpec = "@every 30m"
	shutdownTimeout  = 10 * time.Second
)

func main() {
	// Загружаем .env файл
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: %v", err)
		log.Println("Continuing with system environment variables...")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "bot stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.SlogLogger) error {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn(ctx, "database close failed", "error", err)
		}
	}()
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	// Инициализация хранилища
	sessions, err := storage.NewMemoryStorage(storage.DefaultCacheSize, cfg.SessionMaxAge)
	if err != nil {
		return err
	}

	// Инициализация бота
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return err
	}
	logger.Info(ctx, "authorized", "account", api.Self.UserName)

	httpClient := &http.Client{}

	dl := downloader.New(cfg.Downloader, downloader.ExecRunner{}, logger)
	if err := dl.EnsureBinaries(ctx, httpClient); err != nil {
		// без yt-dlp работает всё, кроме /DownloadYouTube
		logger.Warn(ctx, "external tools not ready", "error", err)
	}

	sched := scheduler.NewScheduler(api, logger)
	if err := sched.RegisterMaintenance(sessions, sessionSweepSpec, storageStatsSpec); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sched.Stop(stopCtx)
	}()

	strategy := delivery.NewStrategy(api, newUploader(cfg, httpClient), sched, delivery.Options{
		InlineLimit: cfg.Delivery.InlineLimit,
		Tick:        cfg.Delivery.ProgressTick,
		LinkTTL:     cfg.Delivery.LinkTTL,
		MessageTTL:  cfg.Messages.TTL,
	}, logger)

	b := bot.New(bot.Deps{
		API:        api,
		Repo:       database.NewRepository(db),
		Files:      filestore.New(cfg.StorageRoot),
		Sessions:   sessions,
		Ingest:     ingest.New(api, ingest.BotLink(cfg.BotToken), httpClient, cfg.Limits.MaxFileSize, logger),
		Hasher:     password.NewHasher(cfg.Limits.BcryptCost),
		Downloader: dl,
		Delivery:   strategy,
		Expirer:    sched,
		Settings: bot.Settings{
			BotUsername:   api.Self.UserName,
			AdminChatID:   cfg.AdminChatID,
			MaxTextLength: cfg.Limits.MaxTextLength,
			CaptionLimit:  cfg.Limits.CaptionLimit,
			MessageTTL:    cfg.Messages.TTL,
			MediaGroupTTL: cfg.Messages.MediaGroupTTL,
			Location:      cfg.Location(),
		},
		Log: logger,
	})

	if cfg.WebhookURL != "" {
		return runWebhook(ctx, cfg, api, b, sessions, logger)
	}
	return runPolling(ctx, api, b, logger)
}

func newUploader(cfg *config.Config, client *http.Client) delivery.Uploader {
	if cfg.Delivery.Uploader == config.UploaderS3 {
		return delivery.NewS3Uploader(cfg.Delivery.S3, cfg.Delivery.LinkTTL, client)
	}
	return delivery.NewTmpFilesUploader(cfg.Delivery.TmpFilesEndpoint, client, cfg.Delivery.UploadTimeout)
}

func runWebhook(ctx context.Context, cfg *config.Config, api *tgbotapi.BotAPI, b *bot.Bot, sessions storage.BotStorage, logger *logging.SlogLogger) error {
	// Настройка webhook
	webhook, err := tgbotapi.NewWebhook(cfg.WebhookURL)
	if err != nil {
		return err
	}
	if _, err := api.Request(webhook); err != nil {
		return err
	}

	info, err := api.GetWebhookInfo()
	if err != nil {
		return err
	}
	if info.LastErrorDate != 0 {
		logger.Warn(ctx, "telegram webhook error", "message", info.LastErrorMessage)
	}

	path := server.DefaultWebhookPath
	if u, err := url.Parse(cfg.WebhookURL); err == nil && u.Path != "" {
		path = u.Path
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(path, api, b.Dispatch, sessions, logger)
	srv := server.New(":"+cfg.HTTPPort, router, logger)

	errCh := make(chan error, 1)
	srv.Start(errCh)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		b.Close()
		return err
	}

	logger.Info(context.Background(), "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	b.Close()
	return err
}

func runPolling(ctx context.Context, api *tgbotapi.BotAPI, b *bot.Bot, logger *logging.SlogLogger) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logger.Warn(ctx, "delete webhook failed", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	logger.Info(ctx, "long polling started")
	b.Run(ctx, updates)
	logger.Info(context.Background(), "bot gracefully stopped")
	return nil
}
