package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var envPaths = []string{
	".env",
	"./.env",
	"../.env",
	"../../.env",
}

// LoadEnv загружает первый найденный .env. Если файла нет, используется
// окружение процесса как есть.
func LoadEnv() error {
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("Loaded .env from: %s", path)
			return nil
		}
	}

	wd, _ := os.Getwd()
	return fmt.Errorf("could not load .env file from any path (cwd %s)", wd)
}

// Load собирает Config: значения по умолчанию, затем YAML из CONFIG_FILE
// (если задан), затем переменные окружения.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile накладывает значения из YAML-файла.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv накладывает заданные переменные окружения.
func (c *Config) ApplyEnv() error {
	p := envParser{}

	p.stringVar("BOT_TOKEN", &c.BotToken)
	p.stringVar("BOT_WEBHOOK_URL", &c.WebhookURL)
	p.stringVar("HTTP_PORT", &c.HTTPPort)
	p.int64Var("ADMIN_CHAT_ID", &c.AdminChatID)
	p.stringVar("STORAGE_ROOT", &c.StorageRoot)
	p.durationVar("SESSION_MAX_AGE", &c.SessionMaxAge)
	p.stringVar("LOG_LEVEL", &c.LogLevel)

	p.stringVar("DB_DRIVER", &c.Database.Driver)
	p.stringVar("DB_HOST", &c.Database.Host)
	p.stringVar("DB_PORT", &c.Database.Port)
	p.stringVar("DB_USERNAME", &c.Database.Username)
	p.stringVar("DB_PASSWORD", &c.Database.Password)
	p.stringVar("DB_DATABASE", &c.Database.Name)
	p.stringVar("DB_PATH", &c.Database.Path)

	p.int64Var("MAX_FILE_SIZE", &c.Limits.MaxFileSize)
	p.intVar("MAX_TEXT_LENGTH", &c.Limits.MaxTextLength)
	p.intVar("CAPTION_LIMIT", &c.Limits.CaptionLimit)
	p.intVar("BCRYPT_COST", &c.Limits.BcryptCost)

	p.durationVar("MESSAGE_TTL", &c.Messages.TTL)
	p.durationVar("MEDIA_GROUP_TTL", &c.Messages.MediaGroupTTL)
	p.stringVar("TIMEZONE", &c.Messages.Timezone)

	p.stringVar("YTDLP_PATH", &c.Downloader.YtDlpPath)
	p.stringVar("FFMPEG_PATH", &c.Downloader.FFmpegPath)
	p.stringVar("YTDLP_URL", &c.Downloader.YtDlpURL)
	p.stringVar("FFMPEG_URL", &c.Downloader.FFmpegURL)
	p.durationVar("DOWNLOAD_SETTLE_DELAY", &c.Downloader.SettleDelay)
	p.durationVar("DOWNLOAD_TIMEOUT", &c.Downloader.Timeout)

	p.int64Var("INLINE_LIMIT", &c.Delivery.InlineLimit)
	p.durationVar("PROGRESS_TICK", &c.Delivery.ProgressTick)
	p.stringVar("UPLOADER", &c.Delivery.Uploader)
	p.stringVar("TMPFILES_ENDPOINT", &c.Delivery.TmpFilesEndpoint)
	p.durationVar("UPLOAD_TIMEOUT", &c.Delivery.UploadTimeout)
	p.durationVar("LINK_TTL", &c.Delivery.LinkTTL)
	p.stringVar("S3_BUCKET", &c.Delivery.S3.Bucket)
	p.stringVar("S3_REGION", &c.Delivery.S3.Region)
	p.stringVar("S3_ENDPOINT", &c.Delivery.S3.Endpoint)
	p.stringVar("S3_ACCESS_KEY", &c.Delivery.S3.AccessKey)
	p.stringVar("S3_SECRET_KEY", &c.Delivery.S3.SecretKey)

	return p.err
}

// Location возвращает часовой пояс из настроек, при ошибке UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Messages.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type envParser struct {
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (p *envParser) fail(key, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
}

func (p *envParser) stringVar(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *envParser) intVar(key string, dst *int) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = n
}

func (p *envParser) int64Var(key string, dst *int64) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = n
}

func (p *envParser) durationVar(key string, dst *time.Duration) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = d
}
