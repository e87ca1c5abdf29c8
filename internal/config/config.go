// Package config загружает настройки бота: значения по умолчанию, затем
// необязательный YAML-файл, затем окружение (с поддержкой .env).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MiB = 1024 * 1024

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	UploaderTmpFiles = "tmpfiles"
	UploaderS3       = "s3"
)

type Database struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
}

// DSN строит строку подключения к MySQL.
func (d Database) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

type Limits struct {
	MaxFileSize   int64 `yaml:"max_file_size"`
	MaxTextLength int   `yaml:"max_text_length"`
	CaptionLimit  int   `yaml:"caption_limit"`
	BcryptCost    int   `yaml:"bcrypt_cost"`
}

type Messages struct {
	TTL           time.Duration `yaml:"ttl"`
	MediaGroupTTL time.Duration `yaml:"media_group_ttl"`
	Timezone      string        `yaml:"timezone"`
}

type Downloader struct {
	YtDlpPath   string        `yaml:"ytdlp_path"`
	FFmpegPath  string        `yaml:"ffmpeg_path"`
	YtDlpURL    string        `yaml:"ytdlp_url"`
	FFmpegURL   string        `yaml:"ffmpeg_url"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	Timeout     time.Duration `yaml:"timeout"`
}

type S3 struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type Delivery struct {
	InlineLimit      int64         `yaml:"inline_limit"`
	ProgressTick     time.Duration `yaml:"progress_tick"`
	Uploader         string        `yaml:"uploader"`
	TmpFilesEndpoint string        `yaml:"tmpfiles_endpoint"`
	UploadTimeout    time.Duration `yaml:"upload_timeout"`
	LinkTTL          time.Duration `yaml:"link_ttl"`
	S3               S3            `yaml:"s3"`
}

// Config хранит настройки бота.
type Config struct {
	BotToken      string        `yaml:"bot_token"`
	WebhookURL    string        `yaml:"webhook_url"`
	HTTPPort      string        `yaml:"http_port"`
	AdminChatID   int64         `yaml:"admin_chat_id"`
	StorageRoot   string        `yaml:"storage_root"`
	SessionMaxAge time.Duration `yaml:"session_max_age"`
	LogLevel      string        `yaml:"log_level"`

	Database   Database   `yaml:"database"`
	Limits     Limits     `yaml:"limits"`
	Messages   Messages   `yaml:"messages"`
	Downloader Downloader `yaml:"downloader"`
	Delivery   Delivery   `yaml:"delivery"`
}

// LoadDefaults заполняет Config значениями для разработки.
func (c *Config) LoadDefaults() {
	c.HTTPPort = "8080"
	c.StorageRoot = "Uploads"
	c.SessionMaxAge = 24 * time.Hour
	c.LogLevel = "info"

	c.Database = Database{
		Driver: DriverMySQL,
		Host:   "127.0.0.1",
		Port:   "3306",
		Path:   "data/folders.db",
	}
	c.Limits = Limits{
		MaxFileSize:   20 * MiB,
		MaxTextLength: 4000,
		CaptionLimit:  1000,
		BcryptCost:    10,
	}
	c.Messages = Messages{
		TTL:           10 * time.Minute,
		MediaGroupTTL: 30 * time.Second,
		Timezone:      "Europe/Moscow",
	}
	c.Downloader = Downloader{
		YtDlpPath:   "bin/yt-dlp",
		FFmpegPath:  "bin/ffmpeg",
		SettleDelay: 5 * time.Second,
		Timeout:     30 * time.Minute,
	}
	c.Delivery = Delivery{
		InlineLimit:      50 * MiB,
		ProgressTick:     3 * time.Second,
		Uploader:         UploaderTmpFiles,
		TmpFilesEndpoint: "https://tmpfiles.org/api/v1/upload",
		UploadTimeout:    60 * time.Second,
		LinkTTL:          2 * time.Hour,
		S3:               S3{Region: "us-east-1"},
	}
}

// Validate сообщает о настройках, с которыми бот не запустится.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.BotToken) == "" {
		errs = append(errs, errors.New("BOT_TOKEN is not set"))
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	switch c.Delivery.Uploader {
	case UploaderTmpFiles:
	case UploaderS3:
		if c.Delivery.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 uploader"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown uploader %q", c.Delivery.Uploader))
	}
	if c.Limits.MaxFileSize <= 0 || c.Limits.MaxTextLength <= 0 || c.Limits.CaptionLimit <= 0 {
		errs = append(errs, errors.New("limits must be positive"))
	}
	if c.Limits.BcryptCost <= 0 {
		errs = append(errs, errors.New("BCRYPT_COST must be positive"))
	}
	if c.Delivery.InlineLimit <= 0 || c.Delivery.ProgressTick <= 0 {
		errs = append(errs, errors.New("delivery limits must be positive"))
	}

	return errors.Join(errs...)
}
