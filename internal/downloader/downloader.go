// Package downloader запускает внешний загрузчик видео и ищет файл,
// который он создал.
package downloader

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/internal/config"
	"FolderVaultBot/internal/logging"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Prefix начинает имя каждого скачанного файла и папки для него.
const Prefix = "YouTube"

var urlPattern = regexp.MustCompile(`^(https?://)?(www\.|m\.)?(youtube\.com|youtu\.be)/.+`)

var formats = map[string]string{
	"360p":  "bestvideo[height<=360]+bestaudio/best[height<=360]",
	"480p":  "bestvideo[height<=480]+bestaudio/best[height<=480]",
	"720p":  "bestvideo[height<=720]+bestaudio/best[height<=720]",
	"1080p": "bestvideo[height<=1080]+bestaudio/best[height<=1080]",
}

// Qualities перечисляет допустимые качества, от низкого к высокому.
func Qualities() []string {
	return []string{"360p", "480p", "720p", "1080p"}
}

// FormatFor переводит метку качества в выражение выбора формата.
func FormatFor(label string) (string, error) {
	f, ok := formats[strings.TrimSpace(label)]
	if !ok {
		return "", fmt.Errorf("%w: unknown quality %q", common.ErrValidation, label)
	}
	return f, nil
}

// ValidateURL пропускает только ссылки на видеохостинг и его короткий домен.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n") || !urlPattern.MatchString(raw) {
		return fmt.Errorf("%w: unsupported url %q", common.ErrValidation, raw)
	}
	return nil
}

// Result описывает завершённую загрузку.
type Result struct {
	// Base: имя файла без расширения, оно же имя папки.
	Base string
	Path string
	Size int64
}

type Downloader struct {
	cfg   config.Downloader
	run   Runner
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	log   logging.Logger
}

func New(cfg config.Downloader, run Runner, log logging.Logger) *Downloader {
	if run == nil {
		run = ExecRunner{}
	}
	return &Downloader{
		cfg:   cfg,
		run:   run,
		sleep: sleepCtx,
		now:   time.Now,
		log:   log,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Args собирает аргументы загрузчика. Оболочка не используется.
func (d *Downloader) Args(format, output, url string) []string {
	return []string{
		"-f", format,
		"-o", output,
		"--ffmpeg-location", d.cfg.FFmpegPath,
		"--no-part",
		url,
	}
}

// Download скачивает url в dir в заданном качестве. Неизвестное качество
// и чужие ссылки отклоняются до запуска внешней утилиты.
func (d *Downloader) Download(ctx context.Context, dir, url, quality string) (Result, error) {
	if err := ValidateURL(url); err != nil {
		return Result{}, err
	}
	format, err := FormatFor(quality)
	if err != nil {
		return Result{}, err
	}

	base := fmt.Sprintf("%s_%d", Prefix, d.now().UnixMilli())
	output := filepath.Join(dir, base+".mp4")

	runCtx := ctx
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	var found string
	defer func() {
		d.cleanup(ctx, dir, base, found)
	}()

	d.log.Info(ctx, "downloader started", "url", url, "quality", quality, "output", output)
	stdout, stderr, runErr := d.run.Run(runCtx, d.cfg.YtDlpPath, d.Args(format, output, strings.TrimSpace(url)))
	if len(stdout) > 0 {
		d.log.Debug(ctx, "downloader stdout", "output", tail(stdout))
	}
	if len(stderr) > 0 {
		d.log.Warn(ctx, "downloader stderr", "output", tail(stderr))
	}
	if runErr != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", common.ErrExternalService, filepath.Base(d.cfg.YtDlpPath), runErr)
	}

	// файловая система может отдать результат не сразу
	if err := d.sleep(ctx, d.cfg.SettleDelay); err != nil {
		return Result{}, err
	}

	path, err := locate(dir, base)
	if err != nil {
		return Result{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: stat %s: %v", common.ErrStorage, path, err)
	}
	found = path

	d.log.Info(ctx, "downloader finished", "path", path, "size", info.Size())
	return Result{Base: base, Path: path, Size: info.Size()}, nil
}

// locate пробует base.mp4, base.webm, затем любой .mp4/.webm, имя которого
// начинается с base.
func locate(dir, base string) (string, error) {
	for _, ext := range []string{".mp4", ".webm"} {
		p := filepath.Join(dir, base+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", common.ErrStorage, dir, err)
	}
	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, base) || isPartial(name) {
			continue
		}
		if ext := filepath.Ext(name); ext == ".mp4" || ext == ".webm" {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no output for %s", common.ErrDownloadProducedNothing, base)
	}
	sort.Strings(candidates)
	return filepath.Join(dir, candidates[0]), nil
}

func isPartial(name string) bool {
	return strings.Contains(name, ".part") || strings.Contains(name, ".f")
}

// cleanup удаляет фрагменты и недокачанные файлы рядом с результатом.
func (d *Downloader) cleanup(ctx context.Context, dir, base, keep string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		d.log.Warn(ctx, "cleanup: read dir failed", "dir", dir, "error", err)
		return
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, base) || !isPartial(name) {
			continue
		}
		p := filepath.Join(dir, name)
		if p == keep {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.log.Warn(ctx, "cleanup: remove failed", "path", p, "error", err)
			continue
		}
		d.log.Debug(ctx, "cleanup: removed leftover", "path", p)
	}
}

func tail(b []byte) string {
	const max = 2000
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return "..." + s[len(s)-max:]
	}
	return s
}
