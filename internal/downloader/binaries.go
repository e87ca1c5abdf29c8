package downloader

import (
	"FolderVaultBot/internal/common"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// EnsureBinaries проверяет, что загрузчик и ffmpeg на месте и исполняемые.
// Отсутствующая утилита скачивается по URL из настроек, без URL это ошибка.
func (d *Downloader) EnsureBinaries(ctx context.Context, client *http.Client) error {
	if client == nil {
		client = http.DefaultClient
	}

	var errs []error
	for _, bin := range []struct{ path, url string }{
		{d.cfg.YtDlpPath, d.cfg.YtDlpURL},
		{d.cfg.FFmpegPath, d.cfg.FFmpegURL},
	} {
		if err := d.ensureBinary(ctx, client, bin.path, bin.url); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Downloader) ensureBinary(ctx context.Context, client *http.Client, path, url string) error {
	if info, err := os.Stat(path); err == nil {
		if info.Mode().Perm()&0o111 == 0 {
			if err := os.Chmod(path, 0o755); err != nil {
				return fmt.Errorf("%w: chmod %s: %v", common.ErrStorage, path, err)
			}
		}
		return nil
	}
	if url == "" {
		return fmt.Errorf("%w: %s is missing and no download url is set", common.ErrNotFound, path)
	}

	d.log.Info(ctx, "downloading binary", "path", path, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrExternalService, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetch %s: %v", common.ErrExternalService, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: fetch %s: status %d", common.ErrExternalService, url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	tmp := path + ".download"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	_, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: write %s: %v", common.ErrStorage, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return os.Chmod(path, 0o755)
}
