package delivery

import (
	"FolderVaultBot/internal/common"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Uploader выкладывает локальный файл и возвращает временную публичную ссылку.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// TmpFilesUploader отправляет файл на tmpfiles.org (или совместимый сервис).
type TmpFilesUploader struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

func NewTmpFilesUploader(endpoint string, client *http.Client, timeout time.Duration) *TmpFilesUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &TmpFilesUploader{endpoint: endpoint, client: client, timeout: timeout}
}

type tmpFilesResponse struct {
	Status string `json:"status"`
	Data   struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (u *TmpFilesUploader) Upload(ctx context.Context, path string) (string, error) {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", common.ErrStorage, path, err)
	}
	defer f.Close()

	// тело пишется в pipe, чтобы не держать видео в памяти
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		pr.CloseWithError(err)
		return "", fmt.Errorf("%w: %v", common.ErrTransferFailed, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		return "", fmt.Errorf("%w: upload: %v", common.ErrTransferFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: upload: status %d", common.ErrTransferFailed, resp.StatusCode)
	}

	var body tmpFilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode upload response: %v", common.ErrTransferFailed, err)
	}
	if body.Data.URL == "" {
		return "", fmt.Errorf("%w: upload response has no url", common.ErrTransferFailed)
	}
	return body.Data.URL, nil
}
