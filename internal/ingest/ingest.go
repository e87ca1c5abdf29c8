// Package ingest проверяет входящие вложения и копирует их в локальный
// каталог чата.
package ingest

import (
	"FolderVaultBot/internal/common"
	dbmodels "FolderVaultBot/internal/database/models"
	"FolderVaultBot/internal/filestore"
	"FolderVaultBot/internal/logging"
	"FolderVaultBot/pkg/models"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FileResolver получает метаданные удалённого файла. *tgbotapi.BotAPI подходит.
type FileResolver interface {
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// LinkFunc строит ссылку на скачивание по метаданным.
type LinkFunc func(file tgbotapi.File) string

// BotLink строит ссылки на файлы Telegram для токена бота.
func BotLink(token string) LinkFunc {
	return func(file tgbotapi.File) string {
		return file.Link(token)
	}
}

// Recorder сохраняет элементы папки. *database.Repository подходит.
type Recorder interface {
	AddFile(ctx context.Context, file *dbmodels.FolderFile) error
	UpdateFilePath(ctx context.Context, fileID uint, path string) error
}

type Pipeline struct {
	files   FileResolver
	link    LinkFunc
	client  *http.Client
	maxSize int64
	log     logging.Logger
}

func New(files FileResolver, link LinkFunc, client *http.Client, maxSize int64, log logging.Logger) *Pipeline {
	if client == nil {
		client = http.DefaultClient
	}
	return &Pipeline{
		files:   files,
		link:    link,
		client:  client,
		maxSize: maxSize,
		log:     log,
	}
}

func (p *Pipeline) MaxSize() int64 {
	return p.maxSize
}

// CheckSize проверяет размер удалённого файла: сначала заявленный в сообщении,
// потом тот, что вернул API.
func (p *Pipeline) CheckSize(ctx context.Context, ref models.FileRef) (tgbotapi.File, error) {
	if ref.Size > p.maxSize {
		return tgbotapi.File{}, fmt.Errorf("%w: %d bytes declared", common.ErrTooLarge, ref.Size)
	}
	if err := ctx.Err(); err != nil {
		return tgbotapi.File{}, err
	}

	file, err := p.files.GetFile(tgbotapi.FileConfig{FileID: ref.FileID})
	if err != nil {
		return tgbotapi.File{}, fmt.Errorf("%w: get file %s: %v", common.ErrTransferFailed, ref.FileID, err)
	}
	if int64(file.FileSize) > p.maxSize {
		return tgbotapi.File{}, fmt.Errorf("%w: %d bytes reported", common.ErrTooLarge, file.FileSize)
	}

	return file, nil
}

// FetchAndStore скачивает удалённый файл в dir. Имя файла: базовое имя
// base плюс расширение по MIME или по типу элемента, поэтому разделители
// пути из внешнего ввода не доживают до диска.
func (p *Pipeline) FetchAndStore(ctx context.Context, ref models.FileRef, dir, base string, fileType dbmodels.FileType) (string, error) {
	name := filepath.Base(base + Extension(ref.MimeType, fileType))
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: bad file name %q", common.ErrValidation, base)
	}
	dest := filepath.Join(dir, name)

	file, err := p.CheckSize(ctx, ref)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.link(file), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrTransferFailed, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrTransferFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", common.ErrTransferFailed, resp.StatusCode)
	}

	if err := p.writeFile(dest, resp.Body); err != nil {
		return "", err
	}

	p.log.Debug(ctx, "file stored", "file_id", ref.FileID, "path", dest)
	return dest, nil
}

func (p *Pipeline) writeFile(dest string, body io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", common.ErrStorage, dest, err)
	}

	n, copyErr := io.Copy(out, io.LimitReader(body, p.maxSize+1))
	closeErr := out.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("%w: %v", common.ErrTransferFailed, copyErr)
	case n > p.maxSize:
		err = fmt.Errorf("%w: stream exceeded %d bytes", common.ErrTooLarge, p.maxSize)
	case closeErr != nil:
		err = fmt.Errorf("%w: close %s: %v", common.ErrStorage, dest, closeErr)
	}
	if err != nil {
		_ = os.Remove(dest)
		return err
	}
	return nil
}

// StoreItems сохраняет пачку элементов: текст сразу пишется в репозиторий,
// для медиа создаётся строка-заглушка, файл скачивается, затем в строку
// записывается итоговый путь. Пачка останавливается на первом сбое,
// записанные до него строки остаются.
func (p *Pipeline) StoreItems(ctx context.Context, rec Recorder, folderID uint, dir string, items []models.Attachment) (int, error) {
	stored := 0
	for _, item := range items {
		if err := p.storeItem(ctx, rec, folderID, dir, item); err != nil {
			p.log.Error(ctx, "batch item failed",
				"folder_id", folderID, "stored", stored, "total", len(items), "error", err)
			return stored, err
		}
		stored++
	}
	return stored, nil
}

func (p *Pipeline) storeItem(ctx context.Context, rec Recorder, folderID uint, dir string, item models.Attachment) error {
	if item.IsText() {
		return rec.AddFile(ctx, &dbmodels.FolderFile{
			FolderID:    folderID,
			FileType:    dbmodels.FileTypeText,
			TextContent: item.Text,
		})
	}

	row := &dbmodels.FolderFile{
		FolderID: folderID,
		FileType: item.Type,
		FilePath: dbmodels.PendingPath,
	}
	if err := rec.AddFile(ctx, row); err != nil {
		return err
	}

	base := filestore.ItemBase(folderID, row.ID)
	path, err := p.FetchAndStore(ctx, item.Ref, dir, base, item.Type)
	if err != nil {
		return err
	}

	return rec.UpdateFilePath(ctx, row.ID, path)
}

// IsUserError: ошибка вызвана самим вложением, а не инфраструктурой.
func IsUserError(err error) bool {
	return errors.Is(err, common.ErrTooLarge) || errors.Is(err, common.ErrValidation)
}
