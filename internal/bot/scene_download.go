package bot

import (
	"FolderVaultBot/internal/common"
	dbmodels "FolderVaultBot/internal/database/models"
	"FolderVaultBot/internal/downloader"
	"FolderVaultBot/pkg/models"
	"errors"
	"fmt"
	"strings"
)

func (b *Bot) enterDownload(c *chatContext) error {
	b.Sessions.SetSession(c.chatID, &models.DownloadState{Step: models.DownloadStepURL})
	b.reply(c, "🎬 Отправьте ссылку на видео YouTube:", CreateCancelKeyboard())
	return nil
}

func (b *Bot) stepDownload(c *chatContext, st *models.DownloadState) error {
	switch st.Step {
	case models.DownloadStepURL:
		return b.downloadStepURL(c, st)
	case models.DownloadStepQuality:
		return b.downloadStepQuality(c, st)
	case models.DownloadStepChooseAction:
		return b.downloadStepChoose(c, st)
	}
	return fmt.Errorf("download: unknown step %d", st.Step)
}

func (b *Bot) downloadStepURL(c *chatContext, st *models.DownloadState) error {
	url, ok := textOf(c)
	if !ok || downloader.ValidateURL(url) != nil {
		b.replyKeep(c, "⚠️ Это не ссылка на YouTube. Отправьте корректную ссылку:")
		return nil
	}

	st.URL = url
	st.Step = models.DownloadStepQuality
	b.Sessions.SetSession(c.chatID, st)
	b.reply(c, "📺 Выберите качество:", CreateQualityKeyboard())
	return nil
}

// downloadStepQuality запускает загрузку. Ошибки внешнего процесса
// и хранилища завершают сцену.
func (b *Bot) downloadStepQuality(c *chatContext, st *models.DownloadState) error {
	quality, _ := textOf(c)
	if _, err := downloader.FormatFor(quality); err != nil {
		b.replyKeep(c, fmt.Sprintf("⚠️ Выберите одно из значений: %s.", strings.Join(downloader.Qualities(), ", ")))
		return nil
	}

	dir, err := b.Files.ChatDir(c.chatID)
	if err != nil {
		return err
	}

	b.reply(c, "⏳ Загружаю видео, это может занять несколько минут...", nil)

	res, err := b.Downloader.Download(c.ctx, dir, st.URL, quality)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			b.replyKeep(c, "⚠️ Некорректная ссылка или качество.")
			return nil
		}
		return err
	}

	folder := &dbmodels.Folder{
		ChatID:      c.chatID,
		Name:        res.Base,
		Description: "Видео: " + st.URL,
	}
	if err := b.saveVideo(c, folder, res.Path); err != nil {
		// на файл не ссылается ни одна строка, держать его незачем
		if _, rmErr := b.Files.RemoveFiles(c.chatID, []string{res.Path}); rmErr != nil {
			c.log.Warn(c.ctx, "orphaned video not removed", "path", res.Path, "error", rmErr)
		}
		return err
	}
	c.log.Info(c.ctx, "video saved", "folder_id", folder.ID, "path", res.Path, "size", res.Size)

	st.FilePath = res.Path
	st.FolderID = folder.ID
	st.Step = models.DownloadStepChooseAction
	b.Sessions.SetSession(c.chatID, st)
	b.reply(c, fmt.Sprintf("✅ Видео сохранено в папку «%s» (%.2f МБ).\nЧто сделать дальше?",
		folder.Name, float64(res.Size)/(1024*1024)), CreateDeliveryKeyboard())
	return nil
}

func (b *Bot) saveVideo(c *chatContext, folder *dbmodels.Folder, path string) error {
	if err := b.Repo.CreateFolder(c.ctx, folder); err != nil {
		return err
	}
	return b.Repo.AddFile(c.ctx, &dbmodels.FolderFile{
		FolderID: folder.ID,
		FilePath: path,
		FileType: dbmodels.FileTypeVideo,
	})
}

func (b *Bot) downloadStepChoose(c *chatContext, st *models.DownloadState) error {
	action, _ := textOf(c)
	switch action {
	case BtnSendChat:
		b.Sessions.ClearSession(c.chatID)
		if _, err := b.Delivery.Deliver(c.ctx, c.chatID, st.FilePath); err != nil {
			return err
		}
	case BtnKeepSaved:
		b.Sessions.ClearSession(c.chatID)
		b.reply(c, "📁 Видео осталось в папке.", nil)
	default:
		b.replyKeep(c, fmt.Sprintf("⚠️ Выберите «%s» или «%s».", BtnSendChat, BtnKeepSaved))
	}
	return nil
}
