package bot

import (
	"FolderVaultBot/internal/common"
	dbmodels "FolderVaultBot/internal/database/models"
	"FolderVaultBot/pkg/models"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// parseCallback разбирает данные вида <ПРЕФИКС><id>.
func parseCallback(data string) (string, uint, error) {
	for _, prefix := range []string{CallbackDetails, CallbackAdd, CallbackShare, CallbackDelete} {
		if !strings.HasPrefix(data, prefix) {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 64)
		if err != nil || id == 0 {
			return "", 0, fmt.Errorf("%w: bad callback id %q", common.ErrValidation, data)
		}
		return prefix, uint(id), nil
	}
	return "", 0, fmt.Errorf("%w: unknown callback %q", common.ErrValidation, data)
}

// handleCallback обрабатывает кнопки под карточкой папки. На каждый
// callback отвечаем, иначе у пользователя крутятся часики.
func (b *Bot) handleCallback(c *chatContext, q *tgbotapi.CallbackQuery) error {
	if _, err := b.API.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		c.log.Warn(c.ctx, "answer callback failed", "error", err)
	}

	action, folderID, err := parseCallback(q.Data)
	if err != nil {
		c.log.Warn(c.ctx, "callback ignored", "data", q.Data, "error", err)
		return nil
	}
	c.log.Info(c.ctx, "callback received", "action", action, "folder_id", folderID)

	folder, err := b.Repo.FindByID(c.ctx, c.chatID, folderID)
	if errors.Is(err, common.ErrNotFound) {
		b.reply(c, b.userMessage(err), nil)
		return nil
	}
	if err != nil {
		return err
	}

	// кнопка прерывает текущую сцену, как и команда
	b.Sessions.ClearSession(c.chatID)

	switch action {
	case CallbackDetails:
		if folder.HasPassword() {
			b.enterPasswordGate(c, models.GateOpen, folder.ID)
			return nil
		}
		return b.revealFolder(c, folder)
	case CallbackAdd:
		b.enterAddFilesTo(c, folder.ID)
		return nil
	case CallbackShare:
		return b.shareFolder(c, folder)
	case CallbackDelete:
		if folder.HasPassword() {
			b.enterPasswordGate(c, models.GateDelete, folder.ID)
			return nil
		}
		return b.deleteFolder(c, folder)
	}
	return nil
}

func (b *Bot) shareFolder(c *chatContext, folder *dbmodels.Folder) error {
	text := fmt.Sprintf("📁 Папка: %s\n🤖 Бот: @%s", folder.Name, b.Settings.BotUsername)
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ReplyMarkup = CreateShareKeyboard(text)
	_, err := b.send(c, msg, b.Settings.MessageTTL)
	return err
}

// deleteFolder удаляет строки базы, затем файлы <id>_* и файлы, на которые
// ссылались строки (например, скачанные видео).
func (b *Bot) deleteFolder(c *chatContext, folder *dbmodels.Folder) error {
	files, err := b.Repo.ListFiles(c.ctx, folder.ID)
	if err != nil {
		return err
	}

	if err := b.Repo.DeleteFolder(c.ctx, folder.ID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			b.reply(c, b.userMessage(err), nil)
			return nil
		}
		return err
	}

	removed, err := b.Files.RemoveFolderArtifacts(c.chatID, folder.ID)
	if err != nil {
		c.log.Error(c.ctx, "folder artifacts not removed", "folder_id", folder.ID, "error", err)
	}

	var referenced []string
	for _, f := range files {
		if f.FilePath != "" && f.FilePath != dbmodels.PendingPath {
			referenced = append(referenced, f.FilePath)
		}
	}
	extra, err := b.Files.RemoveFiles(c.chatID, referenced)
	if err != nil {
		c.log.Warn(c.ctx, "referenced files not removed", "folder_id", folder.ID, "error", err)
	}

	c.log.Info(c.ctx, "folder deleted", "folder_id", folder.ID, "files_removed", len(removed)+len(extra))
	b.reply(c, fmt.Sprintf("🗑 Папка «%s» удалена.", folder.Name), nil)
	return nil
}
