package bot

import (
	dbmodels "FolderVaultBot/internal/database/models"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const mediaGroupLimit = 10

// folderCaption собирает подпись карточки папки в MarkdownV2.
func (b *Bot) folderCaption(folder *dbmodels.Folder) string {
	esc := escapeMarkdown

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📁 *%s*\n", esc(folder.Name)))
	if folder.Description != "" {
		sb.WriteString(fmt.Sprintf("📝 Описание: %s\n", esc(folder.Description)))
	}
	if folder.Tags != "" {
		sb.WriteString(fmt.Sprintf("🏷 Теги: %s\n", esc(folder.Tags)))
	}
	created := folder.CreatedAt.In(b.Settings.Location).Format("02.01.2006 15:04")
	sb.WriteString(fmt.Sprintf("🕒 Создана: %s", esc(created)))

	return truncateMarkdown(sb.String(), b.Settings.CaptionLimit)
}

// escapeMarkdown экранирует текст для MarkdownV2, включая обратный слэш.
func escapeMarkdown(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, strings.ReplaceAll(s, `\`, `\\`))
}

// truncateMarkdown обрезает уже экранированный текст, не оставляя
// висящий обратный слэш, и добавляет экранированное многоточие.
func truncateMarkdown(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	r = r[:max]
	// нечётное число слэшей в конце экранирует многоточие
	slashes := 0
	for i := len(r) - 1; i >= 0 && r[i] == '\\'; i-- {
		slashes++
	}
	if slashes%2 == 1 {
		r = r[:len(r)-1]
	}
	return string(r) + `\.\.\.`
}

// revealFolder показывает карточку папки с кнопками, затем фото и видео
// пачками, затем остальные элементы по одному.
func (b *Bot) revealFolder(c *chatContext, folder *dbmodels.Folder) error {
	files, err := b.Repo.ListFiles(c.ctx, folder.ID)
	if err != nil {
		return err
	}

	caption := b.folderCaption(folder)
	buttons := CreateFolderActionsKeyboard(folder.ID)

	if folder.CoverFilePath != "" && fileExists(folder.CoverFilePath) {
		photo := tgbotapi.NewPhoto(c.chatID, tgbotapi.FilePath(folder.CoverFilePath))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdownV2
		photo.ReplyMarkup = buttons
		if _, err := b.send(c, photo, b.Settings.MessageTTL); err != nil {
			return err
		}
	} else {
		msg := tgbotapi.NewMessage(c.chatID, caption)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = buttons
		if _, err := b.send(c, msg, b.Settings.MessageTTL); err != nil {
			return err
		}
	}

	var visual []dbmodels.FolderFile
	for _, f := range files {
		if f.FileType.IsVisual() && fileExists(f.FilePath) {
			visual = append(visual, f)
		}
	}
	for start := 0; start < len(visual); start += mediaGroupLimit {
		end := start + mediaGroupLimit
		if end > len(visual) {
			end = len(visual)
		}
		b.sendVisualBatch(c, visual[start:end])
	}

	for _, f := range files {
		switch {
		case f.FileType == dbmodels.FileTypeText:
			text := truncate(f.TextContent, b.Settings.CaptionLimit)
			if text == "" {
				text = "(пустой текст)"
			}
			msg := tgbotapi.NewMessage(c.chatID, "📜 "+escapeMarkdown(text))
			msg.ParseMode = tgbotapi.ModeMarkdownV2
			_, _ = b.send(c, msg, b.Settings.MessageTTL)
		case f.FileType.IsVisual():
		case !fileExists(f.FilePath):
			c.log.Warn(c.ctx, "folder item missing on disk", "file_id", f.ID, "path", f.FilePath)
		default:
			if cfg := fileMessage(c.chatID, f); cfg != nil {
				_, _ = b.send(c, cfg, b.Settings.MessageTTL)
			}
		}
	}

	c.log.Info(c.ctx, "folder revealed", "folder_id", folder.ID, "items", len(files))
	return nil
}

// sendVisualBatch отправляет до 10 фото и видео одной группой. Группа
// из одного элемента не разрешена транспортом, такой элемент уходит
// отдельным сообщением.
func (b *Bot) sendVisualBatch(c *chatContext, batch []dbmodels.FolderFile) {
	if len(batch) == 1 {
		f := batch[0]
		_, _ = b.send(c, fileMessage(c.chatID, f), b.Settings.MediaGroupTTL)
		return
	}

	media := make([]interface{}, 0, len(batch))
	for _, f := range batch {
		if f.FileType == dbmodels.FileTypeVideo {
			media = append(media, tgbotapi.NewInputMediaVideo(tgbotapi.FilePath(f.FilePath)))
		} else {
			media = append(media, tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(f.FilePath)))
		}
	}
	if err := b.sendMediaGroup(c, media); err != nil {
		c.log.Error(c.ctx, "media group not sent", "size", len(media), "error", err)
	}
}

// fileMessage строит сообщение под тип элемента.
func fileMessage(chatID int64, f dbmodels.FolderFile) tgbotapi.Chattable {
	file := tgbotapi.FilePath(f.FilePath)
	switch f.FileType {
	case dbmodels.FileTypePhoto:
		return tgbotapi.NewPhoto(chatID, file)
	case dbmodels.FileTypeVideo:
		return tgbotapi.NewVideo(chatID, file)
	case dbmodels.FileTypeAnimation:
		return tgbotapi.NewAnimation(chatID, file)
	case dbmodels.FileTypeAudio:
		return tgbotapi.NewAudio(chatID, file)
	case dbmodels.FileTypeVoice:
		return tgbotapi.NewVoice(chatID, file)
	case dbmodels.FileTypeSticker:
		return tgbotapi.NewSticker(chatID, file)
	case dbmodels.FileTypeDocument:
		return tgbotapi.NewDocument(chatID, file)
	}
	return nil
}

func fileExists(path string) bool {
	if path == "" || path == dbmodels.PendingPath {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
