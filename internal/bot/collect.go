package bot

import (
	"FolderVaultBot/internal/common"
	dbmodels "FolderVaultBot/internal/database/models"
	"FolderVaultBot/internal/ingest"
	"FolderVaultBot/pkg/models"
	"errors"
	"fmt"
)

var typeLabels = map[dbmodels.FileType]string{
	dbmodels.FileTypeDocument:  "документ",
	dbmodels.FileTypePhoto:     "фото",
	dbmodels.FileTypeVideo:     "видео",
	dbmodels.FileTypeAnimation: "анимация",
	dbmodels.FileTypeAudio:     "аудио",
	dbmodels.FileTypeVoice:     "голосовое",
	dbmodels.FileTypeSticker:   "стикер",
	dbmodels.FileTypeText:      "текст",
}

func isInputError(err error) bool {
	return errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrUnsupported)
}

func (b *Bot) tooLargeText() string {
	return fmt.Sprintf("⚠️ Файл больше %d МБ и не будет сохранён.", b.Ingest.MaxSize()/(1024*1024))
}

// collect добавляет входящий элемент в черновик. Ошибки ввода и слишком
// большие файлы сообщаются пользователю, шаг сцены не меняется.
func (b *Bot) collect(c *chatContext, items []models.Attachment) ([]models.Attachment, error) {
	att, err := extractAttachment(c.msg, b.Settings.MaxTextLength)
	if err != nil {
		if !isInputError(err) {
			return items, err
		}
		if errors.Is(err, common.ErrValidation) {
			b.replyKeep(c, fmt.Sprintf("⚠️ Текст длиннее %d символов.", b.Settings.MaxTextLength))
		} else {
			b.replyKeep(c, b.userMessage(err))
		}
		return items, nil
	}

	if !att.IsText() {
		if _, err := b.Ingest.CheckSize(c.ctx, att.Ref); err != nil {
			switch {
			case ingest.IsUserError(err):
				b.replyKeep(c, b.tooLargeText())
				return items, nil
			case errors.Is(err, common.ErrTransferFailed):
				c.log.Warn(c.ctx, "attachment size check failed", "file_id", att.Ref.FileID, "error", err)
				b.replyKeep(c, "❌ Не удалось получить файл. Отправьте его ещё раз.")
				return items, nil
			default:
				return items, err
			}
		}
	}

	items = append(items, att)
	b.replyKeep(c, fmt.Sprintf("✅ Добавлено: %s. Всего элементов: %d.", typeLabels[att.Type], len(items)))
	return items, nil
}
