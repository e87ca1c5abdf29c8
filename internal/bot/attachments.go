package bot

import (
	"FolderVaultBot/internal/common"
	dbmodels "FolderVaultBot/internal/database/models"
	"FolderVaultBot/pkg/models"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// extractAttachment определяет вид входящего сообщения. Текст проверяется
// на длину, анимированные стикеры не принимаются.
func extractAttachment(msg *tgbotapi.Message, maxText int) (models.Attachment, error) {
	switch {
	case msg.Document != nil:
		return media(dbmodels.FileTypeDocument, msg.Document.FileID, msg.Document.FileSize, msg.Document.MimeType), nil
	case len(msg.Photo) > 0:
		// последний размер самый большой
		p := msg.Photo[len(msg.Photo)-1]
		return media(dbmodels.FileTypePhoto, p.FileID, p.FileSize, "image/jpeg"), nil
	case msg.Video != nil:
		return media(dbmodels.FileTypeVideo, msg.Video.FileID, msg.Video.FileSize, msg.Video.MimeType), nil
	case msg.Animation != nil:
		return media(dbmodels.FileTypeAnimation, msg.Animation.FileID, msg.Animation.FileSize, msg.Animation.MimeType), nil
	case msg.Audio != nil:
		return media(dbmodels.FileTypeAudio, msg.Audio.FileID, msg.Audio.FileSize, msg.Audio.MimeType), nil
	case msg.Voice != nil:
		return media(dbmodels.FileTypeVoice, msg.Voice.FileID, msg.Voice.FileSize, msg.Voice.MimeType), nil
	case msg.Sticker != nil:
		if msg.Sticker.IsAnimated {
			return models.Attachment{}, fmt.Errorf("%w: animated sticker", common.ErrUnsupported)
		}
		return media(dbmodels.FileTypeSticker, msg.Sticker.FileID, msg.Sticker.FileSize, ""), nil
	case msg.Text != "":
		if err := validateText(msg.Text, maxText); err != nil {
			return models.Attachment{}, err
		}
		return models.TextAttachment(msg.Text), nil
	}
	return models.Attachment{}, fmt.Errorf("%w: empty message", common.ErrUnsupported)
}

func media(t dbmodels.FileType, fileID string, size int, mime string) models.Attachment {
	return models.Attachment{
		Type: t,
		Ref: models.FileRef{
			FileID:   fileID,
			Size:     int64(size),
			MimeType: mime,
		},
	}
}
