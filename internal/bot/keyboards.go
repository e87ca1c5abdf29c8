package bot

import (
	"FolderVaultBot/internal/downloader"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	BtnCancel    = "❌ Отмена"
	BtnDone      = "✅ Готово"
	BtnSkip      = "⏭ Пропустить"
	BtnYes       = "Да"
	BtnNo        = "Нет"
	BtnSendChat  = "📤 Отправить в чат"
	BtnKeepSaved = "📁 Оставить в папке"
)

// Префиксы callback-данных: <префикс><id папки>.
const (
	CallbackDetails = "DETAILS_"
	CallbackAdd     = "ADD_"
	CallbackShare   = "SHARE_"
	CallbackDelete  = "DELETE_"
)

func CreateCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func CreateCollectKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnDone),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func CreateSkipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSkip),
			tgbotapi.NewKeyboardButton(BtnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func CreateYesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnYes),
			tgbotapi.NewKeyboardButton(BtnNo),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func CreateQualityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, q := range downloader.Qualities() {
		row = append(row, tgbotapi.NewKeyboardButton(q))
	}
	kb := tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func CreateDeliveryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSendChat),
			tgbotapi.NewKeyboardButton(BtnKeepSaved),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// CreateFolderActionsKeyboard: кнопки под карточкой папки.
func CreateFolderActionsKeyboard(folderID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Подробнее", fmt.Sprintf("%s%d", CallbackDetails, folderID)),
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", fmt.Sprintf("%s%d", CallbackAdd, folderID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔗 Поделиться", fmt.Sprintf("%s%d", CallbackShare, folderID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("%s%d", CallbackDelete, folderID)),
		),
	)
}

func CreateShareKeyboard(text string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.InlineKeyboardButton{Text: "🔗 Поделиться", SwitchInlineQueryCurrentChat: &text},
		),
	)
}
