package bot

import (
	"FolderVaultBot/internal/common"
	"errors"
)

var errPanic = errors.New("panic in handler")

// userMessage переводит ошибку в текст для пользователя.
func (b *Bot) userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrDuplicateName):
		return "⚠️ Папка с таким названием уже существует."
	case errors.Is(err, common.ErrNotFound):
		return "⚠️ Папка не найдена."
	case errors.Is(err, common.ErrUnauthorized):
		return "⚠️ Неверный пароль."
	case errors.Is(err, common.ErrTooLarge):
		return b.tooLargeText()
	case errors.Is(err, common.ErrUnsupported):
		return "⚠️ Этот тип сообщения не поддерживается."
	case errors.Is(err, common.ErrValidation):
		return "⚠️ Некорректный ввод."
	case errors.Is(err, common.ErrDownloadProducedNothing):
		return "❌ Загрузчик завершился, но файл не найден."
	case errors.Is(err, common.ErrTransferFailed):
		return "❌ Не удалось передать файл. Попробуйте позже."
	case errors.Is(err, common.ErrExternalService):
		return "❌ Внешний сервис недоступен. Попробуйте позже."
	case errors.Is(err, common.ErrStorage):
		return "❌ Ошибка хранилища. Попробуйте позже."
	default:
		return "❌ Произошла непредвиденная ошибка. Попробуйте позже."
	}
}

// fail сообщает об ошибке, которую не обработал шаг сцены, и выходит
// из сцены.
func (b *Bot) fail(c *chatContext, err error) {
	c.log.Error(c.ctx, "update failed", "error", err)
	b.Sessions.ClearSession(c.chatID)
	b.reply(c, b.userMessage(err), nil)
}
