package bot

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/pkg/models"
	"errors"
)

func (b *Bot) enterPasswordGate(c *chatContext, action models.GateAction, folderID uint) {
	b.Sessions.SetSession(c.chatID, &models.PasswordGateState{Action: action, FolderID: folderID})
	b.reply(c, "🔐 Папка защищена паролем. Введите пароль:", CreateCancelKeyboard())
}

// stepPasswordGate проверяет пароль и выполняет отложенное действие.
// Неверный пароль оставляет сцену на месте, число попыток не ограничено.
func (b *Bot) stepPasswordGate(c *chatContext, st *models.PasswordGateState) error {
	secret, ok := textOf(c)
	if !ok {
		b.replyKeep(c, "🔑 Введите пароль текстом.")
		return nil
	}

	folder, err := b.Repo.FindByID(c.ctx, c.chatID, st.FolderID)
	if errors.Is(err, common.ErrNotFound) {
		b.Sessions.ClearSession(c.chatID)
		b.reply(c, b.userMessage(err), nil)
		return nil
	}
	if err != nil {
		return err
	}

	b.deleteIncoming(c)
	if !b.Hasher.Verify(secret, folder.PasswordHash) {
		c.log.Info(c.ctx, "wrong folder password", "folder_id", folder.ID)
		b.replyKeep(c, "⚠️ Неверный пароль. Попробуйте ещё раз:")
		return nil
	}

	b.Sessions.ClearSession(c.chatID)
	switch st.Action {
	case models.GateDelete:
		return b.deleteFolder(c, folder)
	default:
		return b.revealFolder(c, folder)
	}
}
