package bot

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/pkg/models"
	"errors"
	"fmt"
	"strings"
)

func (b *Bot) enterOpenFolder(c *chatContext) error {
	b.Sessions.SetSession(c.chatID, &models.OpenFolderState{})
	b.reply(c, "📂 Введите название папки:", CreateCancelKeyboard())
	return nil
}

func (b *Bot) stepOpenFolder(c *chatContext) error {
	name, ok := textOf(c)
	if !ok {
		b.replyKeep(c, "📂 Введите название папки текстом.")
		return nil
	}

	folder, err := b.Repo.FindByName(c.ctx, c.chatID, name)
	if errors.Is(err, common.ErrNotFound) {
		b.replyKeep(c, "⚠️ Папка не найдена. Попробуйте другое название:")
		return nil
	}
	if err != nil {
		return err
	}

	if folder.HasPassword() {
		b.enterPasswordGate(c, models.GateOpen, folder.ID)
		return nil
	}

	b.Sessions.ClearSession(c.chatID)
	return b.revealFolder(c, folder)
}

func (b *Bot) listFolders(c *chatContext) error {
	folders, err := b.Repo.ListByChat(c.ctx, c.chatID)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		b.reply(c, "📭 У вас пока нет папок. Создайте первую: /CrFolders", nil)
		return nil
	}

	var sb strings.Builder
	sb.WriteString("📋 Ваши папки:\n")
	for _, f := range folders {
		lock := ""
		if f.HasPassword() {
			lock = " 🔐"
		}
		sb.WriteString(fmt.Sprintf("\n📁 %s%s", f.Name, lock))
	}
	b.reply(c, sb.String(), nil)
	return nil
}

func (b *Bot) enterSearchFolders(c *chatContext) error {
	b.Sessions.SetSession(c.chatID, &models.SearchFoldersState{})
	b.reply(c, "🔍 Введите текст для поиска:", CreateCancelKeyboard())
	return nil
}

func (b *Bot) stepSearchFolders(c *chatContext) error {
	query, ok := textOf(c)
	if !ok {
		b.replyKeep(c, "🔍 Введите запрос текстом.")
		return nil
	}
	b.Sessions.ClearSession(c.chatID)

	folders, err := b.Repo.Search(c.ctx, c.chatID, query)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		b.reply(c, "🔍 Ничего не найдено.", nil)
		return nil
	}

	var sb strings.Builder
	sb.WriteString("🔍 Результаты поиска:\n")
	for _, f := range folders {
		sb.WriteString("\n📁 " + f.Name)
	}
	b.reply(c, sb.String(), nil)
	return nil
}
