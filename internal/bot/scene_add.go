package bot

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/pkg/models"
	"errors"
	"fmt"
)

// enterAddFiles начинает с выбора папки по имени.
func (b *Bot) enterAddFiles(c *chatContext) {
	b.Sessions.SetSession(c.chatID, &models.AddFilesState{Step: models.AddStepFolder})
	b.reply(c, "📂 Введите название папки, в которую добавить элементы:", CreateCancelKeyboard())
}

// enterAddFilesTo пропускает выбор папки (кнопка «Добавить»).
func (b *Bot) enterAddFilesTo(c *chatContext, folderID uint) {
	b.Sessions.SetSession(c.chatID, &models.AddFilesState{Step: models.AddStepFiles, FolderID: folderID})
	b.reply(c, fmt.Sprintf("📎 Отправьте файлы, фото, видео или текст. Когда закончите, нажмите «%s».", BtnDone), CreateCollectKeyboard())
}

func (b *Bot) stepAddFiles(c *chatContext, st *models.AddFilesState) error {
	if st.Step == models.AddStepFolder {
		return b.addStepFolder(c, st)
	}

	if text, ok := textOf(c); ok && text == BtnDone {
		if len(st.Items) == 0 {
			b.replyKeep(c, "⚠️ Сначала добавьте хотя бы один элемент.")
			return nil
		}
		return b.saveAddedItems(c, st)
	}

	items, err := b.collect(c, st.Items)
	if err != nil {
		return err
	}
	st.Items = items
	b.Sessions.SetSession(c.chatID, st)
	return nil
}

func (b *Bot) addStepFolder(c *chatContext, st *models.AddFilesState) error {
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

	b.enterAddFilesTo(c, folder.ID)
	return nil
}

func (b *Bot) saveAddedItems(c *chatContext, st *models.AddFilesState) error {
	b.Sessions.ClearSession(c.chatID)

	// папку могли удалить, пока собирались элементы
	if _, err := b.Repo.FindByID(c.ctx, c.chatID, st.FolderID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			b.reply(c, b.userMessage(err), nil)
			return nil
		}
		return err
	}

	dir, err := b.Files.ChatDir(c.chatID)
	if err != nil {
		return err
	}

	stored, err := b.Ingest.StoreItems(c.ctx, b.Repo, st.FolderID, dir, st.Items)
	if err != nil {
		b.reply(c, fmt.Sprintf("⚠️ Сохранено %d из %d элементов.\n%s", stored, len(st.Items), b.userMessage(err)), nil)
		return nil
	}

	c.log.Info(c.ctx, "items added", "folder_id", st.FolderID, "count", stored)
	b.reply(c, fmt.Sprintf("✅ Добавлено элементов: %d.", stored), nil)
	return nil
}
