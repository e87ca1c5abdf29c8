package bot

import (
	"FolderVaultBot/internal/common"
	dbmodels "FolderVaultBot/internal/database/models"
	"FolderVaultBot/internal/filestore"
	"FolderVaultBot/internal/password"
	"FolderVaultBot/pkg/models"
	"errors"
	"fmt"
)

func (b *Bot) enterCreateFolder(c *chatContext) error {
	b.Sessions.SetSession(c.chatID, &models.CreateFolderState{Step: models.CreateStepName})
	b.reply(c, "📁 Введите название новой папки:", CreateCancelKeyboard())
	return nil
}

func (b *Bot) stepCreateFolder(c *chatContext, st *models.CreateFolderState) error {
	switch st.Step {
	case models.CreateStepName:
		return b.createStepName(c, st)
	case models.CreateStepFiles:
		return b.createStepFiles(c, st)
	case models.CreateStepDescription:
		return b.createStepDescription(c, st)
	case models.CreateStepTags:
		return b.createStepTags(c, st)
	case models.CreateStepAskPassword:
		return b.createStepAskPassword(c, st)
	case models.CreateStepSetPassword:
		return b.createStepSetPassword(c, st)
	case models.CreateStepCover:
		return b.createStepCover(c, st)
	}
	return fmt.Errorf("create folder: unknown step %d", st.Step)
}

func (b *Bot) createStepName(c *chatContext, st *models.CreateFolderState) error {
	name, ok := textOf(c)
	if !ok {
		b.replyKeep(c, "✏️ Введите название папки текстом.")
		return nil
	}
	if err := validateFolderName(name); err != nil {
		b.replyKeep(c, fmt.Sprintf("⚠️ Название может содержать только буквы, цифры, _, - и пробелы (до %d символов).", MaxFolderNameLength))
		return nil
	}

	exists, err := b.Repo.NameExists(c.ctx, c.chatID, name)
	if err != nil {
		return err
	}
	if exists {
		b.replyKeep(c, "⚠️ Папка с таким названием уже существует. Введите другое название:")
		return nil
	}

	st.Name = name
	st.Step = models.CreateStepFiles
	b.Sessions.SetSession(c.chatID, st)
	b.reply(c, fmt.Sprintf("📎 Отправьте файлы, фото, видео или текст. Когда закончите, нажмите «%s».", BtnDone), CreateCollectKeyboard())
	return nil
}

func (b *Bot) createStepFiles(c *chatContext, st *models.CreateFolderState) error {
	if text, ok := textOf(c); ok && text == BtnDone {
		if len(st.Items) == 0 {
			b.replyKeep(c, "⚠️ Сначала добавьте хотя бы один элемент.")
			return nil
		}
		st.Step = models.CreateStepDescription
		b.Sessions.SetSession(c.chatID, st)
		b.reply(c, fmt.Sprintf("📝 Введите описание папки или нажмите «%s»:", BtnSkip), CreateSkipKeyboard())
		return nil
	}

	items, err := b.collect(c, st.Items)
	if err != nil {
		return err
	}
	st.Items = items
	b.Sessions.SetSession(c.chatID, st)
	return nil
}

func (b *Bot) createStepDescription(c *chatContext, st *models.CreateFolderState) error {
	text, ok := textOf(c)
	if !ok {
		b.replyKeep(c, fmt.Sprintf("📝 Введите описание текстом или нажмите «%s».", BtnSkip))
		return nil
	}
	if text != BtnSkip {
		st.Description = clip(text, MaxDescriptionLength)
	}

	st.Step = models.CreateStepTags
	b.Sessions.SetSession(c.chatID, st)
	b.reply(c, fmt.Sprintf("🏷 Введите теги через запятую или нажмите «%s»:", BtnSkip), CreateSkipKeyboard())
	return nil
}

func (b *Bot) createStepTags(c *chatContext, st *models.CreateFolderState) error {
	text, ok := textOf(c)
	if !ok {
		b.replyKeep(c, fmt.Sprintf("🏷 Введите теги текстом или нажмите «%s».", BtnSkip))
		return nil
	}
	if text != BtnSkip {
		st.Tags = clip(text, MaxTagsLength)
	}

	st.Step = models.CreateStepAskPassword
	b.Sessions.SetSession(c.chatID, st)
	b.reply(c, "🔐 Установить пароль на папку?", CreateYesNoKeyboard())
	return nil
}

func (b *Bot) createStepAskPassword(c *chatContext, st *models.CreateFolderState) error {
	text, _ := textOf(c)
	switch text {
	case BtnYes:
		st.Step = models.CreateStepSetPassword
		b.Sessions.SetSession(c.chatID, st)
		b.reply(c, fmt.Sprintf("🔑 Введите пароль (не менее %d символов):", password.MinLength), CreateCancelKeyboard())
	case BtnNo:
		b.askCover(c, st)
	default:
		b.replyKeep(c, fmt.Sprintf("⚠️ Выберите «%s» или «%s».", BtnYes, BtnNo))
	}
	return nil
}

func (b *Bot) createStepSetPassword(c *chatContext, st *models.CreateFolderState) error {
	secret, ok := textOf(c)
	if !ok || password.Validate(secret) != nil {
		b.replyKeep(c, fmt.Sprintf("⚠️ Пароль должен содержать от %d до %d символов.", password.MinLength, password.MaxLength))
		return nil
	}

	hash, err := b.Hasher.Hash(secret)
	if err != nil {
		return err
	}
	// пароль не должен оставаться в истории чата
	b.deleteIncoming(c)

	st.PasswordHash = hash
	b.askCover(c, st)
	return nil
}

func (b *Bot) askCover(c *chatContext, st *models.CreateFolderState) {
	st.Step = models.CreateStepCover
	b.Sessions.SetSession(c.chatID, st)
	b.reply(c, fmt.Sprintf("🖼 Отправьте фото для обложки или нажмите «%s»:", BtnSkip), CreateSkipKeyboard())
}

func (b *Bot) createStepCover(c *chatContext, st *models.CreateFolderState) error {
	if text, ok := textOf(c); ok && text == BtnSkip {
		return b.saveNewFolder(c, st)
	}
	if len(c.msg.Photo) == 0 {
		b.replyKeep(c, fmt.Sprintf("🖼 Отправьте фото или нажмите «%s».", BtnSkip))
		return nil
	}

	att, err := extractAttachment(c.msg, b.Settings.MaxTextLength)
	if err != nil {
		return err
	}
	if _, err := b.Ingest.CheckSize(c.ctx, att.Ref); err != nil {
		switch {
		case errors.Is(err, common.ErrTooLarge):
			b.replyKeep(c, b.tooLargeText())
			return nil
		case errors.Is(err, common.ErrTransferFailed):
			c.log.Warn(c.ctx, "cover size check failed", "file_id", att.Ref.FileID, "error", err)
			b.replyKeep(c, "❌ Не удалось получить файл. Отправьте его ещё раз.")
			return nil
		}
		return err
	}

	st.Cover = &att.Ref
	return b.saveNewFolder(c, st)
}

// saveNewFolder пишет папку, затем её элементы и обложку. Пакет элементов
// не атомарен: при сбое уже сохранённые элементы остаются.
func (b *Bot) saveNewFolder(c *chatContext, st *models.CreateFolderState) error {
	b.Sessions.ClearSession(c.chatID)

	folder := &dbmodels.Folder{
		ChatID:       c.chatID,
		Name:         st.Name,
		Description:  st.Description,
		Tags:         st.Tags,
		PasswordHash: st.PasswordHash,
	}
	if err := b.Repo.CreateFolder(c.ctx, folder); err != nil {
		if errors.Is(err, common.ErrDuplicateName) {
			b.reply(c, fmt.Sprintf("⚠️ Папка «%s» уже существует.", st.Name), nil)
			return nil
		}
		return err
	}
	c.log.Info(c.ctx, "folder created", "folder_id", folder.ID, "items", len(st.Items))

	dir, err := b.Files.ChatDir(c.chatID)
	if err != nil {
		return err
	}

	stored, err := b.Ingest.StoreItems(c.ctx, b.Repo, folder.ID, dir, st.Items)
	if err != nil {
		b.reply(c, fmt.Sprintf("⚠️ Папка «%s» создана, но сохранено %d из %d элементов.\n%s",
			st.Name, stored, len(st.Items), b.userMessage(err)), nil)
		return nil
	}

	if st.Cover != nil {
		if err := b.storeCover(c, folder.ID, dir, *st.Cover); err != nil {
			c.log.Error(c.ctx, "cover not stored", "folder_id", folder.ID, "error", err)
			b.reply(c, fmt.Sprintf("⚠️ Папка «%s» создана, но обложку сохранить не удалось.", st.Name), nil)
			return nil
		}
	}

	b.reply(c, fmt.Sprintf("✅ Папка «%s» создана! Элементов: %d.", st.Name, stored), nil)
	return nil
}

func (b *Bot) storeCover(c *chatContext, folderID uint, dir string, ref models.FileRef) error {
	path, err := b.Ingest.FetchAndStore(c.ctx, ref, dir, filestore.CoverBase(folderID), dbmodels.FileTypePhoto)
	if err != nil {
		return err
	}
	return b.Repo.SetCoverPath(c.ctx, folderID, path)
}
