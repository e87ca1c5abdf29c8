package bot

import (
	"FolderVaultBot/pkg/models"
	"strings"
)

const (
	CommandStart         = "start"
	CommandHelp          = "help"
	CommandCancel        = "cancel"
	CommandCreateFolder  = "crfolders"
	CommandOpenFolder    = "openfolder"
	CommandListFolders   = "listfolders"
	CommandSearchFolders = "searchfolders"
	CommandAddFiles      = "addfiles"
	CommandDownload      = "downloadyoutube"
)

const helpText = `👋 Добро пожаловать в FolderVaultBot!

📁 Храните файлы, фото, видео и заметки в папках.

✨ Команды:
• /CrFolders — создать папку
• /OpenFolder — открыть папку
• /ListFolders — список папок
• /SearchFolders — поиск по папкам
• /AddFiles — добавить элементы в папку
• /DownloadYouTube — скачать видео с YouTube
• /cancel — отменить текущее действие

🔐 На папку можно поставить пароль.
⏳ Сообщения бота удаляются через 10 минут.`

// handleMessage: команда всегда сбрасывает сцену и запускает свою,
// «Отмена» выходит из любой сцены, остальное уходит активной сцене.
func (b *Bot) handleMessage(c *chatContext) error {
	if c.msg.IsCommand() {
		return b.handleCommand(c, strings.ToLower(c.msg.Command()))
	}

	text := strings.TrimSpace(c.msg.Text)
	if text == BtnCancel {
		return b.cancelScene(c)
	}

	session, ok := b.Sessions.GetSession(c.chatID)
	if !ok {
		b.reply(c, "ℹ️ Используйте /help, чтобы увидеть список команд.", nil)
		return nil
	}

	switch state := session.State.(type) {
	case *models.CreateFolderState:
		return b.stepCreateFolder(c, state)
	case *models.OpenFolderState:
		return b.stepOpenFolder(c)
	case *models.SearchFoldersState:
		return b.stepSearchFolders(c)
	case *models.AddFilesState:
		return b.stepAddFiles(c, state)
	case *models.PasswordGateState:
		return b.stepPasswordGate(c, state)
	case *models.DownloadState:
		return b.stepDownload(c, state)
	}

	c.log.Warn(c.ctx, "unknown scene state, resetting", "scene", session.State.Scene())
	b.Sessions.ClearSession(c.chatID)
	return nil
}

func (b *Bot) handleCommand(c *chatContext, command string) error {
	c.log.Info(c.ctx, "command received", "command", command)
	b.Sessions.ClearSession(c.chatID)

	switch command {
	case CommandStart, CommandHelp:
		b.reply(c, helpText, nil)
		return nil
	case CommandCancel:
		b.reply(c, "❌ Действие отменено.", nil)
		return nil
	case CommandCreateFolder:
		return b.enterCreateFolder(c)
	case CommandOpenFolder:
		return b.enterOpenFolder(c)
	case CommandListFolders:
		return b.listFolders(c)
	case CommandSearchFolders:
		return b.enterSearchFolders(c)
	case CommandAddFiles:
		b.enterAddFiles(c)
		return nil
	case CommandDownload:
		return b.enterDownload(c)
	default:
		b.reply(c, "❓ Неизвестная команда. Используйте /help.", nil)
		return nil
	}
}

func (b *Bot) cancelScene(c *chatContext) error {
	b.Sessions.ClearSession(c.chatID)
	b.reply(c, "❌ Действие отменено.", nil)
	return nil
}

// textOf возвращает текст сообщения без пробелов по краям, если это текст.
func textOf(c *chatContext) (string, bool) {
	if c.msg == nil || c.msg.Text == "" {
		return "", false
	}
	return strings.TrimSpace(c.msg.Text), true
}
