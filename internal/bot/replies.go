package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// send отправляет сообщение и планирует его удаление через ttl.
// Все ответы бота проходят через эту функцию.
func (b *Bot) send(c *chatContext, msg tgbotapi.Chattable, ttl time.Duration) (tgbotapi.Message, error) {
	sent, err := b.API.Send(msg)
	if err != nil {
		c.log.Error(c.ctx, "send message failed", "error", err)
		return tgbotapi.Message{}, fmt.Errorf("send message failed: %w", err)
	}
	b.Expirer.ScheduleDelete(c.chatID, sent.MessageID, ttl)
	return sent, nil
}

// reply: текстовый ответ с клавиатурой. Пустая клавиатура убирает
// предыдущую.
func (b *Bot) reply(c *chatContext, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(c.chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	} else {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	_, _ = b.send(c, msg, b.Settings.MessageTTL)
}

// replyKeep отвечает, не трогая текущую клавиатуру.
func (b *Bot) replyKeep(c *chatContext, text string) {
	_, _ = b.send(c, tgbotapi.NewMessage(c.chatID, text), b.Settings.MessageTTL)
}

// sendMediaGroup отправляет пачку медиа, каждое сообщение живёт mediaTTL.
func (b *Bot) sendMediaGroup(c *chatContext, media []interface{}) error {
	msgs, err := b.API.SendMediaGroup(tgbotapi.NewMediaGroup(c.chatID, media))
	if err != nil {
		return fmt.Errorf("send media group failed: %w", err)
	}
	for _, m := range msgs {
		b.Expirer.ScheduleDelete(c.chatID, m.MessageID, b.Settings.MediaGroupTTL)
	}
	return nil
}

// deleteIncoming удаляет сообщение пользователя, например с паролем.
func (b *Bot) deleteIncoming(c *chatContext) {
	if c.msg == nil {
		return
	}
	if _, err := b.API.Request(tgbotapi.NewDeleteMessage(c.chatID, c.msg.MessageID)); err != nil {
		c.log.Warn(c.ctx, "delete incoming message failed", "error", err)
	}
}
