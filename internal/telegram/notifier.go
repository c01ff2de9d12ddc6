// Package telegram forwards notifications to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"fincore/internal/core"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends each notification as an HTML message to one chat.
type Notifier struct {
	bot     sender
	chatID  int64
	baseURL string
}

// New logs in with the bot token. baseURL, when set, turns deep links into
// absolute links in the message.
func New(token string, chatID int64, baseURL string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	slog.Info("Telegram bot authorized", "account", bot.Self.UserName)
	return &Notifier{bot: bot, chatID: chatID, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// PublishNotification implements notify.Publisher.
func (t *Notifier) PublishNotification(ctx context.Context, n core.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, Format(n, t.baseURL))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message for %s: %w", n.ID, err)
	}
	slog.DebugContext(ctx, "Notification sent to Telegram", "id", n.ID, "chat_id", t.chatID)
	return nil
}

var severityIcons = map[core.Severity]string{
	core.SeverityInfo:    "ℹ️",
	core.SeverityWarning: "⚠️",
	core.SeverityError:   "🚨",
	core.SeveritySuccess: "✅",
}

// Format renders a notification as Telegram HTML.
func Format(n core.Notification, baseURL string) string {
	var b strings.Builder
	if icon, ok := severityIcons[n.Severity]; ok {
		b.WriteString(icon)
		b.WriteString(" ")
	}
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(n.Title))
	b.WriteString("</b>")
	if n.Message != "" {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(n.Message))
	}
	if n.DeepLink != "" && baseURL != "" {
		fmt.Fprintf(&b, "\n<a href=\"%s\">Open</a>", html.EscapeString(baseURL+n.DeepLink))
	}
	return b.String()
}
