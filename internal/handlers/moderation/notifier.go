package handlers

import (
	"context"
	"fmt"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/db"
)

type EventKind string

const (
	EventModeration EventKind = "moderation"
	EventReport     EventKind = "report"
)

// LogEvent is a moderation or report occurrence rendered for the chat's log
// receiver.
type LogEvent struct {
	Kind      EventKind
	Actor     *api.User
	ChatID    int64
	ChatTitle string
	Violation string
	Action    string
	Text      string
	MediaPath string
}

type notifierStore interface {
	GetSettings(ctx context.Context, chatID int64) (*db.Settings, error)
}

type notifierTransport interface {
	SendMessage(ctx context.Context, chatID int64, text string) (*api.Message, error)
	SendPhoto(ctx context.Context, chatID int64, photoPath, caption string) error
}

// Notifier mirrors moderation events to whoever subscribed to the chat's logs.
// Delivery is best-effort: a chat with no subscriber is a normal state, and
// transport failures never propagate to the moderation action itself.
type Notifier struct {
	store     notifierStore
	transport notifierTransport
}

func NewNotifier(store notifierStore, transport notifierTransport) *Notifier {
	return &Notifier{
		store:     store,
		transport: transport,
	}
}

func (n *Notifier) Notify(ctx context.Context, event *LogEvent) {
	entry := log.WithField("object", "Notifier")

	settings, err := n.store.GetSettings(ctx, event.ChatID)
	if err != nil {
		entry.WithField("error", err.Error()).Error("cant load settings for log routing")
		return
	}
	if settings == nil || settings.LogReceiverID == 0 {
		return
	}

	text := renderLogEvent(event)
	if event.MediaPath != "" {
		if err := n.transport.SendPhoto(ctx, settings.LogReceiverID, event.MediaPath, text); err != nil {
			entry.WithField("error", err.Error()).Warn("cant deliver log with media")
		}
		return
	}
	if _, err := n.transport.SendMessage(ctx, settings.LogReceiverID, text); err != nil {
		entry.WithField("error", err.Error()).Warn("cant deliver log")
	}
}

func renderLogEvent(event *LogEvent) string {
	prefix := "🛡 <b>MODERATION</b>"
	if event.Kind == EventReport {
		prefix = "🚨 <b>REPORT</b>"
	}

	text := fmt.Sprintf(
		"%s\n👤 <b>Who:</b> %s (<code>%d</code>)\n🏠 <b>Where:</b> %s\n⚠️ <b>What:</b> %s\n🔨 <b>Action:</b> %s",
		prefix,
		bot.GetFullName(event.Actor),
		actorID(event.Actor),
		event.ChatTitle,
		event.Violation,
		event.Action,
	)
	if event.Text != "" {
		text += fmt.Sprintf("\n📝 <b>Text:</b> %s", event.Text)
	}
	return text
}

func actorID(user *api.User) int64 {
	if user == nil {
		return 0
	}
	return user.ID
}
