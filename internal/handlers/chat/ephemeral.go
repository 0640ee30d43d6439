package handlers

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/event"
)

const deleteMessageEventType = "delete_message"

// ephemeralLifetime is how long short service notices stay in the chat.
const ephemeralLifetime = 5 * time.Second

type deleteMessageEvent struct {
	*event.Base
	chatID    int64
	messageID int
	dueAt     time.Time
}

func newDeleteMessageEvent(chatID int64, messageID int, delay time.Duration) *deleteMessageEvent {
	dueAt := time.Now().Add(delay)
	return &deleteMessageEvent{
		Base:      event.CreateBase(deleteMessageEventType, dueAt.Add(time.Hour)),
		chatID:    chatID,
		messageID: messageID,
		dueAt:     dueAt,
	}
}

type messageDeleter interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// SubscribeEphemeralCleanup wires delayed message deletion into the event
// worker. Events that are not due yet stay queued until their time comes.
func SubscribeEphemeralCleanup(deleter messageDeleter) {
	event.Subscribe(deleteMessageEventType, func(e event.Queueable) {
		delEvent, ok := e.(*deleteMessageEvent)
		if !ok {
			e.Drop()
			return
		}
		if time.Now().Before(delEvent.dueAt) {
			return
		}
		if err := deleter.DeleteMessage(context.Background(), delEvent.chatID, delEvent.messageID); err != nil {
			log.WithField("error", err.Error()).Debug("cant delete ephemeral message")
		}
		delEvent.Process()
	})
}
