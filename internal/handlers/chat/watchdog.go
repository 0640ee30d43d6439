package handlers

import (
	"context"
	"fmt"
	"regexp"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/adapters"
	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/config"
	"github.com/iamwavecut/guardbot/internal/db"
	"github.com/iamwavecut/guardbot/internal/event"
	moderation "github.com/iamwavecut/guardbot/internal/handlers/moderation"
	"github.com/iamwavecut/guardbot/internal/i18n"
	"github.com/iamwavecut/guardbot/internal/lexicon"
	"github.com/iamwavecut/guardbot/internal/observability"
)

var linkRegex = regexp.MustCompile(`(https?://|t\.me/|www\.)\S+`)

type watchdogStore interface {
	UpsertChatTitle(ctx context.Context, chatID int64, title string) error
	IncrementMessageCount(ctx context.Context, chatID, userID int64) error
	GetTopTalkers(ctx context.Context, chatID int64, limit int) ([]*db.TopTalker, error)
}

type watchdogTransport interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	RestrictUser(ctx context.Context, chatID, userID int64, until time.Time) error
	UnrestrictUser(ctx context.Context, chatID, userID int64) error
	UnbanUser(ctx context.Context, chatID, userID int64) error
	SendMessage(ctx context.Context, chatID int64, text string) (*api.Message, error)
	SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	GetChatMember(ctx context.Context, chatID, userID int64) (*api.ChatMember, error)
}

// Watchdog runs every group message through the moderation pipeline: chat
// bookkeeping, flood control, the link filter, the word lists and the media
// classifier, in that order. Admins are exempt from everything but bookkeeping.
type Watchdog struct {
	s          bot.Service
	store      watchdogStore
	transport  watchdogTransport
	enforcer   *moderation.Enforcer
	flood      *moderation.FloodMonitor
	reports    *moderation.ReportQueue
	checker    *lexicon.Checker
	classifier adapters.ImageClassifier
}

func NewWatchdog(
	s bot.Service,
	transport watchdogTransport,
	enforcer *moderation.Enforcer,
	flood *moderation.FloodMonitor,
	reports *moderation.ReportQueue,
	checker *lexicon.Checker,
	classifier adapters.ImageClassifier,
) *Watchdog {
	w := &Watchdog{
		s:          s,
		store:      s.GetDB(),
		transport:  transport,
		enforcer:   enforcer,
		flood:      flood,
		reports:    reports,
		checker:    checker,
		classifier: classifier,
	}
	w.getLogEntry().Debug("created new watchdog")
	return w
}

func (w *Watchdog) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	if u == nil {
		return false, errors.New("nil update")
	}
	msg := u.Message
	if msg == nil || chat == nil || user == nil {
		return true, nil
	}
	if user.ID == w.s.GetBot().Self.ID {
		return true, nil
	}

	if isServiceMessage(msg) {
		if err := w.transport.DeleteMessage(ctx, chat.ID, msg.MessageID); err != nil {
			w.getLogEntry().WithField("error", err.Error()).Debug("cant clean service message")
		}
		return true, nil
	}

	if msg.IsCommand() {
		return true, w.handleCommand(ctx, msg, chat, user)
	}

	if !chat.IsGroup() && !chat.IsSuperGroup() {
		return true, nil
	}

	return true, w.handleGroupMessage(ctx, msg, chat, user)
}

func (w *Watchdog) handleGroupMessage(ctx context.Context, msg *api.Message, chat *api.Chat, user *api.User) error {
	entry := w.getLogEntry().WithFields(log.Fields{"chat_id": chat.ID, "user_id": user.ID})
	lang := w.s.GetLanguage(ctx, chat.ID, user)

	if chat.Title != "" {
		if err := w.store.UpsertChatTitle(ctx, chat.ID, chat.Title); err != nil {
			return errors.WithMessage(err, "upsert chat title")
		}
	}
	if err := w.store.IncrementMessageCount(ctx, chat.ID, user.ID); err != nil {
		return errors.WithMessage(err, "increment message count")
	}

	isAdmin, err := w.isChatAdmin(ctx, chat.ID, user.ID)
	if err != nil {
		entry.WithField("error", err.Error()).Warn("cant resolve member role, treating as regular member")
	}

	if !isAdmin && w.flood.Observe(user.ID, time.Now()) {
		return w.handleFlood(ctx, chat, user, lang)
	}
	if isAdmin {
		return nil
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text != "" && linkRegex.MatchString(text) {
		if err := w.transport.DeleteMessage(ctx, chat.ID, msg.MessageID); err != nil {
			entry.WithField("error", err.Error()).Warn("cant delete link message")
		}
		w.sendEphemeral(ctx, chat.ID,
			fmt.Sprintf(i18n.Get("%s, links are not allowed here!", lang), bot.GetFullName(user)))
		return nil
	}

	if msg.Text != "" {
		if severity := w.checker.Check(msg.Text); severity != moderation.SeverityNone {
			_, err := w.enforcer.PunishViolation(ctx, msg, severity, "", lang)
			return err
		}
	}

	return w.screenMedia(ctx, msg, lang)
}

func (w *Watchdog) handleFlood(ctx context.Context, chat *api.Chat, user *api.User, lang string) error {
	entry := w.getLogEntry().WithFields(log.Fields{"chat_id": chat.ID, "user_id": user.ID})
	observability.RecordFloodTrigger()

	muteDuration := config.Get().Flood.MuteDuration
	until := time.Now().Add(muteDuration)
	if err := w.transport.RestrictUser(ctx, chat.ID, user.ID, until); err != nil {
		entry.WithField("error", err.Error()).Error("cant mute flooder")
		return nil
	}
	minutes := int(muteDuration.Minutes())
	w.sendEphemeral(ctx, chat.ID,
		fmt.Sprintf(i18n.Get("%s, stop flooding! Cool down for %d min.", lang), bot.GetFullName(user), minutes))
	return nil
}

func (w *Watchdog) isChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	member, err := w.transport.GetChatMember(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	return member.Status == "administrator" || member.Status == "creator", nil
}

// sendEphemeral posts a short notice and schedules its deletion.
func (w *Watchdog) sendEphemeral(ctx context.Context, chatID int64, text string) {
	sent, err := w.transport.SendMessage(ctx, chatID, text)
	if err != nil {
		w.getLogEntry().WithField("error", err.Error()).Warn("cant send notice")
		return
	}
	event.Bus.NQ(newDeleteMessageEvent(chatID, sent.MessageID, ephemeralLifetime))
}

// Join events are not cleaned here, the join gate owns those.
func isServiceMessage(msg *api.Message) bool {
	return msg.LeftChatMember != nil || msg.PinnedMessage != nil
}

func (w *Watchdog) getLogEntry() *log.Entry {
	return log.WithField("object", "Watchdog")
}
