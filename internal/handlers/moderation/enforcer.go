package handlers

import (
	"context"
	"fmt"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/db"
	"github.com/iamwavecut/guardbot/internal/i18n"
	"github.com/iamwavecut/guardbot/internal/observability"
)

type enforcerStore interface {
	GetUserStats(ctx context.Context, userID, chatID int64) (*db.UserStats, error)
	SetWarnings(ctx context.Context, userID, chatID int64, normal, heavy int) error
	RecordTempBan(ctx context.Context, userID, chatID int64) error
	PardonUser(ctx context.Context, userID, chatID int64) error
	GetSettings(ctx context.Context, chatID int64) (*db.Settings, error)
}

type enforcerTransport interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	RestrictUser(ctx context.Context, chatID, userID int64, until time.Time) error
	BanUser(ctx context.Context, chatID, userID int64) error
	SendMessage(ctx context.Context, chatID int64, text string) (*api.Message, error)
}

type PunishmentOutcome struct {
	Verdict      Verdict
	TempBans     int
	PermanentBan bool
	MuteDuration time.Duration
}

// Enforcer turns a classified violation into ledger mutations, platform
// actions and a log emission, in that order. Storage failures abort the event
// before any punishment is issued; transport failures are logged and do not
// roll anything back.
type Enforcer struct {
	store     enforcerStore
	transport enforcerTransport
	notifier  *Notifier
}

func NewEnforcer(store enforcerStore, transport enforcerTransport, notifier *Notifier) *Enforcer {
	return &Enforcer{
		store:     store,
		transport: transport,
		notifier:  notifier,
	}
}

func (e *Enforcer) PunishViolation(ctx context.Context, msg *api.Message, severity Severity, mediaPath, lang string) (*PunishmentOutcome, error) {
	entry := e.getLogEntry().WithFields(log.Fields{
		"chat_id":  msg.Chat.ID,
		"user_id":  msg.From.ID,
		"severity": severity,
	})

	stats, err := e.store.GetUserStats(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	settings, err := e.store.GetSettings(ctx, msg.Chat.ID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings == nil {
		settings = db.DefaultSettings(msg.Chat.ID)
	}

	verdict := Evaluate(stats.WarnsNormal, stats.WarnsHeavy, severity)
	outcome := &PunishmentOutcome{Verdict: verdict}
	observability.RecordViolation(string(severity))

	if !verdict.Punish {
		if err := e.store.SetWarnings(ctx, msg.From.ID, msg.Chat.ID, verdict.WarnsNormal, verdict.WarnsHeavy); err != nil {
			return nil, fmt.Errorf("set warnings: %w", err)
		}
	} else {
		// the ledger mutation happens before the ban-or-mute decision, which
		// is made from the updated lifetime counter
		if err := e.store.RecordTempBan(ctx, msg.From.ID, msg.Chat.ID); err != nil {
			return nil, fmt.Errorf("record temp ban: %w", err)
		}
		updated, err := e.store.GetUserStats(ctx, msg.From.ID, msg.Chat.ID)
		if err != nil {
			return nil, fmt.Errorf("reread user stats: %w", err)
		}
		outcome.TempBans = updated.TempBans
		outcome.PermanentBan = updated.TempBans >= PunishmentsBeforeBan
	}

	fullName := bot.GetFullName(msg.From)
	if err := e.transport.DeleteMessage(ctx, msg.Chat.ID, msg.MessageID); err != nil {
		entry.WithField("error", err.Error()).Warn("cant delete offending message")
	}
	if _, err := e.transport.SendMessage(ctx, msg.Chat.ID,
		fmt.Sprintf(i18n.Get("%s, violation! (%s)", lang), fullName, severity)); err != nil {
		entry.WithField("error", err.Error()).Warn("cant announce violation")
	}

	action := fmt.Sprintf("warning (%d/%d)", verdict.WarnsNormal, verdict.WarnsHeavy)
	switch {
	case outcome.PermanentBan:
		if err := e.transport.BanUser(ctx, msg.Chat.ID, msg.From.ID); err != nil {
			entry.WithField("error", err.Error()).Error("cant ban user")
		}
		if _, err := e.transport.SendMessage(ctx, msg.Chat.ID,
			fmt.Sprintf(i18n.Get("%s -> permanent ban (3 mutes).", lang), fullName)); err != nil {
			entry.WithField("error", err.Error()).Warn("cant announce ban")
		}
		action = "permanent ban"
		observability.RecordPunishment("ban")
	case verdict.Punish:
		outcome.MuteDuration = time.Duration(settings.BanDurationMinutes) * time.Minute
		until := time.Now().Add(outcome.MuteDuration)
		if err := e.transport.RestrictUser(ctx, msg.Chat.ID, msg.From.ID, until); err != nil {
			entry.WithField("error", err.Error()).Error("cant restrict user")
		}
		if _, err := e.transport.SendMessage(ctx, msg.Chat.ID,
			fmt.Sprintf(i18n.Get("%s -> muted for %d min. Reason: %s", lang), fullName, settings.BanDurationMinutes, verdict.Reason)); err != nil {
			entry.WithField("error", err.Error()).Warn("cant announce mute")
		}
		action = fmt.Sprintf("mute %d min (%s)", settings.BanDurationMinutes, verdict.Reason)
		observability.RecordPunishment("mute")
	}

	e.notifier.Notify(ctx, &LogEvent{
		Kind:      EventModeration,
		Actor:     msg.From,
		ChatID:    msg.Chat.ID,
		ChatTitle: msg.Chat.Title,
		Violation: string(severity),
		Action:    action,
		Text:      msg.Text,
		MediaPath: mediaPath,
	})

	return outcome, nil
}

// Pardon wipes the user's whole ledger record, lifetime counter included.
func (e *Enforcer) Pardon(ctx context.Context, chatID, userID int64) error {
	return e.store.PardonUser(ctx, userID, chatID)
}

func (e *Enforcer) getLogEntry() *log.Entry {
	return log.WithField("object", "Enforcer")
}
