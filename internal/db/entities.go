package db

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type (
	// UserStats is the per (user, chat) violation ledger record. TempBans is a
	// lifetime counter: it is never reset except by an explicit pardon.
	UserStats struct {
		UserID      int64 `db:"user_id"`
		ChatID      int64 `db:"chat_id"`
		WarnsNormal int   `db:"warns_normal"`
		WarnsHeavy  int   `db:"warns_heavy"`
		TempBans    int   `db:"temp_bans"`
	}

	// Settings holds per-chat moderation configuration. LogReceiverID of zero
	// means nobody is subscribed to moderation logs.
	Settings struct {
		ChatID             int64  `db:"chat_id"`
		Title              string `db:"title"`
		BanDurationMinutes int    `db:"ban_duration_minutes"`
		LogReceiverID      int64  `db:"log_receiver_id"`
	}

	Report struct {
		ID         int64     `db:"id"`
		ChatID     int64     `db:"chat_id"`
		MessageID  int       `db:"message_id"`
		UserID     int64     `db:"user_id"`
		ReporterID int64     `db:"reporter_id"`
		CreatedAt  time.Time `db:"created_at"`
	}

	TopTalker struct {
		UserID   int64 `db:"user_id"`
		Messages int64 `db:"messages"`
	}
)

const defaultBanDurationMinutes = 60

func DefaultSettings(chatID int64) *Settings {
	return &Settings{
		ChatID:             chatID,
		BanDurationMinutes: defaultBanDurationMinutes,
	}
}
