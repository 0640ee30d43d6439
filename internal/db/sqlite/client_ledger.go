package sqlite

import (
	"context"

	"github.com/iamwavecut/tool"

	"github.com/iamwavecut/guardbot/internal/db"
)

func (s *sqliteClient) GetUserStats(ctx context.Context, userID, chatID int64) (*db.UserStats, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_stats (user_id, chat_id) VALUES (?, ?)
	`, userID, chatID); err != nil {
		return nil, err
	}

	var stats db.UserStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT user_id, chat_id, warns_normal, warns_heavy, temp_bans
		FROM user_stats WHERE user_id = ? AND chat_id = ?
	`, userID, chatID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *sqliteClient) SetWarnings(ctx context.Context, userID, chatID int64, normal, heavy int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO user_stats (user_id, chat_id, warns_normal, warns_heavy) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, chat_id) DO UPDATE SET
		warns_normal = excluded.warns_normal,
		warns_heavy = excluded.warns_heavy
	`
	return tool.Err(s.db.ExecContext(ctx, query, userID, chatID, normal, heavy))
}

// RecordTempBan wipes both warning counters and advances the lifetime
// temp ban counter as a single statement.
func (s *sqliteClient) RecordTempBan(ctx context.Context, userID, chatID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO user_stats (user_id, chat_id, warns_normal, warns_heavy, temp_bans) VALUES (?, ?, 0, 0, 1)
		ON CONFLICT(user_id, chat_id) DO UPDATE SET
		warns_normal = 0,
		warns_heavy = 0,
		temp_bans = temp_bans + 1
	`
	return tool.Err(s.db.ExecContext(ctx, query, userID, chatID))
}

func (s *sqliteClient) PardonUser(ctx context.Context, userID, chatID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		UPDATE user_stats SET warns_normal = 0, warns_heavy = 0, temp_bans = 0
		WHERE user_id = ? AND chat_id = ?
	`
	return tool.Err(s.db.ExecContext(ctx, query, userID, chatID))
}
