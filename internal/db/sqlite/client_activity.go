package sqlite

import (
	"context"

	"github.com/iamwavecut/tool"

	"github.com/iamwavecut/guardbot/internal/db"
)

func (s *sqliteClient) IncrementMessageCount(ctx context.Context, chatID, userID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO chat_activity (chat_id, user_id, messages) VALUES (?, ?, 1)
		ON CONFLICT(chat_id, user_id) DO UPDATE SET messages = messages + 1
	`
	return tool.Err(s.db.ExecContext(ctx, query, chatID, userID))
}

func (s *sqliteClient) GetTopTalkers(ctx context.Context, chatID int64, limit int) ([]*db.TopTalker, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var top []*db.TopTalker
	err := s.db.SelectContext(ctx, &top, `
		SELECT user_id, messages FROM chat_activity
		WHERE chat_id = ?
		ORDER BY messages DESC LIMIT ?
	`, chatID, limit)
	return top, err
}
