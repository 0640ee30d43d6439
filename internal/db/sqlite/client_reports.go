package sqlite

import (
	"context"
	"database/sql"

	"github.com/iamwavecut/tool"

	"github.com/iamwavecut/guardbot/internal/db"
)

func (s *sqliteClient) InsertReport(ctx context.Context, report *db.Report) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (chat_id, message_id, user_id, reporter_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		report.ChatID,
		report.MessageID,
		report.UserID,
		report.ReporterID,
		report.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetFrontReport returns the oldest open report for the chat, nil when the
// queue is empty.
func (s *sqliteClient) GetFrontReport(ctx context.Context, chatID int64) (*db.Report, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var report db.Report
	err := s.db.GetContext(ctx, &report, `
		SELECT id, chat_id, message_id, user_id, reporter_id, created_at
		FROM reports WHERE chat_id = ?
		ORDER BY id ASC LIMIT 1
	`, chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (s *sqliteClient) DeleteReport(ctx context.Context, reportID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return tool.Err(s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, reportID))
}

func (s *sqliteClient) CountReports(ctx context.Context, chatID int64) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reports WHERE chat_id = ?`, chatID)
	return count, err
}
