package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"

	"github.com/iamwavecut/tool"
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/iamwavecut/guardbot/internal/db"
	"github.com/iamwavecut/guardbot/resources"
)

type sqliteClient struct {
	db    *sqlx.DB
	mutex sync.RWMutex
}

func NewSQLiteClient(ctx context.Context, workDir, dbName string) (*sqliteClient, error) {
	dbx, err := sqlx.Open("sqlite", filepath.Join(workDir, dbName))
	if err != nil {
		return nil, err
	}
	dbx.SetMaxOpenConns(42)

	migrationsSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: resources.FS,
		Root:       "migrations",
	}
	n, err := migrate.ExecContext(ctx, dbx.DB, "sqlite3", migrationsSource, migrate.Up)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		log.Infof("applied %d migrations!", n)
	}

	return &sqliteClient{db: dbx}, nil
}

func (s *sqliteClient) Close() error {
	return s.db.Close()
}

func (s *sqliteClient) GetSettings(ctx context.Context, chatID int64) (*db.Settings, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var settings db.Settings
	err := s.db.GetContext(ctx, &settings, `
		SELECT chat_id, title, ban_duration_minutes, log_receiver_id
		FROM settings WHERE chat_id = ?
	`, chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (s *sqliteClient) GetAllSettings(ctx context.Context) ([]*db.Settings, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var all []*db.Settings
	err := s.db.SelectContext(ctx, &all, `
		SELECT chat_id, title, ban_duration_minutes, log_receiver_id
		FROM settings ORDER BY title ASC
	`)
	return all, err
}

func (s *sqliteClient) UpsertChatTitle(ctx context.Context, chatID int64, title string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO settings (chat_id, title) VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET title = excluded.title
	`
	return tool.Err(s.db.ExecContext(ctx, query, chatID, title))
}

func (s *sqliteClient) SetBanDuration(ctx context.Context, chatID int64, minutes int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO settings (chat_id, ban_duration_minutes) VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET ban_duration_minutes = excluded.ban_duration_minutes
	`
	return tool.Err(s.db.ExecContext(ctx, query, chatID, minutes))
}

func (s *sqliteClient) SetLogReceiver(ctx context.Context, chatID int64, receiverID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO settings (chat_id, log_receiver_id) VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET log_receiver_id = excluded.log_receiver_id
	`
	return tool.Err(s.db.ExecContext(ctx, query, chatID, receiverID))
}
