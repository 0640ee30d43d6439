package db

import "context"

type Client interface {
	Close() error

	GetUserStats(ctx context.Context, userID, chatID int64) (*UserStats, error)
	SetWarnings(ctx context.Context, userID, chatID int64, normal, heavy int) error
	RecordTempBan(ctx context.Context, userID, chatID int64) error
	PardonUser(ctx context.Context, userID, chatID int64) error

	GetSettings(ctx context.Context, chatID int64) (*Settings, error)
	GetAllSettings(ctx context.Context) ([]*Settings, error)
	UpsertChatTitle(ctx context.Context, chatID int64, title string) error
	SetBanDuration(ctx context.Context, chatID int64, minutes int) error
	SetLogReceiver(ctx context.Context, chatID int64, receiverID int64) error

	InsertReport(ctx context.Context, report *Report) (int64, error)
	GetFrontReport(ctx context.Context, chatID int64) (*Report, error)
	DeleteReport(ctx context.Context, reportID int64) error
	CountReports(ctx context.Context, chatID int64) (int, error)

	IncrementMessageCount(ctx context.Context, chatID, userID int64) error
	GetTopTalkers(ctx context.Context, chatID int64, limit int) ([]*TopTalker, error)
}
