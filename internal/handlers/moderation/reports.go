package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/iamwavecut/guardbot/internal/db"
	"github.com/iamwavecut/guardbot/internal/observability"
)

type reportStore interface {
	InsertReport(ctx context.Context, report *db.Report) (int64, error)
	GetFrontReport(ctx context.Context, chatID int64) (*db.Report, error)
	DeleteReport(ctx context.Context, reportID int64) error
	CountReports(ctx context.Context, chatID int64) (int, error)
}

// ReportQueue is a per-chat FIFO of member reports awaiting admin review.
// Ordering follows insertion; reviewing never reorders, it only pops the front.
type ReportQueue struct {
	store reportStore
}

func NewReportQueue(store reportStore) *ReportQueue {
	return &ReportQueue{store: store}
}

// Submit enqueues a report against the given message. Duplicate reports of the
// same message are accepted as separate entries, the reviewer just skips them.
func (q *ReportQueue) Submit(ctx context.Context, chatID int64, messageID int, accusedID, reporterID int64) (*db.Report, error) {
	report := &db.Report{
		ChatID:     chatID,
		MessageID:  messageID,
		UserID:     accusedID,
		ReporterID: reporterID,
		CreatedAt:  time.Now(),
	}
	id, err := q.store.InsertReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	report.ID = id
	observability.RecordReport()
	return report, nil
}

// Front returns the oldest pending report for the chat, nil when the queue is
// empty.
func (q *ReportQueue) Front(ctx context.Context, chatID int64) (*db.Report, error) {
	return q.store.GetFrontReport(ctx, chatID)
}

// Dispose removes a reviewed report. Disposing an already removed report is
// not an error, two admins racing over the same entry is expected.
func (q *ReportQueue) Dispose(ctx context.Context, reportID int64) error {
	return q.store.DeleteReport(ctx, reportID)
}

func (q *ReportQueue) Count(ctx context.Context, chatID int64) (int, error) {
	return q.store.CountReports(ctx, chatID)
}
