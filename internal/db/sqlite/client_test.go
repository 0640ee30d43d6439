package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/iamwavecut/guardbot/internal/db"
)

func newTestClient(t *testing.T) *sqliteClient {
	t.Helper()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestUserStatsLazyCreation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	stats, err := client.GetUserStats(ctx, 100, -200)
	if err != nil {
		t.Fatalf("get user stats: %v", err)
	}
	if stats.WarnsNormal != 0 || stats.WarnsHeavy != 0 || stats.TempBans != 0 {
		t.Fatalf("expected zeroed record, got %+v", stats)
	}

	if err := client.SetWarnings(ctx, 100, -200, 2, 1); err != nil {
		t.Fatalf("set warnings: %v", err)
	}
	stats, err = client.GetUserStats(ctx, 100, -200)
	if err != nil {
		t.Fatalf("get user stats: %v", err)
	}
	if stats.WarnsNormal != 2 || stats.WarnsHeavy != 1 {
		t.Fatalf("expected overwritten warnings, got %+v", stats)
	}
}

func TestRecordTempBanWipesWarningsAndAdvancesCounter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	if err := client.SetWarnings(ctx, 7, -8, 2, 1); err != nil {
		t.Fatalf("set warnings: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := client.RecordTempBan(ctx, 7, -8); err != nil {
			t.Fatalf("record temp ban: %v", err)
		}
		stats, err := client.GetUserStats(ctx, 7, -8)
		if err != nil {
			t.Fatalf("get user stats: %v", err)
		}
		if stats.WarnsNormal != 0 || stats.WarnsHeavy != 0 {
			t.Fatalf("expected wiped warnings after temp ban, got %+v", stats)
		}
		if stats.TempBans != i {
			t.Fatalf("expected %d temp bans, got %d", i, stats.TempBans)
		}
	}

	if err := client.PardonUser(ctx, 7, -8); err != nil {
		t.Fatalf("pardon user: %v", err)
	}
	stats, err := client.GetUserStats(ctx, 7, -8)
	if err != nil {
		t.Fatalf("get user stats: %v", err)
	}
	if stats.WarnsNormal != 0 || stats.WarnsHeavy != 0 || stats.TempBans != 0 {
		t.Fatalf("expected fully reset record, got %+v", stats)
	}
}

func TestReportQueueFIFO(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := client.InsertReport(ctx, &db.Report{
			ChatID:     -1,
			MessageID:  100 + i,
			UserID:     int64(1000 + i),
			ReporterID: 42,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			t.Fatalf("insert report: %v", err)
		}
		ids = append(ids, id)
	}

	if count, err := client.CountReports(ctx, -1); err != nil || count != 3 {
		t.Fatalf("expected 3 open reports, got %d (err %v)", count, err)
	}

	for _, want := range ids[:2] {
		front, err := client.GetFrontReport(ctx, -1)
		if err != nil {
			t.Fatalf("get front report: %v", err)
		}
		if front == nil || front.ID != want {
			t.Fatalf("expected front report %d, got %+v", want, front)
		}
		if err := client.DeleteReport(ctx, front.ID); err != nil {
			t.Fatalf("delete report: %v", err)
		}
	}

	front, err := client.GetFrontReport(ctx, -1)
	if err != nil {
		t.Fatalf("get front report: %v", err)
	}
	if front == nil || front.ID != ids[2] {
		t.Fatalf("expected last report at front, got %+v", front)
	}

	// disposal is idempotent
	if err := client.DeleteReport(ctx, ids[0]); err != nil {
		t.Fatalf("repeat delete should be a no-op, got %v", err)
	}

	if count, err := client.CountReports(ctx, -1); err != nil || count != 1 {
		t.Fatalf("expected 1 open report, got %d (err %v)", count, err)
	}
}

func TestSettingsUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	settings, err := client.GetSettings(ctx, -5)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings != nil {
		t.Fatalf("expected no settings for unseen chat, got %+v", settings)
	}

	if err := client.SetLogReceiver(ctx, -5, 77); err != nil {
		t.Fatalf("set log receiver: %v", err)
	}
	if err := client.UpsertChatTitle(ctx, -5, "test chat"); err != nil {
		t.Fatalf("upsert chat title: %v", err)
	}
	if err := client.SetBanDuration(ctx, -5, 30); err != nil {
		t.Fatalf("set ban duration: %v", err)
	}

	settings, err = client.GetSettings(ctx, -5)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.Title != "test chat" || settings.BanDurationMinutes != 30 || settings.LogReceiverID != 77 {
		t.Fatalf("unexpected settings: %+v", settings)
	}

	if err := client.SetLogReceiver(ctx, -5, 0); err != nil {
		t.Fatalf("unset log receiver: %v", err)
	}
	settings, err = client.GetSettings(ctx, -5)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.LogReceiverID != 0 {
		t.Fatalf("expected log receiver unset, got %d", settings.LogReceiverID)
	}
}

func TestActivityCounters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	for i := 0; i < 3; i++ {
		if err := client.IncrementMessageCount(ctx, -9, 1); err != nil {
			t.Fatalf("increment message count: %v", err)
		}
	}
	if err := client.IncrementMessageCount(ctx, -9, 2); err != nil {
		t.Fatalf("increment message count: %v", err)
	}

	top, err := client.GetTopTalkers(ctx, -9, 7)
	if err != nil {
		t.Fatalf("get top talkers: %v", err)
	}
	if len(top) != 2 || top[0].UserID != 1 || top[0].Messages != 3 {
		t.Fatalf("unexpected top talkers: %+v", top)
	}
}
