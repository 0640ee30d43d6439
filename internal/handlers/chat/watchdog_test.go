package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/guardbot/internal/db"
	moderation "github.com/iamwavecut/guardbot/internal/handlers/moderation"
	"github.com/iamwavecut/guardbot/internal/lexicon"
)

type fakeChatService struct {
	selfID   int64
	settings *db.Settings
}

func (f *fakeChatService) GetBot() *api.BotAPI {
	return &api.BotAPI{Self: api.User{ID: f.selfID}}
}

func (f *fakeChatService) GetDB() db.Client { return nil }

func (f *fakeChatService) GetSettings(_ context.Context, chatID int64) (*db.Settings, error) {
	if f.settings != nil {
		return f.settings, nil
	}
	return db.DefaultSettings(chatID), nil
}

func (f *fakeChatService) GetLanguage(_ context.Context, _ int64, _ *api.User) string {
	return "en"
}

type fakeChatStore struct {
	titles   map[int64]string
	activity map[int64]int
	talkers  []*db.TopTalker
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		titles:   make(map[int64]string),
		activity: make(map[int64]int),
	}
}

func (f *fakeChatStore) UpsertChatTitle(_ context.Context, chatID int64, title string) error {
	f.titles[chatID] = title
	return nil
}

func (f *fakeChatStore) IncrementMessageCount(_ context.Context, _, userID int64) error {
	f.activity[userID]++
	return nil
}

func (f *fakeChatStore) GetTopTalkers(_ context.Context, _ int64, _ int) ([]*db.TopTalker, error) {
	return f.talkers, nil
}

type fakeChatTransport struct {
	adminIDs   map[int64]bool
	deleted    []int
	restricted []int64
	banned     []int64
	unbanned   []int64
	messages   []string
	photos     []string
}

func newFakeChatTransport() *fakeChatTransport {
	return &fakeChatTransport{adminIDs: make(map[int64]bool)}
}

func (f *fakeChatTransport) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeChatTransport) RestrictUser(_ context.Context, _, userID int64, _ time.Time) error {
	f.restricted = append(f.restricted, userID)
	return nil
}

func (f *fakeChatTransport) UnrestrictUser(_ context.Context, _, _ int64) error { return nil }

func (f *fakeChatTransport) BanUser(_ context.Context, _, userID int64) error {
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeChatTransport) SendPhoto(_ context.Context, _ int64, photoPath, _ string) error {
	f.photos = append(f.photos, photoPath)
	return nil
}

func (f *fakeChatTransport) UnbanUser(_ context.Context, _, userID int64) error {
	f.unbanned = append(f.unbanned, userID)
	return nil
}

func (f *fakeChatTransport) SendMessage(_ context.Context, _ int64, text string) (*api.Message, error) {
	f.messages = append(f.messages, text)
	return &api.Message{MessageID: len(f.messages)}, nil
}

func (f *fakeChatTransport) SendPhotoBytes(_ context.Context, _ int64, name string, _ []byte, _ string) error {
	f.photos = append(f.photos, name)
	return nil
}

func (f *fakeChatTransport) GetChatMember(_ context.Context, _, userID int64) (*api.ChatMember, error) {
	status := "member"
	if f.adminIDs[userID] {
		status = "administrator"
	}
	return &api.ChatMember{Status: status}, nil
}

type fakeLedgerStore struct {
	stats    db.UserStats
	warnings int
	tempBans int
	pardons  int
}

func (f *fakeLedgerStore) GetUserStats(_ context.Context, userID, chatID int64) (*db.UserStats, error) {
	stats := f.stats
	stats.UserID, stats.ChatID = userID, chatID
	return &stats, nil
}

func (f *fakeLedgerStore) SetWarnings(_ context.Context, _, _ int64, normal, heavy int) error {
	f.warnings++
	f.stats.WarnsNormal, f.stats.WarnsHeavy = normal, heavy
	return nil
}

func (f *fakeLedgerStore) RecordTempBan(_ context.Context, _, _ int64) error {
	f.tempBans++
	f.stats.WarnsNormal, f.stats.WarnsHeavy = 0, 0
	f.stats.TempBans++
	return nil
}

func (f *fakeLedgerStore) PardonUser(_ context.Context, _, _ int64) error {
	f.pardons++
	f.stats = db.UserStats{}
	return nil
}

func (f *fakeLedgerStore) GetSettings(_ context.Context, chatID int64) (*db.Settings, error) {
	return db.DefaultSettings(chatID), nil
}

type fakeReportLedger struct {
	reports []*db.Report
}

func (f *fakeReportLedger) InsertReport(_ context.Context, report *db.Report) (int64, error) {
	stored := *report
	stored.ID = int64(len(f.reports) + 1)
	f.reports = append(f.reports, &stored)
	return stored.ID, nil
}

func (f *fakeReportLedger) GetFrontReport(_ context.Context, _ int64) (*db.Report, error) {
	if len(f.reports) == 0 {
		return nil, nil
	}
	return f.reports[0], nil
}

func (f *fakeReportLedger) DeleteReport(_ context.Context, _ int64) error { return nil }

func (f *fakeReportLedger) CountReports(_ context.Context, _ int64) (int, error) {
	return len(f.reports), nil
}

type watchdogFixture struct {
	watchdog    *Watchdog
	store       *fakeChatStore
	transport   *fakeChatTransport
	ledger      *fakeLedgerStore
	reportStore *fakeReportLedger
}

func newWatchdogFixture(t *testing.T) *watchdogFixture {
	t.Helper()

	checker, err := lexicon.Load()
	if err != nil {
		t.Fatalf("load word lists: %v", err)
	}

	service := &fakeChatService{selfID: 999}
	store := newFakeChatStore()
	transport := newFakeChatTransport()
	ledger := &fakeLedgerStore{}
	reportStore := &fakeReportLedger{}
	notifier := moderation.NewNotifier(&noReceiverStore{}, transport)

	return &watchdogFixture{
		watchdog: &Watchdog{
			s:         service,
			store:     store,
			transport: transport,
			enforcer:  moderation.NewEnforcer(ledger, transport, notifier),
			flood:     moderation.NewFloodMonitor(2, 10*time.Second),
			reports:   moderation.NewReportQueue(reportStore),
			checker:   checker,
		},
		store:       store,
		transport:   transport,
		ledger:      ledger,
		reportStore: reportStore,
	}
}

type noReceiverStore struct{}

func (noReceiverStore) GetSettings(_ context.Context, chatID int64) (*db.Settings, error) {
	return db.DefaultSettings(chatID), nil
}

func groupUpdate(text string, userID int64) *api.Update {
	return &api.Update{
		Message: &api.Message{
			MessageID: 42,
			From:      &api.User{ID: userID, FirstName: "Taras"},
			Chat:      api.Chat{ID: -100, Type: "supergroup", Title: "den"},
			Text:      text,
		},
	}
}

func handleUpdate(t *testing.T, f *watchdogFixture, u *api.Update) {
	t.Helper()
	proceed, err := f.watchdog.Handle(context.Background(), u, u.FromChat(), u.SentFrom())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !proceed {
		t.Fatal("watchdog must always let the chain proceed")
	}
}

func TestWatchdogCleansServiceMessages(t *testing.T) {
	t.Parallel()

	f := newWatchdogFixture(t)
	u := &api.Update{
		Message: &api.Message{
			MessageID:      7,
			From:           &api.User{ID: 1},
			Chat:           api.Chat{ID: -100, Type: "supergroup"},
			LeftChatMember: &api.User{ID: 2},
		},
	}
	handleUpdate(t, f, u)
	if len(f.transport.deleted) != 1 || f.transport.deleted[0] != 7 {
		t.Fatalf("service message must be deleted, got %v", f.transport.deleted)
	}
}

func TestWatchdogRecordsActivityAndTitle(t *testing.T) {
	t.Parallel()

	f := newWatchdogFixture(t)
	handleUpdate(t, f, groupUpdate("привіт усім", 1))
	if f.store.titles[-100] != "den" {
		t.Fatalf("chat title not recorded: %v", f.store.titles)
	}
	if f.store.activity[1] != 1 {
		t.Fatalf("activity not counted: %v", f.store.activity)
	}
}

func TestWatchdogLinkFilter(t *testing.T) {
	t.Parallel()

	f := newWatchdogFixture(t)
	handleUpdate(t, f, groupUpdate("check this out https://spam.example", 1))
	if len(f.transport.deleted) != 1 {
		t.Fatalf("link message must be deleted, got %v", f.transport.deleted)
	}
	if len(f.transport.messages) != 1 || !strings.Contains(f.transport.messages[0], "links are not allowed") {
		t.Fatalf("expected a link notice, got %v", f.transport.messages)
	}
	if f.ledger.warnings != 0 {
		t.Fatal("the link filter must not touch the ledger")
	}
}

func TestWatchdogAdminBypass(t *testing.T) {
	t.Parallel()

	f := newWatchdogFixture(t)
	f.transport.adminIDs[1] = true
	handleUpdate(t, f, groupUpdate("https://allowed.example мудак", 1))
	if len(f.transport.deleted) != 0 {
		t.Fatal("admin messages must not be deleted")
	}
	if f.store.activity[1] != 1 {
		t.Fatal("admin activity still counts")
	}
}

func TestWatchdogFloodMute(t *testing.T) {
	t.Parallel()

	f := newWatchdogFixture(t)
	for i := 0; i < 3; i++ {
		handleUpdate(t, f, groupUpdate("spam", 1))
	}
	if len(f.transport.restricted) != 1 || f.transport.restricted[0] != 1 {
		t.Fatalf("flooder must be muted once, got %v", f.transport.restricted)
	}
}

func TestWatchdogLexiconWarning(t *testing.T) {
	t.Parallel()

	f := newWatchdogFixture(t)
	handleUpdate(t, f, groupUpdate("ну ти і дурень", 1))
	if f.ledger.warnings != 1 {
		t.Fatalf("expected one recorded warning, got %d", f.ledger.warnings)
	}
	if len(f.transport.deleted) != 1 {
		t.Fatal("offending message must be deleted")
	}
}

func TestWatchdogReportCommand(t *testing.T) {
	t.Parallel()

	f := newWatchdogFixture(t)
	u := groupUpdate("/report", 1)
	u.Message.Entities = []api.MessageEntity{{Type: "bot_command", Offset: 0, Length: 7}}
	u.Message.ReplyToMessage = &api.Message{
		MessageID: 33,
		From:      &api.User{ID: 5, FirstName: "Oleh"},
	}
	handleUpdate(t, f, u)

	if len(f.reportStore.reports) != 1 {
		t.Fatalf("expected one stored report, got %d", len(f.reportStore.reports))
	}
	report := f.reportStore.reports[0]
	if report.MessageID != 33 || report.UserID != 5 || report.ReporterID != 1 {
		t.Fatalf("report fields are off: %+v", report)
	}
	var confirmed bool
	for _, text := range f.transport.messages {
		if strings.Contains(text, "Report accepted") {
			confirmed = true
		}
	}
	if !confirmed {
		t.Fatalf("reporter was not acknowledged: %v", f.transport.messages)
	}
}

func TestWatchdogReportRequiresReply(t *testing.T) {
	t.Parallel()

	f := newWatchdogFixture(t)
	u := groupUpdate("/report", 1)
	u.Message.Entities = []api.MessageEntity{{Type: "bot_command", Offset: 0, Length: 7}}
	handleUpdate(t, f, u)

	if len(f.reportStore.reports) != 0 {
		t.Fatal("no report may be stored without a reply target")
	}
	var hinted bool
	for _, text := range f.transport.messages {
		if strings.Contains(text, "Reply to a message") {
			hinted = true
		}
	}
	if !hinted {
		t.Fatalf("expected the reply hint, got %v", f.transport.messages)
	}
}

func TestLinkRegex(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		text string
		want bool
	}{
		{"visit https://example.com now", true},
		{"http://example.com", true},
		{"t.me/some_channel", true},
		{"www.example.com", true},
		{"just a normal sentence", false},
		{"mention of tme without link", false},
	} {
		if got := linkRegex.MatchString(tt.text); got != tt.want {
			t.Fatalf("linkRegex.MatchString(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
