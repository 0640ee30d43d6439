package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/db"
	moderation "github.com/iamwavecut/guardbot/internal/handlers/moderation"
	"github.com/iamwavecut/guardbot/internal/i18n"
)

// Admin is the private-chat control panel: chat list, per-chat settings, log
// subscription toggle and the report review loop. Reachable by whoever talks
// to the bot in private, group admin rights gate nothing here.
type Admin struct {
	s         bot.Service
	store     adminStore
	transport adminTransport
	reports   *moderation.ReportQueue
}

type adminStore interface {
	GetAllSettings(ctx context.Context) ([]*db.Settings, error)
	GetSettings(ctx context.Context, chatID int64) (*db.Settings, error)
	SetBanDuration(ctx context.Context, chatID int64, minutes int) error
	SetLogReceiver(ctx context.Context, chatID, receiverID int64) error
}

type adminTransport interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	RestrictUser(ctx context.Context, chatID, userID int64, until time.Time) error
	BanUser(ctx context.Context, chatID, userID int64) error
	SendMessage(ctx context.Context, chatID int64, text string) (*api.Message, error)
	CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int, caption string) error
}

func NewAdmin(s bot.Service, transport adminTransport, reports *moderation.ReportQueue) *Admin {
	entry := log.WithField("object", "Admin").WithField("method", "NewAdmin")

	a := &Admin{
		s:         s,
		store:     s.GetDB(),
		transport: transport,
		reports:   reports,
	}
	entry.Debug("created new admin handler")
	return a
}

func (a *Admin) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (proceed bool, err error) {
	entry := a.getLogEntry().WithField("method", "Handle")

	if u == nil {
		return true, nil
	}

	if u.CallbackQuery != nil {
		handled, err := a.handlePanelCallback(ctx, u.CallbackQuery, user)
		if err != nil {
			entry.WithField("error", err.Error()).Error("failed to handle callback")
			return false, err
		}
		if handled {
			return false, nil
		}
		return true, nil
	}

	if u.Message == nil || user == nil || chat == nil {
		return true, nil
	}
	if !chat.IsPrivate() || !u.Message.IsCommand() {
		return true, nil
	}

	switch u.Message.Command() {
	case "admin":
		language := a.s.GetLanguage(ctx, chat.ID, user)
		return false, a.sendChatList(ctx, chat.ID, language)
	default:
		return true, nil
	}
}

// sendChatList offers every chat the bot has seen so far.
func (a *Admin) sendChatList(ctx context.Context, receiverID int64, language string) error {
	chats, err := a.store.GetAllSettings(ctx)
	if err != nil {
		return fmt.Errorf("get all settings: %w", err)
	}
	if len(chats) == 0 {
		_, err := a.transport.SendMessage(ctx, receiverID, i18n.Get("I don't know any chats yet. Add me to a group!", language))
		return err
	}

	rows := make([][]api.InlineKeyboardButton, 0, len(chats))
	for _, settings := range chats {
		title := settings.Title
		if title == "" {
			title = fmt.Sprintf("%d", settings.ChatID)
		}
		rows = append(rows, api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("📢 "+title, fmt.Sprintf("menu_main:%d", settings.ChatID)),
		))
	}

	msg := api.NewMessage(receiverID, i18n.Get("Choose a group:", language))
	msg.ReplyMarkup = api.NewInlineKeyboardMarkup(rows...)
	if _, err := a.s.GetBot().Send(msg); err != nil {
		return fmt.Errorf("send chat list: %w", err)
	}
	return nil
}

func (a *Admin) answerCallback(cq *api.CallbackQuery, text string) {
	if _, err := a.s.GetBot().Request(api.NewCallback(cq.ID, text)); err != nil {
		a.getLogEntry().WithField("error", err.Error()).Debug("cant answer callback")
	}
}

func (a *Admin) editOrLog(edit api.Chattable) {
	if _, err := a.s.GetBot().Send(edit); err != nil {
		if !strings.Contains(strings.ToLower(err.Error()), "message is not modified") {
			a.getLogEntry().WithField("error", err.Error()).Warn("cant edit panel message")
		}
	}
}

func (a *Admin) getLogEntry() *log.Entry {
	return log.WithField("context", "admin")
}
