package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/i18n"
)

const verifyCallbackPrefix = "verify"

// challengeTimeout bounds the join restriction. Members who never press the
// button get their voice back when the platform lifts the restriction.
const challengeTimeout = 10 * time.Minute

type joinGateTransport interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	RestrictUser(ctx context.Context, chatID, userID int64, until time.Time) error
	UnrestrictUser(ctx context.Context, chatID, userID int64) error
	SendKeyboardMessage(ctx context.Context, chatID int64, text string, keyboard api.InlineKeyboardMarkup) (*api.Message, error)
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error
}

// JoinGate mutes every new member until they press the verification button
// under the greeting. The button is bound to the joiner, nobody can press it
// for them.
type JoinGate struct {
	s         bot.Service
	transport joinGateTransport
}

func NewJoinGate(s bot.Service, transport joinGateTransport) *JoinGate {
	j := &JoinGate{s: s, transport: transport}
	j.getLogEntry().Debug("created new join gate")
	return j
}

func (j *JoinGate) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u == nil {
		return true, nil
	}
	if cq := u.CallbackQuery; cq != nil && strings.HasPrefix(cq.Data, verifyCallbackPrefix+":") {
		return false, j.handleVerification(ctx, cq, user)
	}

	msg := u.Message
	if msg == nil || chat == nil || len(msg.NewChatMembers) == 0 {
		return true, nil
	}
	if !chat.IsGroup() && !chat.IsSuperGroup() {
		return true, nil
	}
	return false, j.challengeJoiners(ctx, msg, chat)
}

func (j *JoinGate) challengeJoiners(ctx context.Context, msg *api.Message, chat *api.Chat) error {
	entry := j.getLogEntry().WithField("chat_id", chat.ID)

	for _, member := range msg.NewChatMembers {
		if member.IsBot {
			continue
		}
		memberEntry := entry.WithFields(log.Fields{
			"user_id": member.ID,
			"name":    bot.GetUN(&member),
		})

		if err := j.transport.RestrictUser(ctx, chat.ID, member.ID, time.Now().Add(challengeTimeout)); err != nil {
			memberEntry.WithField("error", err.Error()).Warn("cant restrict new member")
			continue
		}

		lang := j.s.GetLanguage(ctx, chat.ID, &member)
		keyboard := api.NewInlineKeyboardMarkup(api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData(
				i18n.Get("🤖 I am not a bot", lang),
				fmt.Sprintf("%s:%d", verifyCallbackPrefix, member.ID),
			),
		))
		greeting := fmt.Sprintf(
			i18n.Get("👋 Hello, %s! Press the button below to start chatting.", lang),
			bot.GetFullName(&member))
		if _, err := j.transport.SendKeyboardMessage(ctx, chat.ID, greeting, keyboard); err != nil {
			memberEntry.WithField("error", err.Error()).Warn("cant send join challenge")
		}
	}

	if err := j.transport.DeleteMessage(ctx, chat.ID, msg.MessageID); err != nil {
		entry.WithField("error", err.Error()).Debug("cant clean join message")
	}
	return nil
}

func (j *JoinGate) handleVerification(ctx context.Context, cq *api.CallbackQuery, user *api.User) error {
	if cq.Message == nil || user == nil {
		return nil
	}
	chatID := cq.Message.Chat.ID
	lang := j.s.GetLanguage(ctx, chatID, user)

	parts := strings.Split(cq.Data, ":")
	if len(parts) != 2 {
		return nil
	}
	claimedID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}

	if user.ID != claimedID {
		return j.transport.AnswerCallback(ctx, cq.ID, i18n.Get("This button is not for you!", lang), true)
	}

	if err := j.transport.UnrestrictUser(ctx, chatID, user.ID); err != nil {
		j.getLogEntry().WithField("error", err.Error()).Error("cant lift join restriction")
		return j.transport.AnswerCallback(ctx, cq.ID, i18n.Get("Something went wrong, try again.", lang), true)
	}
	if err := j.transport.DeleteMessage(ctx, chatID, cq.Message.MessageID); err != nil {
		j.getLogEntry().WithField("error", err.Error()).Debug("cant delete challenge message")
	}
	return j.transport.AnswerCallback(ctx, cq.ID, i18n.Get("Welcome! ✅", lang), false)
}

func (j *JoinGate) getLogEntry() *log.Entry {
	return log.WithField("object", "JoinGate")
}
