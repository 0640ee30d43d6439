package handlers

import (
	"context"
	"fmt"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/analytics"
	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/i18n"
)

const topTalkersLimit = 7

func (w *Watchdog) handleCommand(ctx context.Context, msg *api.Message, chat *api.Chat, user *api.User) error {
	lang := w.s.GetLanguage(ctx, chat.ID, user)

	switch msg.Command() {
	case "start":
		return w.commandStart(ctx, msg, chat, lang)
	case "report":
		return w.commandReport(ctx, msg, chat, user, lang)
	case "unban":
		return w.commandUnban(ctx, msg, chat, user, lang)
	case "stats":
		return w.commandStats(ctx, chat, lang)
	}
	return nil
}

func (w *Watchdog) commandStart(ctx context.Context, msg *api.Message, chat *api.Chat, lang string) error {
	if chat.IsGroup() || chat.IsSuperGroup() {
		if chat.Title != "" {
			if err := w.store.UpsertChatTitle(ctx, chat.ID, chat.Title); err != nil {
				return errors.WithMessage(err, "upsert chat title")
			}
		}
		_, err := w.transport.SendMessage(ctx, chat.ID, i18n.Get("Moderation is on. I keep this chat in order.", lang))
		return err
	}

	_, err := w.transport.SendMessage(ctx, chat.ID,
		fmt.Sprintf("%s\n%s",
			fmt.Sprintf(i18n.Get("Hello, %s!", lang), bot.GetFullName(msg.From)),
			i18n.Get("Add me to a group, promote me to admin, then use /admin here to manage it.", lang)))
	return err
}

func (w *Watchdog) commandReport(ctx context.Context, msg *api.Message, chat *api.Chat, user *api.User, lang string) error {
	entry := w.getLogEntry().WithFields(log.Fields{"chat_id": chat.ID, "method": "commandReport"})

	if !chat.IsGroup() && !chat.IsSuperGroup() {
		return nil
	}
	// the command itself never stays in the chat
	if err := w.transport.DeleteMessage(ctx, chat.ID, msg.MessageID); err != nil {
		entry.WithField("error", err.Error()).Debug("cant delete report command")
	}

	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		w.sendEphemeral(ctx, chat.ID, i18n.Get("Reply to a message with /report to file a complaint.", lang))
		return nil
	}
	accused := msg.ReplyToMessage.From
	if accused.ID == w.s.GetBot().Self.ID {
		return nil
	}

	report, err := w.reports.Submit(ctx, chat.ID, msg.ReplyToMessage.MessageID, accused.ID, user.ID)
	if err != nil {
		return errors.WithMessage(err, "submit report")
	}
	entry.WithField("report_id", report.ID).Info("report accepted")

	w.pingLogReceiver(ctx, chat, user, lang)
	w.sendEphemeral(ctx, chat.ID, i18n.Get("Report accepted.", lang))
	return nil
}

// pingLogReceiver nudges the chat's log subscriber with a review shortcut.
func (w *Watchdog) pingLogReceiver(ctx context.Context, chat *api.Chat, reporter *api.User, lang string) {
	entry := w.getLogEntry().WithFields(log.Fields{"chat_id": chat.ID, "method": "pingLogReceiver"})

	settings, err := w.s.GetSettings(ctx, chat.ID)
	if err != nil {
		entry.WithField("error", err.Error()).Warn("cant load settings")
		return
	}
	if settings.LogReceiverID == 0 {
		return
	}

	notice := api.NewMessage(settings.LogReceiverID,
		fmt.Sprintf(i18n.Get("New report! Chat: %s, from: %s", lang), chat.Title, bot.GetFullName(reporter)))
	notice.ParseMode = api.ModeHTML
	notice.ReplyMarkup = api.NewInlineKeyboardMarkup(
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("🚩 Review reports", fmt.Sprintf("show_reports:%d", chat.ID)),
		),
	)
	if _, err := w.s.GetBot().Send(notice); err != nil {
		entry.WithField("error", err.Error()).Warn("cant ping log receiver")
	}
}

func (w *Watchdog) commandUnban(ctx context.Context, msg *api.Message, chat *api.Chat, user *api.User, lang string) error {
	entry := w.getLogEntry().WithFields(log.Fields{"chat_id": chat.ID, "method": "commandUnban"})

	if !chat.IsGroup() && !chat.IsSuperGroup() {
		return nil
	}
	isAdmin, err := w.isChatAdmin(ctx, chat.ID, user.ID)
	if err != nil || !isAdmin {
		return err
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		return nil
	}
	target := msg.ReplyToMessage.From

	if err := w.transport.UnbanUser(ctx, chat.ID, target.ID); err != nil {
		entry.WithField("error", err.Error()).Warn("cant unban user")
	}
	if err := w.transport.UnrestrictUser(ctx, chat.ID, target.ID); err != nil {
		entry.WithField("error", err.Error()).Warn("cant unrestrict user")
	}
	if err := w.enforcer.Pardon(ctx, chat.ID, target.ID); err != nil {
		return errors.WithMessage(err, "pardon user")
	}
	_, err = w.transport.SendMessage(ctx, chat.ID,
		fmt.Sprintf(i18n.Get("%s has been pardoned.", lang), bot.GetFullName(target)))
	return err
}

func (w *Watchdog) commandStats(ctx context.Context, chat *api.Chat, lang string) error {
	if !chat.IsGroup() && !chat.IsSuperGroup() {
		_, err := w.transport.SendMessage(ctx, chat.ID, i18n.Get("This command only works in group chats.", lang))
		return err
	}

	talkers, err := w.store.GetTopTalkers(ctx, chat.ID, topTalkersLimit)
	if err != nil {
		return errors.WithMessage(err, "get top talkers")
	}

	png, err := analytics.RenderTopTalkers(talkers, fmt.Sprintf("Activity: %s", chat.Title))
	if errors.Is(err, analytics.ErrNoData) {
		_, err := w.transport.SendMessage(ctx, chat.ID, i18n.Get("No chat activity yet.", lang))
		return err
	}
	if err != nil {
		return errors.WithMessage(err, "render activity chart")
	}
	return w.transport.SendPhotoBytes(ctx, chat.ID, "stats.png", png, i18n.Get("Top talkers of this chat.", lang))
}
