package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"

	"github.com/iamwavecut/guardbot/internal/db"
	"github.com/iamwavecut/guardbot/internal/i18n"
)

var banDurationPresets = []int{30, 60, 1440}

func (a *Admin) handlePanelCallback(ctx context.Context, cq *api.CallbackQuery, user *api.User) (bool, error) {
	if cq.Message == nil || user == nil {
		return false, nil
	}
	language := a.s.GetLanguage(ctx, user.ID, user)
	action, args := splitCallbackData(cq.Data)

	switch action {
	case "menu_main":
		chatID, ok := parseID(args, 0)
		if !ok {
			return false, nil
		}
		a.answerCallback(cq, "")
		return true, a.renderMainMenu(ctx, cq, chatID, user.ID, language)
	case "toggle_logs":
		chatID, ok := parseID(args, 0)
		if !ok {
			return false, nil
		}
		return true, a.toggleLogs(ctx, cq, chatID, user.ID, language)
	case "menu_settings":
		chatID, ok := parseID(args, 0)
		if !ok {
			return false, nil
		}
		a.answerCallback(cq, "")
		return true, a.renderDurationMenu(ctx, cq, chatID, language, false)
	case "set_ban":
		chatID, ok := parseID(args, 0)
		minutes, ok2 := parseID(args, 1)
		if !ok || !ok2 {
			return false, nil
		}
		if err := a.store.SetBanDuration(ctx, chatID, int(minutes)); err != nil {
			return true, errors.WithMessage(err, "set ban duration")
		}
		a.answerCallback(cq, i18n.Get("Saved.", language))
		return true, a.renderDurationMenu(ctx, cq, chatID, language, true)
	case "back_to_list":
		a.answerCallback(cq, "")
		if err := a.transport.DeleteMessage(ctx, cq.Message.Chat.ID, cq.Message.MessageID); err != nil {
			a.getLogEntry().WithField("error", err.Error()).Debug("cant drop old panel message")
		}
		return true, a.sendChatList(ctx, user.ID, language)
	case "show_reports":
		chatID, ok := parseID(args, 0)
		if !ok {
			return false, nil
		}
		return true, a.showNextReport(ctx, cq, chatID, user.ID, language)
	case "act_mute", "act_ban", "act_del", "act_skip":
		return true, a.handleReportAction(ctx, cq, action, args, user.ID, language)
	}
	return false, nil
}

func (a *Admin) getChatSettings(ctx context.Context, chatID int64) (*db.Settings, error) {
	settings, err := a.store.GetSettings(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = db.DefaultSettings(chatID)
	}
	return settings, nil
}

func (a *Admin) renderMainMenu(ctx context.Context, cq *api.CallbackQuery, chatID, adminID int64, language string) error {
	settings, err := a.getChatSettings(ctx, chatID)
	if err != nil {
		return errors.WithMessage(err, "get settings")
	}
	count, err := a.reports.Count(ctx, chatID)
	if err != nil {
		return errors.WithMessage(err, "count reports")
	}

	logStatus := i18n.Get("off", language)
	if settings.LogReceiverID == adminID {
		logStatus = i18n.Get("on", language)
	}

	markup := api.NewInlineKeyboardMarkup(
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData(
				fmt.Sprintf("🚩 "+i18n.Get("Reports (%d)", language), count),
				fmt.Sprintf("show_reports:%d", chatID)),
		),
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("⚙️ "+i18n.Get("Ban duration", language),
				fmt.Sprintf("menu_settings:%d", chatID)),
		),
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData(
				fmt.Sprintf("📊 "+i18n.Get("Logs to PM (%s)", language), logStatus),
				fmt.Sprintf("toggle_logs:%d", chatID)),
		),
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("🔙 "+i18n.Get("Back to chat list", language), "back_to_list"),
		),
	)

	text := fmt.Sprintf("🔧 <b>%s</b>\nID: <code>%d</code>", i18n.Get("Group management", language), chatID)
	edit := api.NewEditMessageTextAndMarkup(cq.Message.Chat.ID, cq.Message.MessageID, text, markup)
	edit.ParseMode = api.ModeHTML
	a.editOrLog(edit)
	return nil
}

func (a *Admin) toggleLogs(ctx context.Context, cq *api.CallbackQuery, chatID, adminID int64, language string) error {
	settings, err := a.getChatSettings(ctx, chatID)
	if err != nil {
		return errors.WithMessage(err, "get settings")
	}

	receiver := adminID
	if settings.LogReceiverID == adminID {
		receiver = 0
	}
	if err := a.store.SetLogReceiver(ctx, chatID, receiver); err != nil {
		return errors.WithMessage(err, "set log receiver")
	}

	a.answerCallback(cq, i18n.Get("Toggled.", language))
	return a.renderMainMenu(ctx, cq, chatID, adminID, language)
}

func (a *Admin) renderDurationMenu(ctx context.Context, cq *api.CallbackQuery, chatID int64, language string, saved bool) error {
	settings, err := a.getChatSettings(ctx, chatID)
	if err != nil {
		return errors.WithMessage(err, "get settings")
	}

	presetRow := make([]api.InlineKeyboardButton, 0, len(banDurationPresets))
	for _, minutes := range banDurationPresets {
		presetRow = append(presetRow, api.NewInlineKeyboardButtonData(
			fmt.Sprintf("⏱ %d", minutes),
			fmt.Sprintf("set_ban:%d:%d", chatID, minutes)))
	}
	markup := api.NewInlineKeyboardMarkup(
		presetRow,
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("🔙 "+i18n.Get("Back to group menu", language),
				fmt.Sprintf("menu_main:%d", chatID)),
		),
	)

	text := fmt.Sprintf(i18n.Get("Current mute: %d min", language), settings.BanDurationMinutes)
	if saved {
		text = "✅ " + i18n.Get("Saved.", language) + "\n" + text
	}
	edit := api.NewEditMessageTextAndMarkup(cq.Message.Chat.ID, cq.Message.MessageID, text, markup)
	edit.ParseMode = api.ModeHTML
	a.editOrLog(edit)
	return nil
}

// showNextReport pops the oldest pending report into the review surface: a
// copy of the offending message plus an action keyboard.
func (a *Admin) showNextReport(ctx context.Context, cq *api.CallbackQuery, chatID, adminID int64, language string) error {
	report, err := a.reports.Front(ctx, chatID)
	if err != nil {
		return errors.WithMessage(err, "front report")
	}
	if report == nil {
		a.answerCallback(cq, i18n.Get("No pending reports.", language))
		return a.renderMainMenu(ctx, cq, chatID, adminID, language)
	}
	a.answerCallback(cq, "")

	if err := a.transport.DeleteMessage(ctx, cq.Message.Chat.ID, cq.Message.MessageID); err != nil {
		a.getLogEntry().WithField("error", err.Error()).Debug("cant drop old panel message")
	}

	if err := a.transport.CopyMessage(ctx, adminID, chatID, report.MessageID,
		"🔻 "+i18n.Get("Here is the reported message.", language)); err != nil {
		if _, err := a.transport.SendMessage(ctx, adminID,
			i18n.Get("Could not show the reported message, it may be deleted.", language)); err != nil {
			return errors.WithMessage(err, "send copy fallback")
		}
	}

	base := fmt.Sprintf("%d:%d:%d:%d", chatID, report.UserID, report.MessageID, report.ID)
	markup := api.NewInlineKeyboardMarkup(
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("😶 Mute", "act_mute:"+base),
			api.NewInlineKeyboardButtonData("🔨 Ban", "act_ban:"+base),
		),
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("🗑 Delete", "act_del:"+base),
		),
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("❌ Skip", fmt.Sprintf("act_skip:%d:%d", report.ID, chatID)),
		),
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("🔙 "+i18n.Get("Back to group menu", language),
				fmt.Sprintf("menu_main:%d", chatID)),
		),
	)

	text := fmt.Sprintf("🚨 <b>%s</b>\n%s",
		fmt.Sprintf(i18n.Get("Reviewing report #%d", language), report.ID),
		fmt.Sprintf(i18n.Get("Offender ID: %d", language), report.UserID))
	msg := api.NewMessage(adminID, text)
	msg.ParseMode = api.ModeHTML
	msg.ReplyMarkup = markup
	if _, err := a.s.GetBot().Send(msg); err != nil {
		return errors.WithMessage(err, "send review message")
	}
	return nil
}

func (a *Admin) handleReportAction(ctx context.Context, cq *api.CallbackQuery, action string, args []string, adminID int64, language string) error {
	entry := a.getLogEntry().WithField("method", "handleReportAction")

	if action == "act_skip" {
		reportID, ok := parseID(args, 0)
		chatID, ok2 := parseID(args, 1)
		if !ok || !ok2 {
			return nil
		}
		if err := a.reports.Dispose(ctx, reportID); err != nil {
			return errors.WithMessage(err, "dispose report")
		}
		a.answerCallback(cq, i18n.Get("Report dismissed.", language))
		return a.showNextReport(ctx, cq, chatID, adminID, language)
	}

	chatID, ok := parseID(args, 0)
	userID, ok2 := parseID(args, 1)
	messageID, ok3 := parseID(args, 2)
	reportID, ok4 := parseID(args, 3)
	if !ok || !ok2 || !ok3 || !ok4 {
		return nil
	}

	switch action {
	case "act_mute":
		settings, err := a.getChatSettings(ctx, chatID)
		if err != nil {
			return errors.WithMessage(err, "get settings")
		}
		until := time.Now().Add(time.Duration(settings.BanDurationMinutes) * time.Minute)
		if err := a.transport.RestrictUser(ctx, chatID, userID, until); err != nil {
			entry.WithField("error", err.Error()).Error("cant mute reported user")
		}
		a.announceReviewOutcome(ctx, chatID,
			fmt.Sprintf(i18n.Get("User has been muted for %d min.", language), settings.BanDurationMinutes), language)
		a.answerCallback(cq, fmt.Sprintf(i18n.Get("User has been muted for %d min.", language), settings.BanDurationMinutes))
	case "act_ban":
		if err := a.transport.BanUser(ctx, chatID, userID); err != nil {
			entry.WithField("error", err.Error()).Error("cant ban reported user")
		}
		a.announceReviewOutcome(ctx, chatID, i18n.Get("User has been banned.", language), language)
		a.answerCallback(cq, i18n.Get("User has been banned.", language))
	case "act_del":
		if err := a.transport.DeleteMessage(ctx, chatID, int(messageID)); err != nil {
			entry.WithField("error", err.Error()).Warn("cant delete reported message")
		}
		a.answerCallback(cq, i18n.Get("Message deleted.", language))
	}

	// done either way, advance the queue
	if err := a.reports.Dispose(ctx, reportID); err != nil {
		return errors.WithMessage(err, "dispose report")
	}
	return a.showNextReport(ctx, cq, chatID, adminID, language)
}

func (a *Admin) announceReviewOutcome(ctx context.Context, chatID int64, outcome, language string) {
	text := fmt.Sprintf("🛡 %s\n%s", i18n.Get("An administrator has reviewed the report.", language), outcome)
	if _, err := a.transport.SendMessage(ctx, chatID, text); err != nil {
		a.getLogEntry().WithField("error", err.Error()).Warn("cant announce review outcome")
	}
}

func splitCallbackData(data string) (string, []string) {
	parts := strings.Split(data, ":")
	return parts[0], parts[1:]
}

func parseID(args []string, index int) (int64, bool) {
	if index >= len(args) {
		return 0, false
	}
	id, err := strconv.ParseInt(args[index], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
