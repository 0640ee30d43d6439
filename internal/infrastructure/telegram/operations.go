package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
)

// Operations wraps the Telegram transport actions the moderation engine needs.
// Every method treats transport failures as plain errors; the callers decide
// whether a failure is fatal for the surrounding event.
type Operations struct {
	bot *api.BotAPI
}

func NewOperations(bot *api.BotAPI) *Operations {
	return &Operations{bot: bot}
}

func (o *Operations) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	_, err := o.bot.Request(api.NewDeleteMessage(chatID, messageID))
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// RestrictUser removes the user's right to send messages until the given
// instant. The platform lifts the restriction on its own after that.
func (o *Operations) RestrictUser(_ context.Context, chatID, userID int64, until time.Time) error {
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		UntilDate:   until.Unix(),
		Permissions: &api.ChatPermissions{},

		UseIndependentChatPermissions: true,
	}
	if _, err := o.bot.Request(config); err != nil {
		if strings.Contains(err.Error(), "not enough rights") {
			return fmt.Errorf("not enough rights to restrict user")
		}
		return fmt.Errorf("failed to restrict user: %w", err)
	}
	return nil
}

func (o *Operations) UnrestrictUser(_ context.Context, chatID, userID int64) error {
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		Permissions: &api.ChatPermissions{
			CanSendMessages:       true,
			CanSendAudios:         true,
			CanSendDocuments:      true,
			CanSendPhotos:         true,
			CanSendVideos:         true,
			CanSendVideoNotes:     true,
			CanSendVoiceNotes:     true,
			CanSendPolls:          true,
			CanSendOtherMessages:  true,
			CanAddWebPagePreviews: true,
			CanInviteUsers:        true,
		},
	}
	if _, err := o.bot.Request(config); err != nil {
		return fmt.Errorf("failed to unrestrict user: %w", err)
	}
	return nil
}

// BanUser bans the user permanently and revokes their messages.
func (o *Operations) BanUser(_ context.Context, chatID, userID int64) error {
	config := api.BanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		RevokeMessages: true,
	}
	if _, err := o.bot.Request(config); err != nil {
		if strings.Contains(err.Error(), "not enough rights") {
			return fmt.Errorf("not enough rights to ban user")
		}
		return fmt.Errorf("failed to ban user: %w", err)
	}
	return nil
}

func (o *Operations) UnbanUser(_ context.Context, chatID, userID int64) error {
	config := api.UnbanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		OnlyIfBanned: true,
	}
	if _, err := o.bot.Request(config); err != nil {
		return fmt.Errorf("failed to unban user: %w", err)
	}
	return nil
}

func (o *Operations) SendMessage(_ context.Context, chatID int64, text string) (*api.Message, error) {
	msg := api.NewMessage(chatID, text)
	msg.ParseMode = api.ModeHTML
	sent, err := o.bot.Send(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &sent, nil
}

// SendKeyboardMessage posts a message carrying an inline keyboard.
func (o *Operations) SendKeyboardMessage(_ context.Context, chatID int64, text string, keyboard api.InlineKeyboardMarkup) (*api.Message, error) {
	msg := api.NewMessage(chatID, text)
	msg.ParseMode = api.ModeHTML
	msg.ReplyMarkup = keyboard
	sent, err := o.bot.Send(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send keyboard message: %w", err)
	}
	return &sent, nil
}

// AnswerCallback acknowledges a callback query, with an optional popup alert.
func (o *Operations) AnswerCallback(_ context.Context, callbackID, text string, showAlert bool) error {
	callback := api.NewCallback(callbackID, text)
	callback.ShowAlert = showAlert
	if _, err := o.bot.Request(callback); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

func (o *Operations) SendPhoto(_ context.Context, chatID int64, photoPath, caption string) error {
	photo := api.NewPhoto(chatID, api.FilePath(photoPath))
	photo.Caption = caption
	photo.ParseMode = api.ModeHTML
	if _, err := o.bot.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

func (o *Operations) SendPhotoBytes(_ context.Context, chatID int64, name string, data []byte, caption string) error {
	photo := api.NewPhoto(chatID, api.FileBytes{Name: name, Bytes: data})
	photo.Caption = caption
	if _, err := o.bot.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

// CopyMessage copies a chat message to the receiver without exposing the bot
// as a forwarder.
func (o *Operations) CopyMessage(_ context.Context, toChatID, fromChatID int64, messageID int, caption string) error {
	copyConfig := api.NewCopyMessage(toChatID, fromChatID, messageID)
	copyConfig.Caption = caption
	copyConfig.ParseMode = api.ModeHTML
	if _, err := o.bot.Request(copyConfig); err != nil {
		return fmt.Errorf("failed to copy message: %w", err)
	}
	return nil
}

func (o *Operations) GetChatMember(_ context.Context, chatID, userID int64) (*api.ChatMember, error) {
	member, err := o.bot.GetChatMember(api.GetChatMemberConfig{
		ChatConfigWithUser: api.ChatConfigWithUser{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get chat member: %w", err)
	}
	return &member, nil
}
