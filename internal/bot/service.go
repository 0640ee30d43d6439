package bot

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/guardbot/internal/config"
	"github.com/iamwavecut/guardbot/internal/db"
)

type service struct {
	bot *api.BotAPI
	db  db.Client
}

func NewService(bot *api.BotAPI, db db.Client) *service {
	return &service{
		bot: bot,
		db:  db,
	}
}

func (s *service) GetBot() *api.BotAPI {
	return s.bot
}

func (s *service) GetDB() db.Client {
	return s.db
}

// GetSettings returns the stored chat settings, falling back to defaults for
// chats that have not been observed yet.
func (s *service) GetSettings(ctx context.Context, chatID int64) (*db.Settings, error) {
	settings, err := s.db.GetSettings(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = db.DefaultSettings(chatID)
	}
	return settings, nil
}

func (s *service) GetLanguage(_ context.Context, _ int64, user *api.User) string {
	if user != nil && user.LanguageCode != "" {
		return user.LanguageCode
	}
	return config.Get().DefaultLanguage
}
