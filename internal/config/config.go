package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		TelegramAPIToken string   `env:"TOKEN,required"`
		DefaultLanguage  string   `env:"LANG,default=en"`
		EnabledHandlers  []string `env:"HANDLERS,default=admin,joingate,watchdog"`
		LogLevel         int      `env:"LOG_LEVEL,default=4"`
		DotPath          string   `env:"DOT_PATH,default=~/.guardbot"`
		MetricsPort      int      `env:"METRICS_PORT,default=2112"`
		Flood            Flood
		Classifier       Classifier
	}

	Flood struct {
		Limit        int           `env:"FLOOD_LIMIT,default=5"`
		Window       time.Duration `env:"FLOOD_WINDOW,default=10s"`
		MuteDuration time.Duration `env:"FLOOD_MUTE,default=10m"`
	}

	Classifier struct {
		Provider  string `env:"CLASSIFIER_PROVIDER,default=sightengine"`
		APIUser   string `env:"SIGHTENGINE_USER"`
		APISecret string `env:"SIGHTENGINE_SECRET"`
		APIKey    string `env:"LLM_API_KEY"`
		Model     string `env:"LLM_API_MODEL,default=gpt-4o-mini"`
		BaseURL   string `env:"LLM_API_URL,default=https://api.openai.com/v1"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("GB_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			globalErr = fmt.Errorf("get user home directory: %w", err)
			return
		}
		cfg.DotPath = strings.Replace(cfg.DotPath, "~", home, 1)
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
