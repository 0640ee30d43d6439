package main

import (
	"context"
	"os"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iamwavecut/guardbot/internal/adapters"
	classifieropenai "github.com/iamwavecut/guardbot/internal/adapters/classifier/openai"
	"github.com/iamwavecut/guardbot/internal/adapters/classifier/sightengine"
	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/config"
	"github.com/iamwavecut/guardbot/internal/db/sqlite"
	"github.com/iamwavecut/guardbot/internal/event"
	admin "github.com/iamwavecut/guardbot/internal/handlers/admin"
	chat "github.com/iamwavecut/guardbot/internal/handlers/chat"
	moderation "github.com/iamwavecut/guardbot/internal/handlers/moderation"
	"github.com/iamwavecut/guardbot/internal/infra"
	"github.com/iamwavecut/guardbot/internal/infrastructure/telegram"
	"github.com/iamwavecut/guardbot/internal/lexicon"
	"github.com/iamwavecut/guardbot/internal/observability"
)

func main() {
	cfg := config.Get()
	log.SetFormatter(&config.GbFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	infra.GoRecoverable(-1, "main_loop", func() {
		if err := run(ctx, cfg); err != nil {
			log.WithError(err).Errorln("bot stopped")
			time.Sleep(1 * time.Second)
			log.Fatalln("exiting")
		}
	})
}

func run(ctx context.Context, cfg config.Config) error {
	defer event.RunWorker()()

	if err := observability.Init(ctx); err != nil {
		return err
	}

	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return err
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}
	defer botAPI.StopReceivingUpdates()

	dbClient, err := sqlite.NewSQLiteClient(ctx, infra.GetWorkDir(), "guardbot.db")
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.WithError(err).Warnln("cant close db client")
		}
	}()

	checker, err := lexicon.Load()
	if err != nil {
		return err
	}

	service := bot.NewService(botAPI, dbClient)
	ops := telegram.NewOperations(botAPI)
	chat.SubscribeEphemeralCleanup(ops)

	notifier := moderation.NewNotifier(dbClient, ops)
	enforcer := moderation.NewEnforcer(dbClient, ops, notifier)
	flood := moderation.NewFloodMonitor(cfg.Flood.Limit, cfg.Flood.Window)
	reports := moderation.NewReportQueue(dbClient)

	bot.RegisterUpdateHandler("admin", admin.NewAdmin(service, ops, reports))
	bot.RegisterUpdateHandler("joingate", chat.NewJoinGate(service, ops))
	bot.RegisterUpdateHandler("watchdog", chat.NewWatchdog(
		service, ops, enforcer, flood, reports, checker, buildClassifier(cfg)))

	updateConfig := api.NewUpdate(0)
	updateConfig.Timeout = 60
	updateProcessor := bot.NewUpdateProcessor(service)
	updateChan, errorChan := bot.GetUpdatesChans(ctx, botAPI, updateConfig)

	log.Infoln("bot is up, default language:", cfg.DefaultLanguage)

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case err := <-errorChan:
				return err
			case update := <-updateChan:
				if err := updateProcessor.Process(runCtx, &update); err != nil {
					log.WithError(err).Errorln("cant process update")
				}
			case <-runCtx.Done():
				return runCtx.Err()
			}
		}
	})
	g.Go(func() error {
		select {
		case <-infra.MonitorExecutable(runCtx):
			return errors.New("executable file was modified")
		case <-runCtx.Done():
			return runCtx.Err()
		}
	})
	return g.Wait()
}

func buildClassifier(cfg config.Config) adapters.ImageClassifier {
	entry := log.WithField("object", "main")
	switch {
	case cfg.Classifier.Provider == "sightengine" && cfg.Classifier.APIUser != "" && cfg.Classifier.APISecret != "":
		return sightengine.NewSightengine(cfg.Classifier.APIUser, cfg.Classifier.APISecret, entry)
	case cfg.Classifier.Provider == "openai" && cfg.Classifier.APIKey != "":
		return classifieropenai.NewOpenAI(cfg.Classifier.APIKey, cfg.Classifier.Model, cfg.Classifier.BaseURL, entry)
	}
	entry.Warnln("no media classifier configured, media screening is off")
	return nil
}
