// reminderd walks every user with an active schedule and delivers today's
// plan to their preferred channel. Meant to run once a day from cron.
package main

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"lifeplan-backend/internal/ai"
	"lifeplan-backend/internal/config"
	"lifeplan-backend/internal/db"
	"lifeplan-backend/internal/engine"
	"lifeplan-backend/internal/notify"
	"lifeplan-backend/internal/progress"
	"lifeplan-backend/internal/schedule"
	"lifeplan-backend/internal/user"
)

func main() {
	cfg := config.Load()

	logCfg := zap.NewProductionConfig()
	if cfg.Debug {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	client := ai.NewOpenRouterClient(ai.OpenRouterConfig{
		APIKey:  cfg.OpenRouterKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Model:   cfg.OpenRouterModel,
		Timeout: cfg.OpenRouterTimeout,
	})

	store := progress.NewPostgresStore(database)
	tracker := progress.NewTracker(store, logger)
	generator := schedule.NewGenerator(client, logger)

	dispatcher := notify.NewDispatcher(map[user.Channel]notify.Sender{
		user.ChannelEmail:    notify.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		user.ChannelTelegram: notify.NewTelegramSender(cfg.TelegramBotToken, logger),
		user.ChannelWhatsApp: notify.NewWhatsAppSender(cfg.WhatsAppAPIURL, cfg.WhatsAppToken),
	}, logger)

	eng := engine.New(
		generator,
		tracker,
		store,
		user.NewStore(database),
		dispatcher,
		database,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	today := time.Now()
	userIDs, err := store.ActiveUserIDs(ctx, today)
	if err != nil {
		logger.Fatal("failed to list users with active schedules", zap.Error(err))
	}
	logger.Info("starting reminder run",
		zap.Int("users", len(userIDs)),
		zap.String("date", today.Format("2006-01-02")))

	var g errgroup.Group
	g.SetLimit(cfg.DispatchConcurrency)

	var delivered, skipped, failed atomic.Int64
	for _, id := range userIDs {
		id := id
		g.Go(func() error {
			result, err := eng.DailyReminder(ctx, id, today)
			switch {
			case err != nil:
				failed.Add(1)
				logger.Warn("reminder failed", zap.Int("user_id", id), zap.Error(err))
			case result.Delivered:
				delivered.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("reminder run finished",
		zap.Int64("delivered", delivered.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("failed", failed.Load()))
}
