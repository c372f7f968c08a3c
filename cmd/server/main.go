package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habit_reminder_service/internal/app"
	"habit_reminder_service/internal/domain/notify"
	"habit_reminder_service/internal/infra/config"
	idb "habit_reminder_service/internal/infra/database"
	"habit_reminder_service/internal/infra/email"
	"habit_reminder_service/internal/infra/httpapi"
	"habit_reminder_service/internal/infra/logger"
	"habit_reminder_service/internal/infra/scheduler"
	"habit_reminder_service/internal/infra/storage"
	"habit_reminder_service/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("Habit reminder service starting...")

	// Initialize Database Connection
	db, err := idb.NewSQLiteConnection(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Could not open database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize Repositories
	reminderRepo := idb.NewSQLiteReminderRepository(db)
	trackingRepo := idb.NewSQLiteTrackingRepository(db)
	userRepo := idb.NewSQLiteUserRepository(db)
	log.Info("Repositories initialized.")

	// Initialize notification channels
	var channels []notify.Channel
	if cfg.SMTPHost != "" {
		channels = append(channels, email.NewGomailAdapter(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom))
		log.Info("Email channel initialized.")
	}

	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := log.WithError(err)
				if c != nil && c.Sender() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID)
				}
				entry.Error("Telegram bot error")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
		}
		channels = append(channels, telegram.NewTelebotAdapter(bot))
		log.Info("Telegram channel initialized.")
	}

	// Initialize Services
	lifecycleService := app.NewLifecycleService(reminderRepo)
	reminderService := app.NewReminderService(
		reminderRepo,
		trackingRepo,
		userRepo,
		lifecycleService,
		channels,
		log.WithField("component", "reminder_service"),
	)
	trackingService := app.NewTrackingService(trackingRepo)
	settingsService := app.NewSettingsService(userRepo)

	fileStore, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("FATAL: Could not initialize upload store: %v", err)
	}
	profileService := app.NewProfileService(userRepo, fileStore)
	log.Info("Services initialized.")

	// Initialize scheduler
	reminderScheduler := scheduler.NewReminderScheduler(
		reminderService,
		log.WithField("component", "scheduler"),
		cfg.CronSpecMaterialize,
		cfg.CronSpecPromote,
		cfg.MaterializeHorizon,
	)
	reminderScheduler.Start()

	// Register bot handlers and start polling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if bot != nil {
		telegram.RegisterBotCommands(ctx, bot, settingsService, userRepo, log.WithField("component", "bot"))
		telegram.RegisterReminderResponseHandlers(ctx, bot, reminderService)
		go bot.Start()
		log.Info("Telegram bot handlers registered and polling started.")
	}

	// HTTP API
	apiServer := httpapi.NewServer(
		reminderService,
		settingsService,
		profileService,
		trackingService,
		httpapi.RateLimitConfig{Requests: cfg.RateLimitRequests, Window: cfg.RateLimitWindow},
		cfg.UploadMaxBytes,
		log.WithField("component", "httpapi"),
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPListenAddr,
		Handler:           apiServer,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPListenAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	log.Info("Application setup complete.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	reminderScheduler.Stop()
	if bot != nil {
		bot.Stop()
	}
	log.Info("Application shut down gracefully.")
}
