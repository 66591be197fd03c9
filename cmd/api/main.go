package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finaudy/internal/ai"
	"finaudy/internal/config"
	"finaudy/internal/database"
	"finaudy/internal/jobs"
	"finaudy/internal/logger"
	"finaudy/internal/push"
	"finaudy/internal/realtime"
	"finaudy/internal/server"
	"finaudy/internal/services"

	_ "finaudy/internal/docs" // Import swagger docs
)

// @title           Finaudy API
// @version         1.0
// @description     Finaudy is a personal finance assistant: transactions, budgets, subscriptions, installments, bill reminders and shared household accounts.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbConfig := database.NewConfig(appConfig)
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Push delivery deactivates tokens through the notification service,
	// which itself needs the messenger.
	var notifications services.NotificationServicer
	var messenger push.Messenger = push.Noop{}
	if appConfig.FirebaseCredentialsFile != "" {
		fcm, err := push.NewFCM(ctx, appConfig.FirebaseCredentialsFile, func(ctx context.Context, tokens []string) error {
			return notifications.DeactivateTokens(ctx, tokens)
		})
		if err != nil {
			return fmt.Errorf("failed to initialize push delivery: %w", err)
		}
		messenger = fcm
	} else {
		log.Warn("FIREBASE_CREDENTIALS_FILE not set, push delivery disabled")
	}

	// Initialize services
	svc := server.NewServices(dbManager.DB(), appConfig.Location, appConfig.FreeFeatureLimit, messenger)
	notifications = svc.Notifications

	capturer, err := ai.NewOpenAIClient(ai.Options{
		APIKey:       appConfig.OpenAIKey,
		BaseURL:      appConfig.OpenAIBaseURL,
		WhisperModel: appConfig.OpenAIWhisper,
		LLMModel:     appConfig.OpenAILLMModel,
		VisionModel:  appConfig.OpenAIVisionModel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture client: %w", err)
	}
	if !capturer.Configured() {
		log.Warn("OPENAI_API_KEY not set, voice and receipt capture disabled")
	}

	// Periodic checks
	checker := svc.Checker()
	scheduler, err := jobs.NewScheduler(jobs.SchedulerConfig{
		ScheduleTimes: appConfig.SchedulerTimes,
		Location:      appConfig.Location,
		WorkerCount:   appConfig.SchedulerWorkers,
		QueueSize:     appConfig.SchedulerQueueSize,
		RunOnStartup:  appConfig.SchedulerRunOnStartup,
		JobProvider:   checker.Jobs,
	})
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	scheduler.Start()
	defer scheduler.Shutdown(shutdownTimeout)

	// Immediate budget checks on ledger changes
	if appConfig.RealtimeEnabled {
		watch := &realtime.BudgetWatch{Budgets: svc.Budgets, Notifications: svc.Notifications}
		listener := realtime.NewListener(dbConfig.URL(), watch.Handle)
		listener.Start(ctx)
		defer listener.Stop()
	}

	router := server.NewRouter(appConfig, svc, server.Options{
		Capturer:  capturer,
		Scheduler: scheduler,
		Checker:   checker,
		Swagger:   appConfig.Env != "production",
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Finaudy backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
