package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soulsync-backend/internal/config"
	"soulsync-backend/internal/handlers"
	"soulsync-backend/internal/middleware"
	"soulsync-backend/internal/notify"
	"soulsync-backend/internal/repository"
	"soulsync-backend/internal/scheduler"
	"soulsync-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Advisory lock key for the reminder scan lease
const reminderLeaseKey = 0x50554C5345 // "PULSE"

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Apply schema migrations
	if err := repository.Migrate(cfg.Database.MigrateURL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	coupleRepo := repository.NewCoupleRepository(db)
	dateRepo := repository.NewDateRepository(db)
	bucketRepo := repository.NewBucketListRepository(db)
	moodRepo := repository.NewMoodRepository(db)

	// Initialize notification providers. Missing credentials disable a
	// channel; they never make delivery an error.
	var pushProvider notify.PushProvider
	if cfg.Push.KeyFile != "" {
		provider, err := notify.NewAPNSProvider(cfg.Push)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push provider")
		}
		pushProvider = provider
	} else {
		log.Warn().Msg("Push delivery disabled: no APNs key configured")
	}

	var emailProvider notify.EmailProvider
	if cfg.Email.Host != "" {
		provider, err := notify.NewSMTPProvider(cfg.Email)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create email provider")
		}
		emailProvider = provider
	} else {
		log.Warn().Msg("Email delivery disabled: no SMTP host configured")
	}

	dispatcher := notify.NewDispatcher(pushProvider, emailProvider, cfg.Reminder.SendTimeout())

	// Initialize services
	bus := services.NewEventBus(256)
	hub := services.NewLiveHub()
	coupleService := services.NewCoupleService(coupleRepo, cfg.JWT.Secret)
	dateService := services.NewDateService(dateRepo, coupleRepo, bus)
	bucketService := services.NewBucketListService(bucketRepo, coupleRepo)
	moodService := services.NewMoodService(moodRepo, dateRepo, coupleRepo)

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	worker := notify.NewWorker(bus, coupleRepo, dispatcher, hub)
	go worker.Run(workerCtx)

	reminder := scheduler.NewReminder(
		dateRepo,
		coupleRepo,
		dispatcher,
		repository.NewAdvisoryLock(db, reminderLeaseKey),
		cfg.Reminder.Interval(),
		cfg.Reminder.Lookahead(),
	)
	go reminder.Run(workerCtx)

	// Initialize handlers
	coupleHandler := handlers.NewCoupleHandler(coupleService)
	dateHandler := handlers.NewDateHandler(dateService)
	calendarHandler := handlers.NewCalendarHandler(dateService)
	bucketHandler := handlers.NewBucketListHandler(bucketService, hub)
	moodHandler := handlers.NewMoodHandler(moodService, hub)
	wsHandler := handlers.NewWebSocketHandler(hub, coupleService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/couples", coupleHandler.CreateCouple)
		r.Post("/couples/join", coupleHandler.JoinCouple)
		r.Post("/couples/recover", coupleHandler.Recover)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(coupleService))

			r.Get("/couples/me", coupleHandler.Me)
			r.Post("/couples/heartbeat", coupleHandler.Heartbeat)
			r.Put("/couples/push-token", coupleHandler.SavePushToken)

			r.Post("/dates", dateHandler.CreateDate)
			r.Post("/dates/requests", dateHandler.CreateDateRequest)
			r.Get("/dates", dateHandler.ListDates)
			r.Get("/dates/{date_id}", dateHandler.GetDate)
			r.Post("/dates/{date_id}/accept", dateHandler.AcceptDate)
			r.Post("/dates/{date_id}/decline", dateHandler.DeclineDate)
			r.Post("/dates/{date_id}/complete", dateHandler.CompleteDate)
			r.Put("/dates/{date_id}", dateHandler.UpdateDate)
			r.Delete("/dates/{date_id}", dateHandler.DeleteDate)
			r.Get("/dates/{date_id}/calendar.ics", calendarHandler.DownloadICS)
			r.Get("/dates/{date_id}/calendar-link", calendarHandler.GoogleLink)

			r.Post("/bucket-list", bucketHandler.CreateItem)
			r.Get("/bucket-list", bucketHandler.ListItems)
			r.Put("/bucket-list/{item_id}", bucketHandler.UpdateItem)
			r.Post("/bucket-list/{item_id}/toggle", bucketHandler.ToggleItem)
			r.Delete("/bucket-list/{item_id}", bucketHandler.DeleteItem)

			r.Post("/moods", moodHandler.LogMood)
			r.Get("/moods", moodHandler.ListMoods)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop the scheduler and notification worker first so no new
	// sends start during shutdown
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
