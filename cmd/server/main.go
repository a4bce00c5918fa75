package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mockmate/interviewer/internal/config"
	"mockmate/interviewer/internal/handlers"
	"mockmate/interviewer/internal/history"
	"mockmate/interviewer/internal/interview"
	"mockmate/interviewer/internal/jobs"
	"mockmate/interviewer/internal/llm"
	_ "mockmate/interviewer/internal/llm/gemini"
	"mockmate/interviewer/internal/metrics"
	authmw "mockmate/interviewer/internal/middleware"
	"mockmate/interviewer/internal/models"
	"mockmate/interviewer/internal/presenter"
	"mockmate/interviewer/internal/prompts"
	"mockmate/interviewer/internal/routers"
	"mockmate/interviewer/internal/utils"
	"mockmate/interviewer/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.SessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func main() {
	utils.InitLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider))

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// AI provider based on configuration
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	// Initialize database for session history. The interview engine keeps
	// working without it, history endpoints report unavailable.
	db, err := initDatabase()
	if err != nil {
		logger.Error("Failed to initialize database, session history will be disabled", zap.Error(err))
		db = nil
	}

	var store *history.Store
	if db != nil {
		store = history.NewStore(db)
	}

	// WebSocket hub for live session events
	hub := ws.NewHub(logger)

	presenters := []interview.Presenter{presenter.NewWSPresenter(hub, logger)}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		presenters = append(presenters, presenter.NewRedisPresenter(rdb, cfg.EventChannel, logger))
		logger.Info("Redis event publishing enabled",
			zap.String("addr", cfg.RedisAddr),
			zap.String("channel", cfg.EventChannel))
	}

	engine := interview.NewEngine(aiProvider, promptManager, presenter.NewMulti(presenters...), store, logger, interview.Options{
		AnswerTimeout:       cfg.AnswerTimeout,
		CodingAnswerTimeout: cfg.CodingAnswerTimeout,
		QuestionRetryDelay:  cfg.QuestionRetryDelay,
		PacingDelay:         cfg.PacingDelay,
		SessionTTL:          cfg.SessionTTL,
	})

	interviewHandler := handlers.NewInterviewHandler(engine, store, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, cfg, db)

	// Session export job (only if database is available)
	var exporterJob *jobs.SessionExporterJob
	if db != nil {
		exporterJob = jobs.NewSessionExporterJob(store, &jobs.ExporterConfig{
			Schedule:      cfg.ExportSchedule,
			ExportDir:     cfg.ExportDir,
			ExportEnabled: cfg.ExportEnabled,
			MinScore:      cfg.ExportMinScore,
		}, logger)
		if err := exporterJob.Start(); err != nil {
			logger.Error("Failed to start session exporter job", zap.Error(err))
		}
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	router.Use(metrics.Middleware())

	var apiMiddlewares []func(http.Handler) http.Handler
	if cfg.JWTSecret != "" {
		apiMiddlewares = append(apiMiddlewares, authmw.RequireAuth([]byte(cfg.JWTSecret)))
		logger.Info("JWT authentication enabled on interview routes")
	}

	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler, hub, apiMiddlewares...)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interviewer service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interviewer service shutting down...")

	if exporterJob != nil {
		exporterJob.Stop()
	}
	engine.Shutdown()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interviewer service exited")
}
