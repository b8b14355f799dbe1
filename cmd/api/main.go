package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/jparedesmx/cartera/internal/config"
	"github.com/jparedesmx/cartera/internal/handler"
	"github.com/jparedesmx/cartera/internal/integrations/gemini"
	"github.com/jparedesmx/cartera/internal/middleware"
	"github.com/jparedesmx/cartera/internal/repository"
	"github.com/jparedesmx/cartera/internal/service"
	"github.com/jparedesmx/cartera/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load .env if present, then configuration
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment from .env")
	}
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage: postgres when configured, in-memory otherwise
	var store repository.Store
	if cfg.DBConn != "" {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		store, err = repository.NewPostgres(db)
		if err != nil {
			logger.Fatalf("Failed to initialize store: %v", err)
		}
	} else {
		logger.Warn("DB_CONN not set, using volatile in-memory store")
		store = repository.NewMemory()
	}
	defer store.Close()

	// Initialize layers
	ai := gemini.NewClient(cfg, logger)
	if !ai.Enabled() {
		logger.Warn("GEMINI_API_KEY not set, statement AI extraction and chat are disabled")
	}
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(store, ai, mailer, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Daily payment reminders
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 9 * * *", svc.SendDueReminders); err != nil {
		logger.Fatalf("Failed to schedule reminders: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/dashboard/summary", h.Summary).Methods("GET")
	authRouter.HandleFunc("/dashboard/card/{id}", h.CardDetails).Methods("GET")
	authRouter.HandleFunc("/dashboard/installments", h.Installments).Methods("GET")
	authRouter.HandleFunc("/cards", h.ListCards).Methods("GET")
	authRouter.HandleFunc("/cards/{id}", h.GetCard).Methods("GET")
	authRouter.HandleFunc("/files/upload", h.Upload).Methods("POST")
	authRouter.HandleFunc("/chat/ask", h.ChatAsk).Methods("POST")
	authRouter.HandleFunc("/chat/ask-stream", h.ChatAskStream).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second, // paced chat streams are slow by design
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
