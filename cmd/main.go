package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/chess-swiss/config"
	"github.com/Dosada05/chess-swiss/db"
	"github.com/Dosada05/chess-swiss/handlers"
	"github.com/Dosada05/chess-swiss/pairing"
	"github.com/Dosada05/chess-swiss/repositories"
	api "github.com/Dosada05/chess-swiss/routes"
	"github.com/Dosada05/chess-swiss/services"
	"github.com/Dosada05/chess-swiss/standings"
	"github.com/Dosada05/chess-swiss/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Хранилище архивов снимков турниров (опционально)
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize snapshot archive storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("snapshot archive storage initialized")
	} else {
		logger.Info("snapshot archive storage not configured, archiving disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := pairing.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	playerService := services.NewPlayerService(playerRepo)
	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		participantRepo,
		playerRepo,
		roundRepo,
		matchRepo,
		uploader,
	)
	roundService := services.NewRoundService(
		dbConn,
		tournamentRepo,
		participantRepo,
		playerRepo,
		roundRepo,
		matchRepo,
		pairing.NewSwissGenerator(),
		standings.NewBuchholz(),
		wsHub,
		tournamentService,
	)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	roundHandler := handlers.NewRoundHandler(roundService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authHandler,
		playerHandler,
		tournamentHandler,
		roundHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
