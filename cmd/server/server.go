package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"chat-api/internal/config"
	"chat-api/internal/domain/conversation"
	"chat-api/internal/domain/message"
	"chat-api/internal/infrastructure/auth"
	"chat-api/internal/infrastructure/database"
	"chat-api/internal/infrastructure/logger"
	"chat-api/internal/infrastructure/observability"
	"chat-api/internal/infrastructure/responder"
	conversationrepo "chat-api/internal/infrastructure/repository/conversation"
	messagerepo "chat-api/internal/infrastructure/repository/message"
	"chat-api/internal/interfaces/httpserver"
)

// @title Chat API
// @version 1.0
// @description Conversation and message orchestration with causal ordering, edit cascades, and share links.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	conversationRepository := conversationrepo.NewRepository(db)
	messageRepository := messagerepo.NewRepository(db)

	aiResponder, err := responder.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize responder")
	}

	conversationService := conversation.NewService(conversationRepository, messageRepository, log)
	historyBuilder := message.NewHistoryBuilder(messageRepository)
	messageService := message.NewEngine(
		messageRepository,
		conversationRepository,
		historyBuilder,
		aiResponder,
		cfg.ResponderTimeout,
		log,
	)

	httpServer := httpserver.New(cfg, log, conversationService, messageService, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
