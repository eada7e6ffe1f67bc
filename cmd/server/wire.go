//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chat-api/internal/config"
	"chat-api/internal/domain/conversation"
	"chat-api/internal/domain/llm"
	"chat-api/internal/domain/message"
	"chat-api/internal/infrastructure/auth"
	"chat-api/internal/infrastructure/database"
	"chat-api/internal/infrastructure/logger"
	"chat-api/internal/infrastructure/responder"
	conversationrepo "chat-api/internal/infrastructure/repository/conversation"
	messagerepo "chat-api/internal/infrastructure/repository/message"
	"chat-api/internal/interfaces/httpserver"
)

var chatSet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	wire.Bind(new(message.Conversations), new(*conversationrepo.Repository)),
	messagerepo.NewRepository,
	wire.Bind(new(message.Repository), new(*messagerepo.Repository)),
	wire.Bind(new(conversation.MessageCopier), new(*messagerepo.Repository)),
	newResponder,
	conversation.NewService,
	message.NewHistoryBuilder,
	newMessageEngine,
	wire.Bind(new(message.Service), new(*message.Engine)),
)

// BuildApplication demonstrates how to assemble the chat service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		chatSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newResponder(cfg *config.Config, log zerolog.Logger) (llm.Responder, error) {
	return responder.New(cfg, log)
}

func newMessageEngine(
	messages message.Repository,
	conversations message.Conversations,
	history *message.HistoryBuilder,
	aiResponder llm.Responder,
	cfg *config.Config,
	log zerolog.Logger,
) *message.Engine {
	return message.NewEngine(messages, conversations, history, aiResponder, cfg.ResponderTimeout, log)
}
