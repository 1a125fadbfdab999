// File: cmd/server/providers.go
package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-darkbin/internal/broadcast"
	"github.com/iyunix/go-darkbin/internal/config"
	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/handlers"
	"github.com/iyunix/go-darkbin/internal/moderation"
	"github.com/iyunix/go-darkbin/internal/presence"
	"github.com/iyunix/go-darkbin/internal/repository/message"
	"github.com/iyunix/go-darkbin/internal/repository/securitylog"
	"github.com/iyunix/go-darkbin/internal/repository/user"
	"github.com/iyunix/go-darkbin/internal/services"
	"github.com/iyunix/go-darkbin/internal/services/chat_services"
	"github.com/iyunix/go-darkbin/internal/services/user_services"
)

// Application aggregates all services and handlers
type Application struct {
	Config           *config.Config
	Logger           services.Logger
	DB               *gorm.DB
	Gateway          *chat_services.Gateway
	UserService      *user_services.UserService
	AuditRepo        *securitylog.GormSecurityLogRepository
	AuthHandler      *handlers.AuthHandler
	ChatHandler      *handlers.ChatHandler
	WebSocketHandler *handlers.WebSocketHandler
	LogHandler       *handlers.LogHandler
	HealthHandler    *handlers.HealthHandler
}

// OpenDatabase connects to Postgres when DATABASE_URL is a postgres URL and
// to the sqlite file at SQLITE_PATH otherwise, then migrates the schema.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "postgres://"), strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		dialector = postgres.Open(cfg.DatabaseURL)
	case cfg.DatabaseURL != "":
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme")
	default:
		dialector = sqlite.Open(cfg.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	}

	// Postgres may still be starting when the server comes up.
	var db *gorm.DB
	err := services.RetryWithBackoff(context.Background(), services.DefaultRetryConfig(), func(ctx context.Context) error {
		opened, err := gorm.Open(dialector, gcfg)
		if err != nil {
			return err
		}
		sqlDB, err := opened.DB()
		if err != nil {
			return services.Permanent(err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}
		db = opened
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.ChatMessage{}, &domain.SecurityLog{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// badgerLogger routes badger's printf-style logging through our logger.
type badgerLogger struct {
	logger services.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Error("badger", "detail", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Warn("badger", "detail", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.logger.Debug("badger", "detail", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {}

// ProvideMessageStore selects the message backend. The returned cleanup
// closes badger when it was opened.
func ProvideMessageStore(cfg *config.Config, db *gorm.DB, logger services.Logger) (message.MessageStore, func(), error) {
	if cfg.MessageStore != config.StoreBadger {
		return message.NewGormMessageStore(db, logger), func() {}, nil
	}

	opts := badger.DefaultOptions(filepath.Clean(cfg.BadgerPath)).
		WithSyncWrites(true).
		WithLogger(badgerLogger{logger: logger})
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open badger: %w", err)
	}
	cleanup := func() {
		if err := bdb.Close(); err != nil {
			logger.Error("failed to close badger", "error", err)
		}
	}
	return message.NewBadgerMessageStore(bdb, logger), cleanup, nil
}

func ProvideChatConfig(cfg *config.Config) *chat_services.Config {
	chatCfg := chat_services.DefaultConfig()
	chatCfg.HistoryLimit = cfg.ChatHistoryLimit
	chatCfg.SendBufferSize = cfg.ChatSendBuffer
	chatCfg.AllowedOrigins = cfg.AllowedOrigins
	return chatCfg
}

func ProvideValidators(cfg *config.Config) ([]chat_services.ContentValidator, error) {
	mode, err := moderation.ParseMode(cfg.ModerationMode)
	if err != nil {
		return nil, err
	}
	filter, err := moderation.NewFilter(cfg.BannedWords, mode)
	if err != nil {
		return nil, fmt.Errorf("build banned word filter: %w", err)
	}
	if filter == nil {
		return nil, nil
	}
	return []chat_services.ContentValidator{filter}, nil
}

func ProvideUserRepository(db *gorm.DB, logger services.Logger) user.UserRepository {
	return user.NewGormUserRepository(db, logger)
}

func ProvideAuditRepository(db *gorm.DB) *securitylog.GormSecurityLogRepository {
	return securitylog.NewGormSecurityLogRepository(db)
}

func ProvideUserService(repo user.UserRepository, audit *securitylog.GormSecurityLogRepository, cfg *config.Config, logger services.Logger) *user_services.UserService {
	return user_services.NewUserService(repo, audit, cfg.JWTSecretKey, logger)
}

func ProvideBroadcastChannel(logger services.Logger) *broadcast.Channel {
	return broadcast.NewChannel(logger)
}

func ProvideGateway(
	chatCfg *chat_services.Config,
	userService *user_services.UserService,
	store message.MessageStore,
	tracker *presence.Tracker,
	channel *broadcast.Channel,
	users user.UserRepository,
	audit *securitylog.GormSecurityLogRepository,
	validators []chat_services.ContentValidator,
	logger services.Logger,
) (*chat_services.Gateway, error) {
	return chat_services.NewGateway(chatCfg, userService.IdentityService, store, tracker, channel, logger,
		chat_services.WithDirectory(users),
		chat_services.WithAuditLog(audit),
		chat_services.WithValidators(validators...),
	)
}

func ProvideAuthHandler(userService *user_services.UserService, cfg *config.Config, logger services.Logger) *handlers.AuthHandler {
	return handlers.NewAuthHandler(userService, cfg.SecureCookies, logger)
}

func ProvideChatHandler(gateway *chat_services.Gateway, logger services.Logger) *handlers.ChatHandler {
	return handlers.NewChatHandler(gateway, logger)
}

func ProvideWebSocketHandler(gateway *chat_services.Gateway, logger services.Logger) *handlers.WebSocketHandler {
	return handlers.NewWebSocketHandler(gateway, logger)
}

func ProvideLogHandler(logger services.Logger) *handlers.LogHandler {
	return handlers.NewLogHandler(logger)
}

func ProvideHealthHandler(db *gorm.DB) (*handlers.HealthHandler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return handlers.NewHealthHandler(sqlDB), nil
}

// buildApplication wires the application by hand, in the same order as the
// injector in wire.go.
func buildApplication(cfg *config.Config, logger services.Logger, db *gorm.DB) (*Application, func(), error) {
	store, cleanup, err := ProvideMessageStore(cfg, db, logger)
	if err != nil {
		return nil, nil, err
	}
	validators, err := ProvideValidators(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	userRepo := ProvideUserRepository(db, logger)
	auditRepo := ProvideAuditRepository(db)
	userService := ProvideUserService(userRepo, auditRepo, cfg, logger)

	gateway, err := ProvideGateway(
		ProvideChatConfig(cfg),
		userService,
		store,
		presence.NewTracker(),
		ProvideBroadcastChannel(logger),
		userRepo,
		auditRepo,
		validators,
		logger,
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	healthHandler, err := ProvideHealthHandler(db)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &Application{
		Config:           cfg,
		Logger:           logger,
		DB:               db,
		Gateway:          gateway,
		UserService:      userService,
		AuditRepo:        auditRepo,
		AuthHandler:      ProvideAuthHandler(userService, cfg, logger),
		ChatHandler:      ProvideChatHandler(gateway, logger),
		WebSocketHandler: ProvideWebSocketHandler(gateway, logger),
		LogHandler:       ProvideLogHandler(logger),
		HealthHandler:    healthHandler,
	}, cleanup, nil
}
