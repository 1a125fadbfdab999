//go:build wireinject
// +build wireinject

// File: cmd/server/wire.go
package main

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/iyunix/go-darkbin/internal/config"
	"github.com/iyunix/go-darkbin/internal/presence"
	"github.com/iyunix/go-darkbin/internal/services"
)

func InitializeApplication(cfg *config.Config, logger services.Logger, db *gorm.DB) (*Application, func(), error) {
	wire.Build(
		// Storage
		ProvideMessageStore,
		ProvideUserRepository,
		ProvideAuditRepository,

		// Chat
		ProvideChatConfig,
		ProvideValidators,
		ProvideBroadcastChannel,
		presence.NewTracker,
		ProvideGateway,

		// Users
		ProvideUserService,

		// Handlers
		ProvideAuthHandler,
		ProvideChatHandler,
		ProvideWebSocketHandler,
		ProvideLogHandler,
		ProvideHealthHandler,

		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
