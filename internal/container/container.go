// Package container wires application dependencies with dig.
package container

import (
	"onec-gateway/internal/app"
	"onec-gateway/internal/config"
	"onec-gateway/internal/handler"
	"onec-gateway/internal/mcp"
	"onec-gateway/internal/router"
	"onec-gateway/internal/session"
	"onec-gateway/internal/types"
	"onec-gateway/internal/upstream"

	"go.uber.org/dig"
)

// BuildContainer creates and configures the dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		// Configuration
		config.NewManager,

		// Upstream client and session stores
		func(configManager types.ConfigManager) *upstream.Client {
			return upstream.NewClient(configManager.GetUpstreamConfig())
		},
		func(client *upstream.Client, configManager types.ConfigManager) *session.ConversationStore {
			return session.NewConversationStore(client, configManager.GetSessionConfig())
		},
		func(configManager types.ConfigManager) *mcp.SessionStore {
			return mcp.NewSessionStore(configManager.GetSessionConfig())
		},

		// HTTP handlers
		handler.NewCommonHandler,
		handler.NewChatHandler,
		handler.NewOpenAIHandler,
		handler.NewMCPHandler,

		// Router and application
		router.NewRouter,
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
