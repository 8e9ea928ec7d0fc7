// Package app provides the main application logic and lifecycle management.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"onec-gateway/internal/i18n"
	"onec-gateway/internal/mcp"
	"onec-gateway/internal/types"
	"onec-gateway/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"
)

const mcpCleanupInterval = 5 * time.Minute

// App holds all services and manages the application lifecycle.
type App struct {
	engine        *gin.Engine
	configManager types.ConfigManager
	mcpSessions   *mcp.SessionStore
	httpServer    *http.Server

	cleanupStop chan struct{}
}

// AppParams defines the dependencies for the App.
type AppParams struct {
	dig.In
	Engine        *gin.Engine
	ConfigManager types.ConfigManager
	MCPSessions   *mcp.SessionStore
}

// NewApp is the constructor for App, with dependencies injected by dig.
func NewApp(params AppParams) *App {
	return &App{
		engine:        params.Engine,
		configManager: params.ConfigManager,
		mcpSessions:   params.MCPSessions,
		cleanupStop:   make(chan struct{}),
	}
}

// Start runs the application, it is a non-blocking call.
func (a *App) Start() error {
	// Initialize i18n
	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to initialize i18n: %w", err)
	}

	a.configManager.DisplayServerConfig()

	// Expired MCP sessions are also dropped lazily on access; the sweeper
	// keeps the map from growing with abandoned sessions.
	go a.runMCPCleanup()

	serverConfig := a.configManager.GetServerConfig()
	a.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
		Handler:        a.engine,
		ReadTimeout:    time.Duration(serverConfig.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(serverConfig.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(serverConfig.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Infof("1C gateway started successfully, version: %s", version.Version)
		logrus.Infof("Server address: http://%s:%d", serverConfig.Host, serverConfig.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server startup failed: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the application.
func (a *App) Stop(ctx context.Context) {
	logrus.Info("Shutting down server...")

	close(a.cleanupStop)

	shutdownStart := time.Now()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logrus.Debug("HTTP server graceful shutdown timed out, forcing remaining connections to close.")
		if closeErr := a.httpServer.Close(); closeErr != nil {
			logrus.Errorf("Error forcing HTTP server to close: %v", closeErr)
		}
	}
	logrus.Infof("HTTP server has been shut down. (took %v)", time.Since(shutdownStart))
	logrus.Info("Server exited gracefully")
}

func (a *App) runMCPCleanup() {
	ticker := time.NewTicker(mcpCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := a.mcpSessions.Cleanup(); removed > 0 {
				logrus.Debugf("Removed %d expired MCP sessions", removed)
			}
		case <-a.cleanupStop:
			return
		}
	}
}
