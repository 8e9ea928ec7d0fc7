// Package config provides environment-driven configuration management.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"onec-gateway/internal/types"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Manager implements types.ConfigManager backed by environment variables.
type Manager struct {
	serverConfig   types.ServerConfig
	authConfig     types.AuthConfig
	corsConfig     types.CORSConfig
	logConfig      types.LogConfig
	upstreamConfig types.UpstreamConfig
	sessionConfig  types.SessionConfig
	publicModelID  string
}

// NewManager creates a new configuration manager, loading .env if present.
func NewManager() (types.ConfigManager, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using system environment variables")
	}

	manager := &Manager{}
	if err := manager.ReloadConfig(); err != nil {
		return nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, err
	}
	return manager, nil
}

// ReloadConfig re-reads all configuration from the environment.
func (m *Manager) ReloadConfig() error {
	m.serverConfig = types.ServerConfig{
		Port:                    parseInteger(os.Getenv("PORT"), 6002),
		Host:                    getEnvOrDefault("HOST", "0.0.0.0"),
		ReadTimeout:             parseInteger(os.Getenv("SERVER_READ_TIMEOUT"), 60),
		WriteTimeout:            parseInteger(os.Getenv("SERVER_WRITE_TIMEOUT"), 0),
		IdleTimeout:             parseInteger(os.Getenv("SERVER_IDLE_TIMEOUT"), 120),
		GracefulShutdownTimeout: parseInteger(os.Getenv("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT"), 10),
	}

	m.authConfig = types.AuthConfig{
		Key: os.Getenv("AUTH_KEY"),
	}

	m.corsConfig = types.CORSConfig{
		Enabled:          parseBoolean(os.Getenv("ENABLE_CORS"), true),
		AllowedOrigins:   parseArray(os.Getenv("ALLOWED_ORIGINS"), []string{"*"}),
		AllowedMethods:   parseArray(os.Getenv("ALLOWED_METHODS"), []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders:   parseArray(os.Getenv("ALLOWED_HEADERS"), []string{"*"}),
		AllowCredentials: parseBoolean(os.Getenv("ALLOW_CREDENTIALS"), false),
	}

	m.logConfig = types.LogConfig{
		Level:      getEnvOrDefault("LOG_LEVEL", "info"),
		Format:     getEnvOrDefault("LOG_FORMAT", "text"),
		EnableFile: parseBoolean(os.Getenv("LOG_ENABLE_FILE"), false),
		FilePath:   getEnvOrDefault("LOG_FILE_PATH", "./logs/app.log"),
	}

	m.upstreamConfig = types.UpstreamConfig{
		BaseURL:             strings.TrimRight(getEnvOrDefault("UPSTREAM_BASE_URL", "https://code.1c.ai"), "/"),
		Token:               os.Getenv("UPSTREAM_TOKEN"),
		ConnectTimeout:      parseInteger(os.Getenv("UPSTREAM_TIMEOUT"), 30),
		UILanguage:          getEnvOrDefault("UPSTREAM_UI_LANGUAGE", "russian"),
		ProgrammingLanguage: os.Getenv("UPSTREAM_PROGRAMMING_LANGUAGE"),
		StealthMode:         parseBoolean(os.Getenv("UPSTREAM_STEALTH_MODE"), false),
		InputMaxLength:      parseInteger(os.Getenv("UPSTREAM_INPUT_MAX_LENGTH"), 100000),
	}

	m.sessionConfig = types.SessionConfig{
		MaxActiveSessions: parseInteger(os.Getenv("MAX_ACTIVE_SESSIONS"), 300),
		ConversationTTL:   time.Duration(parseInteger(os.Getenv("SESSION_TTL"), 3600)) * time.Second,
		MCPSessionTTL:     time.Duration(parseInteger(os.Getenv("MCP_SESSION_TTL"), 3600)) * time.Second,
	}

	m.publicModelID = getEnvOrDefault("PUBLIC_MODEL_ID", "1c-buddy")

	return nil
}

// Validate checks the configuration for sanity.
func (m *Manager) Validate() error {
	if m.serverConfig.Port < 1 || m.serverConfig.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", m.serverConfig.Port)
	}
	if m.upstreamConfig.Token == "" {
		return fmt.Errorf("UPSTREAM_TOKEN is required")
	}
	if _, err := url.Parse(m.upstreamConfig.BaseURL); err != nil {
		return fmt.Errorf("invalid UPSTREAM_BASE_URL: %w", err)
	}
	if m.upstreamConfig.ConnectTimeout < 1 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be at least 1 second, got %d", m.upstreamConfig.ConnectTimeout)
	}
	if m.sessionConfig.MaxActiveSessions < 1 {
		return fmt.Errorf("MAX_ACTIVE_SESSIONS must be at least 1, got %d", m.sessionConfig.MaxActiveSessions)
	}
	if m.sessionConfig.ConversationTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if m.sessionConfig.MCPSessionTTL <= 0 {
		return fmt.Errorf("MCP_SESSION_TTL must be positive")
	}
	return nil
}

// GetAuthConfig returns the gateway authentication configuration.
func (m *Manager) GetAuthConfig() types.AuthConfig {
	return m.authConfig
}

// GetCORSConfig returns the CORS configuration.
func (m *Manager) GetCORSConfig() types.CORSConfig {
	return m.corsConfig
}

// GetLogConfig returns the logging configuration.
func (m *Manager) GetLogConfig() types.LogConfig {
	return m.logConfig
}

// GetServerConfig returns the server configuration.
func (m *Manager) GetServerConfig() types.ServerConfig {
	return m.serverConfig
}

// GetUpstreamConfig returns the upstream service configuration.
func (m *Manager) GetUpstreamConfig() types.UpstreamConfig {
	return m.upstreamConfig
}

// GetSessionConfig returns the session store configuration.
func (m *Manager) GetSessionConfig() types.SessionConfig {
	return m.sessionConfig
}

// GetPublicModelID returns the model id reported to OpenAI-compatible clients.
func (m *Manager) GetPublicModelID() string {
	return m.publicModelID
}

// DisplayServerConfig logs the effective configuration at startup.
func (m *Manager) DisplayServerConfig() {
	logrus.Info("Gateway configuration:")
	logrus.Infof("  Listen: %s:%d", m.serverConfig.Host, m.serverConfig.Port)
	logrus.Infof("  Upstream: %s (timeout %ds, stealth=%v)", m.upstreamConfig.BaseURL, m.upstreamConfig.ConnectTimeout, m.upstreamConfig.StealthMode)
	logrus.Infof("  Sessions: max=%d, conversation TTL=%s, MCP TTL=%s",
		m.sessionConfig.MaxActiveSessions, m.sessionConfig.ConversationTTL, m.sessionConfig.MCPSessionTTL)
	if m.authConfig.Key == "" {
		logrus.Info("  OpenAI-compatible API: disabled (AUTH_KEY not set)")
	} else {
		logrus.Info("  OpenAI-compatible API: enabled")
	}
	logrus.Infof("  Public model id: %s", m.publicModelID)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInteger(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolean(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseArray(value string, defaultValue []string) []string {
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
