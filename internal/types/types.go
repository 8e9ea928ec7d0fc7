package types

import "time"

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetAuthConfig() AuthConfig
	GetCORSConfig() CORSConfig
	GetLogConfig() LogConfig
	GetServerConfig() ServerConfig
	GetUpstreamConfig() UpstreamConfig
	GetSessionConfig() SessionConfig
	GetPublicModelID() string
	Validate() error
	DisplayServerConfig()
	ReloadConfig() error
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port                    int    `json:"port"`
	Host                    string `json:"host"`
	ReadTimeout             int    `json:"read_timeout"`
	WriteTimeout            int    `json:"write_timeout"`
	IdleTimeout             int    `json:"idle_timeout"`
	GracefulShutdownTimeout int    `json:"graceful_shutdown_timeout"`
}

// AuthConfig represents gateway authentication configuration.
// An empty Key disables the OpenAI-compatible surface entirely.
type AuthConfig struct {
	Key string `json:"key"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	EnableFile bool   `json:"enable_file"`
	FilePath   string `json:"file_path"`
}

// UpstreamConfig represents the connection settings for the upstream
// conversational AI service.
type UpstreamConfig struct {
	BaseURL             string `json:"base_url"`
	Token               string `json:"-"`
	ConnectTimeout      int    `json:"connect_timeout"`
	UILanguage          string `json:"ui_language"`
	ProgrammingLanguage string `json:"programming_language"`
	StealthMode         bool   `json:"stealth_mode"`
	InputMaxLength      int    `json:"input_max_length"`
}

// SessionConfig bounds the in-memory session stores.
type SessionConfig struct {
	MaxActiveSessions int           `json:"max_active_sessions"`
	ConversationTTL   time.Duration `json:"conversation_ttl"`
	MCPSessionTTL     time.Duration `json:"mcp_session_ttl"`
}
