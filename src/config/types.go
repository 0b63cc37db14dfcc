package config

import (
	"time"
)

// Config represents the complete configuration for naochat
type Config struct {
	// Version of the configuration format
	Version string `json:"version"`

	// Server holds the HTTP listener settings
	Server ServerConfig `json:"server"`

	// Database holds the application database location
	Database DatabaseConfig `json:"database"`

	// Auth holds session token settings
	Auth AuthConfig `json:"auth"`

	// Agent configuration
	Agent AgentConfig `json:"agent"`

	// Providers holds model provider endpoints
	Providers ProvidersConfig `json:"providers"`

	// Warehouses the agent may query
	Warehouses []WarehouseConfig `json:"warehouses,omitempty" validate:"dive"`

	// Repositories cloned into the context folder by sync
	Repositories []RepoConfig `json:"repositories,omitempty" validate:"dive"`

	// Project holds the default project bootstrapped on first start
	Project ProjectConfig `json:"project"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig defines the HTTP server
type ServerConfig struct {
	// Addr to listen on, e.g. ":5005"
	Addr string `json:"addr" validate:"required"`

	// CORSOrigins allowed to call the API. Empty allows none.
	CORSOrigins []string `json:"cors_origins,omitempty"`

	// RateLimitPerMinute caps requests per client IP. Zero disables limiting.
	RateLimitPerMinute int `json:"rate_limit_per_minute" validate:"min=0"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty" validate:"min=0"`

	// EnableDocs serves the swagger UI under /swagger
	EnableDocs bool `json:"enable_docs"`
}

// DatabaseConfig defines where application state lives
type DatabaseConfig struct {
	// Path to the sqlite database file
	Path string `json:"path,omitempty"`
}

// AuthConfig defines session tokens
type AuthConfig struct {
	// JWTSecret signs session tokens. Required when serving.
	JWTSecret string `json:"jwt_secret,omitempty"`

	// TokenTTL is how long a session token stays valid
	TokenTTL time.Duration `json:"token_ttl,omitempty" validate:"min=0"`
}

// AgentConfig holds agent loop settings
type AgentConfig struct {
	// Models maps a provider to the model used with it
	Models map[string]string `json:"models,omitempty" validate:"dive,keys,provider,endkeys,required"`

	Temperature float32 `json:"temperature" validate:"min=0,max=2"`
	MaxTokens   int     `json:"max_tokens" validate:"min=1"`

	// MaxSteps bounds the number of model calls per user message
	MaxSteps int `json:"max_steps" validate:"min=1"`

	// MaxRows caps the rows execute_sql returns to the model
	MaxRows int `json:"max_rows" validate:"min=1"`

	// QueryTimeout bounds a single execute_sql call
	QueryTimeout time.Duration `json:"query_timeout,omitempty" validate:"min=0"`

	MaxRetries int `json:"max_retries" validate:"min=0"`
	RetryDelay int `json:"retry_delay" validate:"min=0"`
}

// ProvidersConfig defines the OpenAI-compatible endpoints of each provider
type ProvidersConfig struct {
	AnthropicBaseURL string        `json:"anthropic_base_url,omitempty" validate:"omitempty,url"`
	OpenAIBaseURL    string        `json:"openai_base_url,omitempty" validate:"omitempty,url"`
	Timeout          time.Duration `json:"timeout,omitempty" validate:"min=0"`
}

// WarehouseConfig names a database the agent can query
type WarehouseConfig struct {
	Name   string `json:"name" validate:"required"`
	Driver string `json:"driver" validate:"required,warehouse_driver"`
	DSN    string `json:"dsn" validate:"required"`
}

// RepoConfig is a git repository mirrored under repos/<name> in the context folder
type RepoConfig struct {
	Name   string `json:"name" validate:"required"`
	URL    string `json:"url" validate:"required"`
	Branch string `json:"branch,omitempty"`
}

// ProjectConfig describes the default project
type ProjectConfig struct {
	// Name of the project created on first start
	Name string `json:"name,omitempty"`

	// ContextDir is the folder the file tools read from
	ContextDir string `json:"context_dir,omitempty"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" validate:"log_level"`

	// Format is the output format (text, json)
	Format string `json:"format,omitempty" validate:"log_format"`
}

// ConfigPrecedence defines the order of configuration loading
type ConfigPrecedence struct {
	// SystemConfig path
	SystemConfig string

	// UserConfig path
	UserConfig string

	// ProjectConfig path
	ProjectConfig string

	// LocalConfig path
	LocalConfig string

	// EnvironmentPrefix for env var overrides
	EnvironmentPrefix string
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ConfigSource indicates where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"
	SourceUser        ConfigSource = "user"
	SourceProject     ConfigSource = "project"
	SourceLocal       ConfigSource = "local"
	SourceEnvironment ConfigSource = "environment"
)

// Warehouse drivers
const (
	DriverSQLite    = "sqlite"
	DriverSQLServer = "sqlserver"
)
