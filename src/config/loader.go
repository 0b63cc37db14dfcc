package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Loader handles loading and merging configurations from multiple sources
type Loader struct {
	precedence ConfigPrecedence
	validator  *Validator
	getenv     func(string) string
}

// NewLoader creates a new configuration loader
func NewLoader(precedence ConfigPrecedence) *Loader {
	return &Loader{
		precedence: precedence,
		validator:  NewValidator(),
		getenv:     os.Getenv,
	}
}

// Load loads configuration from all sources and merges them
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	sources := []struct {
		path   string
		source ConfigSource
	}{
		{l.precedence.SystemConfig, SourceSystem},
		{l.precedence.UserConfig, SourceUser},
		{l.precedence.ProjectConfig, SourceProject},
		{l.precedence.LocalConfig, SourceLocal},
	}

	for _, src := range sources {
		if src.path == "" {
			continue
		}

		if cfg, err := l.loadFile(src.path); err == nil {
			config = l.mergeConfigs(config, cfg)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s config from %s: %w", src.source, src.path, err)
		}
	}

	if l.precedence.EnvironmentPrefix != "" {
		if err := l.applyEnvironmentOverrides(config); err != nil {
			return nil, err
		}
	}

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &config, nil
}

// SaveFile saves configuration to a file
func (l *Loader) SaveFile(config *Config, path string) error {
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may carry the JWT secret.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// mergeConfigs merges two configurations with the second taking precedence
func (l *Loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	// Server
	if override.Server.Addr != "" {
		result.Server.Addr = override.Server.Addr
	}
	if len(override.Server.CORSOrigins) > 0 {
		result.Server.CORSOrigins = override.Server.CORSOrigins
	}
	if override.Server.RateLimitPerMinute != 0 {
		result.Server.RateLimitPerMinute = override.Server.RateLimitPerMinute
	}
	if override.Server.ShutdownTimeout != 0 {
		result.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}
	if override.Server.EnableDocs {
		result.Server.EnableDocs = true
	}

	if override.Database.Path != "" {
		result.Database.Path = override.Database.Path
	}

	if override.Auth.JWTSecret != "" {
		result.Auth.JWTSecret = override.Auth.JWTSecret
	}
	if override.Auth.TokenTTL != 0 {
		result.Auth.TokenTTL = override.Auth.TokenTTL
	}

	result.Agent = l.mergeAgentConfig(result.Agent, override.Agent)

	if override.Providers.AnthropicBaseURL != "" {
		result.Providers.AnthropicBaseURL = override.Providers.AnthropicBaseURL
	}
	if override.Providers.OpenAIBaseURL != "" {
		result.Providers.OpenAIBaseURL = override.Providers.OpenAIBaseURL
	}
	if override.Providers.Timeout != 0 {
		result.Providers.Timeout = override.Providers.Timeout
	}

	// Warehouses replace rather than append so a local file can narrow them
	if len(override.Warehouses) > 0 {
		result.Warehouses = override.Warehouses
	}
	if len(override.Repositories) > 0 {
		result.Repositories = override.Repositories
	}

	if override.Project.Name != "" {
		result.Project.Name = override.Project.Name
	}
	if override.Project.ContextDir != "" {
		result.Project.ContextDir = override.Project.ContextDir
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// mergeAgentConfig merges agent configurations
func (l *Loader) mergeAgentConfig(base, override AgentConfig) AgentConfig {
	result := base

	if len(override.Models) > 0 {
		models := make(map[string]string, len(base.Models)+len(override.Models))
		for k, v := range base.Models {
			models[k] = v
		}
		for k, v := range override.Models {
			models[k] = v
		}
		result.Models = models
	}
	if override.Temperature != 0 {
		result.Temperature = override.Temperature
	}
	if override.MaxTokens != 0 {
		result.MaxTokens = override.MaxTokens
	}
	if override.MaxSteps != 0 {
		result.MaxSteps = override.MaxSteps
	}
	if override.MaxRows != 0 {
		result.MaxRows = override.MaxRows
	}
	if override.QueryTimeout != 0 {
		result.QueryTimeout = override.QueryTimeout
	}
	if override.MaxRetries != 0 {
		result.MaxRetries = override.MaxRetries
	}
	if override.RetryDelay != 0 {
		result.RetryDelay = override.RetryDelay
	}

	return result
}

// applyEnvironmentOverrides applies environment variable overrides to config
func (l *Loader) applyEnvironmentOverrides(config *Config) error {
	prefix := l.precedence.EnvironmentPrefix

	if addr := l.getenv(prefix + "_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
	if origins := l.getenv(prefix + "_CORS_ORIGINS"); origins != "" {
		config.Server.CORSOrigins = splitList(origins)
	}
	if path := l.getenv(prefix + "_DATABASE_PATH"); path != "" {
		config.Database.Path = path
	}
	if secret := l.getenv(prefix + "_JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if ttl := l.getenv(prefix + "_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid %s_TOKEN_TTL: %w", prefix, err)
		}
		config.Auth.TokenTTL = d
	}
	if steps := l.getenv(prefix + "_MAX_STEPS"); steps != "" {
		n, err := strconv.Atoi(steps)
		if err != nil {
			return fmt.Errorf("invalid %s_MAX_STEPS: %w", prefix, err)
		}
		config.Agent.MaxSteps = n
	}
	if dir := l.getenv(prefix + "_CONTEXT_DIR"); dir != "" {
		config.Project.ContextDir = dir
	}
	if level := l.getenv(prefix + "_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if format := l.getenv(prefix + "_LOG_FORMAT"); format != "" {
		config.Logging.Format = strings.ToLower(format)
	}
	if url := l.getenv(prefix + "_ANTHROPIC_BASE_URL"); url != "" {
		config.Providers.AnthropicBaseURL = url
	}
	if url := l.getenv(prefix + "_OPENAI_BASE_URL"); url != "" {
		config.Providers.OpenAIBaseURL = url
	}

	// NAOCHAT_WAREHOUSE_DSN adds a warehouse when none is configured, which is
	// the common single-database deployment.
	if dsn := l.getenv(prefix + "_WAREHOUSE_DSN"); dsn != "" && len(config.Warehouses) == 0 {
		driver := l.getenv(prefix + "_WAREHOUSE_DRIVER")
		if driver == "" {
			driver = DriverSQLite
		}
		config.Warehouses = []WarehouseConfig{{Name: "default", Driver: driver, DSN: dsn}}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetConfigPaths returns the configuration file paths to check
func GetConfigPaths() ConfigPrecedence {
	userConfigPath := filepath.Join(xdg.ConfigHome, "naochat", "config.json")

	systemConfigPath := "/etc/naochat/config.json"
	if runtime.GOOS == "windows" {
		systemConfigPath = filepath.Join(os.Getenv("PROGRAMDATA"), "naochat", "config.json")
	}

	projectDir := ".naochat"
	if found, err := FindProjectConfigDir(""); err == nil {
		projectDir = found
	}

	return ConfigPrecedence{
		SystemConfig:      systemConfigPath,
		UserConfig:        userConfigPath,
		ProjectConfig:     filepath.Join(projectDir, "config.json"),
		LocalConfig:       filepath.Join(projectDir, "config.local.json"),
		EnvironmentPrefix: "NAOCHAT",
	}
}

// FindProjectConfigDir walks up from startDir looking for a .naochat
// directory, stopping at the home directory.
func FindProjectConfigDir(startDir string) (string, error) {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	home, _ := os.UserHomeDir()
	currentDir := startDir
	for {
		candidate := filepath.Join(currentDir, ".naochat")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir || currentDir == home {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("no project configuration found")
}

// FindConfigFile returns the highest-precedence configuration file that exists
func FindConfigFile() (string, error) {
	paths := GetConfigPaths()

	checkPaths := []string{
		paths.LocalConfig,
		paths.ProjectConfig,
		paths.UserConfig,
		paths.SystemConfig,
	}

	for _, path := range checkPaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found")
}
