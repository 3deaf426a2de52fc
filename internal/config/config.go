package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Vault    VaultConfig
	Runner   RunnerConfig
	GitHub   GitHubConfig
	Fleet    FleetConfig
	Slack    SlackConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// VaultConfig holds secret storage settings. An empty passphrase means
// secrets are stored unencrypted, acceptable only on a trusted workstation.
type VaultConfig struct {
	Passphrase string //nolint:gosec // G117: vault key config
}

// RunnerConfig holds agent process settings.
type RunnerConfig struct {
	Bin          string
	AllowedTools []string
}

// GitHubConfig holds PR review polling settings.
type GitHubConfig struct {
	PollInterval time.Duration
	MaxPolls     int
}

// FleetConfig holds roster broadcast settings.
type FleetConfig struct {
	PollInterval time.Duration
}

// SlackConfig holds optional Slack notification settings.
type SlackConfig struct {
	BotToken string
	Channel  string
}

// Load reads configuration from environment variables. Defaults suit a
// single-operator local deployment.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("POIETAI_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("POIETAI_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("POIETAI_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("POIETAI_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("POIETAI_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	reviewInterval, err := getEnvDuration("POIETAI_GITHUB_POLL_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	reviewMaxPolls, err := getEnvInt("POIETAI_GITHUB_MAX_POLLS", 120)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	fleetInterval, err := getEnvDuration("POIETAI_FLEET_POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("POIETAI_CORS_ORIGINS", []string{"http://localhost:5173", "tauri://localhost"})
	allowedTools := getEnvList("POIETAI_RUNNER_ALLOWED_TOOLS", []string{
		"Read", "Edit", "Write", "Bash", "Glob", "Grep",
	})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POIETAI_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("POIETAI_DB_USER", "poietai"),
			Password: getEnv("POIETAI_DB_PASSWORD", ""),
			DBName:   getEnv("POIETAI_DB_NAME", "poietai_dev"),
			SSLMode:  getEnv("POIETAI_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("POIETAI_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("POIETAI_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Server: ServerConfig{
			Addr:         getEnv("POIETAI_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		Vault: VaultConfig{
			Passphrase: getEnv("POIETAI_VAULT_PASSPHRASE", ""),
		},
		Runner: RunnerConfig{
			Bin:          getEnv("POIETAI_RUNNER_BIN", "claude"),
			AllowedTools: allowedTools,
		},
		GitHub: GitHubConfig{
			PollInterval: reviewInterval,
			MaxPolls:     reviewMaxPolls,
		},
		Fleet: FleetConfig{
			PollInterval: fleetInterval,
		},
		Slack: SlackConfig{
			BotToken: getEnv("POIETAI_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("POIETAI_SLACK_CHANNEL", ""),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("POIETAI_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("POIETAI_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("POIETAI_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("POIETAI_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Runner.Bin == "" {
		return fmt.Errorf("POIETAI_RUNNER_BIN must not be empty")
	}
	if c.GitHub.PollInterval <= 0 {
		return fmt.Errorf("POIETAI_GITHUB_POLL_INTERVAL must be positive, got %s", c.GitHub.PollInterval)
	}
	if c.GitHub.MaxPolls < 1 {
		return fmt.Errorf("POIETAI_GITHUB_MAX_POLLS must be >= 1, got %d", c.GitHub.MaxPolls)
	}
	if c.Fleet.PollInterval <= 0 {
		return fmt.Errorf("POIETAI_FLEET_POLL_INTERVAL must be positive, got %s", c.Fleet.PollInterval)
	}
	if c.Slack.BotToken != "" && c.Slack.Channel == "" {
		return fmt.Errorf("POIETAI_SLACK_CHANNEL is required when POIETAI_SLACK_BOT_TOKEN is set")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
