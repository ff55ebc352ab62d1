package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Redis     RedisConfig     `yaml:"redis"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Policy    PolicyConfig    `yaml:"policy"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	// Per-statement lock wait inside capacity transactions, e.g. "5s".
	LockTimeout string `yaml:"lock_timeout"`
}

// JWTConfig contains bearer token validation settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SendGridConfig enables the email channel for notifications. Empty APIKey
// keeps notifications in-app only.
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// RedisConfig enables the availability snapshot cache. Empty Addr disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// MetricsConfig controls the Prometheus endpoint of the cronjob runner.
// The HTTP server always serves /metrics on its own port.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// SchedulerConfig contains cron schedule settings (seconds precision, UTC)
type SchedulerConfig struct {
	ActivateDueReservations string `yaml:"activate_due_reservations"`
	CancelUnclaimedPickups  string `yaml:"cancel_unclaimed_pickups"`
	CheckOverdue            string `yaml:"check_overdue"`
}

// PolicyConfig holds the tunables of the sweep jobs and the calendar view
type PolicyConfig struct {
	PenaltyDays     int `yaml:"penalty_days"`
	BatchSize       int `yaml:"batch_size"`
	PreviewLimit    int `yaml:"preview_limit"`
	MaxCalendarDays int `yaml:"max_calendar_days"`

	// Treat a calendar with no business-hour rows as open every day.
	OpenWhenUnconfigured bool `yaml:"open_when_unconfigured"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Policy
	if val := os.Getenv("PENALTY_DAYS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Policy.PenaltyDays)
	}
	if val := os.Getenv("OPEN_WHEN_UNCONFIGURED"); val != "" {
		c.Policy.OpenWhenUnconfigured = val == "true" || val == "1"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.LockTimeout == "" {
		c.Database.LockTimeout = "5s"
	}
	if _, err := time.ParseDuration(c.Database.LockTimeout); err != nil {
		return fmt.Errorf("invalid database lock_timeout %q: %w", c.Database.LockTimeout, err)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from_email is required when api_key is set")
	}
	if c.SendGrid.FromName == "" {
		c.SendGrid.FromName = "Toolshed"
	}

	if c.Redis.TTL == 0 {
		c.Redis.TTL = 5 * time.Minute
	}

	// Policy defaults
	if c.Policy.PenaltyDays < 0 {
		return fmt.Errorf("penalty_days must not be negative: %d", c.Policy.PenaltyDays)
	}
	if c.Policy.PenaltyDays == 0 {
		c.Policy.PenaltyDays = 7
	}
	if c.Policy.BatchSize <= 0 {
		c.Policy.BatchSize = 100
	}
	if c.Policy.PreviewLimit <= 0 {
		c.Policy.PreviewLimit = 20
	}
	if c.Policy.MaxCalendarDays <= 0 {
		c.Policy.MaxCalendarDays = 92
	}

	// Scheduler defaults
	if c.Scheduler.ActivateDueReservations == "" {
		c.Scheduler.ActivateDueReservations = "0 5 0 * * *" // 00:05 UTC
	}
	if c.Scheduler.CancelUnclaimedPickups == "" {
		c.Scheduler.CancelUnclaimedPickups = "0 15 0 * * *" // 00:15 UTC
	}
	if c.Scheduler.CheckOverdue == "" {
		c.Scheduler.CheckOverdue = "0 0 8 * * *" // 8 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetLockTimeout returns the validated lock wait for capacity transactions
func (c *Config) GetLockTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Database.LockTimeout)
	return d
}
