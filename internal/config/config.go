package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	DMO      DMOConfig      `mapstructure:"dmo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Search   SearchConfig   `mapstructure:"search"`
	Jobs     JobsConfig     `mapstructure:"jobs"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
}

// DMOConfig tunes the daily template materializer.
type DMOConfig struct {
	// GuardHold keeps a (user, date) key marked in progress for this long
	// after materialization finishes. Zero releases the key immediately.
	GuardHold time.Duration `mapstructure:"guard_hold" validate:"gte=0"`

	// Timezone names the IANA zone that defines "today" and the calendar
	// day of deadlines and template activations.
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// Location loads the configured time zone.
func (c DMOConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// RedisConfig configures the realtime activity feed broker.
// An empty URL disables realtime streaming.
type RedisConfig struct {
	URL     string `mapstructure:"url"     validate:"omitempty,url"`
	Channel string `mapstructure:"channel" validate:"required"`
}

// SearchConfig configures the Meilisearch journal index.
// An empty URL falls back to PostgreSQL full-text search.
type SearchConfig struct {
	MeiliURL    string `mapstructure:"meili_url"     validate:"omitempty,url"`
	MeiliAPIKey string `mapstructure:"meili_api_key"`
	Index       string `mapstructure:"index"         validate:"required"`
}

// JobsConfig contains settings for the background job runner.
type JobsConfig struct {
	WorkerCount        int `mapstructure:"worker_count"          validate:"required,gt=0"`
	QueueSize          int `mapstructure:"queue_size"            validate:"required,gt=0"`
	StuckJobAgeMinutes int `mapstructure:"stuck_job_age_minutes" validate:"required,gt=0"`
}
