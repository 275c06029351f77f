package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every application setting.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Logger   LoggerConfig
	Stats    StatsConfig
	CSV      CSVConfig `mapstructure:"csv"`
	Admin    AdminConfig
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	MaxUploadMB  int64    `mapstructure:"max_upload_mb"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// DatabaseConfig selects the store. Driver "memory" keeps everything in
// process and ignores the connection fields.
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"`
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig describes the Redis deployment in single, sentinel or cluster mode.
type RedisConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Mode is "single", "sentinel" or "cluster". Defaults to "single".
	Mode string `mapstructure:"mode"`

	// Addrs lists host:port pairs. In single mode the first one is used.
	Addrs []string `mapstructure:"addrs"`

	// Addr is the single-mode address used when Addrs is empty.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName is only used in sentinel mode.
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// JWTConfig configures the admin bearer tokens.
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
	Issuer        string `mapstructure:"issuer"`
}

// LoggerConfig configures zap.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

// StatsConfig tunes the statistics endpoints.
type StatsConfig struct {
	CacheTTLSeconds    int `mapstructure:"cache_ttl_seconds"`
	DefaultWindowDays  int `mapstructure:"default_window_days"`
	RecentActivityDays int `mapstructure:"recent_activity_days"`
	RecentActivityMax  int `mapstructure:"recent_activity_limit"`
}

// CacheTTL returns the cache lifetime. Zero disables caching.
func (s StatsConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// CSVConfig tunes the import/export endpoints.
type CSVConfig struct {
	Timezone        string `mapstructure:"timezone"`
	RateLimitPerMin int    `mapstructure:"rate_limit_per_minute"`
}

// Location resolves Timezone, falling back to UTC.
func (c CSVConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AdminConfig names a staff account ensured at startup. Both fields empty
// disables seeding.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

// PostgresConnectionString builds the libpq DSN used by gorm.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL is the URL form golang-migrate expects.
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 30)
	vip.SetDefault("server.write_timeout", 60)
	vip.SetDefault("server.max_upload_mb", 10)
	vip.SetDefault("database.driver", "postgres")
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "migrations")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("jwt.expirationHrs", 24)
	vip.SetDefault("jwt.issuer", "quizbank-api")
	vip.SetDefault("logger.level", "info")
	vip.SetDefault("logger.env", "development")
	vip.SetDefault("stats.cache_ttl_seconds", 60)
	vip.SetDefault("stats.default_window_days", 30)
	vip.SetDefault("stats.recent_activity_days", 30)
	vip.SetDefault("stats.recent_activity_limit", 10)
	vip.SetDefault("csv.timezone", "UTC")
	vip.SetDefault("csv.rate_limit_per_minute", 30)
}

func bindEnv(vip *viper.Viper) {
	bindings := map[string]string{
		"server.port":          "SERVER_PORT",
		"server.read_timeout":  "SERVER_READ_TIMEOUT",
		"server.write_timeout": "SERVER_WRITE_TIMEOUT",
		"server.max_upload_mb": "SERVER_MAX_UPLOAD_MB",
		"server.cors_origins":  "SERVER_CORS_ORIGINS",

		"database.driver":           "DATABASE_DRIVER",
		"database.host":             "DATABASE_HOST",
		"database.port":             "DATABASE_PORT",
		"database.user":             "DATABASE_USER",
		"database.password":         "DATABASE_PASSWORD",
		"database.dbname":           "DATABASE_DBNAME",
		"database.sslmode":          "DATABASE_SSLMODE",
		"database.migrate_on_start": "DATABASE_MIGRATE_ON_START",
		"database.migrations_path":  "DATABASE_MIGRATIONS_PATH",

		"redis.enabled":     "REDIS_ENABLED",
		"redis.mode":        "REDIS_MODE",
		"redis.addrs":       "REDIS_ADDRS",
		"redis.addr":        "REDIS_ADDR",
		"redis.password":    "REDIS_PASSWORD",
		"redis.db":          "REDIS_DB",
		"redis.master_name": "REDIS_MASTER_NAME",

		"jwt.secret":        "JWT_SECRET",
		"jwt.expirationHrs": "JWT_EXPIRATIONHRS",
		"jwt.issuer":        "JWT_ISSUER",

		"logger.level": "LOG_LEVEL",
		"logger.env":   "APP_ENV",

		"stats.cache_ttl_seconds":     "STATS_CACHE_TTL_SECONDS",
		"stats.default_window_days":   "STATS_DEFAULT_WINDOW_DAYS",
		"stats.recent_activity_days":  "STATS_RECENT_ACTIVITY_DAYS",
		"stats.recent_activity_limit": "STATS_RECENT_ACTIVITY_LIMIT",

		"csv.timezone":              "CSV_TIMEZONE",
		"csv.rate_limit_per_minute": "CSV_RATE_LIMIT_PER_MINUTE",

		"admin.username": "ADMIN_USERNAME",
		"admin.password": "ADMIN_PASSWORD",
		"admin.email":    "ADMIN_EMAIL",
	}
	for key, env := range bindings {
		_ = vip.BindEnv(key, env)
	}
}

// Load reads configPath (a missing file is tolerated), overlays the bound
// environment variables and validates the result. A .env file in the
// working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	vip := viper.New()
	setDefaults(vip)
	bindEnv(vip)

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
			return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q (want postgres or memory)", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		return fmt.Errorf("admin seeding needs both ADMIN_USERNAME and ADMIN_PASSWORD")
	}
	if c.Redis.Enabled && len(c.Redis.Addrs) == 0 && c.Redis.Addr == "" {
		return fmt.Errorf("redis is enabled but no address is configured (check REDIS_ADDR or REDIS_ADDRS env vars)")
	}
	return nil
}
