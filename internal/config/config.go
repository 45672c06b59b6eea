package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/vivispa/catalog-api/pkg/validator"
)

// EnvPrefix prefixes every environment override, e.g. CATALOG_SERVER_PORT.
const EnvPrefix = "CATALOG"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	TimeoutSeconds  int           `mapstructure:"timeoutSeconds" validate:"min=1"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AdminEnabled    bool          `mapstructure:"admin_enabled"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

type CatalogConfig struct {
	Source          string        `mapstructure:"source" validate:"oneof=file postgres"`
	Path            string        `mapstructure:"path"`
	Watch           bool          `mapstructure:"watch"`
	WatchDebounce   time.Duration `mapstructure:"watch_debounce"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// DSN returns URL when set, otherwise a keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Channel      string        `mapstructure:"channel"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// Enabled reports whether reload events are published over redis.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
	MaxAge       int      `mapstructure:"max_age"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// envOverrides are read with envconfig after the file so deployment
// secrets never need to live in config.yaml.
type envOverrides struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`
	Port        int    `envconfig:"PORT"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	CatalogPath string `envconfig:"CATALOG_PATH"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeoutSeconds", 30)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.admin_enabled", false)
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("catalog.source", "file")
	v.SetDefault("catalog.path", "data/catalog.yaml")
	v.SetDefault("catalog.watch", true)
	v.SetDefault("catalog.watch_debounce", 250*time.Millisecond)
	v.SetDefault("catalog.refresh_interval", 5*time.Minute)

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "catalog")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.channel", "catalog.events")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)

	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.cleanup_interval", 15*time.Minute)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.max_age", 86400)

	v.SetDefault("metrics.namespace", "vivi")
}

// LoadConfig reads path, or config.yaml from the usual locations when path
// is empty. A missing default file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Validate(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func applyEnv(config *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if env.DatabaseURL != "" {
		config.Database.URL = env.DatabaseURL
	}
	if env.RedisURL != "" {
		config.Redis.URL = env.RedisURL
	}
	if env.Port != 0 {
		config.Server.Port = env.Port
	}
	if env.LogLevel != "" {
		config.Log.Level = env.LogLevel
	}
	if env.CatalogPath != "" {
		config.Catalog.Path = env.CatalogPath
	}
	return nil
}
