package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Queue    QueueConfig
	Sync     SyncConfig
	Platform PlatformConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. Redis backs the webhook
// dedup window; when disabled the in-memory store is used instead.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// QueueConfig holds sync queue dispatcher configuration
type QueueConfig struct {
	DispatcherEnabled bool
	BatchSize         int
	PollInterval      time.Duration
	WorkersPerQueue   int
	RetryLimit        int
	RetryDelay        time.Duration
	CleanupEnabled    bool
	CleanupRetention  time.Duration
}

// SyncConfig holds synchronization behavior settings
type SyncConfig struct {
	// DedupWindow is how long webhook delivery ids are remembered
	DedupWindow time.Duration
	// EchoWindow is how long an outbound push suppresses the
	// platform's reflected notification
	EchoWindow time.Duration
	// StockReconcileInterval is the periodic full stock sweep
	StockReconcileInterval time.Duration
	// InboundPollInterval is how often the warehouse is asked for
	// completed goods receipts
	InboundPollInterval time.Duration
	// FfnBaseURL and FfnAPIKey configure the fulfillment client
	FfnBaseURL string
	FfnAPIKey  string
	// NotifyWebhookURL receives shipping mismatch notifications
	NotifyWebhookURL string
}

// PlatformConfig holds sales platform adapter settings. An adapter is
// only registered when its endpoint is configured; secrets come from
// the environment via the credential resolver, never from this file.
type PlatformConfig struct {
	ShopwareBaseURL        string
	ShopwareTimeoutSeconds int
	ShopifyShopDomain      string
	ShopifyAPIVersion      string
	ShopifyTimeoutSeconds  int
	CredentialEnvPrefix    string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SYNCBRIDGE_ prefix
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SYNCBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Queue: QueueConfig{
			DispatcherEnabled: v.GetBool("queue.dispatcher_enabled"),
			BatchSize:         v.GetInt("queue.batch_size"),
			PollInterval:      v.GetDuration("queue.poll_interval"),
			WorkersPerQueue:   v.GetInt("queue.workers_per_queue"),
			RetryLimit:        v.GetInt("queue.retry_limit"),
			RetryDelay:        v.GetDuration("queue.retry_delay"),
			CleanupEnabled:    v.GetBool("queue.cleanup_enabled"),
			CleanupRetention:  v.GetDuration("queue.cleanup_retention"),
		},
		Sync: SyncConfig{
			DedupWindow:            v.GetDuration("sync.dedup_window"),
			EchoWindow:             v.GetDuration("sync.echo_window"),
			StockReconcileInterval: v.GetDuration("sync.stock_reconcile_interval"),
			InboundPollInterval:    v.GetDuration("sync.inbound_poll_interval"),
			FfnBaseURL:             v.GetString("sync.ffn_base_url"),
			FfnAPIKey:              v.GetString("sync.ffn_api_key"),
			NotifyWebhookURL:       v.GetString("sync.notify_webhook_url"),
		},
		Platform: PlatformConfig{
			ShopwareBaseURL:        v.GetString("platform.shopware_base_url"),
			ShopwareTimeoutSeconds: v.GetInt("platform.shopware_timeout_seconds"),
			ShopifyShopDomain:      v.GetString("platform.shopify_shop_domain"),
			ShopifyAPIVersion:      v.GetString("platform.shopify_api_version"),
			ShopifyTimeoutSeconds:  v.GetInt("platform.shopify_timeout_seconds"),
			CredentialEnvPrefix:    v.GetString("platform.credential_env_prefix"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "syncbridge")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "syncbridge")
	v.SetDefault("database.dbname", "syncbridge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.conn_max_idle_time", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_header_bytes", 1<<20)
	v.SetDefault("http.max_body_size", int64(4<<20))

	v.SetDefault("queue.dispatcher_enabled", true)
	v.SetDefault("queue.batch_size", 20)
	v.SetDefault("queue.poll_interval", 2*time.Second)
	v.SetDefault("queue.workers_per_queue", 4)
	v.SetDefault("queue.retry_limit", 5)
	v.SetDefault("queue.retry_delay", time.Second)
	v.SetDefault("queue.cleanup_enabled", true)
	v.SetDefault("queue.cleanup_retention", 72*time.Hour)

	v.SetDefault("sync.dedup_window", 10*time.Minute)
	v.SetDefault("sync.echo_window", 3*time.Minute)
	v.SetDefault("sync.stock_reconcile_interval", 15*time.Minute)
	v.SetDefault("sync.inbound_poll_interval", time.Minute)

	v.SetDefault("platform.shopware_timeout_seconds", 30)
	v.SetDefault("platform.shopify_api_version", "2024-07")
	v.SetDefault("platform.shopify_timeout_seconds", 30)
	v.SetDefault("platform.credential_env_prefix", "SYNCBRIDGE_CHANNEL_")
}

// Validate checks configuration invariants that would otherwise surface
// as confusing runtime behavior
func (c *Config) Validate() error {
	if c.Queue.BatchSize <= 0 {
		return fmt.Errorf("queue.batch_size must be positive, got %d", c.Queue.BatchSize)
	}
	if c.Queue.WorkersPerQueue <= 0 {
		return fmt.Errorf("queue.workers_per_queue must be positive, got %d", c.Queue.WorkersPerQueue)
	}
	if c.Sync.DedupWindow <= 0 || c.Sync.EchoWindow <= 0 {
		return fmt.Errorf("sync windows must be positive")
	}
	if c.Sync.EchoWindow > c.Sync.DedupWindow {
		return fmt.Errorf("sync.echo_window must not exceed sync.dedup_window")
	}
	return nil
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN builds the postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Addr returns the redis host:port address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
