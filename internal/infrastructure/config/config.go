package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	Dedup       DedupConfig
	Health      HealthConfig
	Stripe      StripeConfig
	NMI         NMIConfig
	Sezzle      SezzleConfig
	Email       EmailConfig
	SEO         SEOConfig
	Search      SearchConfig
	Storage     StorageConfig
	Fulfillment FulfillmentConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name     string
	Env      string
	Port     string
	ShopURL  string // canonical public URL, used by sitemap and emails
	Currency string

	// AdminAPIKey guards the /admin endpoints. Empty disables them.
	AdminAPIKey string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	CheckoutRateLimitRequests int
	CheckoutRateLimitWindow   time.Duration
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

// DSN builds a Postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL builds a postgres:// URL suitable for golang-migrate
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
}

// Addr returns the host:port address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig holds customer session token settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DedupConfig holds order deduplication settings
type DedupConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

// HealthConfig holds health monitor settings
type HealthConfig struct {
	Enabled             bool
	Interval            time.Duration
	DBConnWarnThreshold int
	RedisLatencyWarn    time.Duration
	HeapWarnBytes       uint64
	LoadWarnPerCPU      float64
}

// StripeConfig holds Stripe gateway settings
type StripeConfig struct {
	Enabled       bool
	SecretKey     string
	WebhookSecret string
}

// NMIConfig holds NMI gateway settings
type NMIConfig struct {
	Enabled     bool
	SecurityKey string
	Endpoint    string
}

// SezzleConfig holds Sezzle gateway settings
type SezzleConfig struct {
	Enabled    bool
	PublicKey  string
	PrivateKey string
	Endpoint   string
}

// EmailConfig holds SMTP notification settings
type EmailConfig struct {
	Enabled     bool
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// SEOConfig holds sitemap generation settings
type SEOConfig struct {
	Enabled            bool
	RegenerateInterval time.Duration
	CacheTTL           time.Duration
}

// SearchConfig holds Elasticsearch settings
type SearchConfig struct {
	Enabled   bool
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// StorageConfig holds S3-compatible asset storage settings
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

// FulfillmentConfig holds fulfillment export settings
type FulfillmentConfig struct {
	Enabled       bool
	ExportTimeout time.Duration
	MaxAttempts   int
	RetryInterval time.Duration
}

// TelemetryConfig holds OpenTelemetry tracing and metrics settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool

	// MetricInterval is how often accumulated metrics are exported
	MetricInterval time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g. STOREFRONT_DATABASE_PASSWORD)
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

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Port:     v.GetString("app.port"),
			ShopURL:  v.GetString("app.shop_url"),
			Currency: v.GetString("app.currency"),

			AdminAPIKey: v.GetString("app.admin_api_key"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),

			CheckoutRateLimitRequests: v.GetInt("http.checkout_rate_limit_requests"),
			CheckoutRateLimitWindow:   v.GetDuration("http.checkout_rate_limit_window"),
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
			Host:         v.GetString("redis.host"),
			Port:         v.GetInt("redis.port"),
			Password:     v.GetString("redis.password"),
			DB:           v.GetInt("redis.db"),
			PoolSize:     v.GetInt("redis.pool_size"),
			MinIdleConns: v.GetInt("redis.min_idle_conns"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Dedup: DedupConfig{
			Enabled:   v.GetBool("dedup.enabled"),
			TTL:       v.GetDuration("dedup.ttl"),
			KeyPrefix: v.GetString("dedup.key_prefix"),
		},
		Health: HealthConfig{
			Enabled:             v.GetBool("health.enabled"),
			Interval:            v.GetDuration("health.interval"),
			DBConnWarnThreshold: v.GetInt("health.db_conn_warn_threshold"),
			RedisLatencyWarn:    v.GetDuration("health.redis_latency_warn"),
			HeapWarnBytes:       v.GetUint64("health.heap_warn_bytes"),
			LoadWarnPerCPU:      v.GetFloat64("health.load_warn_per_cpu"),
		},
		Stripe: StripeConfig{
			Enabled:       v.GetBool("stripe.enabled"),
			SecretKey:     v.GetString("stripe.secret_key"),
			WebhookSecret: v.GetString("stripe.webhook_secret"),
		},
		NMI: NMIConfig{
			Enabled:     v.GetBool("nmi.enabled"),
			SecurityKey: v.GetString("nmi.security_key"),
			Endpoint:    v.GetString("nmi.endpoint"),
		},
		Sezzle: SezzleConfig{
			Enabled:    v.GetBool("sezzle.enabled"),
			PublicKey:  v.GetString("sezzle.public_key"),
			PrivateKey: v.GetString("sezzle.private_key"),
			Endpoint:   v.GetString("sezzle.endpoint"),
		},
		Email: EmailConfig{
			Enabled:     v.GetBool("email.enabled"),
			Host:        v.GetString("email.host"),
			Port:        v.GetInt("email.port"),
			Username:    v.GetString("email.username"),
			Password:    v.GetString("email.password"),
			FromAddress: v.GetString("email.from_address"),
			FromName:    v.GetString("email.from_name"),
		},
		SEO: SEOConfig{
			Enabled:            v.GetBool("seo.enabled"),
			RegenerateInterval: v.GetDuration("seo.regenerate_interval"),
			CacheTTL:           v.GetDuration("seo.cache_ttl"),
		},
		Search: SearchConfig{
			Enabled:   v.GetBool("search.enabled"),
			Addresses: v.GetStringSlice("search.addresses"),
			Username:  v.GetString("search.username"),
			Password:  v.GetString("search.password"),
			Index:     v.GetString("search.index"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("storage.enabled"),
			Endpoint:  v.GetString("storage.endpoint"),
			Region:    v.GetString("storage.region"),
			Bucket:    v.GetString("storage.bucket"),
			AccessKey: v.GetString("storage.access_key"),
			SecretKey: v.GetString("storage.secret_key"),
			UseSSL:    v.GetBool("storage.use_ssl"),
			PublicURL: v.GetString("storage.public_url"),
		},
		Fulfillment: FulfillmentConfig{
			Enabled:       v.GetBool("fulfillment.enabled"),
			ExportTimeout: v.GetDuration("fulfillment.export_timeout"),
			MaxAttempts:   v.GetInt("fulfillment.max_attempts"),
			RetryInterval: v.GetDuration("fulfillment.retry_interval"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricInterval:    v.GetDuration("telemetry.metric_interval"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers built-in defaults
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storefront")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.shop_url", "http://localhost:8080")
	v.SetDefault("app.currency", "USD")

	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.max_body_size", 4<<20)
	v.SetDefault("http.rate_limit_enabled", true)
	v.SetDefault("http.rate_limit_requests", 120)
	v.SetDefault("http.rate_limit_window", "1m")
	v.SetDefault("http.checkout_rate_limit_requests", 10)
	v.SetDefault("http.checkout_rate_limit_window", "1m")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "storefront")
	v.SetDefault("database.dbname", "storefront")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.conn_max_idle_time", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")

	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("jwt.issuer", "storefront")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("dedup.enabled", true)
	v.SetDefault("dedup.ttl", "300s")
	v.SetDefault("dedup.key_prefix", "order:dedup:")

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.interval", "30s")
	v.SetDefault("health.db_conn_warn_threshold", 20)
	v.SetDefault("health.redis_latency_warn", "100ms")
	v.SetDefault("health.heap_warn_bytes", uint64(1<<30))
	v.SetDefault("health.load_warn_per_cpu", 1.5)

	v.SetDefault("nmi.endpoint", "https://secure.networkmerchants.com/api/transact.php")
	v.SetDefault("sezzle.endpoint", "https://gateway.sezzle.com/v2")

	v.SetDefault("email.port", 587)
	v.SetDefault("email.from_name", "Damned Designs")

	v.SetDefault("seo.enabled", true)
	v.SetDefault("seo.regenerate_interval", "6h")
	v.SetDefault("seo.cache_ttl", "12h")

	v.SetDefault("search.index", "products")

	v.SetDefault("fulfillment.export_timeout", "30s")
	v.SetDefault("fulfillment.max_attempts", 5)
	v.SetDefault("fulfillment.retry_interval", "5m")

	v.SetDefault("telemetry.sampling_ratio", 0.1)
	v.SetDefault("telemetry.service_name", "storefront")
	v.SetDefault("telemetry.metric_interval", 30*time.Second)
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if c.Stripe.Enabled && c.Stripe.SecretKey == "" {
			return fmt.Errorf("stripe.secret_key is required when stripe is enabled")
		}
		if c.NMI.Enabled && c.NMI.SecurityKey == "" {
			return fmt.Errorf("nmi.security_key is required when nmi is enabled")
		}
		if c.Sezzle.Enabled && c.Sezzle.PrivateKey == "" {
			return fmt.Errorf("sezzle.private_key is required when sezzle is enabled")
		}
	}
	if c.Dedup.TTL <= 0 {
		return fmt.Errorf("dedup.ttl must be positive")
	}
	if c.HTTP.RateLimitEnabled && c.HTTP.RateLimitRequests <= 0 {
		return fmt.Errorf("http.rate_limit_requests must be positive")
	}
	return nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
