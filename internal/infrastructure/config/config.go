package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RECON_DATABASE_PASSWORD
const EnvPrefix = "RECON"

// Config holds all application configuration
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	Log            LogConfig            `mapstructure:"log"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Scheduler      SchedulerConfig      `mapstructure:"scheduler"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Returns        ReturnsConfig        `mapstructure:"returns"`
	Telemetry      TelemetryConfig      `mapstructure:"telemetry"`
	Storage        StorageConfig        `mapstructure:"storage"`
	Idempotency    IdempotencyConfig    `mapstructure:"idempotency"`
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// IsProduction reports whether the stricter production checks apply
func (a AppConfig) IsProduction() bool { return a.Env == "production" }

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or a file path
}

// DatabaseConfig holds the PostgreSQL connection and pool settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the connection URL with user and password escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig holds the Redis shared by the tenant lock and the idempotency
// store. An empty Host selects the in-process fallbacks.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds the settings used to verify tokens issued by the auth service
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
}

// SchedulerConfig holds background job runner configuration
type SchedulerConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
	JobTimeout        time.Duration `mapstructure:"job_timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
}

// ReconciliationConfig holds nightly drift repair settings
type ReconciliationConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	RunHour    int           `mapstructure:"run_hour"` // local time
	RunMinute  int           `mapstructure:"run_minute"`
	Workers    int           `mapstructure:"workers"`  // customers recalculated in parallel per tenant
	LockTTL    time.Duration `mapstructure:"lock_ttl"` // per-tenant sweep lock lifetime
	LockPrefix string        `mapstructure:"lock_prefix"`
}

// ReturnsConfig holds the defaults used when a tenant has no return settings
type ReturnsConfig struct {
	EnabledDefault         bool `mapstructure:"enabled_default"`
	RequireApprovalDefault bool `mapstructure:"require_approval_default"`
}

// StorageConfig holds the S3-compatible bucket that archives nightly drift
// reports. Archiving is off unless Enabled is set.
type StorageConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Endpoint          string        `mapstructure:"endpoint"`
	Region            string        `mapstructure:"region"`
	Bucket            string        `mapstructure:"bucket"`
	AccessKey         string        `mapstructure:"access_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	UseSSL            bool          `mapstructure:"use_ssl"`
	UsePathStyle      bool          `mapstructure:"use_path_style"` // MinIO and most self-hosted stores
	Prefix            string        `mapstructure:"prefix"`
	PresignExpiration time.Duration `mapstructure:"presign_expiration"`
}

// IdempotencyConfig holds settings for Idempotency-Key handling on mutations
type IdempotencyConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // OTLP gRPC, host:port
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	ServiceVersion    string        `mapstructure:"service_version"` // main fills in the build version when empty
	Insecure          bool          `mapstructure:"insecure"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"` // bound values in SQL logs and spans
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

// defaults registers every key, which is also what lets Unmarshal see an
// environment override for it.
var defaults = map[string]any{
	"app.name": "balance-reconciler",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "reconciler",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  time.Hour,
	"database.conn_max_idle_time": 30 * time.Minute,

	"redis.host":     "",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret": "",
	"jwt.issuer": "erp-auth",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":       15 * time.Second,
	"http.write_timeout":      60 * time.Second, // drift reports of large tenants
	"http.idle_timeout":       60 * time.Second,
	"http.shutdown_timeout":   30 * time.Second,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      2 << 20,
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID", "Idempotency-Key"},
	"http.trusted_proxies":    []string{},

	"scheduler.enabled":             true,
	"scheduler.max_concurrent_jobs": 3,
	"scheduler.job_timeout":         30 * time.Minute,
	"scheduler.retry_attempts":      3,
	"scheduler.retry_delay":         5 * time.Minute,

	"reconciliation.enabled":     true,
	"reconciliation.run_hour":    2,
	"reconciliation.run_minute":  0,
	"reconciliation.workers":     4,
	"reconciliation.lock_ttl":    30 * time.Minute,
	"reconciliation.lock_prefix": "recon:tenant:",

	"returns.enabled_default":          true,
	"returns.require_approval_default": false,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "balance-reconciler",
	"telemetry.service_version":         "",
	"telemetry.insecure":                false,
	"telemetry.metrics_interval":        time.Minute,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,

	"storage.enabled":            false,
	"storage.endpoint":           "",
	"storage.region":             "us-east-1",
	"storage.bucket":             "",
	"storage.access_key":         "",
	"storage.secret_key":         "",
	"storage.use_ssl":            false,
	"storage.use_path_style":     true,
	"storage.prefix":             "drift-reports",
	"storage.presign_expiration": 15 * time.Minute,

	"idempotency.enabled":    true,
	"idempotency.ttl":        24 * time.Hour,
	"idempotency.key_prefix": "recon:idem:",
}

// Load reads the configuration. Later sources win:
//  1. built-in defaults
//  2. config.toml in . or /app
//  3. .env, which never overrides variables already set
//  4. RECON_* environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate reports every invalid setting at once
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	db := c.Database
	check(db.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(db.MaxIdleConns >= 0, "database.max_idle_conns cannot be negative")
	check(db.MaxIdleConns <= db.MaxOpenConns,
		"database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)

	rc := c.Reconciliation
	check(rc.RunHour >= 0 && rc.RunHour <= 23, "reconciliation.run_hour must be between 0 and 23, got %d", rc.RunHour)
	check(rc.RunMinute >= 0 && rc.RunMinute <= 59, "reconciliation.run_minute must be between 0 and 59, got %d", rc.RunMinute)
	check(rc.Workers >= 1, "reconciliation.workers must be positive")

	check(c.Telemetry.SamplingRatio >= 0 && c.Telemetry.SamplingRatio <= 1,
		"telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)

	if c.Storage.Enabled {
		check(c.Storage.Bucket != "", "storage.bucket is required when storage is enabled")
		check(c.Storage.AccessKey != "" && c.Storage.SecretKey != "",
			"storage.access_key and storage.secret_key are required when storage is enabled")
	}

	if c.App.IsProduction() {
		check(c.JWT.Secret != "", "jwt.secret is required in production")
		check(c.JWT.Secret == "" || len(c.JWT.Secret) >= 32, "jwt.secret must be at least 32 characters in production")
		check(db.Password != "", "database.password is required in production")
		check(db.SSLMode != "disable", "database.sslmode cannot be 'disable' in production")
		check(!slices.Contains(c.HTTP.CORSAllowOrigins, "*"),
			"http.cors_allow_origins cannot be '*' in production (use specific origins)")
		check(!c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production")
	}

	return errors.Join(errs...)
}
