package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/apmatch/backend/internal/domain/matching"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Matching MatchingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings for the match archive.
// The archive is optional; with Enabled false the engine runs fully
// in-memory and no connection is opened.
type DatabaseConfig struct {
	Enabled         bool
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
	TrustedProxies []string
}

// MatchingConfig holds the tolerance and approval policy. Monetary and
// quantity thresholds are decimal strings so values like "0.01" survive
// the trip from TOML without float rounding.
type MatchingConfig struct {
	QuantityVariancePct  string
	QuantityVarianceAbs  string
	PriceVariancePct     string
	PriceVarianceAbs     string
	TotalVariancePct     string
	TotalVarianceAbs     string
	AutoApproveBelow     string
	AutoApproveExactOnly bool
	BatchWorkers         int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with APMATCH_ prefix (e.g., APMATCH_DATABASE_PASSWORD)
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

	v.SetEnvPrefix("APMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("database.enabled"),
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
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Matching: MatchingConfig{
			QuantityVariancePct:  v.GetString("matching.quantity_variance_pct"),
			QuantityVarianceAbs:  v.GetString("matching.quantity_variance_abs"),
			PriceVariancePct:     v.GetString("matching.price_variance_pct"),
			PriceVarianceAbs:     v.GetString("matching.price_variance_abs"),
			TotalVariancePct:     v.GetString("matching.total_variance_pct"),
			TotalVarianceAbs:     v.GetString("matching.total_variance_abs"),
			AutoApproveBelow:     v.GetString("matching.auto_approve_below"),
			AutoApproveExactOnly: v.GetBool("matching.auto_approve_exact_only"),
			BatchWorkers:         v.GetInt("matching.batch_workers"),
		},
	}

	applyDefaults(cfg, v)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config, v *viper.Viper) {
	if cfg.App.Name == "" {
		cfg.App.Name = "apmatch-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "apmatch"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Matching.QuantityVariancePct == "" {
		cfg.Matching.QuantityVariancePct = "0"
	}
	if cfg.Matching.QuantityVarianceAbs == "" {
		cfg.Matching.QuantityVarianceAbs = "0"
	}
	if cfg.Matching.PriceVariancePct == "" {
		cfg.Matching.PriceVariancePct = "0"
	}
	if cfg.Matching.PriceVarianceAbs == "" {
		cfg.Matching.PriceVarianceAbs = "0"
	}
	if cfg.Matching.TotalVariancePct == "" {
		cfg.Matching.TotalVariancePct = "0"
	}
	if cfg.Matching.TotalVarianceAbs == "" {
		cfg.Matching.TotalVarianceAbs = "0"
	}
	if cfg.Matching.AutoApproveBelow == "" {
		cfg.Matching.AutoApproveBelow = "0"
	}
	// exact-only defaults to true, so only an explicit false disables it
	if !v.IsSet("matching.auto_approve_exact_only") {
		cfg.Matching.AutoApproveExactOnly = true
	}
	if cfg.Matching.BatchWorkers == 0 {
		cfg.Matching.BatchWorkers = 4
	}
}

// validate rejects unusable configurations before anything is wired
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Matching.BatchWorkers < 1 {
		return fmt.Errorf("matching.batch_workers must be at least 1")
	}
	if c.App.Env == "production" {
		if c.Database.Enabled && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.Enabled && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}
	if _, err := c.Matching.ToTolerance(); err != nil {
		return err
	}
	return nil
}

// ToTolerance parses the matching section into the domain tolerance
func (m *MatchingConfig) ToTolerance() (matching.Tolerance, error) {
	tolerance := matching.Tolerance{AutoApproveExactOnly: m.AutoApproveExactOnly}

	for _, field := range []struct {
		name   string
		raw    string
		target *decimal.Decimal
	}{
		{"matching.quantity_variance_pct", m.QuantityVariancePct, &tolerance.QuantityVariancePct},
		{"matching.quantity_variance_abs", m.QuantityVarianceAbs, &tolerance.QuantityVarianceAbs},
		{"matching.price_variance_pct", m.PriceVariancePct, &tolerance.PriceVariancePct},
		{"matching.price_variance_abs", m.PriceVarianceAbs, &tolerance.PriceVarianceAbs},
		{"matching.total_variance_pct", m.TotalVariancePct, &tolerance.TotalVariancePct},
		{"matching.total_variance_abs", m.TotalVarianceAbs, &tolerance.TotalVarianceAbs},
		{"matching.auto_approve_below", m.AutoApproveBelow, &tolerance.AutoApproveBelow},
	} {
		value, err := decimal.NewFromString(field.raw)
		if err != nil {
			return matching.Tolerance{}, fmt.Errorf("%s: invalid decimal %q: %w", field.name, field.raw, err)
		}
		*field.target = value
	}

	if err := tolerance.Validate(); err != nil {
		return matching.Tolerance{}, err
	}
	return tolerance, nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
