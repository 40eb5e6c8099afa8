package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/articflow/agentlink/internal/db"
)

// EnvPrefix prefixes every environment override, e.g. AGENTLINK_DOMAIN_API_KEY.
const EnvPrefix = "AGENTLINK"

// Config holds the full application configuration.
type Config struct {
	Domain     DomainConfig     `yaml:"domain" mapstructure:"domain"`
	Webhooks   WebhooksConfig   `yaml:"webhooks" mapstructure:"webhooks"`
	Commission CommissionConfig `yaml:"commission" mapstructure:"commission"`
	Franchise  FranchiseConfig  `yaml:"franchise" mapstructure:"franchise"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Jobs       JobsConfig       `yaml:"jobs" mapstructure:"jobs"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DomainConfig holds Domain listings API settings.
type DomainConfig struct {
	APIKey            string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	PageSize          int     `yaml:"page_size" mapstructure:"page_size"`
	MaxPages          int     `yaml:"max_pages" mapstructure:"max_pages"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	LookbackDays      int     `yaml:"lookback_days" mapstructure:"lookback_days"`
	EnrichAgencies    bool    `yaml:"enrich_agencies" mapstructure:"enrich_agencies"`
}

// WebhooksConfig holds the featured-agent webhook endpoints.
type WebhooksConfig struct {
	FeaturedAgentsURL         string `yaml:"featured_agents_url" mapstructure:"featured_agents_url"`
	StandardSubscriptionURL   string `yaml:"standard_subscription_url" mapstructure:"standard_subscription_url"`
	FeaturedCommissionURL     string `yaml:"featured_commission_url" mapstructure:"featured_commission_url"`
	AreaTypeURL               string `yaml:"area_type_url" mapstructure:"area_type_url"`
	TimeoutSecs               int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	FailureThreshold          int    `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs          int    `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
	CheckStandardSubscription bool   `yaml:"check_standard_subscription" mapstructure:"check_standard_subscription"`
}

// CommissionConfig points at an optional rate workbook.
type CommissionConfig struct {
	RatesFile string `yaml:"rates_file" mapstructure:"rates_file"`
}

// FranchiseConfig points at an optional franchise list.
type FranchiseConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// ReportConfig tunes report selection.
type ReportConfig struct {
	TopN             int    `yaml:"top_n" mapstructure:"top_n"`
	FeaturedPlusTier string `yaml:"featured_plus_tier" mapstructure:"featured_plus_tier"`
}

// JobsConfig configures background report jobs.
type JobsConfig struct {
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	TTLMinutes    int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	PurgeSchedule string `yaml:"purge_schedule" mapstructure:"purge_schedule"`
}

// Timeout is the per-job deadline.
func (c JobsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// TTL is how long finished jobs are kept.
func (c JobsConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// MonitoringConfig configures job health alerts.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	LookbackWindowHours  int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	StuckAfterMins       int     `yaml:"stuck_after_mins" mapstructure:"stuck_after_mins"`
}

// StoreConfig configures the job store backend.
type StoreConfig struct {
	Driver      string        `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string        `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string        `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Pool        db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env files, config.yaml and the environment.
func Load() (*Config, error) {
	// Existing environment wins over .env files; missing files are fine.
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("domain.api_key", "")
	v.SetDefault("domain.base_url", "https://api.domain.com.au/v1")
	v.SetDefault("domain.page_size", 100)
	v.SetDefault("domain.max_pages", 1)
	v.SetDefault("domain.requests_per_second", 5.0)
	v.SetDefault("domain.lookback_days", 365)
	v.SetDefault("domain.enrich_agencies", false)
	v.SetDefault("webhooks.featured_agents_url", "")
	v.SetDefault("webhooks.standard_subscription_url", "")
	v.SetDefault("webhooks.featured_commission_url", "")
	v.SetDefault("webhooks.area_type_url", "")
	v.SetDefault("webhooks.timeout_secs", 10)
	v.SetDefault("webhooks.failure_threshold", 5)
	v.SetDefault("webhooks.reset_timeout_secs", 30)
	v.SetDefault("webhooks.check_standard_subscription", true)
	v.SetDefault("commission.rates_file", "")
	v.SetDefault("franchise.file", "")
	v.SetDefault("report.top_n", 5)
	v.SetDefault("report.featured_plus_tier", "Featured Plus")
	v.SetDefault("jobs.max_concurrent", 4)
	v.SetDefault("jobs.timeout_secs", 300)
	v.SetDefault("jobs.ttl_minutes", 60)
	v.SetDefault("jobs.purge_schedule", "@every 10m")
	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.failure_rate_threshold", 0.25)
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.stuck_after_mins", 15)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "agentlink.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 1)
	v.SetDefault("server.port", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is "serve", "report"
// or "jobs".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve", "report", "jobs":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, "store.sqlite_path is required")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not sqlite or postgres", c.Store.Driver))
	}

	if mode == "serve" || mode == "report" {
		if c.Domain.APIKey == "" {
			errs = append(errs, "domain.api_key is required")
		}
		if c.Domain.BaseURL == "" {
			errs = append(errs, "domain.base_url is required")
		}
		if c.Report.TopN < 1 {
			errs = append(errs, "report.top_n must be > 0")
		}
	}

	if mode == "serve" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Jobs.MaxConcurrent < 1 || c.Jobs.MaxConcurrent > 50 {
			errs = append(errs, "jobs.max_concurrent must be between 1 and 50")
		}
		if c.Jobs.TimeoutSecs < 1 {
			errs = append(errs, "jobs.timeout_secs must be > 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
