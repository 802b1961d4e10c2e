package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Notify  NotifyConfig  `yaml:"notify" mapstructure:"notify"`
	Notion  NotionConfig  `yaml:"notion" mapstructure:"notion"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// BackendConfig points at the prospecting backend API.
type BackendConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SearchConfig configures job submission.
type SearchConfig struct {
	MaxRecords int `yaml:"max_records" mapstructure:"max_records"`
}

// ServerConfig configures the web dashboard.
type ServerConfig struct {
	Port            int      `yaml:"port" mapstructure:"port"`
	AutoRefreshSecs int      `yaml:"auto_refresh_secs" mapstructure:"auto_refresh_secs"`
	AllowedOrigins  []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// NotifyConfig configures failure notices. Notices are always logged; a
// webhook URL additionally forwards them.
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// NotionConfig holds the Notion CRM credentials and lead database.
type NotionConfig struct {
	Token     string  `yaml:"token" mapstructure:"token"`
	LeadDB    string  `yaml:"lead_db" mapstructure:"lead_db"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout_secs", 600)
	v.SetDefault("backend.rate_limit", 0)
	v.SetDefault("search.max_records", 20)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.auto_refresh_secs", 600)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.lead_db", "")
	v.SetDefault("notion.rate_limit", 3)
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

	if err := cfg.Validate(""); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for the given command mode. The base
// checks always run; "serve" and "push" add their own requirements. All
// problems are reported together.
func (c *Config) Validate(mode string) error {
	var problems []string
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		problems = append(problems, "backend.base_url is required")
	}
	if c.Search.MaxRecords <= 0 {
		problems = append(problems, fmt.Sprintf("search.max_records must be positive, got %d", c.Search.MaxRecords))
	}
	if c.Backend.TimeoutSecs < 0 {
		problems = append(problems, fmt.Sprintf("backend.timeout_secs must not be negative, got %d", c.Backend.TimeoutSecs))
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, fmt.Sprintf("server.port must be in 1-65535, got %d", c.Server.Port))
		}
		if c.Server.AutoRefreshSecs < 0 {
			problems = append(problems, "server.auto_refresh_secs must not be negative")
		}
	case "push":
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.LeadDB == "" {
			problems = append(problems, "notion.lead_db is required")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
