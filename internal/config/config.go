package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Serper    SerperConfig    `yaml:"serper" mapstructure:"serper"`
	Hunter    HunterConfig    `yaml:"hunter" mapstructure:"hunter"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Resend    ResendConfig    `yaml:"resend" mapstructure:"resend"`
	Outreach  OutreachConfig  `yaml:"outreach" mapstructure:"outreach"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SerperConfig holds the web search provider settings. An empty key is a
// normal degraded mode: discovery returns zero results.
type SerperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// HunterConfig holds the domain-to-email lookup provider settings.
type HunterConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Claude API settings for the name normalizer.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ResendConfig holds the transactional email provider settings.
type ResendConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OutreachConfig configures the pipeline itself.
type OutreachConfig struct {
	ResultCap     int           `yaml:"result_cap" mapstructure:"result_cap"`
	MaxCandidates int           `yaml:"max_candidates" mapstructure:"max_candidates"`
	SendDelay     time.Duration `yaml:"send_delay" mapstructure:"send_delay"`
	CatalogPath   string        `yaml:"catalog_path" mapstructure:"catalog_path"`
}

// ServerConfig configures the trigger webhook server.
type ServerConfig struct {
	Port          int    `yaml:"port" mapstructure:"port"`
	TriggerSecret string `yaml:"trigger_secret" mapstructure:"trigger_secret"`
	EnforceAuth   bool   `yaml:"enforce_auth" mapstructure:"enforce_auth"`
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
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "outreach.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.enforce_auth", true)
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("resend.base_url", "https://api.resend.com")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("outreach.result_cap", 10)
	v.SetDefault("outreach.max_candidates", 5)
	v.SetDefault("outreach.send_delay", 3*time.Second)

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

// Validate checks that the configuration is sufficient to send outbound
// email. Discovery, resolution, and AI keys are deliberately not required:
// their absence is a degraded mode, not an error.
func (c *Config) Validate() error {
	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url required for postgres")
	}
	if c.Resend.Key == "" {
		return eris.New("config: resend.key is required")
	}
	if c.Outreach.MaxCandidates <= 0 {
		return eris.New("config: outreach.max_candidates must be positive")
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
