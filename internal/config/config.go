package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ogulcanaydogan/autoapi/pkg/estimate"
)

// Config holds all autoapi configuration.
type Config struct {
	Apps       AppsConfig       `mapstructure:"apps"`
	Source     SourceConfig     `mapstructure:"source"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Estimate   estimate.Params  `mapstructure:"estimate"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
	Output     OutputConfig     `mapstructure:"output"`
	Generation GenerationConfig `mapstructure:"generation"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// AppsConfig selects which installed apps are scanned.
type AppsConfig struct {
	Include        []string `mapstructure:"include"` // empty means every app
	Exclude        []string `mapstructure:"exclude"`
	IncludeContrib bool     `mapstructure:"include_contrib"`
}

// SourceConfig defines where app and model metadata comes from.
type SourceConfig struct {
	Manifest   string        `mapstructure:"manifest"` // empty means introspect the project
	Python     string        `mapstructure:"python"`
	ProjectDir string        `mapstructure:"project_dir"`
	Settings   string        `mapstructure:"settings"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LLMConfig defines the generation provider.
type LLMConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Temperature       float64       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// PricingConfig defines pricing data settings.
type PricingConfig struct {
	Dir              string  `mapstructure:"dir"`
	InputPerMillion  float64 `mapstructure:"input_per_million"`
	OutputPerMillion float64 `mapstructure:"output_per_million"`
}

// OutputConfig defines where generated serializers are written.
type OutputConfig struct {
	Filename string `mapstructure:"filename"`
}

// GenerationConfig limits generation runs.
type GenerationConfig struct {
	MaxCostUSD float64 `mapstructure:"max_cost_usd"`
}

// StorageConfig defines the history database.
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// NotifyConfig defines run notification integrations.
type NotifyConfig struct {
	Slack   SlackConfig   `mapstructure:"slack"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. Without an
// explicit path it looks for ~/.autoapi/config.yaml, then ./autoapi.yaml.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("find home directory: %w", err)
	}

	if cfgFile == "" {
		cfgFile = findConfigFile(home)
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	setDefaults(v, home)

	// Environment variables
	v.SetEnvPrefix("AUTOAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("apps.include", []string{})
	v.SetDefault("apps.exclude", []string{})
	v.SetDefault("apps.include_contrib", false)

	v.SetDefault("source.manifest", "")
	v.SetDefault("source.python", "python3")
	v.SetDefault("source.project_dir", ".")
	v.SetDefault("source.settings", "")
	v.SetDefault("source.timeout", "60s")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.requests_per_minute", 0)

	defaults := estimate.DefaultParams()
	v.SetDefault("estimate.prompt_overhead_tokens", defaults.PromptOverheadTokens)
	v.SetDefault("estimate.per_field_tokens", defaults.PerFieldTokens)
	v.SetDefault("estimate.output_base_tokens", defaults.OutputBaseTokens)
	v.SetDefault("estimate.field_threshold", defaults.FieldThreshold)
	v.SetDefault("estimate.output_per_extra_field", defaults.OutputPerExtraField)

	v.SetDefault("pricing.dir", "")
	v.SetDefault("pricing.input_per_million", 0.0)
	v.SetDefault("pricing.output_per_million", 0.0)

	v.SetDefault("output.filename", "api_serializers_ai.py")
	v.SetDefault("generation.max_cost_usd", 0.0)

	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.path", filepath.Join(home, ".autoapi", "history.db"))

	v.SetDefault("notify.slack.enabled", false)
	v.SetDefault("notify.slack.webhook_url", "")
	v.SetDefault("notify.slack.channel", "")
	v.SetDefault("notify.webhook.enabled", false)
	v.SetDefault("notify.webhook.url", "")
	v.SetDefault("notify.webhook.secret", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// findConfigFile returns the first existing default config path, or "".
func findConfigFile(home string) string {
	candidates := []string{
		filepath.Join(home, ".autoapi", "config.yaml"),
		"autoapi.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
