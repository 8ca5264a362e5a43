package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListen      = ":8080"
	defaultMetricsPath = "/metrics"
	defaultUserAgent   = "Unity-AI-Assistant/1.0 (AWS Lambda)"

	DefaultOpenAIURL        = "https://api.openai.com/v1/responses"
	DefaultOpenAIModel      = "gpt-4"
	DefaultClaudeURL        = "https://api.anthropic.com/v1/messages"
	DefaultClaudeModel      = "claude-sonnet-4-20250514"
	DefaultAnthropicVersion = "2023-06-01"

	defaultOpenAIMaxOutputTokens = 2000
	defaultClaudeMaxTokens       = 4096

	defaultStreamingTimeout = 290 * time.Second
	defaultFileEditTimeout  = 180 * time.Second
	defaultSlowModelTimeout = 120 * time.Second
	defaultTimeout          = 90 * time.Second
	defaultFileMarker       = "Current File Content"
	defaultSlowModelPrefix  = "gpt-5"

	defaultMaxBodyBytes = 6 << 20

	LogFormatJSON = "json"
	LogFormatText = "text"
)

type Config struct {
	Listen       string          `yaml:"listen"`
	MaxBodyBytes int64           `yaml:"max_body_bytes"`
	UserAgent    string          `yaml:"user_agent"`
	Log          LogConfig       `yaml:"log"`
	Metrics      MetricsConfig   `yaml:"metrics"`
	Providers    ProvidersConfig `yaml:"providers"`
	Timeouts     TimeoutsConfig  `yaml:"timeouts"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// IsEnabled defaults to true when the key is omitted.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

type ProvidersConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	Claude ClaudeConfig `yaml:"claude"`
}

type OpenAIConfig struct {
	URL                    string `yaml:"url"`
	DefaultModel           string `yaml:"default_model"`
	DefaultMaxOutputTokens int    `yaml:"default_max_output_tokens"`
}

type ClaudeConfig struct {
	URL              string `yaml:"url"`
	DefaultModel     string `yaml:"default_model"`
	DefaultMaxTokens int    `yaml:"default_max_tokens"`
	AnthropicVersion string `yaml:"anthropic_version"`
}

type TimeoutsConfig struct {
	Streaming       time.Duration `yaml:"streaming"`
	FileEdit        time.Duration `yaml:"file_edit"`
	SlowModel       time.Duration `yaml:"slow_model"`
	Default         time.Duration `yaml:"default"`
	FileMarker      string        `yaml:"file_marker"`
	SlowModelPrefix string        `yaml:"slow_model_prefix"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML file, expanding ${VAR} references from the environment.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(content))
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = defaultListen
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = defaultUserAgent
	}

	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
	if strings.TrimSpace(c.Log.Format) == "" {
		c.Log.Format = LogFormatJSON
	}
	if strings.TrimSpace(c.Metrics.Path) == "" {
		c.Metrics.Path = defaultMetricsPath
	}

	p := &c.Providers
	if strings.TrimSpace(p.OpenAI.URL) == "" {
		p.OpenAI.URL = DefaultOpenAIURL
	}
	if strings.TrimSpace(p.OpenAI.DefaultModel) == "" {
		p.OpenAI.DefaultModel = DefaultOpenAIModel
	}
	if p.OpenAI.DefaultMaxOutputTokens == 0 {
		p.OpenAI.DefaultMaxOutputTokens = defaultOpenAIMaxOutputTokens
	}
	if strings.TrimSpace(p.Claude.URL) == "" {
		p.Claude.URL = DefaultClaudeURL
	}
	if strings.TrimSpace(p.Claude.DefaultModel) == "" {
		p.Claude.DefaultModel = DefaultClaudeModel
	}
	if p.Claude.DefaultMaxTokens == 0 {
		p.Claude.DefaultMaxTokens = defaultClaudeMaxTokens
	}
	if strings.TrimSpace(p.Claude.AnthropicVersion) == "" {
		p.Claude.AnthropicVersion = DefaultAnthropicVersion
	}

	t := &c.Timeouts
	if t.Streaming == 0 {
		t.Streaming = defaultStreamingTimeout
	}
	if t.FileEdit == 0 {
		t.FileEdit = defaultFileEditTimeout
	}
	if t.SlowModel == 0 {
		t.SlowModel = defaultSlowModelTimeout
	}
	if t.Default == 0 {
		t.Default = defaultTimeout
	}
	if t.FileMarker == "" {
		t.FileMarker = defaultFileMarker
	}
	if t.SlowModelPrefix == "" {
		t.SlowModelPrefix = defaultSlowModelPrefix
	}
}

func (c *Config) Validate() error {
	if err := validateURL("providers.openai.url", c.Providers.OpenAI.URL); err != nil {
		return err
	}
	if err := validateURL("providers.claude.url", c.Providers.Claude.URL); err != nil {
		return err
	}
	if c.Providers.OpenAI.DefaultMaxOutputTokens < 0 {
		return fmt.Errorf("providers.openai.default_max_output_tokens must be positive")
	}
	if c.Providers.Claude.DefaultMaxTokens < 0 {
		return fmt.Errorf("providers.claude.default_max_tokens must be positive")
	}

	for name, d := range map[string]time.Duration{
		"timeouts.streaming":  c.Timeouts.Streaming,
		"timeouts.file_edit":  c.Timeouts.FileEdit,
		"timeouts.slow_model": c.Timeouts.SlowModel,
		"timeouts.default":    c.Timeouts.Default,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration", name)
		}
	}

	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("log.format must be json or text")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	c.Log.Level = level
	c.Log.Format = format
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is invalid: %s", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http/https", field)
	}
	return nil
}
