package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"llm-suggest-proxy/internal/config"
	"llm-suggest-proxy/internal/metrics"
)

const configEnv = "SUGGEST_PROXY_CONFIG"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "llm-suggest-proxy",
	Short: "Stateless request translator for OpenAI and Claude",
	Long: `llm-suggest-proxy accepts one chat request shape, forwards it to the OpenAI
Responses API or the Anthropic Messages API, and returns the provider's answer
in a uniform response envelope.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when omitted)")
}

// configPath prefers the flag, then the environment.
func configPath() string {
	if p := strings.TrimSpace(cfgFile); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(configEnv))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatText {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// newMetrics returns nil when metrics are disabled.
func newMetrics(cfg *config.Config) *metrics.Recorder {
	if !cfg.Metrics.IsEnabled() {
		return nil
	}
	return metrics.New()
}
