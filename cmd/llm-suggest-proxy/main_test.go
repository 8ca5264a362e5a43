package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-suggest-proxy/internal/config"
	"llm-suggest-proxy/internal/gateway"
	"llm-suggest-proxy/internal/upstream"
)

func TestConfigPathPrefersFlag(t *testing.T) {
	t.Setenv(configEnv, "/env/config.yaml")

	cfgFile = ""
	assert.Equal(t, "/env/config.yaml", configPath())

	cfgFile = " /flag/config.yaml "
	t.Cleanup(func() { cfgFile = "" })
	assert.Equal(t, "/flag/config.yaml", configPath())
}

func TestNewLoggerLevels(t *testing.T) {
	logger := newLogger(config.LogConfig{Level: "warn", Format: config.LogFormatText})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger = newLogger(config.LogConfig{Level: "debug", Format: config.LogFormatJSON})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewMetricsDisabled(t *testing.T) {
	cfg := config.Default()
	assert.NotNil(t, newMetrics(cfg))

	off := false
	cfg.Metrics.Enabled = &off
	assert.Nil(t, newMetrics(cfg))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "llm-suggest-proxy "+Version)
}

func TestLambdaHandlerReturnsEnvelope(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	service := gateway.NewService(config.Default(), upstream.NewClient(), nil, logger)
	handler := lambdaHandler(service)

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "aws-req-1"})
	env, err := handler(ctx, json.RawMessage(`{"headers":{},"body":"{}"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	assert.Equal(t, "*", env.Headers["Access-Control-Allow-Origin"])
	assert.False(t, env.IsBase64Encoded)
}
