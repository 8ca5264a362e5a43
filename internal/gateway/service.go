package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"llm-suggest-proxy/internal/adapter"
	"llm-suggest-proxy/internal/auth"
	"llm-suggest-proxy/internal/config"
	"llm-suggest-proxy/internal/envelope"
	apierrors "llm-suggest-proxy/internal/errors"
	"llm-suggest-proxy/internal/event"
	"llm-suggest-proxy/internal/metrics"
	"llm-suggest-proxy/internal/payload"
	"llm-suggest-proxy/internal/provider"
	"llm-suggest-proxy/internal/upstream"
)

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// Invoker performs the outbound provider call.
type Invoker interface {
	Do(ctx context.Context, req *upstream.Request) (*upstream.Response, error)
}

type Service struct {
	cfg      *config.Config
	adapters adapter.Registry
	policy   upstream.TimeoutPolicy
	invoker  Invoker
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// NewService wires the pipeline. recorder may be nil.
func NewService(cfg *config.Config, invoker Invoker, recorder *metrics.Recorder, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		adapters: adapter.NewRegistry(cfg),
		policy:   upstream.NewTimeoutPolicy(cfg.Timeouts),
		invoker:  invoker,
		metrics:  recorder,
		logger:   logger,
	}
}

// HandleEvent runs one invocation from a raw platform event.
func (s *Service) HandleEvent(ctx context.Context, raw json.RawMessage) envelope.Envelope {
	return s.Handle(ctx, event.Normalize(raw))
}

// Handle runs one invocation. It never fails: every outcome, including a
// panic, becomes a sanitized envelope.
func (s *Service) Handle(ctx context.Context, req event.Request) (env envelope.Envelope) {
	logger := s.logger.With("request_id", requestIDFromContext(ctx))
	state := envelope.Context{
		Provider:  provider.Default,
		Timeout:   s.policy.Default,
		EventKeys: req.Keys,
	}

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			state.Stack = string(debug.Stack())
			logger.Error("panic while handling request", "error", err, "stack", state.Stack)
			env = envelope.Internal(err, state)
		}
		env = envelope.Sanitize(env)
		s.metrics.ObserveRequest(state.Provider.String(), env.Outcome())
		logEnvelope(logger, state.Provider, env)
	}()

	return s.process(ctx, logger, req, &state)
}

func (s *Service) process(ctx context.Context, logger *slog.Logger, req event.Request, state *envelope.Context) envelope.Envelope {
	logger.Info("received request",
		"method", req.Method,
		"path", req.Path,
		"event_keys", req.Keys,
		"headers", maskEventHeaders(req.Headers),
		"base64", req.IsBase64Encoded,
	)

	apiKey, err := auth.ExtractKey(req.Headers)
	if err != nil {
		return s.fail(logger, err, *state)
	}

	body, err := req.DecodedBody()
	if err != nil {
		malformed := apierrors.New(apierrors.KindMalformedBody, "Invalid base64-encoded request body")
		malformed.Cause = err
		return s.fail(logger, malformed, *state)
	}

	chat, err := payload.Decode(body)
	if err != nil {
		return s.fail(logger, err, *state)
	}

	state.Provider = provider.Select(req.Headers, chat.Provider)
	logger.Info("provider selected", "provider", state.Provider, "api_key", auth.Mask(apiKey))

	if err := auth.ValidateFormat(state.Provider, apiKey); err != nil {
		return s.fail(logger, err, *state)
	}

	ad := s.adapters.Lookup(state.Provider)
	outbound, tr, err := adapter.Build(ad, chat, apiKey, s.cfg.UserAgent)
	if err != nil {
		return s.fail(logger, err, *state)
	}

	timeout, reason := s.policy.Select(chat.Stream, tr.Model, chat.HasUserContent(s.cfg.Timeouts.FileMarker))
	outbound.Timeout = timeout
	state.Timeout = timeout

	logTranslation(logger, state.Provider, tr, outbound, reason)

	start := time.Now()
	resp, err := s.invoker.Do(ctx, outbound)
	s.metrics.ObserveUpstream(state.Provider.String(), len(outbound.Body), time.Since(start))
	if err != nil {
		return s.fail(logger, err, *state)
	}

	logUpstreamResponse(logger, resp, chat.Stream)
	return envelope.Success(state.Provider, chat.Stream, resp)
}

func (s *Service) fail(logger *slog.Logger, err error, state envelope.Context) envelope.Envelope {
	env := envelope.FromError(err, state)
	logger.Warn("request failed",
		"provider", state.Provider,
		"kind", env.Outcome(),
		"error", err,
		"error_type", upstream.ErrorType(err),
		"timeout_seconds", state.Timeout.Seconds(),
	)
	return env
}

func requestIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return s
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}
