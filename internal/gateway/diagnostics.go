package gateway

import (
	"log/slog"
	"net/http"
	"sort"
	"unicode/utf8"

	"llm-suggest-proxy/internal/adapter"
	"llm-suggest-proxy/internal/auth"
	"llm-suggest-proxy/internal/envelope"
	"llm-suggest-proxy/internal/event"
	"llm-suggest-proxy/internal/provider"
	"llm-suggest-proxy/internal/upstream"
)

const (
	logPreviewLen  = 200
	largeBodyBytes = 10 << 20
)

func logTranslation(logger *slog.Logger, p provider.Name, tr adapter.Translation, req *upstream.Request, reason upstream.TimeoutReason) {
	total := 0
	for _, n := range tr.UserContentLengths {
		total += n
	}
	logger.Info("translated request",
		"provider", p,
		"model", tr.Model,
		tr.ItemKind, tr.ItemCount,
		"user_content_lengths", tr.UserContentLengths,
		"content_length", total,
		"request_bytes", len(req.Body),
		"stream", req.Streaming,
		"timeout_seconds", req.Timeout.Seconds(),
		"timeout_reason", reason,
		"url", req.URL,
		"headers", maskHeaders(req.Header),
	)
}

func logUpstreamResponse(logger *slog.Logger, resp *upstream.Response, streaming bool) {
	names := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		names = append(names, k)
	}
	sort.Strings(names)

	logger.Info("upstream response",
		"status", resp.StatusCode,
		"reason", resp.Reason,
		"header_names", names,
		"body_bytes", len(resp.Body),
		"stream", streaming,
	)
}

func logEnvelope(logger *slog.Logger, p provider.Name, env envelope.Envelope) {
	if len(env.Body) > largeBodyBytes {
		logger.Warn("response body is very large", "body_bytes", len(env.Body))
	}
	logger.Info("request finished",
		"provider", p,
		"status", env.StatusCode,
		"outcome", env.Outcome(),
		"content_type", env.Headers["Content-Type"],
		"body_bytes", len(env.Body),
		"body_preview", preview(env.Body, logPreviewLen),
	)
}

// maskHeaders flattens outbound headers for logging with credentials masked.
func maskHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = maskValue(k, h.Get(k))
	}
	return out
}

func maskEventHeaders(h event.Headers) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = maskValue(k, v)
	}
	return out
}

func maskValue(name, value string) string {
	if auth.IsSecretHeader(name) {
		return auth.Mask(value)
	}
	return value
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
