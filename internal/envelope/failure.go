package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apierrors "llm-suggest-proxy/internal/errors"
	"llm-suggest-proxy/internal/provider"
	"llm-suggest-proxy/internal/upstream"
)

const (
	htmlPreviewLen     = 200
	responseBodyLen    = 1000
	responsePreviewLen = 500

	htmlDetails      = "Received HTML error page instead of JSON response. This usually indicates a gateway/proxy issue."
	timeoutAdvice    = "Try using streaming mode or reducing the request size"
	unknownEventKeys = "not a dict"
)

// Context is the per-invocation state error bodies report. Provider and
// Timeout start at their defaults and are refined as the pipeline advances.
type Context struct {
	Provider  provider.Name
	Timeout   time.Duration
	EventKeys []string
	// Stack is attached to internal error bodies for operators.
	Stack string
}

// FromError maps a failure to its envelope. Local validation errors keep
// their kind's status, upstream failures become 502 (or mirror a 4xx) and
// anything unrecognized is an internal error.
func FromError(err error, c Context) Envelope {
	var apiErr *apierrors.Error
	var httpErr *upstream.HTTPError
	var transportErr *upstream.TransportError

	switch {
	case errors.As(err, &apiErr):
		return jsonError(apiErr.Kind.Status(), apiErr.Kind, apierrors.Marshal(apiErr.Message, apiErr.Details))
	case errors.As(err, &httpErr):
		return fromHTTPError(httpErr, c.Provider)
	case errors.As(err, &transportErr):
		return fromTransportError(transportErr, c)
	default:
		return Internal(err, c)
	}
}

// Internal builds the catch-all 500 envelope.
func Internal(err error, c Context) Envelope {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}

	var keys any = unknownEventKeys
	if c.EventKeys != nil {
		keys = c.EventKeys
	}
	details := map[string]any{
		"error_type": upstream.ErrorType(err),
		"event_keys": keys,
	}
	if c.Stack != "" {
		details["traceback"] = c.Stack
	}

	return jsonError(http.StatusInternalServerError, apierrors.KindInternal, apierrors.Marshal("Proxy error: "+message, details))
}

func fromHTTPError(e *upstream.HTTPError, p provider.Name) Envelope {
	status := e.StatusCode
	if status >= 500 {
		status = http.StatusBadGateway
	}

	var body string
	switch {
	case looksLikeHTML(e.Body):
		body = apierrors.Marshal(gatewayMessage(e.StatusCode, p), map[string]any{
			"http_status":  e.StatusCode,
			"http_reason":  e.Reason,
			"details":      htmlDetails,
			"html_preview": truncate(e.Body, htmlPreviewLen),
		})
	case json.Valid([]byte(e.Body)):
		body = compactJSON(e.Body)
	default:
		body = apierrors.Marshal(fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Reason), map[string]any{
			"http_status":   e.StatusCode,
			"http_reason":   e.Reason,
			"response_body": truncate(e.Body, responseBodyLen),
		})
	}
	return jsonError(status, apierrors.KindUpstreamHTTPError, body)
}

func fromTransportError(e *upstream.TransportError, c Context) Envelope {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = c.Timeout
	}

	if e.TimedOut() {
		seconds := timeout.Seconds()
		message := fmt.Sprintf(
			"Request timed out after %gs. The request may be too large or %s API is taking longer than expected.",
			seconds, c.Provider,
		)
		return jsonError(http.StatusBadGateway, apierrors.KindTransportTimeout, apierrors.Marshal(message, map[string]any{
			"error_type":      upstream.ErrorType(e),
			"suggestion":      timeoutAdvice,
			"timeout_seconds": seconds,
		}))
	}

	message := fmt.Sprintf("Network error connecting to %s API: %s", c.Provider, e.Err)
	return jsonError(http.StatusBadGateway, apierrors.KindTransportOther, apierrors.Marshal(message, map[string]any{
		"error_type": upstream.ErrorType(e),
	}))
}

// looksLikeHTML spots gateway error pages served in place of an API error.
func looksLikeHTML(body string) bool {
	lower := strings.ToLower(body)
	trimmed := strings.TrimSpace(lower)
	return strings.HasPrefix(trimmed, "<html") ||
		strings.HasPrefix(trimmed, "<!doctype") ||
		strings.Contains(lower, "<html") ||
		strings.Contains(lower, "cloudflare")
}

func gatewayMessage(status int, p provider.Name) string {
	switch status {
	case http.StatusBadGateway:
		return fmt.Sprintf("Bad Gateway: Unable to reach %s API. This may be due to network issues, Cloudflare blocking, or API service problems.", p)
	case http.StatusServiceUnavailable:
		return fmt.Sprintf("Service Unavailable: %s API is temporarily unavailable.", p)
	case http.StatusGatewayTimeout:
		return "Gateway Timeout: The request took too long to process."
	default:
		return fmt.Sprintf("Gateway error (HTTP %d)", status)
	}
}

func compactJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
