package apierrors

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies every failure the proxy can report to its caller.
type Kind string

const (
	KindMissingCredential       Kind = "missing_credential"
	KindInvalidCredentialFormat Kind = "invalid_credential_format"
	KindMalformedBody           Kind = "malformed_body"
	KindMissingMessages         Kind = "missing_messages"
	KindUpstreamHTTPError       Kind = "upstream_http_error"
	KindUpstreamNonJSONSuccess  Kind = "upstream_non_json_success"
	KindTransportTimeout        Kind = "transport_timeout"
	KindTransportOther          Kind = "transport_error"
	KindInternal                Kind = "internal_error"
)

// fallbackBody is returned whenever an error body cannot be marshalled.
const fallbackBody = `{"error":"Unknown error occurred"}`

// Status returns the HTTP status a kind maps to. Upstream HTTP errors mirror
// the upstream code and are resolved by the caller; 502 is their default.
func (k Kind) Status() int {
	switch k {
	case KindMissingCredential, KindInvalidCredentialFormat:
		return http.StatusUnauthorized
	case KindMalformedBody, KindMissingMessages:
		return http.StatusBadRequest
	case KindUpstreamHTTPError, KindUpstreamNonJSONSuccess, KindTransportTimeout, KindTransportOther:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a local failure detected before any upstream call is made.
type Error struct {
	Kind    Kind
	Message string
	// Details are rendered next to "error" in the response body.
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithDetail attaches one body field and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// KindOf reports the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}

// Marshal renders {"error": message, <details...>} with "error" as the first
// key and the details sorted by name. It never fails.
func Marshal(message string, details map[string]any) string {
	if strings.TrimSpace(message) == "" {
		message = "request failed"
	}

	var buf bytes.Buffer
	buf.WriteString(`{"error":`)
	if err := writeValue(&buf, message); err != nil {
		return fallbackBody
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		if k == "error" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		buf.WriteByte(',')
		if err := writeValue(&buf, k); err != nil {
			return fallbackBody
		}
		buf.WriteByte(':')
		if err := writeValue(&buf, details[k]); err != nil {
			return fallbackBody
		}
	}
	buf.WriteByte('}')
	return buf.String()
}

// Fallback returns the minimal fixed-shape error body.
func Fallback() string {
	return fallbackBody
}

func writeValue(buf *bytes.Buffer, v any) error {
	var inner bytes.Buffer
	enc := json.NewEncoder(&inner)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(inner.Bytes(), "\n"))
	return nil
}
