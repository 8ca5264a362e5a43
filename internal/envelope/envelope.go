// Package envelope shapes every invocation outcome into the one response
// structure callers ever see.
package envelope

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	apierrors "llm-suggest-proxy/internal/errors"
	"llm-suggest-proxy/internal/provider"
	"llm-suggest-proxy/internal/upstream"
)

const (
	headerContentType = "Content-Type"
	headerAllowOrigin = "Access-Control-Allow-Origin"

	contentTypeJSON = "application/json"
	contentTypeSSE  = "text/event-stream"

	outcomeSuccess = "success"
)

// Envelope is the serialized result of one invocation.
type Envelope struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`

	outcome string
}

// Outcome names the terminal state that produced the envelope: "success" or
// an error kind.
func (e Envelope) Outcome() string {
	if e.outcome == "" {
		return string(apierrors.KindInternal)
	}
	return e.outcome
}

// Success wraps a 2xx upstream answer. Non-streaming bodies must be JSON;
// anything else is reported as a 502.
func Success(p provider.Name, streaming bool, resp *upstream.Response) Envelope {
	if streaming {
		return Envelope{
			StatusCode: http.StatusOK,
			Headers: map[string]string{
				headerContentType: contentTypeSSE,
				headerAllowOrigin: "*",
				"Cache-Control":   "no-cache",
				"Connection":      "keep-alive",
			},
			Body:    resp.Body,
			outcome: outcomeSuccess,
		}
	}

	var probe any
	if err := json.Unmarshal([]byte(resp.Body), &probe); err != nil {
		return jsonError(
			http.StatusBadGateway,
			apierrors.KindUpstreamNonJSONSuccess,
			apierrors.Marshal(p.String()+" API returned invalid JSON response", map[string]any{
				"error_details":    err.Error(),
				"response_preview": truncate(resp.Body, responsePreviewLen),
			}),
		)
	}

	return Envelope{
		StatusCode: http.StatusOK,
		Headers:    jsonHeaders(),
		Body:       resp.Body,
		outcome:    outcomeSuccess,
	}
}

// Sanitize enforces the envelope contract: a valid status, a header map
// that always allows any origin and declares a content type, and a UTF-8
// body. It runs once, on every exit path.
func Sanitize(e Envelope) Envelope {
	if e.StatusCode < 100 || e.StatusCode > 599 {
		e.StatusCode = http.StatusInternalServerError
	}
	if e.Headers == nil {
		e.Headers = jsonHeaders()
	}
	if _, ok := e.Headers[headerContentType]; !ok {
		e.Headers[headerContentType] = contentTypeJSON
	}
	e.Headers[headerAllowOrigin] = "*"
	if !utf8.ValidString(e.Body) {
		e.Body = strings.ToValidUTF8(e.Body, string(utf8.RuneError))
	}
	e.IsBase64Encoded = false
	return e
}

func jsonHeaders() map[string]string {
	return map[string]string{
		headerContentType: contentTypeJSON,
		headerAllowOrigin: "*",
	}
}

func jsonError(status int, kind apierrors.Kind, body string) Envelope {
	return Envelope{
		StatusCode: status,
		Headers:    jsonHeaders(),
		Body:       body,
		outcome:    string(kind),
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
