package event

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	defaultMethod = "POST"
	defaultPath   = "/"
	defaultBody   = "{}"
)

// Request is the canonical inbound request every ingress shape is reduced to.
type Request struct {
	Method          string
	Path            string
	Headers         Headers
	Body            string
	IsBase64Encoded bool
	// Keys lists the top-level keys of the event after normalization.
	Keys []string
}

// Normalize reduces a raw ingress event to a Request. A function URL event is
// recognised by requestContext.http; anything else is read as an API Gateway
// proxy event. It never fails: unreadable fields fall back to defaults.
func Normalize(raw []byte) Request {
	var ev map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&ev); err != nil || ev == nil {
		ev = map[string]any{}
	}

	if httpCtx, ok := functionURLContext(ev); ok {
		return Request{
			Method:          stringOr(httpCtx["method"], defaultMethod),
			Path:            stringOr(httpCtx["path"], defaultPath),
			Headers:         headersFrom(ev["headers"]),
			Body:            bodyFrom(ev["body"]),
			IsBase64Encoded: truthy(ev["isBase64Encoded"]),
			Keys:            []string{"body", "headers", "httpMethod", "isBase64Encoded", "path"},
		}
	}

	keys := make([]string, 0, len(ev))
	for k := range ev {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Request{
		Method:          stringOr(ev["httpMethod"], ""),
		Path:            stringOr(ev["path"], ""),
		Headers:         headersFrom(ev["headers"]),
		Body:            bodyFrom(ev["body"]),
		IsBase64Encoded: truthy(ev["isBase64Encoded"]),
		Keys:            keys,
	}
}

// DecodedBody returns the body text, decoding base64 when the event says so.
func (r Request) DecodedBody() (string, error) {
	if !r.IsBase64Encoded {
		return r.Body, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(r.Body))
	if err != nil {
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimSpace(r.Body))
		if rawErr != nil {
			return "", fmt.Errorf("decode base64 body: %w", err)
		}
		decoded = raw
	}
	return string(decoded), nil
}

func functionURLContext(ev map[string]any) (map[string]any, bool) {
	rc, ok := ev["requestContext"].(map[string]any)
	if !ok {
		return nil, false
	}
	h, ok := rc["http"]
	if !ok {
		return nil, false
	}
	httpCtx, _ := h.(map[string]any)
	return httpCtx, true
}

func headersFrom(v any) Headers {
	m, ok := v.(map[string]any)
	if !ok {
		return Headers{}
	}
	h := make(Headers, len(m))
	for k, val := range m {
		switch t := val.(type) {
		case nil:
			continue
		case string:
			h[k] = t
		default:
			h[k] = fmt.Sprint(t)
		}
	}
	return h
}

func bodyFrom(v any) string {
	switch t := v.(type) {
	case nil:
		return defaultBody
	case string:
		return t
	default:
		// Some test harnesses inline the JSON body instead of a string.
		b, err := json.Marshal(t)
		if err != nil {
			return defaultBody
		}
		return string(b)
	}
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	default:
		return false
	}
}
