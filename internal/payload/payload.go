// Package payload decodes the inbound chat body into a validated Chat. All
// type coercion of client-supplied fields happens here, once, so the
// provider adapters never inspect raw JSON.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apierrors "llm-suggest-proxy/internal/errors"
)

const bodyPreviewLen = 200

// Chat is the decoded inbound request body.
type Chat struct {
	// Model is empty when the client did not name one.
	Model    string
	Messages []Message

	// System is the raw top-level system value, nil when absent or null.
	System any
	// SystemText is the trimmed system value when it is a string.
	SystemText string

	// Stream defaults to true when the field is absent.
	Stream bool

	// HasTemperature reports whether the temperature key was sent at all.
	HasTemperature bool
	Temperature    any

	// Token limits keep the client's numeric literal; empty means unset.
	MaxTokens           json.Number
	MaxOutputTokens     json.Number
	MaxCompletionTokens json.Number

	Provider string

	// ResponseFormat is set only when the client sent a JSON object.
	ResponseFormat  json.RawMessage
	ReasoningEffort string
}

// Message is one conversation turn. Raw keeps the exact client bytes for
// providers that accept messages unchanged.
type Message struct {
	Raw     json.RawMessage
	Role    string
	Content any
}

// IsSystem reports whether the message carries system instructions.
func (m Message) IsSystem() bool {
	return strings.EqualFold(strings.TrimSpace(m.Role), "system")
}

// Text returns the content as a string. Null becomes "", strings are
// returned as is and any other value is rendered as JSON.
func (m Message) Text() string {
	switch v := m.Content.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// Decode parses and validates the request body.
func Decode(body string) (*Chat, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, malformed("Invalid JSON in request body: "+err.Error(), body)
	}
	if fields == nil {
		return nil, malformed("Invalid JSON in request body: expected a JSON object", body)
	}

	messages, err := decodeMessages(fields["messages"])
	if err != nil {
		return nil, err
	}

	chat := &Chat{
		Messages: messages,
		Stream:   true,
	}

	if s, ok := decodeAny(fields["model"]).(string); ok {
		chat.Model = s
	}

	chat.System = decodeAny(fields["system"])
	if s, ok := chat.System.(string); ok {
		chat.SystemText = strings.TrimSpace(s)
	}

	if raw, ok := fields["stream"]; ok {
		chat.Stream = Truthy(decodeAny(raw))
	}

	if raw, ok := fields["temperature"]; ok {
		chat.HasTemperature = true
		chat.Temperature = decodeAny(raw)
	}

	chat.MaxTokens = tokenLimit(fields["max_tokens"])
	chat.MaxOutputTokens = tokenLimit(fields["max_output_tokens"])
	chat.MaxCompletionTokens = tokenLimit(fields["max_completion_tokens"])

	if s, ok := decodeAny(fields["provider"]).(string); ok {
		chat.Provider = strings.TrimSpace(s)
	}

	if rf, ok := fields["response_format"]; ok {
		if _, isObject := decodeAny(rf).(map[string]any); isObject {
			chat.ResponseFormat = rf
		}
	}

	if s, ok := decodeAny(fields["reasoning_effort"]).(string); ok {
		chat.ReasoningEffort = strings.TrimSpace(s)
	}

	return chat, nil
}

// HasUserContent reports whether any user message contains marker.
func (c *Chat) HasUserContent(marker string) bool {
	if marker == "" {
		return false
	}
	for _, m := range c.Messages {
		if m.Role != "user" {
			continue
		}
		if s, ok := m.Content.(string); ok && strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// FirstLimit returns the first set limit, or fallback.
func FirstLimit(fallback int, limits ...json.Number) json.Number {
	for _, l := range limits {
		if l != "" {
			return l
		}
	}
	return json.Number(strconv.Itoa(fallback))
}

// Truthy applies JSON truthiness: null, false, 0, "" and empty containers are
// false; everything else is true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func decodeMessages(raw json.RawMessage) ([]Message, error) {
	missing := apierrors.New(apierrors.KindMissingMessages, "Missing or empty messages array in request body")

	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || len(items) == 0 {
		return nil, missing
	}

	messages := make([]Message, 0, len(items))
	for i, item := range items {
		obj, ok := decodeAny(item).(map[string]any)
		if !ok {
			return nil, apierrors.New(
				apierrors.KindMalformedBody,
				fmt.Sprintf("Invalid message at messages[%d]: expected a JSON object", i),
			)
		}
		role, _ := obj["role"].(string)
		messages = append(messages, Message{
			Raw:     item,
			Role:    role,
			Content: obj["content"],
		})
	}
	return messages, nil
}

// tokenLimit keeps non-zero numbers; zero, null and non-numeric values count
// as unset.
func tokenLimit(raw json.RawMessage) json.Number {
	n, ok := decodeAny(raw).(json.Number)
	if !ok || !Truthy(n) {
		return ""
	}
	return n
}

func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func malformed(message, body string) error {
	return apierrors.New(apierrors.KindMalformedBody, message).
		WithDetail("body_preview", preview(body, bodyPreviewLen))
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
