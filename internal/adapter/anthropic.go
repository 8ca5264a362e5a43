package adapter

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"llm-suggest-proxy/internal/config"
	"llm-suggest-proxy/internal/payload"
	"llm-suggest-proxy/internal/provider"
)

// defaultClaudeTemperature replaces a temperature that was sent but falsy.
const defaultClaudeTemperature = 0.7

type claudeRequest struct {
	Model       string            `json:"model"`
	Messages    []json.RawMessage `json:"messages"`
	MaxTokens   json.Number       `json:"max_tokens"`
	System      any               `json:"system,omitempty"`
	Temperature any               `json:"temperature,omitempty"`
	Stream      bool              `json:"stream,omitempty"`
}

// ClaudeAdapter targets the Anthropic Messages API. Claude keeps the system
// prompt in its own top-level field, so messages are forwarded untouched.
type ClaudeAdapter struct {
	cfg config.ClaudeConfig
}

func NewClaudeAdapter(cfg config.ClaudeConfig) *ClaudeAdapter {
	return &ClaudeAdapter{cfg: cfg}
}

func (a *ClaudeAdapter) Provider() provider.Name {
	return provider.Claude
}

func (a *ClaudeAdapter) Endpoint() string {
	return a.cfg.URL
}

func (a *ClaudeAdapter) ApplyAuthHeaders(headers http.Header, apiKey string) {
	headers.Del("Authorization")
	headers.Set("x-api-key", apiKey)
	headers.Set("anthropic-version", a.cfg.AnthropicVersion)
}

func (a *ClaudeAdapter) Translate(chat *payload.Chat) Translation {
	model := chat.Model
	if model == "" {
		model = a.cfg.DefaultModel
	}

	req := claudeRequest{
		Model:     model,
		Messages:  make([]json.RawMessage, 0, len(chat.Messages)),
		MaxTokens: payload.FirstLimit(a.cfg.DefaultMaxTokens, chat.MaxTokens, chat.MaxOutputTokens),
		Stream:    chat.Stream,
	}

	var userLengths []int
	for _, m := range chat.Messages {
		req.Messages = append(req.Messages, m.Raw)
		if m.Role == "user" {
			userLengths = append(userLengths, utf8.RuneCountInString(m.Text()))
		}
	}

	if payload.Truthy(chat.System) {
		req.System = chat.System
	}

	// Presence of the key, not its value, decides inclusion.
	if chat.HasTemperature {
		if payload.Truthy(chat.Temperature) {
			req.Temperature = chat.Temperature
		} else {
			req.Temperature = defaultClaudeTemperature
		}
	}

	return Translation{
		Body:               req,
		Model:              model,
		ItemKind:           "messages",
		ItemCount:          len(req.Messages),
		UserContentLengths: userLengths,
	}
}
