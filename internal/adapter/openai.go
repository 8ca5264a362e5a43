package adapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"llm-suggest-proxy/internal/config"
	"llm-suggest-proxy/internal/payload"
	"llm-suggest-proxy/internal/provider"
)

const inputTextPart = "input_text"

type openAIRequest struct {
	Model           string          `json:"model"`
	Input           []inputItem     `json:"input"`
	Stream          bool            `json:"stream"`
	Instructions    string          `json:"instructions,omitempty"`
	Temperature     any             `json:"temperature,omitempty"`
	MaxOutputTokens json.Number     `json:"max_output_tokens"`
	ResponseFormat  json.RawMessage `json:"response_format,omitempty"`
	Reasoning       *reasoning      `json:"reasoning,omitempty"`
}

type inputItem struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type reasoning struct {
	Effort string `json:"effort"`
}

// OpenAIAdapter targets the OpenAI Responses API, which wants system text in
// a top-level instructions field and the conversation as input items.
type OpenAIAdapter struct {
	cfg config.OpenAIConfig
}

func NewOpenAIAdapter(cfg config.OpenAIConfig) *OpenAIAdapter {
	return &OpenAIAdapter{cfg: cfg}
}

func (a *OpenAIAdapter) Provider() provider.Name {
	return provider.OpenAI
}

func (a *OpenAIAdapter) Endpoint() string {
	return a.cfg.URL
}

func (a *OpenAIAdapter) ApplyAuthHeaders(headers http.Header, apiKey string) {
	headers.Del("x-api-key")
	headers.Set("Authorization", "Bearer "+apiKey)
}

func (a *OpenAIAdapter) Translate(chat *payload.Chat) Translation {
	model := chat.Model
	if model == "" {
		model = a.cfg.DefaultModel
	}

	instructions, conversation := splitInstructions(chat)

	req := openAIRequest{
		Model:        model,
		Input:        make([]inputItem, 0, len(conversation)),
		Stream:       chat.Stream,
		Instructions: instructions,
		MaxOutputTokens: payload.FirstLimit(
			a.cfg.DefaultMaxOutputTokens,
			chat.MaxOutputTokens, chat.MaxCompletionTokens, chat.MaxTokens,
		),
		ResponseFormat: chat.ResponseFormat,
	}

	var userLengths []int
	for _, m := range conversation {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role == "" {
			role = "user"
		}
		text := m.Text()
		req.Input = append(req.Input, inputItem{
			Role:    role,
			Content: []contentPart{{Type: inputTextPart, Text: text}},
		})
		if role == "user" {
			userLengths = append(userLengths, utf8.RuneCountInString(text))
		}
	}

	if chat.Temperature != nil {
		req.Temperature = chat.Temperature
	}
	if chat.ReasoningEffort != "" {
		req.Reasoning = &reasoning{Effort: chat.ReasoningEffort}
	}

	return Translation{
		Body:               req,
		Model:              model,
		ItemKind:           "input_items",
		ItemCount:          len(req.Input),
		UserContentLengths: userLengths,
	}
}

// splitInstructions gathers the top-level system text and every system
// message, in order, and returns the remaining conversation.
func splitInstructions(chat *payload.Chat) (string, []payload.Message) {
	var parts []string
	if chat.SystemText != "" {
		parts = append(parts, chat.SystemText)
	}

	conversation := make([]payload.Message, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		if !m.IsSystem() {
			conversation = append(conversation, m)
			continue
		}
		if s, ok := m.Content.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n\n"), conversation
}
