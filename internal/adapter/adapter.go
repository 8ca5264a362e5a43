// Package adapter translates the validated inbound chat into each provider's
// wire format. It is the only place that knows how the providers differ.
package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"

	"llm-suggest-proxy/internal/config"
	"llm-suggest-proxy/internal/payload"
	"llm-suggest-proxy/internal/provider"
	"llm-suggest-proxy/internal/upstream"
)

type Adapter interface {
	Provider() provider.Name
	Endpoint() string
	ApplyAuthHeaders(headers http.Header, apiKey string)
	Translate(chat *payload.Chat) Translation
}

// Translation is a provider request body plus the facts diagnostics report
// about it.
type Translation struct {
	Body  any
	Model string
	// ItemKind is "messages" or "input_items", matching the provider field.
	ItemKind  string
	ItemCount int
	// UserContentLengths holds the character count of each user turn.
	UserContentLengths []int
}

// Registry holds one adapter per provider.
type Registry map[provider.Name]Adapter

func NewRegistry(cfg *config.Config) Registry {
	return Registry{
		provider.OpenAI: NewOpenAIAdapter(cfg.Providers.OpenAI),
		provider.Claude: NewClaudeAdapter(cfg.Providers.Claude),
	}
}

// Lookup returns the adapter for p, falling back to OpenAI.
func (r Registry) Lookup(p provider.Name) Adapter {
	if ad, ok := r[p]; ok {
		return ad
	}
	return r[provider.OpenAI]
}

// Build assembles the outbound call: endpoint, headers and JSON body. The
// caller fills in the timeout.
func Build(ad Adapter, chat *payload.Chat, apiKey, userAgent string) (*upstream.Request, Translation, error) {
	tr := ad.Translate(chat)

	body, err := json.Marshal(tr.Body)
	if err != nil {
		return nil, tr, fmt.Errorf("marshal %s request: %w", ad.Provider(), err)
	}

	headers := http.Header{}
	ad.ApplyAuthHeaders(headers, apiKey)
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", userAgent)

	return &upstream.Request{
		URL:       ad.Endpoint(),
		Header:    headers,
		Body:      body,
		Streaming: chat.Stream,
	}, tr, nil
}
