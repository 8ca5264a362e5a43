// Package provider names the two upstream LLM services and decides which one
// a request is routed to.
package provider

import (
	"strings"

	"llm-suggest-proxy/internal/event"
)

// Name identifies an upstream provider. It is fixed once per request.
type Name string

const (
	OpenAI Name = "OpenAI"
	Claude Name = "Claude"
)

// Default is used when neither the headers nor the body name a provider.
const Default = OpenAI

var headerNames = []string{"X-Provider", "x-provider", "X-Provider-Name"}

// Select resolves the provider. A header hint wins over the body's provider
// field. Selection is total: unknown values resolve to OpenAI.
func Select(headers event.Headers, bodyHint string) Name {
	hint := strings.TrimSpace(headers.Get(headerNames...))
	if hint == "" {
		hint = strings.TrimSpace(bodyHint)
	}
	if hint == "" {
		return Default
	}
	return Parse(hint)
}

// Parse maps a free-form provider name onto a Name, case-insensitively.
func Parse(s string) Name {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "claude", "anthropic":
		return Claude
	default:
		return OpenAI
	}
}

func (n Name) String() string {
	return string(n)
}
