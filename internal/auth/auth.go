// Package auth extracts the caller's upstream API key and checks that it has
// the shape the selected provider expects.
package auth

import (
	"strings"

	apierrors "llm-suggest-proxy/internal/errors"
	"llm-suggest-proxy/internal/event"
	"llm-suggest-proxy/internal/provider"
)

const bearerPrefix = "Bearer "

var (
	authorizationHeaders = []string{"Authorization", "authorization"}
	apiKeyHeaders        = []string{"X-API-Key", "x-api-key", "X-Api-Key"}
)

// ExtractKey returns the API key from the Authorization header, falling back
// to X-API-Key when Authorization is absent or yields nothing.
func ExtractKey(headers event.Headers) (string, error) {
	authHeader := headers.Get(authorizationHeaders...)

	var key string
	if authHeader != "" {
		key = strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	}
	if key == "" {
		key = strings.TrimSpace(headers.Get(apiKeyHeaders...))
	}
	if key == "" {
		return "", apierrors.New(
			apierrors.KindMissingCredential,
			"Missing API key. Provide either Authorization: Bearer {key} or X-API-Key header",
		).WithDetail("debug", map[string]any{
			"headers_available":   headers.Names(),
			"auth_header_present": authHeader != "",
		})
	}
	return key, nil
}

// ValidateFormat rejects keys whose prefix does not match the provider.
func ValidateFormat(p provider.Name, key string) error {
	prefix := "sk-"
	if p == provider.Claude {
		prefix = "sk-ant-"
	}
	if strings.HasPrefix(key, prefix) {
		return nil
	}
	return apierrors.New(
		apierrors.KindInvalidCredentialFormat,
		`Invalid API key format. `+p.String()+` keys start with "`+prefix+`"`,
	)
}

// Mask shortens a secret for logging: at most its first 10 characters
// followed by "...".
func Mask(secret string) string {
	r := []rune(secret)
	if len(r) <= 10 {
		return "..."
	}
	return string(r[:10]) + "..."
}

// IsSecretHeader reports whether a header carries a credential.
func IsSecretHeader(name string) bool {
	return strings.EqualFold(name, "Authorization") || strings.EqualFold(name, "x-api-key")
}
