package event

import (
	"sort"
	"strings"
)

// Headers is a single-valued header map whose key casing is not guaranteed by
// the ingress layer.
type Headers map[string]string

// Get returns the first non-empty value among the given names. Exact spellings
// are tried in order before a case-insensitive scan.
func (h Headers) Get(names ...string) string {
	for _, name := range names {
		if v := h[name]; v != "" {
			return v
		}
	}
	for _, name := range names {
		for k, v := range h {
			if v != "" && strings.EqualFold(k, name) {
				return v
			}
		}
	}
	return ""
}

// Names returns the header names, sorted.
func (h Headers) Names() []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
