package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	tests := map[Kind]int{
		KindMissingCredential:       http.StatusUnauthorized,
		KindInvalidCredentialFormat: http.StatusUnauthorized,
		KindMalformedBody:           http.StatusBadRequest,
		KindMissingMessages:         http.StatusBadRequest,
		KindUpstreamHTTPError:       http.StatusBadGateway,
		KindUpstreamNonJSONSuccess:  http.StatusBadGateway,
		KindTransportTimeout:        http.StatusBadGateway,
		KindTransportOther:          http.StatusBadGateway,
		KindInternal:                http.StatusInternalServerError,
		Kind("unknown"):             http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.Status(), kind)
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(KindMissingMessages, "no messages"))
	assert.Equal(t, KindMissingMessages, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("illegal base64 data")
	err := New(KindMalformedBody, "bad body")
	err.Cause = cause

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "malformed_body: bad body: illegal base64 data", err.Error())
}

func TestMarshalPutsErrorFirst(t *testing.T) {
	body := Marshal("Invalid <thing>", map[string]any{
		"zeta":  1,
		"alpha": "a",
		"error": "ignored",
	})
	assert.Equal(t, `{"error":"Invalid <thing>","alpha":"a","zeta":1}`, body)
}

func TestMarshalEmptyMessage(t *testing.T) {
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(Marshal("  ", nil)), &m))
	assert.Equal(t, "request failed", m["error"])
}

func TestMarshalFallsBack(t *testing.T) {
	body := Marshal("x", map[string]any{"bad": math.Inf(1)})
	assert.Equal(t, Fallback(), body)
	assert.Equal(t, `{"error":"Unknown error occurred"}`, body)
}

func TestWithDetail(t *testing.T) {
	err := New(KindMissingCredential, "missing").
		WithDetail("debug", map[string]any{"auth_header_present": false})
	assert.Equal(t, `{"error":"missing","debug":{"auth_header_present":false}}`, Marshal(err.Message, err.Details))
}
