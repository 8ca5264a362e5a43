package payload_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "llm-suggest-proxy/internal/errors"
	"llm-suggest-proxy/internal/payload"
)

func TestDecodeRejectsMissingOrEmptyMessages(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"messages": []}`,
		`{"messages": null}`,
		`{"messages": "hi"}`,
		`{"messages": {"role": "user"}}`,
		`{"model": "gpt-4", "stream": false, "system": "S", "temperature": 1}`,
	} {
		_, err := payload.Decode(body)
		require.Error(t, err, body)
		assert.Equal(t, apierrors.KindMissingMessages, apierrors.KindOf(err), body)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	body := `{"messages": [` + strings.Repeat("x", 300)
	_, err := payload.Decode(body)
	require.Error(t, err)

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.KindMalformedBody, apiErr.Kind)
	assert.True(t, strings.HasPrefix(apiErr.Message, "Invalid JSON in request body: "))
	assert.Len(t, apiErr.Details["body_preview"], 200)
}

func TestDecodeRejectsNonObjectBodies(t *testing.T) {
	for _, body := range []string{`null`, `[1,2]`, `"text"`} {
		_, err := payload.Decode(body)
		require.Error(t, err, body)
		assert.Equal(t, apierrors.KindMalformedBody, apierrors.KindOf(err), body)
	}
}

func TestDecodeRejectsNonObjectMessage(t *testing.T) {
	_, err := payload.Decode(`{"messages": [{"role": "user", "content": "hi"}, 7]}`)
	require.Error(t, err)
	assert.Equal(t, apierrors.KindMalformedBody, apierrors.KindOf(err))
	assert.Contains(t, err.Error(), "messages[1]")
}

func TestDecodeDefaults(t *testing.T) {
	chat, err := payload.Decode(`{"messages": [{"role": "user", "content": "hi"}]}`)
	require.NoError(t, err)

	assert.Equal(t, "", chat.Model)
	assert.True(t, chat.Stream)
	assert.False(t, chat.HasTemperature)
	assert.Nil(t, chat.System)
	assert.Empty(t, chat.MaxTokens)
	assert.Nil(t, chat.ResponseFormat)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, "user", chat.Messages[0].Role)
	assert.Equal(t, "hi", chat.Messages[0].Text())
}

func TestDecodeCoercions(t *testing.T) {
	chat, err := payload.Decode(`{
		"model": "gpt-5-mini",
		"messages": [{"role": " System ", "content": "rules"}, {"role": "user", "content": null}, {"content": 42}],
		"system": "  be brief  ",
		"stream": 0,
		"temperature": null,
		"max_tokens": 500,
		"max_output_tokens": 0,
		"max_completion_tokens": "900",
		"provider": " claude ",
		"response_format": {"type": "json_object"},
		"reasoning_effort": " high "
	}`)
	require.NoError(t, err)

	assert.Equal(t, "gpt-5-mini", chat.Model)
	assert.False(t, chat.Stream)
	assert.True(t, chat.HasTemperature)
	assert.Nil(t, chat.Temperature)
	assert.Equal(t, "be brief", chat.SystemText)
	assert.Equal(t, json.Number("500"), chat.MaxTokens)
	assert.Empty(t, chat.MaxOutputTokens)
	assert.Empty(t, chat.MaxCompletionTokens)
	assert.Equal(t, "claude", chat.Provider)
	assert.JSONEq(t, `{"type":"json_object"}`, string(chat.ResponseFormat))
	assert.Equal(t, "high", chat.ReasoningEffort)

	assert.True(t, chat.Messages[0].IsSystem())
	assert.Equal(t, "", chat.Messages[1].Text())
	assert.Equal(t, "42", chat.Messages[2].Text())
	assert.Equal(t, "", chat.Messages[2].Role)
}

func TestDecodeIgnoresNonObjectResponseFormat(t *testing.T) {
	chat, err := payload.Decode(`{"messages": [{"role": "user", "content": "hi"}], "response_format": "json"}`)
	require.NoError(t, err)
	assert.Nil(t, chat.ResponseFormat)
}

func TestHasUserContent(t *testing.T) {
	chat, err := payload.Decode(`{"messages": [
		{"role": "system", "content": "Current File Content"},
		{"role": "user", "content": "please edit\nCurrent File Content:\nfoo"}
	]}`)
	require.NoError(t, err)
	assert.True(t, chat.HasUserContent("Current File Content"))
	assert.False(t, chat.HasUserContent("missing marker"))
	assert.False(t, chat.HasUserContent(""))

	chat, err = payload.Decode(`{"messages": [{"role": "system", "content": "Current File Content"}]}`)
	require.NoError(t, err)
	assert.False(t, chat.HasUserContent("Current File Content"))
}

func TestFirstLimit(t *testing.T) {
	assert.Equal(t, json.Number("2000"), payload.FirstLimit(2000))
	assert.Equal(t, json.Number("2000"), payload.FirstLimit(2000, "", ""))
	assert.Equal(t, json.Number("500"), payload.FirstLimit(2000, "", "500", "700"))
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{nil, false, "", json.Number("0"), json.Number("0.0"), []any{}, map[string]any{}} {
		assert.False(t, payload.Truthy(v), "%#v", v)
	}
	for _, v := range []any{true, "x", json.Number("1"), json.Number("0.7"), []any{1}, map[string]any{"a": 1}} {
		assert.True(t, payload.Truthy(v), "%#v", v)
	}
}
