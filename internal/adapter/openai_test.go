package adapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-suggest-proxy/internal/adapter"
	"llm-suggest-proxy/internal/config"
)

func openAI() adapter.Adapter {
	return adapter.NewOpenAIAdapter(config.Default().Providers.OpenAI)
}

func TestOpenAIDefaults(t *testing.T) {
	out := buildBody(t, openAI(), `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, "gpt-4", out["model"])
	assert.Equal(t, float64(2000), out["max_output_tokens"])
	assert.Equal(t, true, out["stream"])
	assert.NotContains(t, out, "instructions")
	assert.NotContains(t, out, "temperature")
	assert.NotContains(t, out, "response_format")
	assert.NotContains(t, out, "reasoning")
}

func TestOpenAIInstructionsAndInput(t *testing.T) {
	body := `{
		"model": "gpt-5-mini",
		"system": "  Top level.  ",
		"stream": false,
		"messages": [
			{"role": "system", "content": "First rule."},
			{"role": "user", "content": "hello"},
			{"role": " SYSTEM ", "content": "   "},
			{"role": "Assistant", "content": "hi there"},
			{"content": "no role"},
			{"role": "system", "content": "Second rule."}
		]
	}`
	req, tr, err := adapter.Build(openAI(), decodeChat(t, body), "sk-x", "ua")
	require.NoError(t, err)

	assert.Equal(t, "input_items", tr.ItemKind)
	assert.Equal(t, 3, tr.ItemCount)
	assert.Equal(t, []int{5, 7}, tr.UserContentLengths)
	assert.JSONEq(t, `{
		"model": "gpt-5-mini",
		"stream": false,
		"instructions": "Top level.\n\nFirst rule.\n\nSecond rule.",
		"max_output_tokens": 2000,
		"input": [
			{"role": "user", "content": [{"type": "input_text", "text": "hello"}]},
			{"role": "assistant", "content": [{"type": "input_text", "text": "hi there"}]},
			{"role": "user", "content": [{"type": "input_text", "text": "no role"}]}
		]
	}`, string(req.Body))
}

func TestOpenAIOnlySystemMessagesYieldsEmptyInput(t *testing.T) {
	out := buildBody(t, openAI(), `{"messages":[{"role":"system","content":"rules"}]}`)
	assert.Equal(t, []any{}, out["input"])
	assert.Equal(t, "rules", out["instructions"])
}

func TestOpenAINonStringContent(t *testing.T) {
	out := buildBody(t, openAI(), `{"messages":[{"role":"user","content":[{"type":"text","text":"a"}]},{"role":"user","content":null}]}`)
	input := out["input"].([]any)
	require.Len(t, input, 2)

	first := input[0].(map[string]any)["content"].([]any)[0].(map[string]any)
	assert.Equal(t, `[{"text":"a","type":"text"}]`, first["text"])

	second := input[1].(map[string]any)["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "", second["text"])
}

func TestOpenAIMaxOutputTokensPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"max_output_tokens wins", `{"messages":[{"role":"user","content":"x"}],"max_output_tokens":100,"max_completion_tokens":200,"max_tokens":300}`, 100},
		{"completion before max_tokens", `{"messages":[{"role":"user","content":"x"}],"max_completion_tokens":200,"max_tokens":300}`, 200},
		{"max_tokens only", `{"messages":[{"role":"user","content":"x"}],"max_tokens":500}`, 500},
		{"zero is unset", `{"messages":[{"role":"user","content":"x"}],"max_output_tokens":0,"max_tokens":300}`, 300},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := buildBody(t, openAI(), tc.body)
			assert.Equal(t, tc.want, out["max_output_tokens"])
		})
	}
}

func TestOpenAIOptionalFields(t *testing.T) {
	out := buildBody(t, openAI(), `{
		"messages":[{"role":"user","content":"x"}],
		"temperature":0,
		"response_format":{"type":"json_object"},
		"reasoning_effort":" high "
	}`)
	assert.Equal(t, float64(0), out["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, out["response_format"])
	assert.Equal(t, map[string]any{"effort": "high"}, out["reasoning"])

	out = buildBody(t, openAI(), `{"messages":[{"role":"user","content":"x"}],"response_format":"json","temperature":null}`)
	assert.NotContains(t, out, "response_format")
	assert.NotContains(t, out, "temperature")
}
