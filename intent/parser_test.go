package intent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bluefunda/backlogr/types"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCompletionServer answers chat completion calls with content as the
// assistant message and hands the decoded request body to inspect.
func newCompletionServer(t *testing.T, content string, inspect func(body map[string]interface{})) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if inspect != nil {
			inspect(body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   DefaultModel,
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestParser(srv *httptest.Server) *OpenAIParser {
	return NewOpenAIParser(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"}, nil, option.WithMaxRetries(0))
}

func TestParseIntent(t *testing.T) {
	t.Parallel()

	var request map[string]interface{}
	srv := newCompletionServer(t, `{"type":"issues","action":"get","params":{"issueIdOrKey":"TEST-1"}}`,
		func(body map[string]interface{}) { request = body })

	got, err := newTestParser(srv).Parse(context.Background(), "  show issue TEST-1 ")
	require.NoError(t, err)

	assert.Equal(t, types.Intent{
		Type:    types.EntityIssues,
		Action:  types.ActionGet,
		Params:  map[string]interface{}{"issueIdOrKey": "TEST-1"},
		RawText: "show issue TEST-1",
	}, got)

	assert.Equal(t, DefaultModel, request["model"])
	assert.InDelta(t, 0.3, request["temperature"], 0.0001)
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, request["response_format"])

	messages, ok := request["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
}

func TestParseNotUnderstood(t *testing.T) {
	t.Parallel()

	srv := newCompletionServer(t, `{"error":"Could not understand the command"}`, nil)

	_, err := newTestParser(srv).Parse(context.Background(), "make me a sandwich")
	assert.ErrorIs(t, err, ErrNotUnderstood)
}

func TestParseEmptyCompletion(t *testing.T) {
	t.Parallel()

	srv := newCompletionServer(t, ``, nil)

	_, err := newTestParser(srv).Parse(context.Background(), "list projects")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestParseWithoutAPIKey(t *testing.T) {
	t.Parallel()

	p := NewOpenAIParser(Config{}, nil)
	assert.False(t, p.IsConfigured())

	_, err := p.Parse(context.Background(), "list projects")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseDefaultsParams(t *testing.T) {
	t.Parallel()

	got, err := decodeCompletion(`{"type":"projects","action":"list"}`, "list projects")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, got.Params)

	_, err = decodeCompletion(`{"params":{}}`, "???")
	assert.ErrorIs(t, err, ErrNotUnderstood)

	_, err = decodeCompletion(`not json`, "???")
	assert.Error(t, err)
}

func TestSystemPromptListsEveryCommand(t *testing.T) {
	t.Parallel()

	prompt := SystemPrompt(types.Commands)
	for _, c := range types.Commands {
		assert.Contains(t, prompt, string(c.Type)+":"+string(c.Action))
	}
	assert.Contains(t, prompt, "(requires projectIdOrKey, issueTypeId, substituteIssueTypeId)")
}
