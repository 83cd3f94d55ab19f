package textgenerator

import (
	"context"
	"encoding/json"
	"io"
	"medbot/internal/core/domain/textgen"
	"medbot/internal/core/domain/user"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/require"
)

const messageResponse = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-3-5-haiku-latest",
	"content": [{"type": "text", "text": "  Great job keeping up, 3 days in a row!  "}],
	"stop_reason": "end_turn",
	"stop_sequence": null,
	"usage": {"input_tokens": 12, "output_tokens": 9}
}`

func TestAnthropicGenerate(t *testing.T) {
	// Setup ---
	var body map[string]any
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(messageResponse))
	}))
	defer server.Close()
	generator := NewAnthropic("key", "claude-3-5-haiku-latest", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))

	// Exercise ---
	text, err := generator.Generate(context.Background(), textgen.Request{OwnerID: 1, Prompt: "I took my pills"})

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal("Great job keeping up, 3 days in a row!", text)
	assert.Equal("/v1/messages", path)
	assert.Equal("claude-3-5-haiku-latest", body["model"])
	assert.EqualValues(MAX_TOKENS, body["max_tokens"])
}

func TestAnthropicError(t *testing.T) {
	// Setup ---
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()
	generator := NewAnthropic("bad", "claude-3-5-haiku-latest", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))

	// Exercise ---
	_, err := generator.Generate(context.Background(), textgen.Request{OwnerID: 1, Prompt: "hi"})

	// Verify ---
	require.Error(t, err)
}

func TestAllowList(t *testing.T) {
	cases := []struct {
		id      string
		allowed []int64
		owner   int64
		err     error
	}{
		{id: "empty list allows everyone", allowed: nil, owner: 5},
		{id: "listed owner", allowed: []int64{5, 6}, owner: 6},
		{id: "unlisted owner", allowed: []int64{5, 6}, owner: 7, err: textgen.ErrNotAllowed},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			// Setup ---
			inner := textgen.NewFakeGenerator("Well done!")
			generator := WithAllowList(testcase.allowed, inner)

			// Exercise ---
			text, err := generator.Generate(context.Background(), textgen.Request{OwnerID: user.ID(testcase.owner), Prompt: "p"})

			// Verify ---
			assert := require.New(t)
			if testcase.err != nil {
				assert.ErrorIs(err, testcase.err)
				assert.Empty(inner.Requested)
				return
			}
			assert.Nil(err)
			assert.Equal("Well done!", text)
		})
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Generate(context.Background(), textgen.Request{OwnerID: 1})
	require.ErrorIs(t, err, textgen.ErrNotAllowed)
}
