package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/workflow-lens/internal/core"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIAPIAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewOpenAIAPIAdapter(Config{
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: srv.URL + "/",
		Temperature:   0.25,
	})
	require.NoError(t, err)
	return a
}

func TestOpenAIAPIAdapter_Generate(t *testing.T) {
	var got openAIRequest
	a := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"a\":1}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":3}}`))
	})

	out, err := a.Generate(context.Background(), core.GenerationRequest{System: "sys", User: "user", MaxTokens: 900})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	assert.Equal(t, defaultOpenAIModel, got.Model)
	assert.Equal(t, 900, got.MaxTokens)
	assert.Equal(t, 0.25, got.Temperature)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, []openAIMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "user"}}, got.Messages)
}

func TestOpenAIAPIAdapter_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		kind      core.FailureKind
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, core.FailureRateLimited, true},
		{"unauthorized", http.StatusUnauthorized, core.FailureMissingCredentials, false},
		{"server error", http.StatusBadGateway, core.FailureService, true},
		{"bad request", http.StatusBadRequest, core.FailureService, false},
		{"gateway timeout", http.StatusGatewayTimeout, core.FailureTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			})

			_, err := a.Generate(context.Background(), core.GenerationRequest{User: "x"})
			var gf *core.GenerationFailure
			require.ErrorAs(t, err, &gf)
			assert.Equal(t, tt.kind, gf.Kind)
			assert.Equal(t, tt.status, gf.StatusCode)
			assert.Equal(t, tt.retryable, gf.Retryable())
			assert.Contains(t, gf.Error(), "nope")
		})
	}
}

func TestOpenAIAPIAdapter_EmptyChoices(t *testing.T) {
	a := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	_, err := a.Generate(context.Background(), core.GenerationRequest{User: "x"})
	var gf *core.GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.Equal(t, core.FailureService, gf.Kind)
}

func TestOpenAIAPIAdapter_ContextCanceled(t *testing.T) {
	a := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Generate(ctx, core.GenerationRequest{User: "x"})
	var gf *core.GenerationFailure
	assert.ErrorAs(t, err, &gf)
}

func TestNewOpenAIAPIAdapter_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAIAPIAdapter(Config{})
	var gf *core.GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.Equal(t, core.FailureMissingCredentials, gf.Kind)
}
