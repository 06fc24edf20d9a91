package openaiadapter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/llm"
	"github.com/zerotrust-agents/agentrt/runtime/llm/openaiadapter"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := openaiadapter.New(openaiadapter.Config{Model: "gpt-4o-mini"})
	require.Error(t, err)
}

func TestNewRequiresModel(t *testing.T) {
	_, err := openaiadapter.New(openaiadapter.Config{APIKey: "sk-test"})
	require.Error(t, err)
}

func TestNewNegativeRetriesClampToZero(t *testing.T) {
	a, err := openaiadapter.New(openaiadapter.Config{APIKey: "sk-test", Model: "gpt-4o-mini", MaxRetries: -5})
	require.NoError(t, err)
	require.NotNil(t, a)
}

func TestNewAcceptsBaseURLOverride(t *testing.T) {
	a, err := openaiadapter.New(openaiadapter.Config{
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
		BaseURL: "https://example.internal/v1",
	})
	require.NoError(t, err)
	require.NotNil(t, a)
}

func TestInvokeReturnsFirstChoiceContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "hello there"}, "finish_reason": "stop"},
			},
		})
	}))
	defer srv.Close()

	a, err := openaiadapter.New(openaiadapter.Config{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := a.Invoke(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	require.Equal(t, "hello there", out)
}

func TestInvokeRequiresMessages(t *testing.T) {
	a, err := openaiadapter.New(openaiadapter.Config{APIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)

	_, err = a.Invoke(context.Background(), nil)
	require.Error(t, err)
}

func TestInvokeFailsAfterRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a, err := openaiadapter.New(openaiadapter.Config{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL, MaxRetries: 1})
	require.NoError(t, err)

	_, err = a.Invoke(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
}
