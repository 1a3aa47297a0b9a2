package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServerClient(handler http.HandlerFunc) (*OpenRouterClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "mistralai/mistral-7b-instruct",
		Timeout: 5 * time.Second,
	})
	return client, srv
}

func completionJSON(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + mustJSON(content) + `},"finish_reason":"stop"}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestComplete(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	client, srv := newServerClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionJSON("  Day 1: do the thing\n")))
	})
	defer srv.Close()

	out, err := client.Complete(context.Background(), "make a plan", 800, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "Day 1: do the thing", out)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "mistralai/mistral-7b-instruct", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "make a plan", gotReq.Messages[0].Content)
	assert.Equal(t, 800, gotReq.MaxTokens)
	assert.InDelta(t, 0.7, gotReq.Temperature, 0.001)
}

func TestComplete_MissingAPIKey(t *testing.T) {
	client := NewOpenRouterClient(OpenRouterConfig{Model: "m"})
	_, err := client.Complete(context.Background(), "p", 10, 0.7)
	require.ErrorIs(t, err, ErrProvider)
}

func TestComplete_Non200(t *testing.T) {
	client, srv := newServerClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "p", 10, 0.7)
	require.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "503")
}

func TestComplete_APIErrorEnvelope(t *testing.T) {
	client, srv := newServerClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded","code":429}}`))
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "p", 10, 0.7)
	require.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestComplete_NoChoices(t *testing.T) {
	client, srv := newServerClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "p", 10, 0.7)
	require.ErrorIs(t, err, ErrProvider)
}

func TestComplete_ContextCancelled(t *testing.T) {
	client, srv := newServerClient(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "p", 10, 0.7)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrProvider)
}
