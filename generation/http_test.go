package generation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompleter(t *testing.T, handler http.HandlerFunc) *HTTPCompleter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewHTTPCompleter(HTTPConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/v1/",
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestHTTPCompleterWireFormat(t *testing.T) {
	t.Parallel()
	var got map[string]any
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, sonic.Unmarshal(body, &got))
		_, _ = io.WriteString(w, `{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"Be concise."}}]}`)
	})

	text, err := c.Complete(context.Background(), "Analyze the answers")
	require.NoError(t, err)
	assert.Equal(t, "Be concise.", text)

	assert.Equal(t, "mistral-small", got["model"])
	assert.InDelta(t, 0.7, got["temperature"], 1e-9)
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "Analyze the answers"}, messages[0])
}

func TestHTTPCompleterStatusError(t *testing.T) {
	t.Parallel()
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, "rate limited")
	})

	_, err := c.Complete(context.Background(), "hi")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "rate limited", statusErr.Body)
	assert.Equal(t, StatusHTTPError, Classify(err))
}

func TestHTTPCompleterMalformedResponses(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"not json":        `<html>gateway</html>`,
		"no choices":      `{"choices":[]}`,
		"missing message": `{"choices":[{"index":0}]}`,
		"missing content": `{"choices":[{"message":{"role":"assistant"}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			_, err := c.Complete(context.Background(), "hi")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestHTTPCompleterTimeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	bounded := Chain(c, WithTimeout(20*time.Millisecond))
	start := time.Now()
	_, err := bounded.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, StatusTimeout, Classify(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewHTTPCompleterRequiresKey(t *testing.T) {
	t.Parallel()
	_, err := NewHTTPCompleter(HTTPConfig{})
	require.Error(t, err)
}
