package orclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/taskchat/src/aisdk"
)

func completionBody(content string) string {
	return `{"id":"cmpl-1","object":"chat.completion","model":"test-model",
		"choices":[{"index":0,"message":{"role":"assistant","content":"` + content + `"},"finish_reason":"stop"}],
		"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`
}

func TestCreateChatCompletion(t *testing.T) {
	var gotBody aisdk.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(completionBody("hello")))
	}))
	defer server.Close()

	client := NewClient(aisdk.ClientConfig{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Model:   "default-model",
	})

	resp, err := client.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{
		Messages: []*aisdk.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	// The configured model fills in when the request names none
	assert.Equal(t, "default-model", gotBody.Model)
}

func TestCreateChatCompletionRequiresAPIKey(t *testing.T) {
	client := NewClient(aisdk.ClientConfig{BaseURL: "http://localhost:1"})

	_, err := client.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNewClientHonorsConfiguredTimeout(t *testing.T) {
	client := NewClient(aisdk.ClientConfig{APIKey: "k", Timeout: 5 * time.Second})
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)

	client = NewClient(aisdk.ClientConfig{APIKey: "k"})
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
}

func TestCreateChatCompletionRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(completionBody("recovered")))
	}))
	defer server.Close()

	client := NewClient(aisdk.ClientConfig{
		APIKey:     "sk-test",
		BaseURL:    server.URL,
		RetryCount: 3,
		RetryDelay: time.Millisecond,
	})

	resp, err := client.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Choices[0].Message.Content)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCreateChatCompletionDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	client := NewClient(aisdk.ClientConfig{
		APIKey:     "sk-wrong",
		BaseURL:    server.URL,
		RetryDelay: time.Millisecond,
	})

	_, err := client.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, apiErr.IsAuthError())
	assert.False(t, apiErr.IsRetryable())
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		err       *APIError
		retryable bool
		rateLimit bool
	}{
		{
			name:      "server error is retryable",
			err:       &APIError{StatusCode: 500, Message: "boom"},
			retryable: true,
		},
		{
			name:      "rate limit is retryable",
			err:       &APIError{StatusCode: 429, Code: "rate_limit_exceeded", Message: "slow down"},
			retryable: true,
			rateLimit: true,
		},
		{
			name: "bad request is not retryable",
			err:  &APIError{StatusCode: 400, Code: "invalid_request", Message: "nope"},
		},
		{
			name:      "timeout code is retryable",
			err:       &APIError{StatusCode: 408, Code: "timeout", Message: "slow"},
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.err.IsRetryable())
			assert.Equal(t, tt.rateLimit, tt.err.IsRateLimit())
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestEmptyChoicesIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cmpl-2","choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(aisdk.ClientConfig{APIKey: "sk-test", BaseURL: server.URL})

	_, err := client.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{Model: "m"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
