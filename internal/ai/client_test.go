// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/familymap/internal/config"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	return body
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
}

// newFakeOpenAI serves chat completions through handler and returns a client
// pointed at it.
func newFakeOpenAI(t *testing.T, handler func(w http.ResponseWriter, req *chatRequest)) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			writeError(w, http.StatusBadRequest)
			return
		}
		handler(w, &req)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.AIConfig{
		APIKey:      "sk-test",
		BaseURL:     srv.URL + "/v1/",
		Model:       "test-model",
		Temperature: 0.3,
		Country:     "SK",
		Timeout:     5 * time.Second,
		MaxRetries:  2,
	})
	require.NoError(t, err)
	client.backoff = time.Millisecond
	return client
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(&config.AIConfig{Model: "m"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.EqualError(t, err, "OPENAI_API_KEY environment variable is not set")

	_, err = NewClient(nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestChatCompletion(t *testing.T) {
	client := newFakeOpenAI(t, func(w http.ResponseWriter, req *chatRequest) {
		assert.Equal(t, "test-model", req.Model)
		assert.InDelta(t, 0.3, req.Temperature, 0.0001)
		if !assert.Len(t, req.Messages, 2) {
			writeError(w, http.StatusBadRequest)
			return
		}
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be brief", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "hello", req.Messages[1].Content)

		_, _ = w.Write(completionBody("hi there"))
	})

	got, err := client.ChatCompletion(context.Background(), "hello", "be brief")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
	assert.Equal(t, "test-model", client.Model())
}

func TestChatCompletion_NoSystemMessage(t *testing.T) {
	client := newFakeOpenAI(t, func(w http.ResponseWriter, req *chatRequest) {
		if !assert.Len(t, req.Messages, 1) {
			writeError(w, http.StatusBadRequest)
			return
		}
		assert.Equal(t, "user", req.Messages[0].Role)
		_, _ = w.Write(completionBody("ok"))
	})

	got, err := client.ChatCompletion(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestChatCompletion_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newFakeOpenAI(t, func(w http.ResponseWriter, _ *chatRequest) {
		if calls.Add(1) < 3 {
			writeError(w, http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(completionBody("third time lucky"))
	})

	got, err := client.ChatCompletion(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestChatCompletion_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newFakeOpenAI(t, func(w http.ResponseWriter, _ *chatRequest) {
		calls.Add(1)
		writeError(w, http.StatusBadRequest)
	})

	_, err := client.ChatCompletion(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion failed")
	assert.Equal(t, int32(1), calls.Load())
}

func TestChatCompletion_EmptyChoices(t *testing.T) {
	client := newFakeOpenAI(t, func(w http.ResponseWriter, _ *chatRequest) {
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})
	client.maxRetries = 0

	_, err := client.ChatCompletion(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestWebSearch_UsesCountryContext(t *testing.T) {
	client := newFakeOpenAI(t, func(w http.ResponseWriter, req *chatRequest) {
		if !assert.Len(t, req.Messages, 2) {
			writeError(w, http.StatusBadRequest)
			return
		}
		assert.Contains(t, req.Messages[0].Content, "ISO code SK")
		assert.Equal(t, "find it", req.Messages[1].Content)
		_, _ = w.Write(completionBody("found"))
	})

	got, err := client.WebSearch(context.Background(), "find it")
	require.NoError(t, err)
	assert.Equal(t, "found", got)
}

func TestReviewPlace(t *testing.T) {
	reply := "<think>let me look this up</think>\n```json\n" +
		`{"name":"Zoo Bratislava","types":["zoo","attraction"],"description":"Popis.","lat":48.16,"lon":17.07,` +
		`"country_code":"SK","street":"Mlynska dolina 1","city":"Bratislava","zip_code":"84104",` +
		`"min_age":2,"max_age":99,"website":"https://zoobratislava.sk","is_admission_free":false,` +
		`"season":"all","stroller_friendly":null}` + "\n```"

	client := newFakeOpenAI(t, func(w http.ResponseWriter, req *chatRequest) {
		assert.Contains(t, req.Messages[1].Content, `Gather detailed information about the place called "Zoo".`)
		assert.Contains(t, req.Messages[1].Content, `It may be located in the city "Bratislava".`)
		_, _ = w.Write(completionBody(reply))
	})

	review, err := client.ReviewPlace(context.Background(), "Zoo", "Bratislava", []string{"zoo"})
	require.NoError(t, err)
	assert.Equal(t, "Zoo Bratislava", review.Name)
	assert.Equal(t, []string{"zoo", "attraction"}, review.Types)
	assert.True(t, review.HasCoordinates())
	require.NotNil(t, review.MinAge)
	assert.Equal(t, 2, *review.MinAge)
	require.NotNil(t, review.IsAdmissionFree)
	assert.False(t, *review.IsAdmissionFree)
	assert.Nil(t, review.StrollerFriendly)
}

func TestReviewPlace_InvalidJSON(t *testing.T) {
	client := newFakeOpenAI(t, func(w http.ResponseWriter, _ *chatRequest) {
		_, _ = w.Write(completionBody("I could not find that place."))
	})

	_, err := client.ReviewPlace(context.Background(), "Nowhere", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode place review")
}
