// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package ai talks to an OpenAI-compatible chat completion API to research
// places found by the scraping pipeline.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/metrics"
	"github.com/tomtom215/familymap/internal/resilience"
)

// ErrMissingAPIKey is returned when no OpenAI key is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable is not set")

// ErrEmptyResponse is returned when the API answers without choices.
var ErrEmptyResponse = errors.New("no response choices from model")

const breakerName = "openai-api"

// Client is a chat completion client with retries and a circuit breaker.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	country     string
	maxRetries  int
	backoff     time.Duration
	timeout     time.Duration
	breaker     *resilience.CircuitBreaker[string]
}

// NewClient creates a client from configuration.
func NewClient(cfg *config.AIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	country := cfg.Country
	if country == "" {
		country = "SK"
	}

	return &Client{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		country:     country,
		maxRetries:  cfg.MaxRetries,
		backoff:     time.Second,
		timeout:     cfg.Timeout,
		breaker:     resilience.NewCircuitBreaker[string](breakerName, resilience.DefaultSettings()),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// ChatCompletion sends prompt with an optional system message and returns
// the model's reply.
func (c *Client) ChatCompletion(ctx context.Context, prompt, systemPrompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	return c.complete(ctx, "chat", messages)
}

// WebSearch asks the model to research prompt using current public
// information, biased towards the configured country.
func (c *Client) WebSearch(ctx context.Context, prompt string) (string, error) {
	system := fmt.Sprintf(
		"You research places using up-to-date public information such as official websites and maps. "+
			"Assume the user is located in the country with ISO code %s unless the request says otherwise.",
		c.country)

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	return c.complete(ctx, "web_search", messages)
}

func (c *Client) complete(ctx context.Context, kind string, messages []openai.ChatCompletionMessage) (string, error) {
	start := time.Now()
	content, err := c.breaker.Execute(func() (string, error) {
		return c.completeWithRetry(ctx, messages)
	})
	metrics.RecordAIRequest(kind, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", kind, err)
	}
	return content, nil
}

func (c *Client) completeWithRetry(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(attempt)
			logging.Debug().Int("attempt", attempt).Dur("backoff", wait).Err(lastErr).Msg("Retrying OpenAI request")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		content, err := c.createOnce(ctx, req)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return "", lastErr
}

func (c *Client) createOnce(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// retryable reports whether another attempt could succeed. Client errors
// other than rate limiting are final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}
