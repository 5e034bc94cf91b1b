// Package review generates natural-language review feedback for diff
// text by calling the OpenAI chat-completions API.
package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultTimeout = 60 * time.Second

	maxTokens   = 500
	temperature = 0.3

	systemPrompt = "You are a senior software engineer reviewing a pull request. " +
		"Give detailed, constructive feedback focusing on code quality, readability, bugs, and best practices."
)

// Fallback is the comment body used whenever the completion API cannot
// produce review text. Failures never abort a run; the fallback is
// posted in place of a real review.
const Fallback = "Unable to generate review comment."

// Client calls the chat-completions API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a review client for the given API key and model.
func NewClient(apiKey, model string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        log,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
}

// Review asks the model to review diffText and returns the generated
// prose. Any failure is logged and swallowed into Fallback; Review
// never errors, so a broken completion service degrades the run
// instead of aborting it.
func (c *Client) Review(ctx context.Context, diffText string) string {
	text, err := c.complete(ctx, diffText)
	if err != nil {
		c.log.Warn().Err(err).Msg("review generation failed, using fallback comment")
		return Fallback
	}
	return text
}

func (c *Client) complete(ctx context.Context, diffText string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Please review the following code diff:\n\n" + diffText},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completion API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("completion API returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("completion API returned %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
