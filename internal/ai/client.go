// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai wraps the Azure OpenAI deployment that drafts blog articles
// and generates cover images. Every failure path returns a tagged *Error;
// transient upstream failures are retried with backoff, everything else
// surfaces to the caller on the first attempt.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"nextping/internal/htmltext"
)

// Config holds the Azure OpenAI connection settings. It is built once at
// process start and injected here — the client never reads the
// environment itself.
type Config struct {
	Endpoint        string // resource base URL, e.g. https://myres.openai.azure.com
	APIKey          string
	APIVersion      string
	Deployment      string // chat completions deployment
	ImageDeployment string // image generations deployment; optional
}

// missingChatFields returns the names of unset fields required for chat
// completions.
func (c Config) missingChatFields() []string {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if c.APIVersion == "" {
		missing = append(missing, "api_version")
	}
	if c.Deployment == "" {
		missing = append(missing, "deployment")
	}
	return missing
}

const (
	// requestTimeout bounds a single upstream call. Article generation
	// regularly takes 20-40s for long bodies.
	requestTimeout = 60 * time.Second

	// maxAttempts caps retries for transient failures (network, 429, 5xx).
	maxAttempts = 3

	// backoffBase seeds the fibonacci backoff between attempts.
	backoffBase = 500 * time.Millisecond

	maxTokens   = 2048
	temperature = 0.7
)

// Client calls the text and image generation deployments.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a generation client. Configuration completeness is
// checked per call, not here, so a partially configured server can still
// boot with generation disabled.
func NewClient(cfg Config) *Client {
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Result is the structured article draft parsed from one generation call.
// All six fields are populated on success.
type Result struct {
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	Tags            []string `json:"tags"`
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	Keywords        []string `json:"keywords"`
}

// Generate drafts a complete article for the given topic. It validates
// input and configuration before any network call, then performs the chat
// completion with bounded retries for transient failures, and parses the
// model's output as a strict six-key JSON document.
func (c *Client) Generate(ctx context.Context, topic string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &Error{Kind: KindValidation, Message: "topic must not be empty"}
	}

	if missing := c.config.missingChatFields(); len(missing) > 0 {
		return nil, &Error{Kind: KindConfiguration, Message: "generation service not configured", Missing: missing}
	}

	endpoint, err := c.chatURL()
	if err != nil {
		return nil, err
	}

	body := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(topic)},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	raw, err := c.doJSON(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Error{Kind: KindMalformedOutput, Message: "response is not valid JSON", Raw: string(raw), Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindEmptyOutput, Message: "no choices returned"}
	}

	return parseResult(resp.Choices[0].Message.Content)
}

// chatURL builds the chat completions URL, verifying the configured
// endpoint is an absolute http(s) URL first.
func (c *Client) chatURL() (string, error) {
	u, err := url.Parse(c.config.Endpoint)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &Error{Kind: KindInvalidEndpoint, Message: fmt.Sprintf("endpoint %q is not an absolute URL", c.config.Endpoint), Err: err}
	}
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.config.Endpoint, c.config.Deployment, url.QueryEscape(c.config.APIVersion)), nil
}

// doJSON posts the payload and returns the response body. Transient
// failures (network errors, 429, 5xx) are retried with fibonacci backoff
// up to maxAttempts; every other failure surfaces immediately.
func (c *Client) doJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindService, Message: "marshal request", Err: err}
	}

	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewFibonacci(backoffBase))

	var raw []byte
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var attemptErr error
		raw, attemptErr = c.attempt(ctx, endpoint, body)
		if attemptErr == nil {
			return nil
		}
		var aiErr *Error
		if errors.As(attemptErr, &aiErr) && aiErr.Retryable() {
			return retry.RetryableError(attemptErr)
		}
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// attempt performs exactly one HTTP round trip and classifies any failure.
func (c *Client) attempt(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindInvalidEndpoint, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Kind: KindTimeout, Message: "generation request timed out", Err: err}
		}
		return nil, &Error{Kind: KindNetwork, Message: "generation request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "read response body", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return raw, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Kind: KindUnauthorized, Message: "credential rejected", Status: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{Kind: KindNotFound, Message: "deployment not found", Status: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Kind: KindRateLimited, Message: "rate limited", Status: resp.StatusCode}
	default:
		return nil, &Error{
			Kind:    KindService,
			Message: fmt.Sprintf("upstream status %d: %s", resp.StatusCode, truncate(string(raw), 300)),
			Status:  resp.StatusCode,
		}
	}
}

// parseResult validates and decodes the model's raw text output into a
// Result. The output must be a bare JSON object with exactly the six
// expected keys; fenced output is unwrapped first since models sometimes
// add fences despite instructions.
func parseResult(raw string) (*Result, error) {
	text := stripCodeFence(raw)
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Kind: KindEmptyOutput, Message: "model returned no content"}
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &keys); err != nil {
		return nil, &Error{Kind: KindMalformedOutput, Message: "output is not a JSON object", Raw: raw, Err: err}
	}

	var missing []string
	for _, k := range []string{"excerpt", "content", "tags", "metaTitle", "metaDescription", "keywords"} {
		if _, ok := keys[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{Kind: KindMalformedOutput, Message: "output missing keys: " + strings.Join(missing, ", "), Raw: raw}
	}

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, &Error{Kind: KindMalformedOutput, Message: "output fields have wrong types", Raw: raw, Err: err}
	}

	if strings.TrimSpace(result.Content) == "" || strings.TrimSpace(result.Excerpt) == "" {
		return nil, &Error{Kind: KindMalformedOutput, Message: "output has empty content or excerpt", Raw: raw}
	}
	if htmltext.HeadingCount(result.Content, "h1,h2,h3") == 0 {
		return nil, &Error{Kind: KindMalformedOutput, Message: "content has no heading elements", Raw: raw}
	}

	return &result, nil
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i != -1 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i != -1 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// truncate cuts a string to maxLen bytes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// --- wire types for the chat completions API ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
