package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultEndpoint is the chat-completions URL of a local inference server.
const DefaultEndpoint = "http://127.0.0.1:8080/v1/chat/completions"

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// ErrEmptyCompletion is returned when the endpoint answers with blank content.
var ErrEmptyCompletion = errors.New("empty completion")

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("endpoint returned %d: %s", e.StatusCode, e.Body)
}

// ParseError is returned when a 2xx response body is not a chat completion.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Options configures a Client.
type Options struct {
	Endpoint    string
	Model       string
	Temperature float64
	// Token is sent as a bearer token when non-empty.
	Token string
	// HTTPClient is shared by all requests; nil means a fresh client with no
	// global timeout, since deadlines come from each request's context.
	HTTPClient *http.Client
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	endpoint    string
	model       string
	temperature float64
	token       string
	client      *http.Client
}

// NewClient creates a chat client for the given endpoint and model.
func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		endpoint:    endpoint,
		model:       opts.Model,
		temperature: opts.Temperature,
		token:       opts.Token,
		client:      hc,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Endpoint returns the chat-completions URL.
func (c *Client) Endpoint() string { return c.endpoint }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message Message `json:"message"`
}

// Complete sends the conversation and returns the first choice's content.
// maxTokens of zero leaves the limit to the server.
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &ParseError{Reason: "decode body", Err: err}
	}
	if len(result.Choices) == 0 {
		return "", &ParseError{Reason: "no choices"}
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
