// Package gemini is a minimal client for the Gemini generateContent REST endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-circuit-analyzer/internal/analyzer"
)

const (
	// DefaultTimeout bounds a single generateContent call
	DefaultTimeout = 120 * time.Second

	apiKeyHeader = "x-goog-api-key"
)

// Client calls the Gemini API
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithModel sets the model used when a request does not name one
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client for baseURL (e.g. https://generativelanguage.googleapis.com)
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GenerateContent sends the instruction, the image and the user prompt as one user turn
// and returns the answer text as the model produced it.
func (c *Client) GenerateContent(ctx context.Context, req *analyzer.ModelRequest) (string, error) {
	resp, err := c.Generate(ctx, req.Model, BuildRequest(req))
	if err != nil {
		return "", err
	}
	return resp.Text()
}

// BuildRequest maps an assembled model request onto the wire format.
// Empty text parts are left out; the API rejects them.
func BuildRequest(req *analyzer.ModelRequest) Request {
	parts := make([]Part, 0, 3)
	if req.Instruction != "" {
		parts = append(parts, Part{Text: req.Instruction})
	}
	parts = append(parts, Part{InlineData: &InlineData{
		MimeType: req.Image.MimeType,
		Data:     req.Image.Data,
	}})
	if req.UserPrompt != "" {
		parts = append(parts, Part{Text: req.UserPrompt})
	}

	temperature := req.Temperature
	return Request{
		Contents:         []Content{{Role: "user", Parts: parts}},
		GenerationConfig: &GenerationConfig{Temperature: &temperature},
	}
}

// Generate posts a raw request to model, falling back to the client's default model.
func (c *Client) Generate(ctx context.Context, model string, body Request) (*Response, error) {
	if model == "" {
		model = c.model
	}
	if model == "" {
		return nil, fmt.Errorf("no model configured")
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	var result Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Model returns the default model name
func (c *Client) Model() string {
	return c.model
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
