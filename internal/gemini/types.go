package gemini

import (
	"fmt"
	"strings"
)

// Request is the generateContent request body
type Request struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is one turn of the conversation
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part holds either text or inline binary data
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData is an inline blob. Data is base64 encoded on the wire by encoding/json.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// GenerationConfig holds sampling parameters
type GenerationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

// Response is the generateContent response body
type Response struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	ModelVersion   string          `json:"modelVersion"`
	UsageMetadata  UsageMetadata   `json:"usageMetadata"`
}

// Candidate is one generated answer
type Candidate struct {
	Content      CandidateContent `json:"content"`
	FinishReason string           `json:"finishReason"`
}

// CandidateContent is the content of a candidate
type CandidateContent struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role"`
}

// PromptFeedback is set when the prompt itself was blocked
type PromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

// UsageMetadata reports token usage
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Text concatenates the text parts of the first candidate.
func (r *Response) Text() (string, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked by model: %s", r.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("model returned no candidates")
	}

	candidate := r.Candidates[0]
	var sb strings.Builder
	found := false
	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil {
			continue
		}
		sb.WriteString(part.Text)
		found = true
	}
	if !found {
		return "", fmt.Errorf("model returned no text (finish reason: %s)", candidate.FinishReason)
	}
	return sb.String(), nil
}

// errorEnvelope is the JSON error body returned by the API
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError is a non-200 answer from the model endpoint
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini API error %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini API error %d: %s", e.StatusCode, e.Message)
}
