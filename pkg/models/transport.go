package models

import "time"

// AnalysisRequest is the per-request input of a circuit analysis.
// Exactly one image source is used: the uploaded Image wins over ImageURL.
type AnalysisRequest struct {
	Prompt   string        `json:"prompt" form:"prompt"`
	ImageURL string        `json:"image_url,omitempty" form:"image_url"`
	Image    *ImagePayload `json:"-" form:"-"`

	// RequestID correlates logs and events; set by the transport layer
	RequestID string `json:"-" form:"-"`
}

// AnalysisResponse carries the model output. Text is exactly what the model returned.
type AnalysisResponse struct {
	RequestID         string    `json:"request_id,omitempty"`
	Prompt            string    `json:"prompt"`
	Text              string    `json:"text"`
	Model             string    `json:"model"`
	ImageMimeType     string    `json:"image_mime_type"`
	ImageSize         int       `json:"image_size"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`
	Timestamp         time.Time `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
