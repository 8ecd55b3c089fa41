package analyzer

import "go-circuit-analyzer/pkg/models"

// ModelRequest is the payload sent to the hosted model.
// Parts are sent in order: Instruction, Image, UserPrompt.
type ModelRequest struct {
	Model       string
	Instruction string
	Image       models.ImagePayload
	UserPrompt  string
	Temperature float64
}
