package analyzer

import (
	"context"

	"go-circuit-analyzer/pkg/models"
)

// CircuitAnalyzer turns a circuit drawing and a user prompt into the model's answer
type CircuitAnalyzer interface {
	// Assemble builds the model request without calling the model.
	Assemble(input AnalysisInput) (*ModelRequest, error)

	// Analyze assembles the request and performs exactly one model call.
	Analyze(ctx context.Context, input AnalysisInput) (string, error)

	// ModelName reports the hosted model the requests are sent to.
	ModelName() string
}

// Model is a hosted multimodal model that answers one assembled request with free text.
type Model interface {
	GenerateContent(ctx context.Context, req *ModelRequest) (string, error)
}

// AnalysisInput is the explicit per-request context handed to the analyzer.
type AnalysisInput struct {
	Image  *models.ImagePayload
	Prompt string
}
