package analyzer

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingImage is returned when no circuit image was supplied. No model call is made.
var ErrMissingImage = errors.New("missing input: no circuit image uploaded")

type circuitAnalyzer struct {
	model   Model
	options AnalysisOptions
}

// NewCircuitAnalyzer creates an analyzer that forwards requests to model
func NewCircuitAnalyzer(model Model, options AnalysisOptions) (CircuitAnalyzer, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if options.Template.Text == "" {
		options.Template = DefaultTemplate()
	}
	return &circuitAnalyzer{
		model:   model,
		options: options,
	}, nil
}

func (ca *circuitAnalyzer) ModelName() string {
	return ca.options.Model
}

// Assemble builds the model request. The image bytes are shared, not copied or re-encoded.
func (ca *circuitAnalyzer) Assemble(input AnalysisInput) (*ModelRequest, error) {
	if input.Image.Empty() {
		return nil, ErrMissingImage
	}

	return &ModelRequest{
		Model:       ca.options.Model,
		Instruction: ca.options.Template.Render(input.Prompt),
		Image:       *input.Image,
		UserPrompt:  input.Prompt,
		Temperature: ca.options.Temperature,
	}, nil
}

// Analyze performs one model call per invocation and returns its text untouched.
func (ca *circuitAnalyzer) Analyze(ctx context.Context, input AnalysisInput) (string, error) {
	req, err := ca.Assemble(input)
	if err != nil {
		return "", err
	}

	text, err := ca.model.GenerateContent(ctx, req)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	return text, nil
}
