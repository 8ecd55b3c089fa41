package repository

import (
	"context"

	"go-circuit-analyzer/pkg/models"
)

// ImageRepository resolves remote circuit images referenced by URL
type ImageRepository interface {
	// FetchImage retrieves the raw image bytes behind a URL
	FetchImage(ctx context.Context, imageURL string) (*models.ImagePayload, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}
