package repository

import (
	"context"
	"fmt"

	"go-circuit-analyzer/internal/storage"
	"go-circuit-analyzer/pkg/models"
	"go-circuit-analyzer/pkg/validation"
)

// remoteImageRepository routes Azure Blob URLs to the blob fetcher and everything else over HTTP
type remoteImageRepository struct {
	httpFetcher  storage.ImageFetcher
	azureFetcher storage.ImageFetcher
	validator    *validation.URLValidator
}

// NewRemoteImageRepository creates a repository. azureFetcher may be nil.
func NewRemoteImageRepository(httpFetcher, azureFetcher storage.ImageFetcher, validator *validation.URLValidator) ImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &remoteImageRepository{
		httpFetcher:  httpFetcher,
		azureFetcher: azureFetcher,
		validator:    validator,
	}
}

func (r *remoteImageRepository) FetchImage(ctx context.Context, imageURL string) (*models.ImagePayload, error) {
	if validation.IsAzureBlobURL(imageURL) && r.azureFetcher != nil {
		return r.azureFetcher.FetchImage(ctx, imageURL)
	}
	if r.httpFetcher == nil {
		return nil, fmt.Errorf("%w: no HTTP fetcher configured", ErrSourceUnavailable)
	}
	return r.httpFetcher.FetchImage(ctx, imageURL)
}

func (r *remoteImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}
