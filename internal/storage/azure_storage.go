package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"go-circuit-analyzer/pkg/models"
)

type azureStorage struct {
	accountName string
	client      *azblob.Client
	maxBytes    int64
}

// NewAzureStorage creates a fetcher for https://<account>.blob.core.windows.net/<container>/<blob> URLs
func NewAzureStorage(accountName, accountKey string, maxBytes int64) (ImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	return &azureStorage{accountName: accountName, client: client, maxBytes: maxBytes}, nil
}

func (s *azureStorage) FetchImage(ctx context.Context, blobURL string) (*models.ImagePayload, error) {
	account, containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(account, s.accountName) {
		return nil, fmt.Errorf("%w: %s", ErrForeignAccount, account)
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	body := resp.Body
	defer body.Close()

	data, err := readLimited(body, s.maxBytes)
	if err != nil {
		return nil, err
	}

	mimeType := ""
	if resp.ContentType != nil {
		mimeType = *resp.ContentType
	}

	return &models.ImagePayload{
		Data:     data,
		MimeType: mimeType,
		Filename: path.Base(blobName),
	}, nil
}

// ParseBlobURL splits a blob URL into account, container and blob name.
func ParseBlobURL(blobURL string) (account, containerName, blobName string, err error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrInvalidBlobURL, err)
	}

	host := strings.ToLower(parsedURL.Hostname())
	account, _, found := strings.Cut(host, ".")
	if !found || account == "" {
		return "", "", "", fmt.Errorf("%w: missing account in %q", ErrInvalidBlobURL, host)
	}

	containerName, blobName, found = strings.Cut(strings.TrimPrefix(parsedURL.Path, "/"), "/")
	if !found || containerName == "" || blobName == "" {
		return "", "", "", fmt.Errorf("%w: expected /<container>/<blob>, got %q", ErrInvalidBlobURL, parsedURL.Path)
	}

	return account, containerName, blobName, nil
}
