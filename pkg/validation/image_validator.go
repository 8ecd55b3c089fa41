package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "go-circuit-analyzer/internal/errors"
	"go-circuit-analyzer/pkg/models"
)

// genericMimeType is what browsers and HTTP servers send when they do not know better.
const genericMimeType = "application/octet-stream"

// ImageValidator restricts circuit drawings to the formats the upload form accepts
type ImageValidator struct {
	allowedMimeTypes  []string
	allowedExtensions []string
	maxSize           int64
}

// NewImageValidator accepts jpg, jpeg and png images up to maxSize bytes
func NewImageValidator(maxSize int64) *ImageValidator {
	return &ImageValidator{
		allowedMimeTypes:  []string{"image/jpeg", "image/png"},
		allowedExtensions: []string{".jpg", ".jpeg", ".png"},
		maxSize:           maxSize,
	}
}

// AcceptAttribute renders the allowed extensions for an <input type="file" accept=...>.
func (v *ImageValidator) AcceptAttribute() string {
	return strings.Join(v.allowedExtensions, ",")
}

// ResolveMimeType returns the declared type unless it is missing or generic,
// in which case the type is sniffed from the bytes. Parameters such as
// "; charset=binary" are dropped from a declared type; a bare type is returned as is.
func ResolveMimeType(declared string, data []byte) string {
	declared = baseMediaType(declared)
	if declared != "" && !strings.EqualFold(declared, genericMimeType) {
		return declared
	}
	return mimetype.Detect(data).String()
}

func baseMediaType(mimeType string) string {
	base, _, hasParams := strings.Cut(mimeType, ";")
	if !hasParams {
		return strings.TrimSpace(mimeType)
	}
	return strings.TrimSpace(base)
}

// Validate checks an image payload. A nil or empty payload is a missing-input error.
func (v *ImageValidator) Validate(img *models.ImagePayload) error {
	if img.Empty() {
		return apperrors.NewMissingInputError("No File Uploaded.", nil)
	}

	if v.maxSize > 0 && int64(len(img.Data)) > v.maxSize {
		return apperrors.NewTooLargeError(
			fmt.Sprintf("image is %d bytes, limit is %d bytes", len(img.Data), v.maxSize), nil)
	}

	if !v.isMimeTypeAllowed(img.MimeType) {
		return apperrors.NewValidationError(
			fmt.Sprintf("unsupported image type %q (allowed: %s)", img.MimeType, strings.Join(v.allowedMimeTypes, ", ")), nil)
	}

	if img.Filename != "" && !v.isExtensionAllowed(filepath.Ext(img.Filename)) {
		return apperrors.NewValidationError(
			fmt.Sprintf("unsupported file extension %q (allowed: %s)", filepath.Ext(img.Filename), v.AcceptAttribute()), nil)
	}

	return nil
}

func (v *ImageValidator) isMimeTypeAllowed(mimeType string) bool {
	base := baseMediaType(mimeType)
	for _, allowed := range v.allowedMimeTypes {
		if strings.EqualFold(base, allowed) {
			return true
		}
	}
	return false
}

func (v *ImageValidator) isExtensionAllowed(ext string) bool {
	for _, allowed := range v.allowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
