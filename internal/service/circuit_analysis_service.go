package service

import (
	"context"
	"errors"
	"time"

	"go-circuit-analyzer/internal/analyzer"
	apperrors "go-circuit-analyzer/internal/errors"
	"go-circuit-analyzer/internal/observer"
	"go-circuit-analyzer/internal/repository"
	"go-circuit-analyzer/internal/storage"
	"go-circuit-analyzer/pkg/models"
	"go-circuit-analyzer/pkg/validation"
)

const (
	SourceUpload = "upload"
	SourceURL    = "url"
	SourceNone   = "none"
)

// CircuitAnalysisService runs one circuit analysis per call
type CircuitAnalysisService interface {
	AnalyzeCircuit(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error)
}

type circuitAnalysisService struct {
	imageRepo      repository.ImageRepository
	analyzer       analyzer.CircuitAnalyzer
	imageValidator *validation.ImageValidator
	events         observer.Subject
}

// NewCircuitAnalysisService creates a new circuit analysis service
func NewCircuitAnalysisService(
	imageRepository repository.ImageRepository,
	circuitAnalyzer analyzer.CircuitAnalyzer,
	imageValidator *validation.ImageValidator,
	events observer.Subject,
) CircuitAnalysisService {
	if events == nil {
		events = observer.NewEventPublisher()
	}
	return &circuitAnalysisService{
		imageRepo:      imageRepository,
		analyzer:       circuitAnalyzer,
		imageValidator: imageValidator,
		events:         events,
	}
}

// AnalyzeCircuit resolves the circuit image, checks it and forwards it to the model.
// An uploaded image takes precedence over ImageURL.
func (s *circuitAnalysisService) AnalyzeCircuit(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error) {
	start := time.Now()
	event := observer.AnalysisEvent{
		RequestID: req.RequestID,
		Source:    sourceOf(req),
		ImageURL:  req.ImageURL,
		Model:     s.analyzer.ModelName(),
	}

	started := event
	started.EventType = observer.AnalysisStarted
	s.events.NotifyObservers(ctx, started)

	resp, err := s.analyze(ctx, req, event, start)
	if err != nil {
		failed := event
		failed.EventType = observer.AnalysisFailed
		failed.ProcessingTime = time.Since(start)
		failed.ErrorMessage = err.Error()
		s.events.NotifyObservers(ctx, failed)
		return nil, err
	}

	completed := event
	completed.EventType = observer.AnalysisCompleted
	completed.ProcessingTime = time.Since(start)
	completed.Success = true
	completed.Metadata = map[string]interface{}{
		"image_size":      resp.ImageSize,
		"image_mime_type": resp.ImageMimeType,
		"response_length": len(resp.Text),
	}
	s.events.NotifyObservers(ctx, completed)

	return resp, nil
}

func (s *circuitAnalysisService) analyze(ctx context.Context, req models.AnalysisRequest, event observer.AnalysisEvent, start time.Time) (*models.AnalysisResponse, error) {
	img, err := s.resolveImage(ctx, req, event)
	if err != nil {
		return nil, err
	}

	if s.imageValidator != nil {
		if err := s.imageValidator.Validate(img); err != nil {
			return nil, err
		}
	}

	text, err := s.analyzer.Analyze(ctx, analyzer.AnalysisInput{Image: img, Prompt: req.Prompt})
	if err != nil {
		return nil, classifyModelError(err)
	}

	return &models.AnalysisResponse{
		RequestID:         req.RequestID,
		Prompt:            req.Prompt,
		Text:              text,
		Model:             s.analyzer.ModelName(),
		ImageMimeType:     img.MimeType,
		ImageSize:         len(img.Data),
		ProcessingTimeSec: time.Since(start).Seconds(),
		Timestamp:         start.UTC(),
	}, nil
}

// resolveImage returns the uploaded image or fetches the one behind ImageURL.
// Neither present is a missing-input error and nothing is fetched.
func (s *circuitAnalysisService) resolveImage(ctx context.Context, req models.AnalysisRequest, event observer.AnalysisEvent) (*models.ImagePayload, error) {
	var img *models.ImagePayload

	switch {
	case !req.Image.Empty():
		img = req.Image
	case req.ImageURL != "":
		if s.imageRepo == nil {
			return nil, apperrors.NewValidationError("image URLs are not supported", repository.ErrSourceUnavailable)
		}
		if err := s.imageRepo.ValidateImageURL(req.ImageURL); err != nil {
			return nil, err
		}

		fetchStart := time.Now()
		fetched, err := s.imageRepo.FetchImage(ctx, req.ImageURL)
		event.ProcessingTime = time.Since(fetchStart)
		if err != nil {
			event.EventType = observer.ImageFetchFailed
			event.ErrorMessage = err.Error()
			s.events.NotifyObservers(ctx, event)
			return nil, classifyFetchError(err)
		}
		event.EventType = observer.ImageFetched
		event.Success = true
		s.events.NotifyObservers(ctx, event)
		img = fetched
	default:
		return nil, apperrors.NewMissingInputError("No File Uploaded.", analyzer.ErrMissingImage)
	}

	img.MimeType = validation.ResolveMimeType(img.MimeType, img.Data)
	return img, nil
}

func sourceOf(req models.AnalysisRequest) string {
	switch {
	case !req.Image.Empty():
		return SourceUpload
	case req.ImageURL != "":
		return SourceURL
	default:
		return SourceNone
	}
}

func classifyFetchError(err error) error {
	switch {
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewTooLargeError("circuit image is too large", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timeout", err)
	case errors.Is(err, storage.ErrInvalidBlobURL), errors.Is(err, storage.ErrForeignAccount):
		return apperrors.NewValidationError("invalid blob URL", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func classifyModelError(err error) error {
	switch {
	case errors.Is(err, analyzer.ErrMissingImage):
		return apperrors.NewMissingInputError("No File Uploaded.", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("model call timed out", err)
	default:
		return apperrors.NewUpstreamError("model call failed", err)
	}
}
