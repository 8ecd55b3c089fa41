package transport

import (
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-circuit-analyzer/internal/config"
	apperrors "go-circuit-analyzer/internal/errors"
	"go-circuit-analyzer/internal/logger"
	"go-circuit-analyzer/internal/service"
	"go-circuit-analyzer/pkg/models"
	"go-circuit-analyzer/pkg/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageTitle  = "Tesla"
	pageHeader = "Tesla: Circuit Analysis Tool"
	imageField = "image"
)

// page is the view model of the analysis page
type page struct {
	Title        string
	Header       string
	Accept       string
	Prompt       string
	ImageDataURI template.URL
	Output       string
	Error        string
}

type handler struct {
	service        service.CircuitAnalysisService
	imageValidator *validation.ImageValidator
	cfg            *config.Config
	model          string
}

// NewHandler builds the gin engine. metrics is mounted on /metrics when non-nil.
func NewHandler(
	svc service.CircuitAnalysisService,
	imageValidator *validation.ImageValidator,
	cfg *config.Config,
	metrics http.Handler,
) http.Handler {
	h := &handler{
		service:        svc,
		imageValidator: imageValidator,
		cfg:            cfg,
		model:          cfg.GeminiModel,
	}

	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	// Add middleware
	r.Use(
		requestID(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/", h.showPage)
	r.POST("/", h.analyzePage)
	r.POST("/api/analyze", h.analyzeAPI)
	r.GET("/health", h.healthCheck)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	return r
}

func (h *handler) newPage() page {
	return page{
		Title:  pageTitle,
		Header: pageHeader,
		Accept: h.imageValidator.AcceptAttribute(),
	}
}

func (h *handler) showPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.newPage())
}

// analyzePage handles the form submit and renders the model output as returned.
func (h *handler) analyzePage(c *gin.Context) {
	p := h.newPage()

	img, err := readUpload(c)
	if err != nil {
		status := determineStatusCode(err)
		h.logFailure(c, status, err)
		p.Error = userMessage(err)
		c.HTML(status, "index.html", p)
		return
	}

	p.Prompt = c.PostForm("prompt")
	p.ImageDataURI = h.previewURI(img)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	resp, err := h.service.AnalyzeCircuit(ctx, models.AnalysisRequest{
		Prompt:    p.Prompt,
		Image:     img,
		RequestID: c.GetString(requestIDKey),
	})
	if err != nil {
		status := apperrors.GetStatusCode(err)
		h.logFailure(c, status, err)
		p.Error = userMessage(err)
		c.HTML(status, "index.html", p)
		return
	}

	p.Output = resp.Text
	c.HTML(http.StatusOK, "index.html", p)
}

// analyzeAPI accepts a multipart form (prompt, image, image_url), a urlencoded form or a
// JSON body (prompt, image_url).
func (h *handler) analyzeAPI(c *gin.Context) {
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString(requestIDKey),
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info("Processing circuit analysis request")

	var req models.AnalysisRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondBindError(c, err)
		return
	}
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		img, err := readUpload(c)
		if err != nil {
			h.respondBindError(c, err)
			return
		}
		req.Image = img
	}
	req.RequestID = c.GetString(requestIDKey)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	resp, err := h.service.AnalyzeCircuit(ctx, req)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "circuit analysis failed", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"request_id":         req.RequestID,
		"processing_time_ms": int64(resp.ProcessingTimeSec * 1000),
		"response_length":    len(resp.Text),
	}).Info("Circuit analysis completed successfully")

	c.JSON(http.StatusOK, resp)
}

func (h *handler) respondBindError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondError(c, http.StatusRequestEntityTooLarge, "request body too large",
			apperrors.NewTooLargeError("request body too large", err))
		return
	}
	respondError(c, http.StatusBadRequest, "invalid request format",
		apperrors.NewValidationError("invalid request format", err))
}

func (h *handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"model":   h.model,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) logFailure(c *gin.Context, status int, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": status,
		"request_id":  c.GetString(requestIDKey),
		"path":        c.Request.URL.Path,
		"ip":          c.ClientIP(),
	}).Error("Circuit analysis page request failed")
}

// readUpload returns the uploaded image, or nil when the form carries none.
func readUpload(c *gin.Context) (*models.ImagePayload, error) {
	fileHeader, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &models.ImagePayload{
		Data:     data,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Filename: fileHeader.Filename,
	}, nil
}

// previewURI renders the upload as a data URI, or "" when the upload would be rejected.
func (h *handler) previewURI(img *models.ImagePayload) template.URL {
	if img.Empty() {
		return ""
	}
	preview := *img
	preview.MimeType = validation.ResolveMimeType(img.MimeType, img.Data)
	if err := h.imageValidator.Validate(&preview); err != nil {
		return ""
	}
	return template.URL("data:" + preview.MimeType + ";base64," + base64.StdEncoding.EncodeToString(preview.Data))
}
