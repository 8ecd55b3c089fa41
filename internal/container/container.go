package container

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"go-circuit-analyzer/internal/analyzer"
	"go-circuit-analyzer/internal/config"
	"go-circuit-analyzer/internal/factory"
	"go-circuit-analyzer/internal/gemini"
	"go-circuit-analyzer/internal/logger"
	"go-circuit-analyzer/internal/observer"
	"go-circuit-analyzer/internal/repository"
	"go-circuit-analyzer/internal/service"
	"go-circuit-analyzer/internal/storage"
	"go-circuit-analyzer/internal/transport"
	"go-circuit-analyzer/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config                 *config.Config
	registry               *prometheus.Registry
	events                 *observer.EventPublisher
	circuitAnalyzer        analyzer.CircuitAnalyzer
	imageRepository        repository.ImageRepository
	circuitAnalysisService service.CircuitAnalysisService
	handler                http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	template, err := loadTemplate(cfg)
	if err != nil {
		return nil, err
	}

	model := gemini.NewClient(cfg.GeminiBaseURL, cfg.GoogleAPIKey,
		gemini.WithModel(cfg.GeminiModel),
		gemini.WithTimeout(cfg.RequestTimeout),
	)
	circuitAnalyzer, err := analyzer.NewCircuitAnalyzer(model, analyzer.DefaultOptions(cfg.GeminiModel).WithTemplate(template))
	if err != nil {
		return nil, err
	}

	imageRepository, err := newImageRepository(cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsObserver, err := observer.NewMetricsObserver(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metricsObserver)

	imageValidator := validation.NewImageValidator(cfg.MaxImageSize)
	circuitAnalysisService := service.NewCircuitAnalysisService(imageRepository, circuitAnalyzer, imageValidator, events)
	handler := transport.NewHandler(
		circuitAnalysisService,
		imageValidator,
		cfg,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	)

	return &Container{
		config:                 cfg,
		registry:               registry,
		events:                 events,
		circuitAnalyzer:        circuitAnalyzer,
		imageRepository:        imageRepository,
		circuitAnalysisService: circuitAnalysisService,
		handler:                handler,
	}, nil
}

func loadTemplate(cfg *config.Config) (analyzer.PromptTemplate, error) {
	if cfg.PromptTemplateFile == "" {
		return analyzer.DefaultTemplate(), nil
	}

	template, err := analyzer.LoadTemplateFile(cfg.PromptTemplateFile)
	if err != nil {
		return analyzer.PromptTemplate{}, err
	}
	if !template.HasPlaceholder() {
		logger.WithFields(logrus.Fields{
			"file":        cfg.PromptTemplateFile,
			"placeholder": analyzer.ElementPlaceholder,
		}).Warn("Prompt template has no placeholder, the user prompt is still sent as its own part")
	}
	return template, nil
}

func newImageRepository(cfg *config.Config) (repository.ImageRepository, error) {
	storageFactory := factory.NewStorageFactory(cfg)

	httpFetcher, err := storageFactory.CreateStorage(factory.HTTPStorage)
	if err != nil {
		return nil, err
	}

	var azureFetcher storage.ImageFetcher
	if cfg.AzureEnabled() {
		azureFetcher, err = storageFactory.CreateStorage(factory.AzureStorage)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure storage: %w", err)
		}
		logger.WithField("account", cfg.AzureStorageAccount).Info("Azure Blob image source enabled")
	}

	return repository.NewRemoteImageRepository(httpFetcher, azureFetcher, validation.NewURLValidator()), nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Registry returns the prometheus registry behind /metrics
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// Close waits for pending event notifications
func (c *Container) Close() {
	c.events.Wait()
}
