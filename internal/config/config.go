package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	MaxImageSize       int64
	LogLevel           string

	// Hosted model
	GoogleAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	PromptTemplateFile string

	// Optional Azure Blob image source
	AzureStorageAccount string
	AzureStorageKey     string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether both Azure Blob credentials are present.
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// LoadFromEnv reads .env (when present) and the process environment.
// Values already set in the environment win over .env entries.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("request_timeout", "60s")
	v.SetDefault("max_request_body_size", 12*1024*1024) // 12MB
	v.SetDefault("max_image_size", 10*1024*1024)        // 10MB
	v.SetDefault("log_level", "info")
	v.SetDefault("gemini_model", DefaultModel)
	v.SetDefault("gemini_base_url", DefaultBaseURL)

	requestTimeout, err := parseDuration("REQUEST_TIMEOUT", v.GetString("request_timeout"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:                strings.TrimSpace(v.GetString("host")),
		Port:                strings.TrimSpace(v.GetString("port")),
		RequestTimeout:      requestTimeout,
		MaxRequestBodySize:  v.GetInt64("max_request_body_size"),
		MaxImageSize:        v.GetInt64("max_image_size"),
		LogLevel:            v.GetString("log_level"),
		GoogleAPIKey:        strings.TrimSpace(v.GetString("google_api_key")),
		GeminiModel:         strings.TrimSpace(v.GetString("gemini_model")),
		GeminiBaseURL:       strings.TrimRight(strings.TrimSpace(v.GetString("gemini_base_url")), "/"),
		PromptTemplateFile:  strings.TrimSpace(v.GetString("prompt_template_file")),
		AzureStorageAccount: strings.TrimSpace(v.GetString("azure_storage_account")),
		AzureStorageKey:     strings.TrimSpace(v.GetString("azure_storage_key")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration requires a unit ("60s", "2m"); a bare number is rejected.
func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q (expected a duration such as 60s)", key, value)
	}
	return d, nil
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(c.Port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE must be > 0 (got %d)", c.MaxImageSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if c.GeminiModel == "" {
		return fmt.Errorf("GEMINI_MODEL must not be empty")
	}
	if !strings.HasPrefix(c.GeminiBaseURL, "http://") && !strings.HasPrefix(c.GeminiBaseURL, "https://") {
		return fmt.Errorf("invalid GEMINI_BASE_URL: %q", c.GeminiBaseURL)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}
