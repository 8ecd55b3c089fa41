package factory

import (
	"strings"
	"testing"

	"go-circuit-analyzer/internal/config"
)

func TestStorageFactory_CreateStorage(t *testing.T) {
	tests := []struct {
		name          string
		cfg           *config.Config
		storageType   StorageType
		errorContains string
	}{
		{"http", &config.Config{MaxImageSize: 1024}, HTTPStorage, ""},
		{"azure configured", &config.Config{AzureStorageAccount: "acct", AzureStorageKey: "a2V5"}, AzureStorage, ""},
		{"azure not configured", &config.Config{}, AzureStorage, "not configured"},
		{"unknown", &config.Config{}, StorageType("ftp"), "unsupported storage type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, err := NewStorageFactory(tt.cfg).CreateStorage(tt.storageType)
			if tt.errorContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error containing %q, got: %v", tt.errorContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if fetcher == nil {
				t.Error("Expected non-nil fetcher")
			}
		})
	}
}
