package validation

import (
	"errors"
	"testing"

	apperrors "go-circuit-analyzer/internal/errors"
)

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		name        string
		validator   *URLValidator
		url         string
		wantMessage string // empty means the URL must pass
	}{
		{"plain https", NewURLValidator(), "https://example.com/circuit.png", ""},
		{"ip host", NewURLValidator(), "http://192.168.1.1/diagram.jpg", ""},
		{"with port", NewURLValidator(), "http://localhost:8080/c.jpeg", ""},
		{"uppercase scheme", NewURLValidator(), "HTTPS://example.com/c.png", ""},
		{"empty", NewURLValidator(), "", "URL cannot be empty"},
		{"whitespace", NewURLValidator(), " \t\n", "URL cannot be empty"},
		{"ftp scheme", NewURLValidator(), "ftp://example.com/c.png", "URL scheme not allowed"},
		{"file scheme", NewURLValidator(), "file:///tmp/c.png", "URL scheme not allowed"},
		{"data uri", NewURLValidator(), "data:image/png;base64,iVBORw0KGgo=", "URL scheme not allowed"},
		{"relative", NewURLValidator(), "not-a-url", "URL scheme not allowed"},
		{"no host", NewURLValidator(), "http:///path", "URL must have a valid host"},
		{"bare scheme", NewURLValidator(), "https://", "URL must have a valid host"},
		{
			"allowed host",
			NewURLValidatorWithOptions([]string{"https"}, []string{"example.com"}),
			"https://example.com/c.png",
			"",
		},
		{
			"allowed subdomain",
			NewURLValidatorWithOptions([]string{"https"}, []string{".blob.core.windows.net"}),
			"https://acct.blob.core.windows.net/circuits/c.png",
			"",
		},
		{
			"disallowed host",
			NewURLValidatorWithOptions([]string{"https"}, []string{"example.com"}),
			"https://untrusted.com/c.png",
			"URL host not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.ValidateImageURL(tt.url)
			if tt.wantMessage == "" {
				if err != nil {
					t.Errorf("Expected %q to pass validation, got error: %v", tt.url, err)
				}
				return
			}

			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("Expected AppError, got: %T (%v)", err, err)
			}
			if appErr.Type != apperrors.ErrorTypeValidation {
				t.Errorf("Expected validation error type, got %s", appErr.Type)
			}
			if appErr.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, appErr.Message)
			}
		})
	}
}

func TestIsAzureBlobURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://acct.blob.core.windows.net/circuits/rc.png", true},
		{"https://ACCT.BLOB.CORE.WINDOWS.NET/circuits/rc.png", true},
		{"http://acct.blob.core.windows.net/circuits/rc.png", false},
		{"https://example.com/rc.png", false},
		{"https://blob.core.windows.net.evil.com/rc.png", false},
		{"::", false},
	}

	for _, tt := range tests {
		if got := IsAzureBlobURL(tt.url); got != tt.want {
			t.Errorf("IsAzureBlobURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
