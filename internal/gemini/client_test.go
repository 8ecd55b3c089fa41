package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-circuit-analyzer/internal/analyzer"
	"go-circuit-analyzer/pkg/models"
)

var circuitPNG = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0xFF, 0xFE}

func newModelRequest() *analyzer.ModelRequest {
	return &analyzer.ModelRequest{
		Model:       "gemini-test",
		Instruction: "Analyze resistor R1",
		Image:       models.ImagePayload{Data: circuitPNG, MimeType: "image/png"},
		UserPrompt:  "resistor R1",
		Temperature: 0.2,
	}
}

func textResponse(text string) string {
	return `{"candidates":[{"content":{"role":"model","parts":[{"text":` + jsonString(text) + `}]},"finishReason":"STOP"}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestGenerateContent_WireFormat(t *testing.T) {
	var captured map[string]any
	var path, apiKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(textResponse("ok")))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "secret-key")
	_, err := client.GenerateContent(context.Background(), newModelRequest())
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", path)
	assert.Equal(t, "secret-key", apiKey)

	contents := captured["contents"].([]any)
	require.Len(t, contents, 1)
	turn := contents[0].(map[string]any)
	assert.Equal(t, "user", turn["role"])

	parts := turn["parts"].([]any)
	require.Len(t, parts, 3)
	assert.Equal(t, "Analyze resistor R1", parts[0].(map[string]any)["text"])
	assert.Equal(t, "resistor R1", parts[2].(map[string]any)["text"])

	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
	decoded, err := base64.StdEncoding.DecodeString(inline["data"].(string))
	require.NoError(t, err)
	assert.Equal(t, circuitPNG, decoded)

	config := captured["generationConfig"].(map[string]any)
	assert.InDelta(t, 0.2, config["temperature"], 1e-9)
}

func TestGenerateContent_ReturnsTextVerbatim(t *testing.T) {
	reply := "| Element | Voltage (V) | Current (I) |\n|---|---|---|\n| R1 | 4.7 V | 1 mA |\n\n  trailing  "

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(textResponse(reply)))
	}))
	defer server.Close()

	text, err := NewClient(server.URL, "k").GenerateContent(context.Background(), newModelRequest())
	require.NoError(t, err)
	assert.Equal(t, reply, text)
}

func TestGenerateContent_JoinsTextParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"first "},{"text":"second"}]}},{"content":{"parts":[{"text":"other"}]}}]}`))
	}))
	defer server.Close()

	text, err := NewClient(server.URL, "k").GenerateContent(context.Background(), newModelRequest())
	require.NoError(t, err)
	assert.Equal(t, "first second", text)
}

func TestGenerateContent_EachCallHitsTheAPI(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(textResponse("ok")))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k")
	for i := 0; i < 2; i++ {
		_, err := client.GenerateContent(context.Background(), newModelRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerateContent_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		errorContains string
		statusCode    int
	}{
		{
			name:          "api error envelope",
			status:        http.StatusBadRequest,
			body:          `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`,
			errorContains: "API key not valid",
			statusCode:    http.StatusBadRequest,
		},
		{
			name:          "plain error body",
			status:        http.StatusServiceUnavailable,
			body:          "overloaded",
			errorContains: "overloaded",
			statusCode:    http.StatusServiceUnavailable,
		},
		{
			name:          "blocked prompt",
			status:        http.StatusOK,
			body:          `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			errorContains: "prompt blocked by model: SAFETY",
		},
		{
			name:          "no text in candidate",
			status:        http.StatusOK,
			body:          `{"candidates":[{"content":{"parts":[]},"finishReason":"RECITATION"}]}`,
			errorContains: "RECITATION",
		},
		{
			name:          "malformed body",
			status:        http.StatusOK,
			body:          `{"candidates":`,
			errorContains: "failed to decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, "k").GenerateContent(context.Background(), newModelRequest())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)

			if tt.statusCode != 0 {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.statusCode, apiErr.StatusCode)
			}
		})
	}
}

func TestGenerateContent_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL, "k").GenerateContent(ctx, newModelRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestBuildRequest_SkipsEmptyPrompt(t *testing.T) {
	req := newModelRequest()
	req.UserPrompt = ""

	body := BuildRequest(req)
	require.Len(t, body.Contents, 1)
	parts := body.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "Analyze resistor R1", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, circuitPNG, parts[1].InlineData.Data)
}

func TestGenerate_FallsBackToDefaultModel(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(textResponse("ok")))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", WithModel("gemini-pro-vision"), WithTimeout(5*time.Second))
	req := newModelRequest()
	req.Model = ""

	_, err := client.GenerateContent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-pro-vision:generateContent", path)
	assert.Equal(t, "gemini-pro-vision", client.Model())

	_, err = NewClient(server.URL, "k").GenerateContent(context.Background(), req)
	assert.ErrorContains(t, err, "no model configured")
}
