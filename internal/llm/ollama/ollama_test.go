package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treepress/internal/config"
	"treepress/internal/llm"
)

func backendFor(url string) *Backend {
	return newBackend(&config.LLMConfig{BaseURL: url, Model: "test-model"})
}

func TestGenerateSuccess(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response": "{\"latex_equation\":\"e=mc^2\"}",
			"prompt_eval_count": 120,
			"eval_count": 30
		}`))
	}))
	defer server.Close()

	payload, usage, err := backendFor(server.URL).Generate(context.Background(), llm.GenerateInput{
		Prompt: "transcribe",
		Schema: map[string]any{"type": "object"},
	})

	require.NoError(t, err)
	assert.Equal(t, "test-model", captured["model"])
	assert.Equal(t, "transcribe", captured["prompt"])
	assert.Equal(t, false, captured["stream"])
	assert.NotNil(t, captured["format"])
	assert.NotContains(t, captured, "images")

	var out map[string]any
	require.NoError(t, json.Unmarshal(payload, &out))
	assert.Equal(t, "e=mc^2", out["latex_equation"])
	assert.Equal(t, llm.Usage{PromptTokens: 120, CompletionTokens: 30}, usage)
}

func TestGenerateEncodesImages(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"response": "{}"}`))
	}))
	defer server.Close()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	_, _, err := backendFor(server.URL).Generate(context.Background(), llm.GenerateInput{
		Prompt: "describe",
		Images: []image.Image{img},
	})

	require.NoError(t, err)
	images, ok := captured["images"].([]any)
	require.True(t, ok)
	require.Len(t, images, 1)
	assert.NotEmpty(t, images[0])
}

func TestGenerateTransientStatuses(t *testing.T) {
	for _, status := range []int{429, 500, 503} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, _, err := backendFor(server.URL).Generate(context.Background(), llm.GenerateInput{})
		server.Close()

		var transient *llm.TransientError
		require.ErrorAs(t, err, &transient, "status %d", status)
		assert.Equal(t, status, transient.Status)
	}
}

func TestGenerateNonRetriableStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := backendFor(server.URL).Generate(context.Background(), llm.GenerateInput{})

	require.Error(t, err)
	var transient *llm.TransientError
	assert.False(t, errors.As(err, &transient))
	var transport *llm.TransportError
	assert.False(t, errors.As(err, &transport))
}

func TestGenerateMalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, _, err := backendFor(server.URL).Generate(context.Background(), llm.GenerateInput{})

	var malformed *llm.MalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestGenerateTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, _, err := backendFor(server.URL).Generate(context.Background(), llm.GenerateInput{})

	var transport *llm.TransportError
	require.ErrorAs(t, err, &transport)
}

func TestNewBackendDefaults(t *testing.T) {
	b := newBackend(&config.LLMConfig{})
	assert.Equal(t, defaultBaseURL, b.baseURL)
	assert.Equal(t, "qwen2.5vl:7b", b.model)
}
