package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"treepress/internal/config"
	"treepress/internal/llm"
	"treepress/internal/port"
)

const defaultBaseURL = "http://localhost:11434"

func init() {
	llm.Register("ollama", func(cfg *config.LLMConfig) (port.LLMService, error) {
		return New(cfg), nil
	})
}

// Backend talks to a local-network Ollama instance. Only the wire envelope
// lives here; retry and accounting are handled by llm.Client.
type Backend struct {
	baseURL string
	model   string
	client  *http.Client
}

// New creates an Ollama-backed LLM service from a backend config.
func New(cfg *config.LLMConfig) *llm.Client {
	return llm.NewClient(newBackend(cfg), cfg)
}

func newBackend(cfg *config.LLMConfig) *Backend {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "qwen2.5vl:7b"
	}
	return &Backend{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

func (b *Backend) Name() string { return "ollama" }

// generateResponse models the /api/generate success body. The response
// field is itself a JSON-encoded string parsed by the caller.
type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (b *Backend) Generate(ctx context.Context, in llm.GenerateInput) (json.RawMessage, llm.Usage, error) {
	payload := map[string]any{
		"model":  b.model,
		"prompt": in.Prompt,
		"stream": false,
		"format": in.Schema,
	}
	if len(in.Images) > 0 {
		encoded := make([]string, 0, len(in.Images))
		for _, img := range in.Images {
			s, err := llm.EncodeImageBase64(img)
			if err != nil {
				return nil, llm.Usage{}, err
			}
			encoded = append(encoded, s)
		}
		payload["images"] = encoded
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, llm.Usage{}, fmt.Errorf("marshaling request: %w", err)
	}

	if in.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, llm.Usage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, llm.Usage{}, &llm.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.Usage{}, &llm.TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
			return nil, llm.Usage{}, &llm.TransientError{Status: resp.StatusCode, Err: baseErr}
		}
		return nil, llm.Usage{}, baseErr
	}

	var envelope generateResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, llm.Usage{}, &llm.MalformedError{Err: fmt.Errorf("unmarshaling envelope: %w", err)}
	}

	usage := llm.Usage{
		PromptTokens:     envelope.PromptEvalCount,
		CompletionTokens: envelope.EvalCount,
	}
	return json.RawMessage(envelope.Response), usage, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
