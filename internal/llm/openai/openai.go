package openai

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

const defaultBaseURL = "https://api.openai.com/v1"

func init() {
	llm.Register("openai", func(cfg *config.LLMConfig) (port.LLMService, error) {
		return New(cfg), nil
	})
}

// Backend talks to an OpenAI-compatible chat-completions endpoint. Images
// travel as data URIs and structure is enforced with a json_schema response
// format; everything else is shared with the other backends via llm.Client.
type Backend struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates an OpenAI-backed LLM service from a backend config.
func New(cfg *config.LLMConfig) *llm.Client {
	return llm.NewClient(newBackend(cfg), cfg)
}

func newBackend(cfg *config.LLMConfig) *Backend {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" || strings.Contains(baseURL, "11434") {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	return &Backend{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{},
	}
}

func (b *Backend) Name() string { return "openai" }

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (b *Backend) Generate(ctx context.Context, in llm.GenerateInput) (json.RawMessage, llm.Usage, error) {
	content := make([]map[string]any, 0, len(in.Images)+1)
	for _, img := range in.Images {
		encoded, err := llm.EncodeImageBase64(img)
		if err != nil {
			return nil, llm.Usage{}, err
		}
		content = append(content, map[string]any{
			"type": "image_url",
			"image_url": map[string]any{
				"url": "data:image/png;base64," + encoded,
			},
		})
	}
	content = append(content, map[string]any{
		"type": "text",
		"text": in.Prompt,
	})

	reqBody := map[string]any{
		"model": b.model,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}
	if in.Schema != nil {
		reqBody["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "structured_response",
				"schema": in.Schema,
			},
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, llm.Usage{}, fmt.Errorf("marshaling request: %w", err)
	}

	if in.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, llm.Usage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

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
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable:
			return nil, llm.Usage{}, &llm.TransientError{Status: resp.StatusCode, Err: baseErr}
		}
		return nil, llm.Usage{}, baseErr
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, llm.Usage{}, &llm.MalformedError{Err: fmt.Errorf("unmarshaling envelope: %w", err)}
	}
	if len(envelope.Choices) == 0 {
		return nil, llm.Usage{}, &llm.MalformedError{Err: fmt.Errorf("empty response: no choices")}
	}
	if envelope.Choices[0].FinishReason == "length" {
		return nil, llm.Usage{}, &llm.MalformedError{Err: fmt.Errorf("output truncated (finish_reason: length)")}
	}

	usage := llm.Usage{
		PromptTokens:     envelope.Usage.PromptTokens,
		CompletionTokens: envelope.Usage.CompletionTokens,
	}
	return json.RawMessage(envelope.Choices[0].Message.Content), usage, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
