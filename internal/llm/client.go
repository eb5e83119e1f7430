package llm

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"treepress/internal/config"
	"treepress/internal/port"
)

// minImageDim is the smallest crop dimension accepted by vision backends.
// Anything smaller is skipped before dispatch rather than risking a backend
// rejection.
const minImageDim = 28

// Usage reports token consumption for one backend call. Backends that do
// not report usage leave it zero.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// GenerateInput is one attempt's worth of request data handed to a backend.
// The schema is already inlined.
type GenerateInput struct {
	Prompt  string
	Images  []image.Image
	Schema  map[string]any
	Timeout time.Duration
}

// Backend performs a single request/response exchange with a model. It
// returns the raw structured payload and must classify its failures with
// the typed errors in this package; retry, backoff, accounting and schema
// handling are the client's job and are never reimplemented per backend.
type Backend interface {
	Name() string
	Generate(ctx context.Context, in GenerateInput) (json.RawMessage, Usage, error)
}

// Client implements port.LLMService around any Backend. One client is
// constructed per conversion, so retry state never leaks across unrelated
// conversions.
type Client struct {
	backend    Backend
	maxRetries int
	timeout    time.Duration
	retryWait  time.Duration
	logger     zerolog.Logger

	// sleep is swapped out in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

// NewClient wraps a backend with the shared retry/accounting policy.
func NewClient(b Backend, cfg *config.LLMConfig) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	retryWait := time.Duration(cfg.RetryWaitSecs) * time.Second
	if retryWait <= 0 {
		retryWait = 3 * time.Second
	}
	return &Client{
		backend:    b,
		maxRetries: maxRetries,
		timeout:    timeout,
		retryWait:  retryWait,
		logger:     log.With().Str("component", "llm").Str("backend", b.Name()).Logger(),
		sleep:      time.Sleep,
	}
}

// Invoke issues one enrichment task. It returns the parsed structured
// result, or an empty map when retries are exhausted, a non-retriable
// failure occurs, or a supplied image is too small to send.
func (c *Client) Invoke(ctx context.Context, req port.LLMRequest) map[string]any {
	maxRetries := c.maxRetries
	if req.MaxRetries != nil && *req.MaxRetries >= 0 {
		maxRetries = *req.MaxRetries
	}
	timeout := c.timeout
	if req.Timeout != nil && *req.Timeout > 0 {
		timeout = *req.Timeout
	}

	for _, img := range req.Images {
		if img == nil {
			continue
		}
		b := img.Bounds()
		if b.Dx() < minImageDim || b.Dy() < minImageDim {
			c.logger.Warn().
				Int("width", b.Dx()).Int("height", b.Dy()).
				Msgf("skipping llm call: image below %dx%d minimum", minImageDim, minImageDim)
			return map[string]any{}
		}
	}

	in := GenerateInput{
		Prompt:  req.Prompt,
		Images:  req.Images,
		Schema:  InlineSchema(req.Schema),
		Timeout: timeout,
	}

	totalTries := maxRetries + 1
	for attempt := 1; attempt <= totalTries; attempt++ {
		payload, usage, err := c.backend.Generate(ctx, in)
		if err == nil {
			var out map[string]any
			if uerr := json.Unmarshal(payload, &out); uerr != nil {
				err = &MalformedError{Err: uerr}
			} else {
				if req.Block != nil {
					req.Block.UpdateMetadata(1, usage.PromptTokens+usage.CompletionTokens)
				}
				return out
			}
		}

		var (
			transient *TransientError
			transport *TransportError
			malformed *MalformedError
		)
		switch {
		case errors.As(err, &malformed):
			// Bad structured data: retry immediately, no backoff.
			if attempt < totalTries {
				c.logger.Warn().Err(err).
					Msgf("malformed response, retrying (attempt %d/%d)", attempt, totalTries)
				continue
			}
			c.logger.Error().Err(err).
				Msgf("malformed response, max retries reached (attempt %d/%d)", attempt, totalTries)
		case errors.As(err, &transient), errors.As(err, &transport):
			if attempt < totalTries {
				wait := time.Duration(attempt) * c.retryWait
				c.logger.Warn().Err(err).Dur("wait", wait).
					Msgf("retriable failure, retrying (attempt %d/%d)", attempt, totalTries)
				c.sleep(wait)
				continue
			}
			c.logger.Error().Err(err).
				Msgf("retriable failure, max retries reached (attempt %d/%d)", attempt, totalTries)
		default:
			// Non-retriable by policy: log and stop immediately.
			c.logger.Error().Err(err).Msg("non-retriable llm failure")
		}
		break
	}

	return map[string]any{}
}
