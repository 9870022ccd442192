package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/insight-service/internal/config"
	"github.com/dvloznov/insight-service/internal/insight"
)

// generateOptions are the sampling parameters sent with every generation
// request. The fixed seed keeps repeated runs over the same summary close to
// deterministic.
type generateOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	TopK          int     `json:"top_k"`
	NumPredict    int     `json:"num_predict"`
	NumCtx        int     `json:"num_ctx"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	Seed          int     `json:"seed"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// OllamaClient talks to an Ollama server: a short-deadline health probe
// against /api/tags and a long-deadline one-shot generation against
// /api/generate with a single retry.
type OllamaClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
	probeTO    time.Duration
	generateTO time.Duration
	retryDelay time.Duration
	log        zerolog.Logger
}

// OllamaConfig configures the client. Zero durations fall back to the
// package defaults; a nil HTTPClient falls back to a plain http.Client.
type OllamaConfig struct {
	Endpoint        string
	Model           string
	ProbeTimeout    time.Duration
	GenerateTimeout time.Duration
	RetryDelay      time.Duration
	HTTPClient      *http.Client
	Logger          zerolog.Logger
}

// NewOllamaClient creates an Ollama-backed generator.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	c := &OllamaClient{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
		probeTO:    cfg.ProbeTimeout,
		generateTO: cfg.GenerateTimeout,
		retryDelay: cfg.RetryDelay,
		log:        cfg.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = config.DefaultOllamaEndpoint
	}
	if c.model == "" {
		c.model = config.DefaultOllamaModel
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.probeTO <= 0 {
		c.probeTO = config.DefaultProbeTimeout
	}
	if c.generateTO <= 0 {
		c.generateTO = config.DefaultGenerateTimeout
	}
	if c.retryDelay <= 0 {
		c.retryDelay = config.DefaultRetryDelay
	}
	return c
}

// Endpoint implements insight.Generator.
func (c *OllamaClient) Endpoint() string {
	return c.endpoint
}

// Available implements insight.Generator. Any error, timeout or non-2xx
// response counts as unavailable; the probe never fails loudly.
func (c *OllamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTO)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("endpoint", c.endpoint).Msg("Availability probe failed")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Generate implements insight.Generator. The deadline covers both attempts
// and the retry delay; it is a fixed configuration value independent of the
// caller's own deadline.
func (c *OllamaClient) Generate(ctx context.Context, summary insight.SpendingSummary) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTO)
	defer cancel()

	prompt := buildPrompt(summary)

	var insights []string
	err := retry(ctx, 2, c.retryDelay, func(ctx context.Context) error {
		raw, err := c.generateOnce(ctx, prompt)
		if err != nil {
			c.log.Debug().Err(err).Msg("Generation attempt failed")
			return err
		}

		parsed := parseInsights(raw)
		if len(parsed) == 0 {
			return generationErr("no usable insights parsed", nil)
		}

		insights = parsed
		return nil
	})
	if err != nil {
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			err = generationErr("generation request failed", err)
		}
		return nil, err
	}

	return insights, nil
}

// generateOnce issues a single generation request.
func (c *OllamaClient) generateOnce(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature:   0.4,
			TopP:          0.9,
			TopK:          40,
			NumPredict:    400,
			NumCtx:        2048,
			RepeatPenalty: 1.1,
			Seed:          42,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("generation request returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding generation response: %w", err)
	}
	if out.Response == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return out.Response, nil
}

// Ensure OllamaClient implements the Generator interface.
var _ insight.Generator = (*OllamaClient)(nil)
