package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/insight-service/internal/config"
	"github.com/dvloznov/insight-service/internal/insight"
)

// GeminiClient generates insights through the GenAI SDK. It is an alternative
// to the Ollama backend for deployments without a local model server.
type GeminiClient struct {
	client     *genai.Client
	model      string
	generateTO time.Duration
	retryDelay time.Duration
	log        zerolog.Logger
}

// GeminiConfig configures the Gemini provider. Credentials come from the
// environment, the same way the SDK picks them up everywhere else.
type GeminiConfig struct {
	Model           string
	GenerateTimeout time.Duration
	RetryDelay      time.Duration
	Logger          zerolog.Logger
}

// NewGeminiClient creates a Gemini-backed generator.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}

	c := &GeminiClient{
		client:     client,
		model:      cfg.Model,
		generateTO: cfg.GenerateTimeout,
		retryDelay: cfg.RetryDelay,
		log:        cfg.Logger,
	}
	if c.model == "" {
		c.model = config.DefaultGeminiModel
	}
	if c.generateTO <= 0 {
		c.generateTO = config.DefaultGenerateTimeout
	}
	if c.retryDelay <= 0 {
		c.retryDelay = config.DefaultRetryDelay
	}
	return c, nil
}

// Endpoint implements insight.Generator.
func (c *GeminiClient) Endpoint() string {
	return "gemini/" + c.model
}

// Available implements insight.Generator. The API has no cheap health
// endpoint, so availability reflects whether the client was constructed with
// credentials; failures surface through the normal generation-error fallback.
func (c *GeminiClient) Available(ctx context.Context) bool {
	return c.client != nil
}

// Generate implements insight.Generator.
func (c *GeminiClient) Generate(ctx context.Context, summary insight.SpendingSummary) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTO)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(summary)},
			},
		},
	}

	var insights []string
	err := retry(ctx, 2, c.retryDelay, func(ctx context.Context) error {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
		if err != nil {
			c.log.Debug().Err(err).Msg("Gemini generation attempt failed")
			return generationErr("generate content", err)
		}

		raw := resp.Text()
		if raw == "" {
			return generationErr("empty response from model", nil)
		}

		parsed := parseInsights(raw)
		if len(parsed) == 0 {
			return generationErr("no usable insights parsed", nil)
		}

		insights = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return insights, nil
}

// Ensure GeminiClient implements the Generator interface.
var _ insight.Generator = (*GeminiClient)(nil)
