// Package ollama implements the insight capability against a local Ollama
// server. Every call is bounded by the client timeout and the caller's ctx;
// any failure surfaces as an error so the pipeline takes its deterministic
// fallback.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/empowher/empowher-server/internal/insight"
)

// Provider calls the Ollama generate API.
type Provider struct {
	client *resty.Client
	model  string
}

// New creates a Provider for the given model. It reads OLLAMA_URL; if empty
// it falls back to http://localhost:11434.
func New(model string, timeout time.Duration) *Provider {
	base := os.Getenv("OLLAMA_URL")
	if base == "" {
		base = "http://localhost:11434"
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Provider{client: c, model: model}
}

type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate runs one non-streaming completion.
func (p *Provider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if userPrompt == "" {
		return "", fmt.Errorf("empty prompt")
	}

	reqBody := generateRequest{Model: p.model, System: systemPrompt, Prompt: userPrompt}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode(), resp.String())
	}

	var gr generateResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if gr.Error != "" {
		return "", fmt.Errorf("ollama error: %s", gr.Error)
	}
	if strings.TrimSpace(gr.Response) == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}
	return gr.Response, nil
}

// Simplify asks the model for a plain-language rewrite.
func (p *Provider) Simplify(ctx context.Context, text, language, educationLevel string) (string, error) {
	system := "You rewrite text in plain, warm, non-clinical language at a grade-5 reading level. Reply with the rewritten text only."
	prompt := fmt.Sprintf("Rewrite for a reader with %s education, language %q:\n%s", educationLevel, language, text)
	out, err := p.Generate(ctx, system, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// AnalyzeSentiment asks the model for a structured sentiment score and
// decodes it strictly; anything malformed is a failure.
func (p *Provider) AnalyzeSentiment(ctx context.Context, text, language string) (insight.Sentiment, error) {
	system := `You are a sentiment analyzer. Respond ONLY with valid JSON: {"score": <-1..1>, "magnitude": <0..1>, "emotions": [<keywords>]}`
	prompt := fmt.Sprintf("Analyze the sentiment of this %s text: %q", language, text)

	raw, err := p.Generate(ctx, system, prompt)
	if err != nil {
		return insight.Sentiment{}, err
	}

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	var s insight.Sentiment
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &s); err != nil {
		return insight.Sentiment{}, fmt.Errorf("decode sentiment: %w", err)
	}
	if s.Score < -1 || s.Score > 1 {
		return insight.Sentiment{}, fmt.Errorf("sentiment score %v out of range", s.Score)
	}
	return s, nil
}

// HealthPing checks /api/tags to verify the server is reachable.
func (p *Provider) HealthPing(ctx context.Context) error {
	resp, err := p.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama health status %d", resp.StatusCode())
	}
	return nil
}
