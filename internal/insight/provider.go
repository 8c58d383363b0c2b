// Package insight defines the generative text capability the pipeline may
// use for sentiment analysis, language simplification and free-text insight
// generation. The capability is optional and unreliable; every caller must
// hold a deterministic fallback, so failures here are ordinary errors and
// never pipeline faults.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/empowher/empowher-server/internal/model"
)

// Sentiment is the structured result of analyzing free text.
type Sentiment struct {
	Score     float64  `json:"score"`     // -1..1
	Magnitude float64  `json:"magnitude"` // 0..1
	Emotions  []string `json:"emotions"`
}

// Provider is the generative capability contract. Implementations must
// honor ctx deadlines; callers bound every call with a timeout.
type Provider interface {
	// Simplify rewrites text for the given language and education level.
	Simplify(ctx context.Context, text, language, educationLevel string) (string, error)
	// AnalyzeSentiment scores free text.
	AnalyzeSentiment(ctx context.Context, text, language string) (Sentiment, error)
	// Generate produces free text from a system/user prompt pair. Callers
	// that expect structure must decode with DecodeInsightPayload.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GenerateConfig mirrors the knobs a provider may honor.
type GenerateConfig struct {
	Temperature float64
}

// InsightPayload is the strict shape expected from Generate when producing
// check-in insights.
type InsightPayload struct {
	Insights      []string `json:"insights"`
	Encouragement string   `json:"encouragement"`
}

// DecodeInsightPayload parses a model response into InsightPayload. Any
// malformed or incomplete response is a failure, never an empty success:
// callers fall back to rule-generated insights.
func DecodeInsightPayload(raw string) (InsightPayload, error) {
	// Models wrap JSON in markdown fences often enough to strip them here.
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var p InsightPayload
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return InsightPayload{}, fmt.Errorf("decode insight payload: %w", err)
	}
	if len(p.Insights) == 0 {
		return InsightPayload{}, fmt.Errorf("insight payload missing insights: %w", model.ErrValidation)
	}
	if p.Encouragement == "" {
		return InsightPayload{}, fmt.Errorf("insight payload missing encouragement: %w", model.ErrValidation)
	}
	for _, s := range p.Insights {
		if strings.TrimSpace(s) == "" {
			return InsightPayload{}, fmt.Errorf("insight payload has blank insight: %w", model.ErrValidation)
		}
	}
	return p, nil
}
