// Package rules is the deterministic insight provider. It is both a
// standalone provider (for deployments without a model endpoint) and the
// unconditional fallback path for every generative call, so it must never
// fail and must not depend on anything outside the process.
package rules

import (
	"context"
	"strings"

	"github.com/empowher/empowher-server/internal/insight"
	"github.com/empowher/empowher-server/internal/model"
)

// Provider implements insight.Provider with fixed rules.
type Provider struct{}

// New returns the rule-based provider.
func New() *Provider { return &Provider{} }

var simplifications = map[string]string{
	"depression":            "feeling very low",
	"anxiety":               "feeling very worried",
	"cognitive reframing":   "changing negative thoughts",
	"behavioral activation": "doing small helpful tasks",
	"mindfulness":           "paying attention to the present moment",
	"resilience":            "ability to bounce back from difficulties",
	"coping mechanism":      "way to deal with stress",
	"therapeutic":           "helpful for healing",
	"intervention":          "helpful activity",
	"wellbeing":             "feeling good overall",
}

// Simplify replaces complex terms with plain-language equivalents. It is
// case-insensitive and leaves unknown text untouched.
func (p *Provider) Simplify(ctx context.Context, text, language, educationLevel string) (string, error) {
	return replaceFold(text, simplifications), nil
}

var positiveWords = []string{"happy", "good", "great", "wonderful", "love", "joy", "calm", "hopeful"}
var negativeWords = []string{"sad", "bad", "terrible", "hate", "angry", "depressed", "worried", "hopeless"}

// AnalyzeSentiment runs a keyword count over the text. Scores land in
// [-1,1]; magnitude is the sentiment-bearing word share in [0,1].
func (p *Provider) AnalyzeSentiment(ctx context.Context, text, language string) (insight.Sentiment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return insight.Sentiment{Emotions: []string{}}, nil
	}

	words := strings.Fields(strings.ToLower(trimmed))
	var pos, neg int
	for _, w := range words {
		for _, pw := range positiveWords {
			if strings.Contains(w, pw) {
				pos++
				break
			}
		}
		for _, nw := range negativeWords {
			if strings.Contains(w, nw) {
				neg++
				break
			}
		}
	}

	total := pos + neg
	s := insight.Sentiment{}
	if total > 0 {
		s.Score = float64(pos-neg) / float64(total)
		s.Magnitude = float64(total) / float64(len(words))
		if s.Magnitude > 1 {
			s.Magnitude = 1
		}
	}
	switch {
	case pos > neg:
		s.Emotions = []string{"positive"}
	case neg > pos:
		s.Emotions = []string{"negative"}
	default:
		s.Emotions = []string{"neutral"}
	}
	return s, nil
}

// Generate always reports the capability unavailable; callers take their
// rule-based fallback branch.
func (p *Provider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", model.ErrUnavailable
}

// HealthPing reports the provider healthy; there is nothing to probe.
func (p *Provider) HealthPing(ctx context.Context) error { return nil }

// replaceFold does case-insensitive whole-string replacement of every key in
// repl. Longer keys are not prioritized; the map's phrases do not overlap in
// practice.
func replaceFold(text string, repl map[string]string) string {
	out := text
	for from, to := range repl {
		out = replaceAllFold(out, from, to)
	}
	return out
}

func replaceAllFold(s, from, to string) string {
	if from == "" {
		return s
	}
	var b strings.Builder
	lower := strings.ToLower(s)
	lowerFrom := strings.ToLower(from)
	for {
		i := strings.Index(lower, lowerFrom)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(to)
		s = s[i+len(from):]
		lower = lower[i+len(lowerFrom):]
	}
}
