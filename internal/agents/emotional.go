package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/insight"
	"github.com/empowher/empowher-server/internal/instruments"
	"github.com/empowher/empowher-server/internal/model"
)

const emotionalConfidenceCap = 0.95

// EmotionalAgent scores the research instruments, classifies the tier and
// produces insights. Insight generation tries the generative capability
// first and always falls back to the deterministic rule set; a caller never
// sees an error from this agent's insight path.
type EmotionalAgent struct {
	provider insight.Provider
	log      zerolog.Logger
}

// NewEmotionalAgent builds the agent on the given insight provider.
func NewEmotionalAgent(p insight.Provider, log zerolog.Logger) *EmotionalAgent {
	return &EmotionalAgent{provider: p, log: log}
}

func (a *EmotionalAgent) Name() string { return "emotional" }

// Evaluate computes scores, risk and tier, then generates insights.
func (a *EmotionalAgent) Evaluate(ctx context.Context, c *Context) (*model.AgentDecision, error) {
	scores := instruments.Score(c.Submission)
	risk := instruments.AssessRisk(scores)
	tier := instruments.ClassifyTier(scores)

	result := &EmotionalResult{
		Tier:     tier,
		IsStable: tier.IsStable(),
		Scores:   scores,
		Risk:     risk,
		Trend:    ScoreTrend(c.Memory.ShortTerm),
	}

	language := c.Profile.PreferredLanguage
	if language == "" {
		language = "en"
	}
	educationLevel := c.Profile.EducationLevel
	if educationLevel == "" {
		educationLevel = "primary"
	}

	if strings.TrimSpace(c.Journal) != "" {
		if s, err := a.provider.AnalyzeSentiment(ctx, c.Journal, language); err == nil {
			result.Sentiment = &s
		} else {
			a.log.Debug().Err(err).Msg("journal sentiment analysis failed")
		}
	}

	explanation := instruments.TierExplanation(tier)
	if simplified, err := a.provider.Simplify(ctx, explanation, language, educationLevel); err == nil {
		explanation = simplified
	}
	result.SimplifiedExplanation = explanation
	result.Encouragement = explanation

	a.generateInsights(ctx, c, result)

	confidence := a.confidence(len(c.Memory.ShortTerm), c.Submission)

	input := map[string]any{
		"journalLength": len(c.Journal),
		"historyLength": len(c.Memory.ShortTerm),
	}
	reasoning := fmt.Sprintf("Tier %s from PHQ-2=%d, GAD-2=%d, WHO-5=%d. Insights from %s.",
		tier, scores.PHQ2.Total, scores.GAD2.Total, scores.WHO5.Normalized, result.InsightSource)

	c.Emotional = result
	return decision(c, a.Name(), input, result, confidence, reasoning), nil
}

// generateInsights tries the generative capability with a strict decode and
// falls back to the fixed rule set on any failure.
func (a *EmotionalAgent) generateInsights(ctx context.Context, c *Context, result *EmotionalResult) {
	raw, err := a.provider.Generate(ctx, a.systemPrompt(c), a.userPrompt(c, result))
	if err == nil {
		payload, decodeErr := insight.DecodeInsightPayload(raw)
		if decodeErr == nil {
			result.Insights = payload.Insights
			result.Encouragement = payload.Encouragement
			result.InsightSource = "generative"
			return
		}
		err = decodeErr
	}

	a.log.Debug().Err(err).Msg("generative insights unavailable, using rule set")
	result.Insights = RuleInsights(result.Scores, result.Trend, result.Sentiment)
	result.InsightSource = "rules"
}

// ScoreTrend compares the average PHQ-2 total of the newest seven entries
// against the seven before them. A PHQ-2 decrease is improvement. Fewer than
// three entries, or no prior window, yields insufficient data.
func ScoreTrend(entries []*model.CheckinEntry) model.TrendDirection {
	// Up to seven entries leave no prior window to compare against.
	if len(entries) <= 7 {
		return model.TrendInsufficient
	}

	recent := entries[:7]
	previous := entries[7:]
	if len(previous) > 7 {
		previous = previous[:7]
	}

	avg := func(es []*model.CheckinEntry) float64 {
		sum := 0.0
		for _, e := range es {
			sum += float64(e.PHQ2Total)
		}
		return sum / float64(len(es))
	}

	// Lower PHQ-2 is better, so improvement is previous minus recent.
	change := avg(previous) - avg(recent)
	switch {
	case change > 1:
		return model.TrendImproving
	case change < -1:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func (a *EmotionalAgent) systemPrompt(c *Context) string {
	return fmt.Sprintf(`You are an empathetic, research-grounded emotional insight agent for women in rural Pakistan.
Analyze PHQ-2, GAD-2, and WHO-5 scores using clinical cutoffs (PHQ-2 >= 3, GAD-2 >= 3).
Emotional stage: %s. Trend direction: %s.
Prioritize validation and immediate coping when the stage is distress or struggling; reinforce progress otherwise.
Use a warm, non-clinical tone.`, c.Memory.Stage(), c.Memory.TrendDirection)
}

func (a *EmotionalAgent) userPrompt(c *Context, result *EmotionalResult) string {
	return fmt.Sprintf(`SCORES:
- PHQ-2: %d (risk: %t)
- GAD-2: %d (risk: %t)
- WHO-5: %d (low wellbeing: %t)
- Emotional tier: %s
- 7-day trend: %s

JOURNAL: %q

Respond with valid JSON only:
{"insights": ["insight 1", "insight 2"], "encouragement": "warm, personalized encouragement"}`,
		result.Scores.PHQ2.Total, result.Scores.PHQ2.RiskFlag,
		result.Scores.GAD2.Total, result.Scores.GAD2.RiskFlag,
		result.Scores.WHO5.Normalized, result.Risk.LowWellbeing,
		result.Tier, result.Trend, c.Journal)
}

// RuleInsights is the deterministic fallback insight set keyed on score
// thresholds, trend and journal sentiment. Never empty.
func RuleInsights(scores model.InstrumentScores, trend model.TrendDirection, sentiment *insight.Sentiment) []string {
	var insights []string

	switch {
	case scores.WHO5.Normalized >= 70:
		insights = append(insights, "You are feeling good overall")
	case scores.WHO5.Normalized >= 50:
		insights = append(insights, "Your wellbeing is okay, but could be better")
	default:
		insights = append(insights, "You might be struggling right now")
	}

	switch trend {
	case model.TrendImproving:
		insights = append(insights, "Your wellbeing is improving")
	case model.TrendDeclining:
		insights = append(insights, "Your wellbeing needs attention")
	case model.TrendStable:
		insights = append(insights, "Your wellbeing is stable")
	}

	if scores.PHQ2.RiskFlag {
		insights = append(insights, "You might be feeling very low lately")
	}
	if scores.GAD2.RiskFlag {
		insights = append(insights, "You might be feeling very worried lately")
	}

	if sentiment != nil {
		if sentiment.Score > 0.3 {
			insights = append(insights, "Your journal shows positive feelings")
		} else if sentiment.Score < -0.3 {
			insights = append(insights, "Your journal shows you might be struggling")
		}
	}

	return insights
}

// confidence grows with history depth and instrument completeness.
func (a *EmotionalAgent) confidence(historyLen int, s *model.CheckinSubmission) float64 {
	confidence := 0.5

	switch {
	case historyLen >= 14:
		confidence += 0.2
	case historyLen >= 7:
		confidence += 0.15
	case historyLen >= 3:
		confidence += 0.1
	}

	allCompleted := s.Phq2Q1 != nil && s.Phq2Q2 != nil &&
		s.Gad2Q1 != nil && s.Gad2Q2 != nil &&
		s.Who5Q1 != nil && s.Who5Q2 != nil && s.Who5Q3 != nil
	if allCompleted {
		confidence += 0.2
	}

	if confidence > emotionalConfidenceCap {
		confidence = emotionalConfidenceCap
	}
	return confidence
}
