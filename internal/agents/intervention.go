package agents

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/insight"
	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
)

const (
	pastOutcomeLimit = 30
	maxInterventions = 3
	untriedSuccess   = 0.5
	successTieBand   = 0.1
	successRatingMin = 4
)

// InterventionAgent selects evidence-based coping activities, ranked by the
// user's own outcome history and adjusted for cognitive load.
type InterventionAgent struct {
	store    store.Store
	provider insight.Provider
	log      zerolog.Logger
}

// NewInterventionAgent builds the agent.
func NewInterventionAgent(s store.Store, p insight.Provider, log zerolog.Logger) *InterventionAgent {
	return &InterventionAgent{store: s, provider: p, log: log}
}

func (a *InterventionAgent) Name() string { return "intervention" }

// Evaluate consumes the emotional result (possibly a fallback) off the
// Context.
func (a *InterventionAgent) Evaluate(ctx context.Context, c *Context) (*model.AgentDecision, error) {
	emotional := c.Emotional
	if emotional == nil {
		return nil, fmt.Errorf("intervention agent requires emotional result")
	}

	pastOutcomes, err := a.store.Outcomes().ListCompleted(ctx, c.UserID, pastOutcomeLimit)
	if err != nil {
		return nil, fmt.Errorf("load past outcomes: %w", err)
	}

	candidates := SelectCandidates(c.Memory.Stage(), emotional.Scores, emotional.Tier)
	ranked := RankCandidates(candidates, pastOutcomes)
	adjusted := filterByCognitiveLoad(ranked, emotional.Tier, c.Profile.EducationLevel)

	if len(adjusted) > maxInterventions {
		adjusted = adjusted[:maxInterventions]
	}
	a.simplifyDescriptions(ctx, adjusted, c.Profile)

	result := &InterventionResult{
		Candidates:        adjusted,
		PastOutcomesCount: len(pastOutcomes),
	}
	c.Intervention = result

	confidence := outcomeConfidence(len(pastOutcomes))
	input := map[string]any{
		"tier":              emotional.Tier,
		"stage":             c.Memory.Stage(),
		"phq2":              emotional.Scores.PHQ2.Total,
		"gad2":              emotional.Scores.GAD2.Total,
		"who5":              emotional.Scores.WHO5.Normalized,
		"pastOutcomesCount": len(pastOutcomes),
	}
	reasoning := fmt.Sprintf("Selected %d evidence-based interventions for %s tier, ranked by %d past outcomes.",
		len(adjusted), emotional.Tier, len(pastOutcomes))
	return decision(c, a.Name(), input, result, confidence, reasoning), nil
}

// SelectCandidates unions the stage-based, score-threshold and tier-based
// picks from the evidence catalog.
func SelectCandidates(stage model.Stage, scores model.InstrumentScores, tier model.Tier) []model.InterventionCandidate {
	var out []model.InterventionCandidate

	switch stage {
	case model.StageDistress, model.StageStruggling:
		out = append(out, candidate("grounding", "5-4-3-2-1 Grounding Technique",
			"A simple exercise to help you feel calmer and more present.",
			"Grounding for acute distress", model.LoadLow, 5, 1))
		if scores.GAD2.Total >= instrumentRiskCutoff {
			out = append(out, candidate("breathing", "Box Breathing",
				"Slow, rhythmic breathing to reduce anxiety.",
				"Breathing exercises for anxiety reduction", model.LoadLow, 5, 1))
		}
	case model.StageStabilizing:
		out = append(out, candidate("behavioral_activation", "Pleasant Activity Scheduling",
			"Planning one small, enjoyable activity for tomorrow.",
			"Behavioral activation for depression", model.LoadMedium, 15, 2))
	case model.StageThriving:
		out = append(out, candidate("values_work", "Values Reflection",
			"Reflecting on what matters most to you.",
			"Values-based living for wellbeing", model.LoadMedium, 10, 3))
	}

	if scores.PHQ2.Total >= instrumentRiskCutoff {
		out = append(out, candidate("behavioral_activation", "Small Daily Task",
			"Choose one small task you can do today that brings you a sense of accomplishment",
			"Behavioral activation for depression", model.LoadLow, 15, 1))
	}
	if scores.GAD2.Total >= instrumentRiskCutoff {
		out = append(out, candidate("guided_breathing", "4-7-8 Breathing Exercise",
			"Breathe in for 4 counts, hold for 7, breathe out for 8. Repeat 4 times.",
			"Breathing exercises for anxiety reduction", model.LoadLow, 5, 1))
		out = append(out, candidate("cognitive_reframing", "Challenge Worried Thoughts",
			"Write down one worry. Ask yourself: Is this thought really true? What else could be true?",
			"Cognitive restructuring for anxiety", model.LoadMedium, 10, 2))
	}
	if scores.WHO5.Normalized < 50 {
		out = append(out, candidate("expressive_writing", "10-Minute Journaling",
			"Write freely about your feelings for 10 minutes. No one will read it but you.",
			"Expressive writing for emotional processing", model.LoadLow, 10, 1))
	}
	if scores.WHO5.Normalized < 70 {
		out = append(out, candidate("gratitude_practice", "Three Good Things",
			"Think of 3 small things that went okay today, no matter how small",
			"Gratitude practice for wellbeing", model.LoadLow, 5, 2))
	}
	if scores.WHO5.Normalized >= 50 && scores.WHO5.Normalized < 80 {
		out = append(out, candidate("social_connection", "Connect with Someone",
			"Send a message or call someone you care about",
			"Social connection for wellbeing", model.LoadLow, 15, 2))
	}

	switch tier {
	case model.TierRed, model.TierOrange:
		out = append(out, candidate("grounding_technique", "5-4-3-2-1 Grounding",
			"Name 5 things you see, 4 you can touch, 3 you hear, 2 you smell, 1 you taste",
			"Grounding for acute distress", model.LoadLow, 5, 1))
	case model.TierYellow, model.TierGreen:
		out = append(out, candidate("gentle_movement", "Gentle Stretching",
			"Do 5 minutes of gentle stretches or a short walk",
			"Physical activity for mood improvement", model.LoadLow, 10, 2))
	}

	return out
}

const instrumentRiskCutoff = 3

func candidate(typ, title, description, evidence string, load model.CognitiveLoad, duration, priority int) model.InterventionCandidate {
	return model.InterventionCandidate{
		Type:            typ,
		Title:           title,
		Description:     description,
		EvidenceBase:    evidence,
		CognitiveLoad:   load,
		DurationMinutes: duration,
		Priority:        priority,
	}
}

// RankCandidates orders candidates by personal success rate. With no history
// at all, the static priority decides. Ties within the 0.1 band fall to
// average improvement. Ordering is deterministic for identical input.
func RankCandidates(candidates []model.InterventionCandidate, pastOutcomes []*model.InterventionOutcome) []model.InterventionCandidate {
	out := make([]model.InterventionCandidate, len(candidates))
	copy(out, candidates)

	if len(pastOutcomes) == 0 {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
		return out
	}

	byType := make(map[string][]*model.InterventionOutcome)
	for _, o := range pastOutcomes {
		byType[o.Action] = append(byType[o.Action], o)
	}

	for i := range out {
		attempts := byType[out[i].Type]
		if len(attempts) == 0 {
			out[i].SuccessRate = untriedSuccess
			continue
		}
		successes := 0
		var improvementSum float64
		for _, o := range attempts {
			if o.Rating != nil && *o.Rating >= successRatingMin && o.ImprovementDelta > 0 {
				successes++
			}
			improvementSum += o.ImprovementDelta
		}
		out[i].SuccessRate = float64(successes) / float64(len(attempts))
		out[i].AvgImprovement = improvementSum / float64(len(attempts))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if math.Abs(out[i].SuccessRate-out[j].SuccessRate) > successTieBand {
			return out[i].SuccessRate > out[j].SuccessRate
		}
		return out[i].AvgImprovement > out[j].AvgImprovement
	})
	return out
}

// filterByCognitiveLoad drops candidates too demanding for the user's state:
// red/orange tiers keep only low load; low education keeps only non-high.
func filterByCognitiveLoad(candidates []model.InterventionCandidate, tier model.Tier, educationLevel string) []model.InterventionCandidate {
	if tier == model.TierRed || tier == model.TierOrange {
		var out []model.InterventionCandidate
		for _, c := range candidates {
			if c.CognitiveLoad == model.LoadLow {
				out = append(out, c)
			}
		}
		return out
	}

	if educationLevel == "none" || educationLevel == "primary" {
		var out []model.InterventionCandidate
		for _, c := range candidates {
			if c.CognitiveLoad != model.LoadHigh {
				out = append(out, c)
			}
		}
		return out
	}

	return candidates
}

func (a *InterventionAgent) simplifyDescriptions(ctx context.Context, candidates []model.InterventionCandidate, profile model.UserProfile) {
	language := profile.PreferredLanguage
	if language == "" {
		language = "en"
	}
	educationLevel := profile.EducationLevel
	if educationLevel == "" {
		educationLevel = "primary"
	}
	for i := range candidates {
		simplified, err := a.provider.Simplify(ctx, candidates[i].Description, language, educationLevel)
		if err != nil {
			a.log.Debug().Err(err).Str("type", candidates[i].Type).Msg("description simplification failed")
			continue
		}
		candidates[i].Description = simplified
	}
}

// outcomeConfidence scales with the volume of past outcome data.
func outcomeConfidence(n int) float64 {
	switch {
	case n == 0:
		return 0.5
	case n < 5:
		return 0.6
	case n < 15:
		return 0.75
	default:
		return 0.9
	}
}
