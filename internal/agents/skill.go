package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
)

const maxSkillRecommendations = 5

// SkillAgent recommends growth modules, but only when the user is
// emotionally stable. Gated work never lands on a struggling user.
type SkillAgent struct {
	store store.Store
	log   zerolog.Logger
}

// NewSkillAgent builds the agent.
func NewSkillAgent(s store.Store, log zerolog.Logger) *SkillAgent {
	return &SkillAgent{store: s, log: log}
}

func (a *SkillAgent) Name() string { return "skill_growth" }

// Evaluate ranks available modules by difficulty progression, energy-capped
// duration and category preference.
func (a *SkillAgent) Evaluate(ctx context.Context, c *Context) (*model.AgentDecision, error) {
	emotional := c.Emotional
	if emotional == nil {
		return nil, fmt.Errorf("skill agent requires emotional result")
	}

	if !emotional.IsStable {
		result := &SkillResult{Activated: false, Recommendations: []*model.SkillModule{}}
		c.Skill = result
		reasoning := fmt.Sprintf("User not emotionally stable (%s tier). Focusing on emotional wellness first.", emotional.Tier)
		return decision(c, a.Name(), map[string]any{"tier": emotional.Tier, "isStable": false}, result, 0, reasoning), nil
	}

	history, err := a.store.Skills().ListProgress(ctx, c.UserID)
	if err != nil {
		return nil, fmt.Errorf("load skill history: %w", err)
	}
	modules, err := a.store.Skills().ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load skill modules: %w", err)
	}

	completed := map[string]bool{}
	completedCount := 0
	for _, h := range history {
		if h.Completed {
			completed[h.SkillID] = true
			completedCount++
		}
	}

	targetDifficulty := difficultyFor(completedCount)
	maxDuration := maxDurationFor(c.EnergyLevel)
	preferred := preferredCategories(history, c.Interests)

	var picks []*model.SkillModule
	for _, m := range modules {
		if m.DurationMinutes > maxDuration || completed[m.ID] {
			continue
		}
		if len(preferred) > 0 && !preferred[strings.ToLower(m.Category)] {
			continue
		}
		picks = append(picks, m)
	}

	// Modules at the user's progression difficulty come first; within each
	// group the store's points ordering holds.
	sort.SliceStable(picks, func(i, j int) bool {
		im := picks[i].Difficulty == targetDifficulty
		jm := picks[j].Difficulty == targetDifficulty
		return im && !jm
	})
	if len(picks) > maxSkillRecommendations {
		picks = picks[:maxSkillRecommendations]
	}

	result := &SkillResult{Activated: true, Recommendations: picks}
	c.Skill = result

	confidence := skillConfidence(len(history))
	input := map[string]any{
		"energyLevel":     c.EnergyLevel,
		"interests":       c.Interests,
		"completedSkills": completedCount,
		"historyLength":   len(history),
	}
	reasoning := fmt.Sprintf("User is stable (%s tier) with %s energy. Recommended %d skills at %s difficulty; %d completed previously.",
		emotional.Tier, c.EnergyLevel, len(picks), targetDifficulty, completedCount)
	return decision(c, a.Name(), input, result, confidence, reasoning), nil
}

// difficultyFor maps completed-skill volume to the progression ladder.
func difficultyFor(completedCount int) string {
	switch {
	case completedCount >= 10:
		return "advanced"
	case completedCount >= 5:
		return "intermediate"
	default:
		return "beginner"
	}
}

// maxDurationFor caps module length by the user's reported energy.
func maxDurationFor(energyLevel string) int {
	switch energyLevel {
	case "high":
		return 30
	case "medium":
		return 20
	default:
		return 15
	}
}

// preferredCategories merges declared interests with categories of skills
// the user has completed. An empty map means no preference.
func preferredCategories(history []*model.SkillProgress, interests []string) map[string]bool {
	out := map[string]bool{}
	for _, interest := range interests {
		out[strings.ToLower(interest)] = true
	}
	for _, h := range history {
		if h.Completed && h.Category != "" {
			out[strings.ToLower(h.Category)] = true
		}
	}
	return out
}

func skillConfidence(historyLen int) float64 {
	switch {
	case historyLen == 0:
		return 0.5
	case historyLen < 3:
		return 0.6
	case historyLen < 5:
		return 0.75
	default:
		return 0.9
	}
}
