package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/insight"
	"github.com/empowher/empowher-server/internal/model"
)

const ethicsConfidence = 0.95

// redTierAllowedTypes are the only intervention types deliverable to a user
// in crisis state.
var redTierAllowedTypes = map[string]bool{
	"guided_breathing":    true,
	"grounding_technique": true,
}

// onlineOnlyTypes require a stable connection to be useful at all.
var onlineOnlyTypes = map[string]bool{
	"video_tutorial": true,
	"online_course":  true,
	"live_session":   true,
}

// culturalDenylist rejects content inappropriate for the rural Pakistani
// context the platform serves.
var culturalDenylist = []string{
	"alcohol", "bar", "club", "dating", "meditation retreat", "yoga studio",
}

// medicalReplacements rewrites clinical terminology into wellness language.
// Multi-word terms run first so single-word keys cannot split them.
var medicalReplacements = []struct{ term, replacement string }{
	{"therapeutic intervention", "helpful activity"},
	{"diagnosis", "understanding"},
	{"disorder", "challenge"},
	{"syndrome", "pattern"},
	{"clinical", "helpful"},
	{"psychiatric", "emotional"},
	{"treatment", "support"},
	{"medication", "help"},
	{"prescription", "recommendation"},
}

// EthicsAgent is a pure filter/transform over the intervention candidates.
// Rules run in a fixed order per candidate; the first disqualifier wins.
// It runs unconditionally, even with zero candidates.
type EthicsAgent struct {
	provider insight.Provider
	log      zerolog.Logger
}

// NewEthicsAgent builds the guard.
func NewEthicsAgent(p insight.Provider, log zerolog.Logger) *EthicsAgent {
	return &EthicsAgent{provider: p, log: log}
}

func (a *EthicsAgent) Name() string { return "ethics_guard" }

// Evaluate reviews every candidate and produces the approved set plus an
// audit list of triggered rules.
func (a *EthicsAgent) Evaluate(ctx context.Context, c *Context) (*model.AgentDecision, error) {
	emotional := c.Emotional
	if emotional == nil {
		return nil, fmt.Errorf("ethics guard requires emotional result")
	}

	var candidates []model.InterventionCandidate
	if c.Intervention != nil {
		candidates = c.Intervention.Candidates
	}

	result := &EthicsResult{Approved: []model.InterventionCandidate{}}
	for _, cand := range candidates {
		reviewed, approved, adjustments := a.review(ctx, cand, emotional.Tier, c.Profile)
		if approved {
			result.Approved = append(result.Approved, reviewed)
		}
		result.Adjustments = append(result.Adjustments, adjustments...)
	}
	c.Ethics = result

	input := map[string]any{
		"interventionCount": len(candidates),
		"emotionalTier":     emotional.Tier,
		"educationLevel":    c.Profile.EducationLevel,
	}
	reasoning := fmt.Sprintf("Reviewed %d interventions, made %d adjustments. Tier: %s.",
		len(candidates), len(result.Adjustments), emotional.Tier)
	return decision(c, a.Name(), input, result, ethicsConfidence, reasoning), nil
}

// review applies the six rules in order to one candidate. A rejecting rule
// short-circuits the rest.
func (a *EthicsAgent) review(ctx context.Context, cand model.InterventionCandidate, tier model.Tier, profile model.UserProfile) (model.InterventionCandidate, bool, []EthicsAdjustment) {
	var adjustments []EthicsAdjustment
	reject := func(reason, action string) (model.InterventionCandidate, bool, []EthicsAdjustment) {
		adjustments = append(adjustments, EthicsAdjustment{
			InterventionType: cand.Type,
			Reason:           reason,
			Action:           action,
		})
		return cand, false, adjustments
	}
	adjust := func(reason, action string) {
		adjustments = append(adjustments, EthicsAdjustment{
			InterventionType: cand.Type,
			Reason:           reason,
			Action:           action,
		})
	}

	// Rule 1: red tier permits only immediate calming techniques.
	if tier == model.TierRed && !redTierAllowedTypes[cand.Type] {
		return reject("User in crisis state - only immediate calming techniques allowed",
			"Filtered out non-crisis intervention")
	}

	// Rule 2: orange tier forces low cognitive load, never rejects.
	if tier == model.TierOrange && cand.CognitiveLoad != model.LoadLow {
		cand.CognitiveLoad = model.LoadLow
		if cand.DurationMinutes > 10 {
			cand.DurationMinutes = 10
		}
		adjust("User in distress - reduced cognitive demand", "Reduced duration and complexity")
	}

	// Rule 3: low education rejects high load, simplifies everything else.
	if profile.EducationLevel == "none" || profile.EducationLevel == "primary" {
		if cand.CognitiveLoad == model.LoadHigh {
			return reject("Intervention too complex for education level",
				"Filtered out high-complexity intervention")
		}
		language := profile.PreferredLanguage
		if language == "" {
			language = "en"
		}
		if simplified, err := a.provider.Simplify(ctx, cand.Description, language, profile.EducationLevel); err == nil {
			cand.Description = simplified
		} else {
			a.log.Debug().Err(err).Str("type", cand.Type).Msg("ethics simplification failed")
		}
		adjust("Simplified language for education level", "Applied language simplification")
	}

	// Rule 4: online-only content is useless on an unstable connection.
	if profile.InternetStability == "low" && onlineOnlyTypes[cand.Type] {
		return reject("Requires stable internet connection", "Filtered out online-only intervention")
	}

	// Rule 5: cultural sensitivity denylist.
	description := strings.ToLower(cand.Description)
	for _, keyword := range culturalDenylist {
		if strings.Contains(description, keyword) {
			return reject(fmt.Sprintf("Contains culturally inappropriate content: %s", keyword),
				"Filtered for cultural inappropriateness")
		}
	}

	// Rule 6: rewrite medical terminology into wellness language.
	if rewritten, changed := ReplaceMedicalTerms(cand.Description); changed {
		cand.Description = rewritten
		adjust("Removed medical/clinical terminology", "Replaced with wellness language")
	}

	return cand, true, adjustments
}

// ReplaceMedicalTerms substitutes clinical terms with wellness language,
// case-insensitively, and reports whether anything changed.
func ReplaceMedicalTerms(text string) (string, bool) {
	out := text
	changed := false
	for _, r := range medicalReplacements {
		replaced := replaceAllFold(out, r.term, r.replacement)
		if replaced != out {
			changed = true
			out = replaced
		}
	}
	return out, changed
}

// replaceAllFold is a case-insensitive strings.ReplaceAll.
func replaceAllFold(s, old, new string) string {
	if old == "" {
		return s
	}
	var b strings.Builder
	lower := strings.ToLower(s)
	oldLower := strings.ToLower(old)
	for {
		i := strings.Index(lower, oldLower)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(new)
		s = s[i+len(old):]
		lower = lower[i+len(oldLower):]
	}
}
