package agents

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
)

const crisisConfidence = 0.95

// CrisisSupportMessage is the fixed support copy returned on activation.
type CrisisSupportMessage struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Disclaimer string `json:"disclaimer"`
	UrgentNote string `json:"urgentNote"`
}

// SupportMessage returns the crisis support copy.
func SupportMessage() CrisisSupportMessage {
	return CrisisSupportMessage{
		Title:      "We're Here For You",
		Message:    "It sounds like you're going through a really difficult time right now. Please know that you don't have to face this alone.",
		Disclaimer: "This platform provides wellness guidance only and is not a substitute for professional mental health care.",
		UrgentNote: "If you're in immediate danger, please call emergency services or go to your nearest emergency room.",
	}
}

// DefaultHelplines is the built-in fallback when none are configured or the
// store read fails mid-crisis.
func DefaultHelplines() []*model.Helpline {
	return []*model.Helpline{
		{Name: "National Suicide Prevention Lifeline (US)", PhoneNumber: "988", Description: "24/7 free and confidential support", Region: "United States"},
		{Name: "Crisis Text Line", PhoneNumber: "Text HOME to 741741", Description: "24/7 text-based crisis support", Region: "United States"},
		{Name: "International Association for Suicide Prevention", PhoneNumber: "Visit iasp.info/resources", Description: "Find helplines worldwide", Region: "International"},
	}
}

// CrisisAgent is the stateless gate that runs first on every cycle. It is
// the single hard override: on activation the pipeline terminates and no
// other agent runs.
type CrisisAgent struct {
	store store.Store
	log   zerolog.Logger
}

// NewCrisisAgent builds the crisis gate.
func NewCrisisAgent(s store.Store, log zerolog.Logger) *CrisisAgent {
	return &CrisisAgent{store: s, log: log}
}

func (a *CrisisAgent) Name() string { return "crisis" }

// Evaluate checks the legacy severity signal (mood <= 3 with high stress)
// and the short-term red-entry pattern. Instrument scores do not feed the
// gate; the legacy signal always wins for crisis purposes.
func (a *CrisisAgent) Evaluate(ctx context.Context, c *Context) (*model.AgentDecision, error) {
	isCritical := c.MoodScore <= 3 && c.StressLevel == "high"
	redCount := c.Memory.RedCount()
	isEscalating := redCount >= 2

	result := &CrisisResult{
		Activated:  isCritical,
		Escalating: isEscalating,
		RiskLevel:  "LOW",
	}

	confidence := 0.0
	reasoning := fmt.Sprintf("No immediate crisis detected. Mood=%d, stress=%s", c.MoodScore, c.StressLevel)

	if isCritical {
		confidence = crisisConfidence
		result.RiskLevel = "CRITICAL"
		result.Actions = []CrisisAction{
			{Type: "SHOW_CRISIS_UI", Priority: 1},
			{Type: "LOAD_HELPLINES", Priority: 1},
			{Type: "NOTIFY_SUPPORT", Priority: 2},
		}
		result.Helplines = a.loadHelplines(ctx)

		reasoning = fmt.Sprintf("Critical risk detected: mood=%d, stress=%s. Recent red entries: %d.",
			c.MoodScore, c.StressLevel, redCount)
		if isEscalating {
			reasoning += " Escalating pattern detected."
		}
	}

	c.Crisis = result
	input := map[string]any{
		"moodScore":   c.MoodScore,
		"stressLevel": c.StressLevel,
		"redCount":    redCount,
	}
	return decision(c, a.Name(), input, result, confidence, reasoning), nil
}

func (a *CrisisAgent) loadHelplines(ctx context.Context) []*model.Helpline {
	helplines, err := a.store.Helplines().ListActive(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("helpline load failed during crisis, using defaults")
		return DefaultHelplines()
	}
	if len(helplines) == 0 {
		return DefaultHelplines()
	}
	return helplines
}
