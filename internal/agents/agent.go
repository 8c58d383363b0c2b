// Package agents holds the closed set of decision agents the orchestrator
// runs on every check-in. Each agent reads the shared Context, writes its
// typed result back into it, and returns one audit decision. Agents never
// touch each other's internals; downstream agents read upstream results off
// the Context.
package agents

import (
	"context"
	"encoding/json"

	"github.com/empowher/empowher-server/internal/insight"
	"github.com/empowher/empowher-server/internal/model"
)

// Agent is one pipeline stage. Evaluate must not panic; the orchestrator
// replaces a returned error with a typed fallback decision.
type Agent interface {
	Name() string
	Evaluate(ctx context.Context, c *Context) (*model.AgentDecision, error)
}

// Context is the per-cycle pipeline state. The orchestrator populates the
// input fields (normalizing legacy mood/energy/stress from instruments when
// absent) before any agent runs; each stage fills in its own result slot.
type Context struct {
	UserID string

	// Normalized submission fields.
	MoodScore   int
	EnergyLevel string
	StressLevel string
	Journal     string
	Interests   []string
	Submission  *model.CheckinSubmission

	Memory  *model.UserMemory
	Profile model.UserProfile

	// Stage results.
	Crisis       *CrisisResult
	Emotional    *EmotionalResult
	Intervention *InterventionResult
	Ethics       *EthicsResult
	Skill        *SkillResult
	Course       *CourseResult
}

// CrisisAction is one ordered step the caller must take on activation.
type CrisisAction struct {
	Type     string `json:"type"`
	Priority int    `json:"priority"`
}

// CrisisResult is the crisis gate's verdict.
type CrisisResult struct {
	Activated  bool              `json:"activated"`
	Escalating bool              `json:"escalating"`
	RiskLevel  string            `json:"riskLevel"`
	Helplines  []*model.Helpline `json:"helplines,omitempty"`
	Actions    []CrisisAction    `json:"actions,omitempty"`
}

// EmotionalResult carries the scored instruments and generated insights.
// Scores are always present; downstream agents depend on them.
type EmotionalResult struct {
	Tier                  model.Tier             `json:"tier"`
	IsStable              bool                   `json:"isStable"`
	Trend                 model.TrendDirection   `json:"trendDirection"`
	Scores                model.InstrumentScores `json:"researchScores"`
	Risk                  model.RiskAssessment   `json:"riskFlags"`
	Insights              []string               `json:"insights"`
	Encouragement         string                 `json:"encouragement"`
	SimplifiedExplanation string                 `json:"simplifiedExplanation"`
	Sentiment             *insight.Sentiment     `json:"sentiment,omitempty"`
	InsightSource         string                 `json:"insightSource"` // generative or rules
}

// InterventionResult is the ranked, load-adjusted candidate list.
type InterventionResult struct {
	Candidates        []model.InterventionCandidate `json:"recommendedInterventions"`
	PastOutcomesCount int                           `json:"pastOutcomesCount"`
}

// EthicsAdjustment is one audit record of a triggered ethics rule.
type EthicsAdjustment struct {
	InterventionType string `json:"interventionType"`
	Reason           string `json:"reason"`
	Action           string `json:"action"`
}

// EthicsResult is the filtered intervention set plus the audit trail.
type EthicsResult struct {
	Approved    []model.InterventionCandidate `json:"approvedInterventions"`
	Adjustments []EthicsAdjustment            `json:"adjustments"`
}

// SkillResult is the growth recommendation set; empty when the stability
// gate held the agent back.
type SkillResult struct {
	Activated       bool                 `json:"activated"`
	Recommendations []*model.SkillModule `json:"recommendations"`
}

// CourseResult is the single learning recommendation, or an explicit none.
type CourseResult struct {
	HasRecommendation bool          `json:"hasRecommendation"`
	Course            *model.Course `json:"course,omitempty"`
	Message           string        `json:"message,omitempty"`
}

// rawJSON marshals an agent payload for the decision log. Payload types are
// all plain structs, so a marshal failure degrades to an empty object rather
// than blocking the pipeline.
func rawJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}

func decision(c *Context, name string, input, output any, confidence float64, reasoning string) *model.AgentDecision {
	return &model.AgentDecision{
		UserID:       c.UserID,
		AgentName:    name,
		InputSummary: rawJSON(input),
		Output:       rawJSON(output),
		Confidence:   confidence,
		Reasoning:    reasoning,
	}
}
