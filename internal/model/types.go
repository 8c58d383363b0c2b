package model

import (
	"encoding/json"
	"time"
)

// Tier is the per-entry severity classification derived from instrument
// scores. Ordering is green < yellow < orange < red.
type Tier string

const (
	TierGreen  Tier = "green"
	TierYellow Tier = "yellow"
	TierOrange Tier = "orange"
	TierRed    Tier = "red"
)

// Severity returns the ordinal rank of the tier (green=0 .. red=3).
func (t Tier) Severity() int {
	switch t {
	case TierGreen:
		return 0
	case TierYellow:
		return 1
	case TierOrange:
		return 2
	case TierRed:
		return 3
	}
	return -1
}

// IsStable reports whether the tier allows growth-oriented agents to run.
func (t Tier) IsStable() bool { return t == TierGreen || t == TierYellow }

// Stage is the slower, multi-entry classification of a user's state.
type Stage string

const (
	StageDistress    Stage = "distress"
	StageStruggling  Stage = "struggling"
	StageStabilizing Stage = "stabilizing"
	StageThriving    Stage = "thriving"
	StageUnknown     Stage = "unknown"
)

// TrendDirection summarizes the movement of a user's wellbeing over time.
type TrendDirection string

const (
	TrendImproving    TrendDirection = "improving"
	TrendDeclining    TrendDirection = "declining"
	TrendStable       TrendDirection = "stable"
	TrendInsufficient TrendDirection = "insufficient_data"
)

// CognitiveLoad is a coarse complexity rating attached to an intervention.
type CognitiveLoad string

const (
	LoadLow    CognitiveLoad = "low"
	LoadMedium CognitiveLoad = "medium"
	LoadHigh   CognitiveLoad = "high"
)

// CheckinSubmission is the raw check-in payload. Instrument answers use
// pointers so "answered 0" and "not answered" stay distinguishable at the
// boundary; scoring treats missing answers as 0.
type CheckinSubmission struct {
	Phq2Q1 *int `json:"phq2_q1,omitempty"`
	Phq2Q2 *int `json:"phq2_q2,omitempty"`
	Gad2Q1 *int `json:"gad2_q1,omitempty"`
	Gad2Q2 *int `json:"gad2_q2,omitempty"`
	Who5Q1 *int `json:"who5_q1,omitempty"`
	Who5Q2 *int `json:"who5_q2,omitempty"`
	Who5Q3 *int `json:"who5_q3,omitempty"`

	Journal string `json:"journal,omitempty"`

	// Legacy fields, kept for pre-instrument clients.
	MoodScore   *int   `json:"mood_score,omitempty"`
	EnergyLevel string `json:"energy_level,omitempty"`
	StressLevel string `json:"stress_level,omitempty"`

	Interests []string `json:"interests,omitempty"`
}

// HasInstruments reports whether any research instrument answer is present.
func (s *CheckinSubmission) HasInstruments() bool {
	return s.Phq2Q1 != nil || s.Phq2Q2 != nil ||
		s.Gad2Q1 != nil || s.Gad2Q2 != nil ||
		s.Who5Q1 != nil || s.Who5Q2 != nil || s.Who5Q3 != nil
}

// HasLegacyFields reports whether the legacy mood/energy/stress shape is present.
func (s *CheckinSubmission) HasLegacyFields() bool { return s.MoodScore != nil }

// PHQ2Score is the scored 2-item depression screen.
type PHQ2Score struct {
	Q1       int  `json:"q1"`
	Q2       int  `json:"q2"`
	Total    int  `json:"total"`
	RiskFlag bool `json:"riskFlag"`
}

// GAD2Score is the scored 2-item anxiety screen.
type GAD2Score struct {
	Q1       int  `json:"q1"`
	Q2       int  `json:"q2"`
	Total    int  `json:"total"`
	RiskFlag bool `json:"riskFlag"`
}

// WHO5Score is the scored 3-item wellbeing index. Raw is 0-15,
// Normalized is 0-100.
type WHO5Score struct {
	Q1         int `json:"q1"`
	Q2         int `json:"q2"`
	Q3         int `json:"q3"`
	Raw        int `json:"raw"`
	Normalized int `json:"normalized"`
}

// InstrumentScores groups the three scored instruments for one submission.
// Immutable once computed.
type InstrumentScores struct {
	PHQ2 PHQ2Score `json:"phq2"`
	GAD2 GAD2Score `json:"gad2"`
	WHO5 WHO5Score `json:"who5"`
}

// RiskAssessment is the composite risk view over the three instruments.
type RiskAssessment struct {
	DepressionRisk  bool    `json:"depressionRisk"`
	AnxietyRisk     bool    `json:"anxietyRisk"`
	LowWellbeing    bool    `json:"lowWellbeing"`
	RiskProbability float64 `json:"riskProbability"`
	AnyRisk         bool    `json:"anyRisk"`
}

// CheckinEntry is the persisted record of one check-in. The tier is computed
// before the row is written; it is never stored as a placeholder and
// rewritten.
type CheckinEntry struct {
	EntryID string `json:"entryId"`
	UserID  string `json:"userId"`

	MoodScore   int    `json:"moodScore"`
	EnergyLevel string `json:"energyLevel"`
	StressLevel string `json:"stressLevel"`
	Tier        Tier   `json:"emotionalTier"`

	PHQ2Q1    int `json:"phq2Q1"`
	PHQ2Q2    int `json:"phq2Q2"`
	PHQ2Total int `json:"phq2Total"`

	GAD2Q1    int `json:"gad2Q1"`
	GAD2Q2    int `json:"gad2Q2"`
	GAD2Total int `json:"gad2Total"`

	WHO5Q1         int `json:"who5Q1"`
	WHO5Q2         int `json:"who5Q2"`
	WHO5Q3         int `json:"who5Q3"`
	WHO5Normalized int `json:"who5Normalized"`

	DepressionRisk  bool    `json:"depressionRisk"`
	AnxietyRisk     bool    `json:"anxietyRisk"`
	RiskProbability float64 `json:"riskProbability"`

	SentimentScore        *float64 `json:"sentimentScore,omitempty"`
	SimplifiedExplanation string   `json:"simplifiedExplanation,omitempty"`

	// Journal text is encrypted before persistence; plaintext never leaves
	// the pipeline.
	JournalCiphertext []byte `json:"-"`
	JournalNonce      []byte `json:"-"`

	Interests    []string  `json:"interests,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// LongTermSummary is the slow-moving derived state for a user, recomputed
// from the last 30 days of entries.
type LongTermSummary struct {
	AvgWellbeing  float64    `json:"avgWellbeing"`
	Stage         Stage      `json:"stage"`
	Consistency   int        `json:"consistency"`
	TotalCheckins int        `json:"totalCheckins"`
	LastCheckin   *time.Time `json:"lastCheckin,omitempty"`
}

// UserMemory is the per-user aggregate the agents read. Agents receive it as
// a snapshot and never mutate it; only the memory manager writes it back.
type UserMemory struct {
	UserID          string           `json:"userId"`
	ShortTerm       []*CheckinEntry  `json:"shortTerm"`
	LongTerm        LongTermSummary  `json:"longTerm"`
	TrendDirection  TrendDirection   `json:"trendDirection"`
	EngagementScore int              `json:"engagementScore"`
	LastUpdated     time.Time        `json:"lastUpdated"`
}

// Stage returns the derived emotional stage, defaulting to unknown.
func (m *UserMemory) Stage() Stage {
	if m == nil || m.LongTerm.Stage == "" {
		return StageUnknown
	}
	return m.LongTerm.Stage
}

// RedCount counts short-term entries classified red.
func (m *UserMemory) RedCount() int {
	n := 0
	for _, e := range m.ShortTerm {
		if e.Tier == TierRed {
			n++
		}
	}
	return n
}

// AgentDecision is the append-only audit record of one agent invocation.
type AgentDecision struct {
	DecisionID   string          `json:"decisionId"`
	UserID       string          `json:"userId"`
	AgentName    string          `json:"agentName"`
	InputSummary json.RawMessage `json:"inputSummary,omitempty"`
	Output       json.RawMessage `json:"output,omitempty"`
	Confidence   float64         `json:"confidence"`
	Reasoning    string          `json:"reasoning"`
	CreationTime time.Time       `json:"creationTime"`
}

// InterventionCandidate is one proposed coping activity. The ethics guard
// may rewrite its description or reject it before it reaches the response.
type InterventionCandidate struct {
	Type            string        `json:"type"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	EvidenceBase    string        `json:"evidenceBase"`
	CognitiveLoad   CognitiveLoad `json:"cognitiveLoad"`
	DurationMinutes int           `json:"expectedDuration"`
	Priority        int           `json:"priority"`

	// Ranking signals, populated from past outcomes.
	SuccessRate    float64 `json:"successRate,omitempty"`
	AvgImprovement float64 `json:"avgImprovement,omitempty"`
}

// InterventionOutcome is user feedback on a past intervention. Rows are
// append-only and never invalidate the decision they reference.
type InterventionOutcome struct {
	OutcomeID             string     `json:"outcomeId"`
	UserID                string     `json:"userId"`
	DecisionID            string     `json:"decisionId"`
	Action                string     `json:"action"`
	Completed             bool       `json:"completed"`
	Rating                *int       `json:"rating,omitempty"`
	TimeToCompleteMinutes *int       `json:"timeToComplete,omitempty"`
	ImprovementDelta      float64    `json:"improvementDelta"`
	CompletionTime        *time.Time `json:"completionTime,omitempty"`
	CreationTime          time.Time  `json:"creationTime"`
}

// ConfidenceAdjustment records a rating-driven correction to an agent's
// confidence, part of the reflection loop.
type ConfidenceAdjustment struct {
	AgentName          string    `json:"agentName"`
	OriginalConfidence float64   `json:"originalConfidence"`
	AdjustedConfidence float64   `json:"adjustedConfidence"`
	Reason             string    `json:"reason"`
	CreationTime       time.Time `json:"creationTime"`
}

// OutcomeAnalytics aggregates outcomes by action type.
type OutcomeAnalytics struct {
	Action         string   `json:"action"`
	TotalAttempts  int      `json:"totalAttempts"`
	Completed      int      `json:"completed"`
	CompletionRate float64  `json:"completionRate"`
	AvgRating      *float64 `json:"avgRating,omitempty"`
	AvgTimeMinutes *float64 `json:"avgTimeMinutes,omitempty"`
}

// Helpline is one crisis support contact.
type Helpline struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Description string `json:"description"`
	Region      string `json:"region"`
	Active      bool   `json:"-"`
}

// SkillModule is one growth activity available for recommendation.
type SkillModule struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	Difficulty      string `json:"difficulty"`
	DurationMinutes int    `json:"duration"`
	PointsReward    int    `json:"pointsReward,omitempty"`
}

// SkillProgress tracks a user's state on one skill module.
type SkillProgress struct {
	UserID      string     `json:"userId"`
	SkillID     string     `json:"skillId"`
	Category    string     `json:"category,omitempty"`
	Completed   bool       `json:"completed"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Course is one learning resource for the course recommendation agent.
type Course struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Difficulty       int    `json:"difficulty"`
	DurationEstimate string `json:"duration,omitempty"`
	SourceURL        string `json:"url,omitempty"`
}

// UserProfile carries the accessibility attributes the ethics guard and
// language simplification depend on. A zero profile is safe to use.
type UserProfile struct {
	UserID            string `json:"userId"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
	EducationLevel    string `json:"educationLevel,omitempty"`
	LocationType      string `json:"locationType,omitempty"`
	InternetStability string `json:"internetStability,omitempty"`
}
