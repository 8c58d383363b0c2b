// Package orchestrator runs the check-in pipeline: a fixed ordered list of
// agents with a crisis short-circuit, a single entry write, and per-agent
// fallback decisions so no stage failure blocks another stage.
package orchestrator

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/agents"
	"github.com/empowher/empowher-server/internal/insight"
	"github.com/empowher/empowher-server/internal/instruments"
	"github.com/empowher/empowher-server/internal/journal"
	"github.com/empowher/empowher-server/internal/memory"
	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
)

// AgentSummary is the per-agent transparency block in the response.
type AgentSummary struct {
	DecisionID string  `json:"decisionId,omitempty"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Fallback   bool    `json:"fallback,omitempty"`
}

// CrisisPayload is the support block attached to a crisis response.
type CrisisPayload struct {
	agents.CrisisSupportMessage
	Helplines  []*model.Helpline     `json:"helplines"`
	Actions    []agents.CrisisAction `json:"actions"`
	Escalating bool                  `json:"escalating"`
}

// CheckinResponse is the structured result of one check-in cycle. Crisis
// responses carry the priority marker and crisis payload and omit
// intervention/skill content.
type CheckinResponse struct {
	EntryID               string                        `json:"entryId"`
	Tier                  model.Tier                    `json:"emotionalTier"`
	Priority              string                        `json:"priority,omitempty"`
	Insights              []string                      `json:"insights"`
	Encouragement         string                        `json:"encouragement"`
	Trend                 model.TrendDirection          `json:"trend"`
	ApprovedInterventions []model.InterventionCandidate `json:"approvedInterventions"`
	EthicalAdjustments    []agents.EthicsAdjustment     `json:"ethicalAdjustments"`
	SkillRecommendations  []*model.SkillModule          `json:"skillRecommendations"`
	CourseRecommendation  *agents.CourseResult          `json:"courseRecommendation,omitempty"`
	Crisis                *CrisisPayload                `json:"crisis,omitempty"`
	AgentDecisions        map[string]AgentSummary       `json:"agentDecisions"`
}

// Orchestrator coordinates the agents around one store and one memory
// manager. Safe for concurrent use; all per-cycle state lives on the
// agents.Context.
type Orchestrator struct {
	store  store.Store
	memory *memory.Manager
	cipher *journal.Cipher

	crisis       *agents.CrisisAgent
	emotional    *agents.EmotionalAgent
	intervention *agents.InterventionAgent
	ethics       *agents.EthicsAgent
	skill        *agents.SkillAgent
	course       *agents.CourseAgent

	log zerolog.Logger
}

// New wires the pipeline. cipher may be nil; journals are then dropped
// rather than stored in plaintext.
func New(s store.Store, provider insight.Provider, cipher *journal.Cipher, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:        s,
		memory:       memory.NewManager(s, log),
		cipher:       cipher,
		crisis:       agents.NewCrisisAgent(s, log),
		emotional:    agents.NewEmotionalAgent(provider, log),
		intervention: agents.NewInterventionAgent(s, provider, log),
		ethics:       agents.NewEthicsAgent(provider, log),
		skill:        agents.NewSkillAgent(s, log),
		course:       agents.NewCourseAgent(s, log),
		log:          log,
	}
}

// Memory exposes the manager for the read API.
func (o *Orchestrator) Memory() *memory.Manager { return o.memory }

// ProcessCheckin runs one full pipeline cycle. Validation happens at the
// boundary; submissions arriving here are well-formed. A storage failure on
// the entry write is the only fatal path.
func (o *Orchestrator) ProcessCheckin(ctx context.Context, userID string, sub *model.CheckinSubmission) (*CheckinResponse, error) {
	mem, err := o.memory.Load(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load user memory")
	}

	profile := o.loadProfile(ctx, userID)
	ac := &agents.Context{
		UserID:     userID,
		Journal:    sub.Journal,
		Interests:  sub.Interests,
		Submission: sub,
		Memory:     mem,
		Profile:    profile,
	}
	normalizeLegacyFields(ac, sub)

	decisions := map[string]AgentSummary{}

	// Crisis gate: the single hard override. Runs before any agent that
	// could fail, so downstream failures cannot mask a crisis.
	crisisDec, err := o.crisis.Evaluate(ctx, ac)
	if err != nil {
		// The gate reads only in-memory state besides helplines, which
		// already degrade to defaults; treat an error as no activation.
		o.log.Error().Err(err).Msg("crisis gate failed, continuing without activation")
		ac.Crisis = &agents.CrisisResult{}
		crisisDec = fallbackDecision(userID, o.crisis.Name())
	}
	decisions[o.crisis.Name()] = o.logDecision(ctx, crisisDec, false)

	if ac.Crisis.Activated {
		return o.finishCrisis(ctx, ac, decisions)
	}

	// Emotional analysis. Downstream agents consume its (possibly
	// fallback) result.
	emotionalFallback := false
	emotionalDec, err := o.emotional.Evaluate(ctx, ac)
	if err != nil {
		o.log.Error().Err(err).Msg("emotional agent failed, using fallback")
		ac.Emotional = fallbackEmotional()
		emotionalDec = fallbackDecision(userID, o.emotional.Name())
		emotionalFallback = true
	}
	decisions[o.emotional.Name()] = o.logDecision(ctx, emotionalDec, emotionalFallback)

	// Single entry write with the final tier. Fatal on failure.
	entry, err := o.persistEntry(ctx, ac)
	if err != nil {
		return nil, errors.Wrap(err, "persist check-in entry")
	}

	o.runStage(ctx, ac, o.intervention, decisions, func() { ac.Intervention = &agents.InterventionResult{} })
	o.runStage(ctx, ac, o.ethics, decisions, func() { ac.Ethics = &agents.EthicsResult{} })
	o.runStage(ctx, ac, o.skill, decisions, func() { ac.Skill = &agents.SkillResult{} })
	o.runStage(ctx, ac, o.course, decisions, func() { ac.Course = &agents.CourseResult{} })

	if err := o.memory.RefreshLongTerm(ctx, userID); err != nil {
		o.log.Error().Err(err).Str("user_id", userID).Msg("long-term memory refresh failed")
	}

	resp := &CheckinResponse{
		EntryID:               entry.EntryID,
		Tier:                  ac.Emotional.Tier,
		Insights:              ac.Emotional.Insights,
		Encouragement:         ac.Emotional.Encouragement,
		Trend:                 mem.TrendDirection,
		ApprovedInterventions: ac.Ethics.Approved,
		EthicalAdjustments:    ac.Ethics.Adjustments,
		SkillRecommendations:  ac.Skill.Recommendations,
		AgentDecisions:        decisions,
	}
	if resp.ApprovedInterventions == nil {
		resp.ApprovedInterventions = []model.InterventionCandidate{}
	}
	if resp.SkillRecommendations == nil {
		resp.SkillRecommendations = []*model.SkillModule{}
	}
	if ac.Course != nil {
		resp.CourseRecommendation = ac.Course
	}
	return resp, nil
}

// runStage wraps one post-crisis agent: an error becomes a typed fallback
// decision and the pipeline continues.
func (o *Orchestrator) runStage(ctx context.Context, ac *agents.Context, agent agents.Agent, decisions map[string]AgentSummary, fallback func()) {
	dec, err := agent.Evaluate(ctx, ac)
	isFallback := false
	if err != nil {
		o.log.Error().Err(err).Str("agent", agent.Name()).Msg("agent failed, using fallback decision")
		fallback()
		dec = fallbackDecision(ac.UserID, agent.Name())
		isFallback = true
	}
	decisions[agent.Name()] = o.logDecision(ctx, dec, isFallback)
}

// finishCrisis persists the forced red entry, refreshes memory and returns
// the crisis response shape. No other agent runs.
func (o *Orchestrator) finishCrisis(ctx context.Context, ac *agents.Context, decisions map[string]AgentSummary) (*CheckinResponse, error) {
	// The entry still records the instrument scores; only the tier is
	// forced.
	scores := instruments.Score(ac.Submission)
	ac.Emotional = &agents.EmotionalResult{
		Tier:   model.TierRed,
		Scores: scores,
		Risk:   instruments.AssessRisk(scores),
	}

	entry, err := o.persistEntry(ctx, ac)
	if err != nil {
		return nil, errors.Wrap(err, "persist crisis entry")
	}

	if err := o.memory.RefreshLongTerm(ctx, ac.UserID); err != nil {
		o.log.Error().Err(err).Str("user_id", ac.UserID).Msg("long-term memory refresh failed")
	}

	return &CheckinResponse{
		EntryID:               entry.EntryID,
		Tier:                  model.TierRed,
		Priority:              "CRITICAL",
		Insights:              []string{"Crisis protocol activated. Please reach out for support."},
		Encouragement:         agents.SupportMessage().Message,
		Trend:                 ac.Memory.TrendDirection,
		ApprovedInterventions: []model.InterventionCandidate{},
		EthicalAdjustments:    []agents.EthicsAdjustment{},
		SkillRecommendations:  []*model.SkillModule{},
		Crisis: &CrisisPayload{
			CrisisSupportMessage: agents.SupportMessage(),
			Helplines:            ac.Crisis.Helplines,
			Actions:              ac.Crisis.Actions,
			Escalating:           ac.Crisis.Escalating,
		},
		AgentDecisions: decisions,
	}, nil
}

// persistEntry builds the complete entry, tier included, and writes it once.
func (o *Orchestrator) persistEntry(ctx context.Context, ac *agents.Context) (*model.CheckinEntry, error) {
	em := ac.Emotional
	entry := &model.CheckinEntry{
		UserID:                ac.UserID,
		MoodScore:             ac.MoodScore,
		EnergyLevel:           ac.EnergyLevel,
		StressLevel:           ac.StressLevel,
		Tier:                  em.Tier,
		PHQ2Q1:                em.Scores.PHQ2.Q1,
		PHQ2Q2:                em.Scores.PHQ2.Q2,
		PHQ2Total:             em.Scores.PHQ2.Total,
		GAD2Q1:                em.Scores.GAD2.Q1,
		GAD2Q2:                em.Scores.GAD2.Q2,
		GAD2Total:             em.Scores.GAD2.Total,
		WHO5Q1:                em.Scores.WHO5.Q1,
		WHO5Q2:                em.Scores.WHO5.Q2,
		WHO5Q3:                em.Scores.WHO5.Q3,
		WHO5Normalized:        em.Scores.WHO5.Normalized,
		DepressionRisk:        em.Risk.DepressionRisk,
		AnxietyRisk:           em.Risk.AnxietyRisk,
		RiskProbability:       em.Risk.RiskProbability,
		SimplifiedExplanation: em.SimplifiedExplanation,
		Interests:             ac.Interests,
	}
	if em.Sentiment != nil {
		score := em.Sentiment.Score
		entry.SentimentScore = &score
	}
	if ac.Journal != "" && o.cipher != nil {
		ciphertext, nonce, err := o.cipher.Seal(ac.Journal)
		if err != nil {
			return nil, errors.Wrap(err, "encrypt journal")
		}
		entry.JournalCiphertext = ciphertext
		entry.JournalNonce = nonce
	}
	return o.store.Entries().Create(ctx, entry)
}

// logDecision writes the audit row. Decision-log failures are logged and do
// not abort the pipeline.
func (o *Orchestrator) logDecision(ctx context.Context, dec *model.AgentDecision, fallback bool) AgentSummary {
	summary := AgentSummary{Confidence: dec.Confidence, Reasoning: dec.Reasoning, Fallback: fallback}
	created, err := o.store.Decisions().Create(ctx, dec)
	if err != nil {
		o.log.Error().Err(err).Str("agent", dec.AgentName).Msg("decision log write failed")
		return summary
	}
	summary.DecisionID = created.DecisionID
	return summary
}

func (o *Orchestrator) loadProfile(ctx context.Context, userID string) model.UserProfile {
	p, err := o.store.Profiles().Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			o.log.Warn().Err(err).Str("user_id", userID).Msg("profile load failed, using zero profile")
		}
		return model.UserProfile{UserID: userID}
	}
	return *p
}

// normalizeLegacyFields derives mood/energy/stress from the instruments
// when the legacy shape is absent, so the crisis gate and skill agent
// always have a signal.
func normalizeLegacyFields(ac *agents.Context, sub *model.CheckinSubmission) {
	if sub.HasLegacyFields() {
		ac.MoodScore = *sub.MoodScore
		ac.EnergyLevel = sub.EnergyLevel
		ac.StressLevel = sub.StressLevel
		return
	}

	scores := instruments.Score(sub)

	mood := int(math.Round(float64(scores.WHO5.Normalized) / 10))
	if mood < 1 {
		mood = 1
	}
	if mood > 10 {
		mood = 10
	}
	ac.MoodScore = mood

	energyScore := 0
	if sub.Who5Q2 != nil {
		energyScore = *sub.Who5Q2
	}
	switch {
	case energyScore >= 4:
		ac.EnergyLevel = "high"
	case energyScore >= 2:
		ac.EnergyLevel = "medium"
	default:
		ac.EnergyLevel = "low"
	}

	switch {
	case scores.GAD2.Total >= 4:
		ac.StressLevel = "high"
	case scores.GAD2.Total >= 2:
		ac.StressLevel = "medium"
	default:
		ac.StressLevel = "low"
	}
}

// fallbackEmotional is the neutral result used when the emotional agent
// fails: stable enough to continue, scores present so downstream agents
// never see missing fields.
func fallbackEmotional() *agents.EmotionalResult {
	return &agents.EmotionalResult{
		Tier:     model.TierYellow,
		IsStable: true,
		Scores: model.InstrumentScores{
			WHO5: model.WHO5Score{Normalized: 50},
		},
		Insights:      []string{"We are having trouble analyzing your check-in, but we are here for you."},
		Encouragement: "Take a deep breath. We are logging this issue.",
		InsightSource: "fallback",
	}
}

func fallbackDecision(userID, agentName string) *model.AgentDecision {
	return &model.AgentDecision{
		UserID:     userID,
		AgentName:  agentName,
		Confidence: 0,
		Reasoning:  "fallback decision: agent execution failed",
	}
}
