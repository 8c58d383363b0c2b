package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empowher/empowher-server/internal/agents"
	"github.com/empowher/empowher-server/internal/insight/rules"
	"github.com/empowher/empowher-server/internal/journal"
	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
	"github.com/empowher/empowher-server/internal/store/sqlite"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func iptr(v int) *int { return &v }

func testStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "orchestrator.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.NewWithDB(db)
}

func testOrchestrator(t *testing.T, s store.Store) *Orchestrator {
	t.Helper()
	cipher, err := journal.NewCipher(testKeyHex)
	require.NoError(t, err)
	return New(s, rules.New(), cipher, zerolog.Nop())
}

func TestProcessCheckin_CrisisShortCircuits(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	o := testOrchestrator(t, s)

	resp, err := o.ProcessCheckin(ctx, "u1", &model.CheckinSubmission{
		MoodScore:   iptr(2),
		EnergyLevel: "low",
		StressLevel: "high",
	})
	require.NoError(t, err)

	assert.Equal(t, "CRITICAL", resp.Priority)
	assert.Equal(t, model.TierRed, resp.Tier)
	require.NotNil(t, resp.Crisis)
	assert.NotEmpty(t, resp.Crisis.Helplines)
	assert.NotEmpty(t, resp.Crisis.Title)

	// No growth or intervention content on the crisis path.
	assert.Empty(t, resp.ApprovedInterventions)
	assert.Empty(t, resp.SkillRecommendations)
	assert.Nil(t, resp.CourseRecommendation)

	// Only the crisis gate ran.
	require.Len(t, resp.AgentDecisions, 1)
	assert.Contains(t, resp.AgentDecisions, "crisis")

	// The entry is on record with the forced tier.
	entries, err := s.Entries().ListSince(ctx, "u1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.TierRed, entries[0].Tier)
}

func TestProcessCheckin_Thriving(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	o := testOrchestrator(t, s)

	resp, err := o.ProcessCheckin(ctx, "u1", &model.CheckinSubmission{
		Phq2Q1: iptr(0), Phq2Q2: iptr(0),
		Gad2Q1: iptr(0), Gad2Q2: iptr(0),
		Who5Q1: iptr(5), Who5Q2: iptr(5), Who5Q3: iptr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, model.TierGreen, resp.Tier)
	assert.Empty(t, resp.Priority)
	assert.Nil(t, resp.Crisis)
	assert.NotEmpty(t, resp.Insights)
	assert.NotEmpty(t, resp.Encouragement)
	assert.NotEmpty(t, resp.ApprovedInterventions)

	// Every stage produced a decision.
	for _, name := range []string{"crisis", "emotional", "intervention", "ethics_guard", "skill_growth", "course_recommendation"} {
		summary, ok := resp.AgentDecisions[name]
		require.True(t, ok, "missing decision for %s", name)
		assert.NotEmpty(t, summary.DecisionID)
		assert.False(t, summary.Fallback)
	}

	// Green tier with an empty catalog still reaches the course agent.
	require.NotNil(t, resp.CourseRecommendation)
	assert.False(t, resp.CourseRecommendation.HasRecommendation)

	entries, err := s.Entries().ListSince(ctx, "u1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.TierGreen, entries[0].Tier)
	assert.Equal(t, 100, entries[0].WHO5Normalized)
	assert.Equal(t, 10, entries[0].MoodScore)
}

func TestProcessCheckin_RedTierWithoutCrisis(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	o := testOrchestrator(t, s)

	// High depression screen, no anxiety: derived stress stays low, so the
	// crisis gate does not fire, but the low wellbeing forces a red tier.
	resp, err := o.ProcessCheckin(ctx, "u1", &model.CheckinSubmission{
		Phq2Q1: iptr(3), Phq2Q2: iptr(3),
		Gad2Q1: iptr(0), Gad2Q2: iptr(0),
		Who5Q1: iptr(0), Who5Q2: iptr(0), Who5Q3: iptr(0),
	})
	require.NoError(t, err)

	assert.Equal(t, model.TierRed, resp.Tier)
	assert.Nil(t, resp.Crisis)

	// Red tier narrows the approved set to immediate calming techniques.
	require.NotEmpty(t, resp.ApprovedInterventions)
	for _, iv := range resp.ApprovedInterventions {
		assert.Contains(t, []string{"guided_breathing", "grounding_technique"}, iv.Type)
	}
	assert.NotEmpty(t, resp.EthicalAdjustments)

	// Unstable tier keeps the skill agent gated.
	assert.Empty(t, resp.SkillRecommendations)
}

func TestProcessCheckin_JournalEncryptedAtRest(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	cipher, err := journal.NewCipher(testKeyHex)
	require.NoError(t, err)
	o := New(s, rules.New(), cipher, zerolog.Nop())

	plaintext := "today was hard but I managed"
	_, err = o.ProcessCheckin(ctx, "u1", &model.CheckinSubmission{
		Who5Q1: iptr(3), Who5Q2: iptr(3), Who5Q3: iptr(3),
		Journal: plaintext,
	})
	require.NoError(t, err)

	entries, err := s.Entries().ListSince(ctx, "u1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotEmpty(t, entries[0].JournalCiphertext)
	assert.NotContains(t, string(entries[0].JournalCiphertext), plaintext)

	decrypted, err := cipher.Open(entries[0].JournalCiphertext, entries[0].JournalNonce)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestProcessCheckin_RefreshesMemory(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	o := testOrchestrator(t, s)

	_, err := o.ProcessCheckin(ctx, "u1", &model.CheckinSubmission{
		Who5Q1: iptr(5), Who5Q2: iptr(5), Who5Q3: iptr(5),
	})
	require.NoError(t, err)

	mem, err := s.Memories().Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, mem.LongTerm.TotalCheckins)
	assert.Equal(t, model.StageThriving, mem.LongTerm.Stage)
}

type failingAgent struct{}

func (failingAgent) Name() string { return "failing" }
func (failingAgent) Evaluate(context.Context, *agents.Context) (*model.AgentDecision, error) {
	return nil, fmt.Errorf("boom")
}

func TestRunStage_FallbackDecision(t *testing.T) {
	s := testStore(t)
	o := testOrchestrator(t, s)

	ac := &agents.Context{UserID: "u1"}
	decisions := map[string]AgentSummary{}
	called := false
	o.runStage(context.Background(), ac, failingAgent{}, decisions, func() { called = true })

	assert.True(t, called)
	summary, ok := decisions["failing"]
	require.True(t, ok)
	assert.True(t, summary.Fallback)
	assert.Zero(t, summary.Confidence)
	assert.NotEmpty(t, summary.DecisionID)
}

func TestFallbackEmotional(t *testing.T) {
	em := fallbackEmotional()
	assert.Equal(t, model.TierYellow, em.Tier)
	assert.True(t, em.IsStable)
	assert.NotEmpty(t, em.Insights)
	assert.NotEmpty(t, em.Encouragement)
	assert.Equal(t, 50, em.Scores.WHO5.Normalized)
}

func TestNormalizeLegacyFields(t *testing.T) {
	tests := []struct {
		name   string
		sub    *model.CheckinSubmission
		mood   int
		energy string
		stress string
	}{
		{
			name:   "legacy fields pass through",
			sub:    &model.CheckinSubmission{MoodScore: iptr(7), EnergyLevel: "medium", StressLevel: "low"},
			mood:   7,
			energy: "medium",
			stress: "low",
		},
		{
			name:   "high wellbeing derives high signals",
			sub:    &model.CheckinSubmission{Who5Q1: iptr(5), Who5Q2: iptr(5), Who5Q3: iptr(5)},
			mood:   10,
			energy: "high",
			stress: "low",
		},
		{
			name:   "zero wellbeing floors mood at one",
			sub:    &model.CheckinSubmission{Who5Q1: iptr(0), Who5Q2: iptr(0), Who5Q3: iptr(0)},
			mood:   1,
			energy: "low",
			stress: "low",
		},
		{
			name:   "anxiety drives stress",
			sub:    &model.CheckinSubmission{Gad2Q1: iptr(2), Gad2Q2: iptr(2), Who5Q1: iptr(3), Who5Q2: iptr(2), Who5Q3: iptr(3)},
			mood:   5,
			energy: "medium",
			stress: "high",
		},
		{
			name:   "moderate anxiety is medium stress",
			sub:    &model.CheckinSubmission{Gad2Q1: iptr(1), Gad2Q2: iptr(1), Who5Q1: iptr(2), Who5Q2: iptr(1), Who5Q3: iptr(2)},
			mood:   3,
			energy: "low",
			stress: "medium",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ac := &agents.Context{}
			normalizeLegacyFields(ac, tc.sub)
			assert.Equal(t, tc.mood, ac.MoodScore)
			assert.Equal(t, tc.energy, ac.EnergyLevel)
			assert.Equal(t, tc.stress, ac.StressLevel)
		})
	}
}
