// Package storetest holds the compliance suite every store.Store
// implementation must pass. Driver packages run it from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
)

// Factory builds a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the suite against stores produced by f. It covers the
// aggregates the pipeline writes through the port; catalog tables are
// seeded and tested per driver.
func Run(t *testing.T, f Factory) {
	t.Run("Entries", func(t *testing.T) { testEntries(t, f(t)) })
	t.Run("Decisions", func(t *testing.T) { testDecisions(t, f(t)) })
	t.Run("Outcomes", func(t *testing.T) { testOutcomes(t, f(t)) })
	t.Run("Memories", func(t *testing.T) { testMemories(t, f(t)) })
}

func testEntries(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	score := 0.7
	created, err := s.Entries().Create(ctx, &model.CheckinEntry{
		UserID:          "u1",
		MoodScore:       4,
		EnergyLevel:     "medium",
		StressLevel:     "high",
		Tier:            model.TierOrange,
		PHQ2Q1:          2, PHQ2Q2: 1, PHQ2Total: 3,
		GAD2Q1:          1, GAD2Q2: 1, GAD2Total: 2,
		WHO5Q1:          2, WHO5Q2: 2, WHO5Q3: 2, WHO5Normalized: 40,
		DepressionRisk:  true,
		RiskProbability: 0.4,
		SentimentScore:  &score,
		Interests:       []string{"music", "reading"},
		CreationTime:    now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.EntryID)

	// Older entry outside the query window.
	_, err = s.Entries().Create(ctx, &model.CheckinEntry{
		UserID: "u1", MoodScore: 7, EnergyLevel: "high", StressLevel: "low",
		Tier: model.TierGreen, CreationTime: now.Add(-10 * 24 * time.Hour),
	})
	require.NoError(t, err)

	// Another user's entry must not leak in.
	_, err = s.Entries().Create(ctx, &model.CheckinEntry{
		UserID: "u2", MoodScore: 5, EnergyLevel: "low", StressLevel: "medium",
		Tier: model.TierYellow, CreationTime: now,
	})
	require.NoError(t, err)

	got, err := s.Entries().ListSince(ctx, "u1", now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, created.EntryID, e.EntryID)
	assert.Equal(t, model.TierOrange, e.Tier)
	assert.Equal(t, 3, e.PHQ2Total)
	assert.Equal(t, 40, e.WHO5Normalized)
	assert.True(t, e.DepressionRisk)
	require.NotNil(t, e.SentimentScore)
	assert.InDelta(t, 0.7, *e.SentimentScore, 1e-9)
	assert.Equal(t, []string{"music", "reading"}, e.Interests)

	// Newest first across the window.
	all, err := s.Entries().ListSince(ctx, "u1", now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, !all[0].CreationTime.Before(all[1].CreationTime))
}

func testDecisions(t *testing.T, s store.Store) {
	ctx := context.Background()

	d1, err := s.Decisions().Create(ctx, &model.AgentDecision{
		UserID:     "u1",
		AgentName:  "emotional_support",
		Output:     []byte(`{"tier":"yellow"}`),
		Confidence: 0.6,
		Reasoning:  "3 entries in window",
	})
	require.NoError(t, err)
	require.NotEmpty(t, d1.DecisionID)

	_, err = s.Decisions().Create(ctx, &model.AgentDecision{
		UserID:       "u1",
		AgentName:    "intervention",
		Confidence:   0.5,
		CreationTime: d1.CreationTime.Add(time.Second),
	})
	require.NoError(t, err)

	got, err := s.Decisions().Get(ctx, d1.DecisionID)
	require.NoError(t, err)
	assert.Equal(t, "emotional_support", got.AgentName)
	assert.JSONEq(t, `{"tier":"yellow"}`, string(got.Output))

	_, err = s.Decisions().Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	list, err := s.Decisions().List(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "intervention", list[0].AgentName)

	page, err := s.Decisions().List(ctx, "u1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "emotional_support", page[0].AgentName)
}

func testOutcomes(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	rating := 5
	mins := 8
	done := now.Add(-time.Hour)
	_, err := s.Outcomes().Create(ctx, &model.InterventionOutcome{
		UserID: "u1", DecisionID: "d1", Action: "guided_breathing",
		Completed: true, Rating: &rating, TimeToCompleteMinutes: &mins,
		ImprovementDelta: 0.1, CompletionTime: &done,
	})
	require.NoError(t, err)

	_, err = s.Outcomes().Create(ctx, &model.InterventionOutcome{
		UserID: "u1", DecisionID: "d2", Action: "guided_breathing",
	})
	require.NoError(t, err)

	completed, err := s.Outcomes().ListCompleted(ctx, "u1", 50)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "guided_breathing", completed[0].Action)
	require.NotNil(t, completed[0].Rating)
	assert.Equal(t, 5, *completed[0].Rating)

	analytics, err := s.Outcomes().Analytics(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, analytics, 1)
	a := analytics[0]
	assert.Equal(t, 2, a.TotalAttempts)
	assert.Equal(t, 1, a.Completed)
	assert.InDelta(t, 50.0, a.CompletionRate, 1e-9)
	require.NotNil(t, a.AvgRating)
	assert.InDelta(t, 5.0, *a.AvgRating, 1e-9)

	err = s.Outcomes().RecordAdjustment(ctx, &model.ConfidenceAdjustment{
		AgentName:          "intervention",
		OriginalConfidence: 0.6,
		AdjustedConfidence: 0.7,
		Reason:             "rating 5",
	})
	require.NoError(t, err)
}

func testMemories(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.Memories().Get(ctx, "u1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	created, err := s.Memories().Create(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.TrendInsufficient, created.TrendDirection)

	last := time.Now().UTC().Truncate(time.Second)
	created.LongTerm = model.LongTermSummary{
		AvgWellbeing:  55.5,
		Stage:         model.StageStabilizing,
		Consistency:   80,
		TotalCheckins: 12,
		LastCheckin:   &last,
	}
	created.TrendDirection = model.TrendImproving
	created.EngagementScore = 42
	require.NoError(t, s.Memories().Update(ctx, created))

	got, err := s.Memories().Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StageStabilizing, got.LongTerm.Stage)
	assert.InDelta(t, 55.5, got.LongTerm.AvgWellbeing, 1e-9)
	assert.Equal(t, model.TrendImproving, got.TrendDirection)
	assert.Equal(t, 42, got.EngagementScore)

	err = s.Memories().Update(ctx, &model.UserMemory{UserID: "nobody"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
