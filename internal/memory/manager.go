// Package memory maintains the per-user aggregate the agents read: a
// short-term window of recent entries plus a slow-moving long-term summary.
package memory

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
)

const (
	// ShortTermWindow bounds the entries agents see directly.
	ShortTermWindow = 7 * 24 * time.Hour
	// LongTermWindow bounds the entries the summary is recomputed from.
	LongTermWindow = 30 * 24 * time.Hour

	minTrendEntries = 3
	trendThreshold  = 5.0
	stageEntries    = 5
	trendWindow     = 7
)

// Manager loads and refreshes user memory. It is the only writer of the
// memory row; agents receive read-only snapshots.
type Manager struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewManager builds a Manager on the given store.
func NewManager(s store.Store, log zerolog.Logger) *Manager {
	return &Manager{store: s, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Load returns the user's memory snapshot: the stored long-term row (created
// on first sight) plus the short-term window of recent entries.
func (m *Manager) Load(ctx context.Context, userID string) (*model.UserMemory, error) {
	um, err := m.store.Memories().Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		um, err = m.store.Memories().Create(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	entries, err := m.store.Entries().ListSince(ctx, userID, m.now().Add(-ShortTermWindow))
	if err != nil {
		return nil, err
	}
	um.ShortTerm = entries
	return um, nil
}

// RefreshLongTerm recomputes the long-term summary, trend and engagement
// from the last 30 days and writes the row back. A user with no entries in
// the window is left untouched.
func (m *Manager) RefreshLongTerm(ctx context.Context, userID string) error {
	now := m.now()
	entries, err := m.store.Entries().ListSince(ctx, userID, now.Add(-LongTermWindow))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	um, err := m.store.Memories().Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		um, err = m.store.Memories().Create(ctx, userID)
	}
	if err != nil {
		return err
	}

	skillCount, err := m.store.Skills().CountCompletedSince(ctx, userID, now.Add(-LongTermWindow))
	if err != nil {
		return err
	}

	summary := Summarize(entries)
	um.LongTerm = summary
	um.TrendDirection = Trend(entries)
	um.EngagementScore = Engagement(len(entries), skillCount)

	if err := m.store.Memories().Update(ctx, um); err != nil {
		return err
	}
	m.log.Debug().
		Str("user_id", userID).
		Str("stage", string(summary.Stage)).
		Str("trend", string(um.TrendDirection)).
		Int("checkins", summary.TotalCheckins).
		Msg("long-term memory refreshed")
	return nil
}

// wellbeing reads an entry's WHO-5 normalized score, falling back to the
// legacy mood score scaled to the same 0-100 range.
func wellbeing(e *model.CheckinEntry) float64 {
	if e.WHO5Normalized > 0 {
		return float64(e.WHO5Normalized)
	}
	return float64(e.MoodScore * 10)
}

// Summarize derives the long-term summary from a window of entries, newest
// first. The stage looks at the most recent 5 entries only; the wellbeing
// average spans the whole window. Requires at least one entry.
func Summarize(entries []*model.CheckinEntry) model.LongTermSummary {
	var sum float64
	for _, e := range entries {
		sum += wellbeing(e)
	}

	last := entries[0].CreationTime
	return model.LongTermSummary{
		AvgWellbeing:  sum / float64(len(entries)),
		Stage:         classifyStage(entries),
		Consistency:   consistency(entries),
		TotalCheckins: len(entries),
		LastCheckin:   &last,
	}
}

func classifyStage(entries []*model.CheckinEntry) model.Stage {
	recent := entries
	if len(recent) > stageEntries {
		recent = recent[:stageEntries]
	}

	var phq2Sum, gad2Sum, who5Sum float64
	for _, e := range recent {
		phq2Sum += float64(e.PHQ2Total)
		gad2Sum += float64(e.GAD2Total)
		who5Sum += wellbeing(e)
	}
	n := float64(len(recent))
	avgPHQ2, avgGAD2, avgWHO5 := phq2Sum/n, gad2Sum/n, who5Sum/n

	switch {
	case avgPHQ2 >= 3 || avgGAD2 >= 3 || avgWHO5 < 28:
		return model.StageDistress
	case avgWHO5 < 50:
		return model.StageStruggling
	case avgWHO5 < 70:
		return model.StageStabilizing
	default:
		return model.StageThriving
	}
}

// consistency maps the average gap between check-ins to 0-100: daily
// check-ins score 100 and each extra day of average gap costs 20 points.
// A single entry carries no signal and scores 0.
func consistency(entries []*model.CheckinEntry) int {
	if len(entries) < 2 {
		return 0
	}
	newest := entries[0].CreationTime
	oldest := entries[len(entries)-1].CreationTime
	avgIntervalDays := newest.Sub(oldest).Hours() / 24 / float64(len(entries)-1)
	score := 100 - 20*(avgIntervalDays-1)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}

// Trend compares the most recent 7 entries against the oldest entries in the
// window. Fewer than 3 entries overall, or no entries left outside the
// recent window, is not enough signal.
func Trend(entries []*model.CheckinEntry) model.TrendDirection {
	n := len(entries)
	if n < minTrendEntries {
		return model.TrendInsufficient
	}

	recent := entries
	if n > trendWindow {
		recent = entries[:trendWindow]
	}
	olderN := n - trendWindow
	if olderN <= 0 {
		return model.TrendInsufficient
	}
	if olderN > trendWindow {
		olderN = trendWindow
	}
	older := entries[n-olderN:]

	change := avgWellbeing(recent) - avgWellbeing(older)
	switch {
	case change > trendThreshold:
		return model.TrendImproving
	case change < -trendThreshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func avgWellbeing(entries []*model.CheckinEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += wellbeing(e)
	}
	return sum / float64(len(entries))
}

// Engagement blends check-in frequency (up to 60 points) with skill
// completions (up to 40 points) over the long-term window.
func Engagement(checkins, skillsCompleted int) int {
	freq := 2 * checkins
	if freq > 60 {
		freq = 60
	}
	skills := 4 * skillsCompleted
	if skills > 40 {
		skills = 40
	}
	return freq + skills
}
