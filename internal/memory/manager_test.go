package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/empowher/empowher-server/internal/model"
)

func entryAt(daysAgo int, who5 int) *model.CheckinEntry {
	return &model.CheckinEntry{
		WHO5Normalized: who5,
		CreationTime:   time.Now().UTC().Add(-time.Duration(daysAgo) * 24 * time.Hour),
	}
}

func TestSummarize_StageThresholds(t *testing.T) {
	cases := []struct {
		name  string
		entry *model.CheckinEntry
		want  model.Stage
	}{
		{"high phq2 forces distress", &model.CheckinEntry{PHQ2Total: 4, WHO5Normalized: 80}, model.StageDistress},
		{"high gad2 forces distress", &model.CheckinEntry{GAD2Total: 3, WHO5Normalized: 80}, model.StageDistress},
		{"very low wellbeing is distress", &model.CheckinEntry{WHO5Normalized: 20}, model.StageDistress},
		{"low wellbeing is struggling", &model.CheckinEntry{WHO5Normalized: 40}, model.StageStruggling},
		{"middling wellbeing is stabilizing", &model.CheckinEntry{WHO5Normalized: 60}, model.StageStabilizing},
		{"high wellbeing is thriving", &model.CheckinEntry{WHO5Normalized: 85}, model.StageThriving},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.entry.CreationTime = time.Now().UTC()
			got := Summarize([]*model.CheckinEntry{tc.entry})
			assert.Equal(t, tc.want, got.Stage)
		})
	}
}

func TestSummarize_StageUsesLastFiveEntries(t *testing.T) {
	// Five recent thriving entries bury older distress ones.
	entries := []*model.CheckinEntry{
		entryAt(0, 85), entryAt(1, 85), entryAt(2, 85), entryAt(3, 85), entryAt(4, 85),
		entryAt(5, 10), entryAt(6, 10),
	}
	assert.Equal(t, model.StageThriving, Summarize(entries).Stage)
}

func TestSummarize_LegacyMoodFallback(t *testing.T) {
	// No WHO-5 answers recorded; mood scales to the 0-100 range.
	e := &model.CheckinEntry{MoodScore: 8, CreationTime: time.Now().UTC()}
	got := Summarize([]*model.CheckinEntry{e})
	assert.InDelta(t, 80.0, got.AvgWellbeing, 1e-9)
	assert.Equal(t, model.StageThriving, got.Stage)
}

func TestSummarize_Averages(t *testing.T) {
	entries := []*model.CheckinEntry{entryAt(0, 80), entryAt(1, 60), entryAt(2, 70)}
	got := Summarize(entries)
	assert.InDelta(t, 70.0, got.AvgWellbeing, 1e-9)
	assert.Equal(t, 3, got.TotalCheckins)
	assert.Equal(t, entries[0].CreationTime, *got.LastCheckin)
}

func TestConsistency(t *testing.T) {
	// Daily check-ins score 100.
	daily := []*model.CheckinEntry{entryAt(0, 50), entryAt(1, 50), entryAt(2, 50)}
	assert.Equal(t, 100, Summarize(daily).Consistency)

	// Every three days: avg interval 3 days, 100 - 20*2 = 60.
	sparse := []*model.CheckinEntry{entryAt(0, 50), entryAt(3, 50), entryAt(6, 50)}
	assert.Equal(t, 60, Summarize(sparse).Consistency)

	// A single check-in carries no regularity signal.
	assert.Equal(t, 0, Summarize([]*model.CheckinEntry{entryAt(0, 50)}).Consistency)

	// Very sparse bottoms out at zero.
	rare := []*model.CheckinEntry{entryAt(0, 50), entryAt(14, 50)}
	assert.Equal(t, 0, Summarize(rare).Consistency)
}

func TestTrend(t *testing.T) {
	t.Run("too few entries", func(t *testing.T) {
		assert.Equal(t, model.TrendInsufficient,
			Trend([]*model.CheckinEntry{entryAt(0, 50), entryAt(1, 50)}))
	})

	t.Run("no older window to compare", func(t *testing.T) {
		entries := []*model.CheckinEntry{
			entryAt(0, 50), entryAt(1, 55), entryAt(2, 60), entryAt(3, 60),
		}
		assert.Equal(t, model.TrendInsufficient, Trend(entries))
	})

	t.Run("improving", func(t *testing.T) {
		entries := []*model.CheckinEntry{
			entryAt(0, 70), entryAt(1, 70), entryAt(2, 68), entryAt(3, 70),
			entryAt(4, 70), entryAt(5, 70), entryAt(6, 70),
			entryAt(9, 50), entryAt(11, 52),
		}
		assert.Equal(t, model.TrendImproving, Trend(entries))
	})

	t.Run("declining", func(t *testing.T) {
		entries := []*model.CheckinEntry{
			entryAt(0, 40), entryAt(1, 42), entryAt(2, 40), entryAt(3, 40),
			entryAt(4, 40), entryAt(5, 40), entryAt(6, 40),
			entryAt(9, 60), entryAt(11, 58),
		}
		assert.Equal(t, model.TrendDeclining, Trend(entries))
	})

	t.Run("stable within threshold", func(t *testing.T) {
		entries := []*model.CheckinEntry{
			entryAt(0, 52), entryAt(1, 50), entryAt(2, 50), entryAt(3, 50),
			entryAt(4, 50), entryAt(5, 50), entryAt(6, 50),
			entryAt(9, 50), entryAt(11, 50),
		}
		assert.Equal(t, model.TrendStable, Trend(entries))
	})
}

func TestEngagement(t *testing.T) {
	assert.Equal(t, 0, Engagement(0, 0))
	assert.Equal(t, 2*5+4*3, Engagement(5, 3))
	// Both components cap.
	assert.Equal(t, 100, Engagement(40, 20))
}
