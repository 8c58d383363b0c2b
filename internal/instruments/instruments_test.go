package instruments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/empowher/empowher-server/internal/model"
)

func intp(v int) *int { return &v }

func TestScoreWHO5_Bounds(t *testing.T) {
	full := ScoreWHO5(&model.CheckinSubmission{Who5Q1: intp(5), Who5Q2: intp(5), Who5Q3: intp(5)})
	assert.Equal(t, 15, full.Raw)
	assert.Equal(t, 100, full.Normalized)

	zero := ScoreWHO5(&model.CheckinSubmission{Who5Q1: intp(0), Who5Q2: intp(0), Who5Q3: intp(0)})
	assert.Equal(t, 0, zero.Raw)
	assert.Equal(t, 0, zero.Normalized)
}

func TestScorePHQ2_MissingAnswersScoreZero(t *testing.T) {
	got := ScorePHQ2(&model.CheckinSubmission{Phq2Q1: intp(3)})
	assert.Equal(t, 3, got.Total)
	assert.True(t, got.RiskFlag)

	none := ScorePHQ2(&model.CheckinSubmission{})
	assert.Equal(t, 0, none.Total)
	assert.False(t, none.RiskFlag)
}

func TestClassifyTier_VeryLowWellbeingIsRedRegardlessOfScreens(t *testing.T) {
	// who5 normalized 20 forces red even with clean PHQ-2/GAD-2.
	scores := Score(&model.CheckinSubmission{Who5Q1: intp(1), Who5Q2: intp(1), Who5Q3: intp(1)})
	assert.Equal(t, 20, scores.WHO5.Normalized)
	assert.Equal(t, model.TierRed, ClassifyTier(scores))
}

func TestClassifyTier_ThresholdOrdering(t *testing.T) {
	cases := []struct {
		name string
		sub  model.CheckinSubmission
		want model.Tier
	}{
		{
			name: "distress scenario is red",
			sub: model.CheckinSubmission{
				Phq2Q1: intp(3), Phq2Q2: intp(3),
				Gad2Q1: intp(3), Gad2Q2: intp(3),
				Who5Q1: intp(0), Who5Q2: intp(0), Who5Q3: intp(0),
			},
			want: model.TierRed,
		},
		{
			name: "one positive screen with low wellbeing is orange",
			sub: model.CheckinSubmission{
				Phq2Q1: intp(2), Phq2Q2: intp(1),
				Who5Q1: intp(2), Who5Q2: intp(2), Who5Q3: intp(2), // normalized 40
			},
			want: model.TierOrange,
		},
		{
			name: "one positive screen with ok wellbeing is yellow",
			sub: model.CheckinSubmission{
				Gad2Q1: intp(2), Gad2Q2: intp(1),
				Who5Q1: intp(4), Who5Q2: intp(4), Who5Q3: intp(4), // normalized 80
			},
			want: model.TierYellow,
		},
		{
			name: "moderate wellbeing alone is yellow",
			sub: model.CheckinSubmission{
				Who5Q1: intp(3), Who5Q2: intp(3), Who5Q3: intp(3), // normalized 60
			},
			want: model.TierYellow,
		},
		{
			name: "thriving scenario is green",
			sub: model.CheckinSubmission{
				Phq2Q1: intp(0), Phq2Q2: intp(0),
				Gad2Q1: intp(0), Gad2Q2: intp(0),
				Who5Q1: intp(5), Who5Q2: intp(5), Who5Q3: intp(5),
			},
			want: model.TierGreen,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyTier(Score(&tc.sub))
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got.Severity(), 0)
		})
	}
}

func TestClassifyTier_MonotonicOverAllInputs(t *testing.T) {
	// Exhaustive sweep over the instrument domain: the classifier must always
	// return a known tier and must honor the red condition wherever it holds.
	for p := 0; p <= 6; p++ {
		for g := 0; g <= 6; g++ {
			for w := 0; w <= 15; w++ {
				scores := model.InstrumentScores{
					PHQ2: model.PHQ2Score{Total: p, RiskFlag: p >= PHQ2RiskCutoff},
					GAD2: model.GAD2Score{Total: g, RiskFlag: g >= GAD2RiskCutoff},
					WHO5: model.WHO5Score{Raw: w, Normalized: w * 100 / 15},
				}
				tier := ClassifyTier(scores)
				assert.GreaterOrEqual(t, tier.Severity(), 0, "unknown tier for p=%d g=%d w=%d", p, g, w)
				if (p >= 5 && g >= 5) || scores.WHO5.Normalized < 30 {
					assert.Equal(t, model.TierRed, tier)
				}
			}
		}
	}
}

func TestAssessRisk_ProbabilityWeights(t *testing.T) {
	all := AssessRisk(model.InstrumentScores{
		PHQ2: model.PHQ2Score{Total: 4, RiskFlag: true},
		GAD2: model.GAD2Score{Total: 4, RiskFlag: true},
		WHO5: model.WHO5Score{Normalized: 20},
	})
	assert.True(t, all.AnyRisk)
	assert.InDelta(t, 1.0, all.RiskProbability, 1e-9)

	none := AssessRisk(model.InstrumentScores{WHO5: model.WHO5Score{Normalized: 80}})
	assert.False(t, none.AnyRisk)
	assert.Zero(t, none.RiskProbability)
}

func TestTierExplanation_CoversAllTiers(t *testing.T) {
	for _, tier := range []model.Tier{model.TierGreen, model.TierYellow, model.TierOrange, model.TierRed} {
		assert.NotEmpty(t, TierExplanation(tier))
	}
}
