// Package instruments implements the validated screening instruments the
// pipeline is grounded on: PHQ-2 (depression), GAD-2 (anxiety) and the
// 3-item WHO-5 wellbeing index, plus the tier classification derived from
// them. All functions are pure.
package instruments

import (
	"math"

	"github.com/empowher/empowher-server/internal/model"
)

// Clinical cutoffs. PHQ-2 and GAD-2 totals at or above 3 flag risk; a WHO-5
// normalized score below 30 marks very low wellbeing.
const (
	PHQ2RiskCutoff = 3
	GAD2RiskCutoff = 3

	who5RawMax = 15
)

func itemOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// ScorePHQ2 computes the 2-item depression screen from a submission.
// Missing answers count as 0.
func ScorePHQ2(s *model.CheckinSubmission) model.PHQ2Score {
	q1 := itemOrZero(s.Phq2Q1)
	q2 := itemOrZero(s.Phq2Q2)
	total := q1 + q2
	return model.PHQ2Score{Q1: q1, Q2: q2, Total: total, RiskFlag: total >= PHQ2RiskCutoff}
}

// ScoreGAD2 computes the 2-item anxiety screen from a submission.
func ScoreGAD2(s *model.CheckinSubmission) model.GAD2Score {
	q1 := itemOrZero(s.Gad2Q1)
	q2 := itemOrZero(s.Gad2Q2)
	total := q1 + q2
	return model.GAD2Score{Q1: q1, Q2: q2, Total: total, RiskFlag: total >= GAD2RiskCutoff}
}

// ScoreWHO5 computes the 3-item wellbeing index. Raw range is 0-15,
// normalized to 0-100 via round(raw*100/15).
func ScoreWHO5(s *model.CheckinSubmission) model.WHO5Score {
	q1 := itemOrZero(s.Who5Q1)
	q2 := itemOrZero(s.Who5Q2)
	q3 := itemOrZero(s.Who5Q3)
	raw := q1 + q2 + q3
	normalized := int(math.Round(float64(raw) * 100 / who5RawMax))
	return model.WHO5Score{Q1: q1, Q2: q2, Q3: q3, Raw: raw, Normalized: normalized}
}

// Score computes all three instruments for one submission.
func Score(s *model.CheckinSubmission) model.InstrumentScores {
	return model.InstrumentScores{
		PHQ2: ScorePHQ2(s),
		GAD2: ScoreGAD2(s),
		WHO5: ScoreWHO5(s),
	}
}

// AssessRisk computes the composite risk view. The probability weights are
// 0.4 for each positive screen and 0.2 for low wellbeing, capped at 1.0.
func AssessRisk(scores model.InstrumentScores) model.RiskAssessment {
	depression := scores.PHQ2.RiskFlag
	anxiety := scores.GAD2.RiskFlag
	lowWellbeing := scores.WHO5.Normalized < 50

	p := 0.0
	if depression {
		p += 0.4
	}
	if anxiety {
		p += 0.4
	}
	if lowWellbeing {
		p += 0.2
	}
	if p > 1.0 {
		p = 1.0
	}

	return model.RiskAssessment{
		DepressionRisk:  depression,
		AnxietyRisk:     anxiety,
		LowWellbeing:    lowWellbeing,
		RiskProbability: p,
		AnyRisk:         depression || anxiety || lowWellbeing,
	}
}

// ClassifyTier maps instrument scores to the four-level tier. Conditions are
// evaluated red, orange, yellow, green; the first match wins, so severity is
// monotonic and never downgraded once a higher condition holds.
func ClassifyTier(scores model.InstrumentScores) model.Tier {
	phq2, gad2, who5 := scores.PHQ2, scores.GAD2, scores.WHO5

	// Red: both screens strongly positive, or very low wellbeing.
	if (phq2.Total >= 5 && gad2.Total >= 5) || who5.Normalized < 30 {
		return model.TierRed
	}

	// Orange: one positive screen combined with low wellbeing.
	if (phq2.RiskFlag || gad2.RiskFlag) && who5.Normalized < 50 {
		return model.TierOrange
	}

	// Yellow: one positive screen, or only moderate wellbeing.
	if phq2.RiskFlag || gad2.RiskFlag || who5.Normalized < 70 {
		return model.TierYellow
	}

	return model.TierGreen
}

// TierExplanation returns the fixed non-clinical explanation for a tier.
func TierExplanation(tier model.Tier) string {
	switch tier {
	case model.TierRed:
		return "You're going through a very difficult time right now. It's okay to feel this way, and you don't have to face it alone. Let's take small steps together to help you feel better."
	case model.TierOrange:
		return "Things have been challenging lately. You might be feeling very low or very worried. Let's work on some simple activities that can help you feel a bit better each day."
	case model.TierYellow:
		return "You're doing okay, but there's room to feel even better. Let's focus on small positive steps to boost your mood and energy."
	case model.TierGreen:
		return "You're doing well! This is a great time to learn new things and work on your goals. Keep up the good work!"
	}
	return TierExplanation(model.TierYellow)
}
