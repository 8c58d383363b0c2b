// Package validate holds request-level validation for the API. Validation
// failures are user errors; anything passing here is safe to hand to the
// pipeline.
package validate

import (
	"fmt"
	"regexp"

	"github.com/empowher/empowher-server/internal/model"
)

// UserID must be letters, digits, underscore or hyphen, 1-64 chars. UUIDs
// and short handles both fit.
var userIDRx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

const maxJournalBytes = 5000

var levels = map[string]bool{"low": true, "medium": true, "high": true}

// UserID validates a {userId} path segment.
func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIDRx.MatchString(v) {
		return fmt.Errorf("userId must match %s", userIDRx.String())
	}
	return nil
}

func item(field string, v *int, min, max int) error {
	if v == nil {
		return nil
	}
	if *v < min || *v > max {
		return fmt.Errorf("%s must be between %d and %d", field, min, max)
	}
	return nil
}

// CheckinSubmission validates a check-in payload: instrument answers within
// their scales, legacy fields within range, and at least one of the two
// shapes present.
func CheckinSubmission(s *model.CheckinSubmission) error {
	if !s.HasInstruments() && !s.HasLegacyFields() {
		return fmt.Errorf("submission requires instrument answers or a mood_score")
	}

	for _, check := range []struct {
		field string
		v     *int
		max   int
	}{
		{"phq2_q1", s.Phq2Q1, 3},
		{"phq2_q2", s.Phq2Q2, 3},
		{"gad2_q1", s.Gad2Q1, 3},
		{"gad2_q2", s.Gad2Q2, 3},
		{"who5_q1", s.Who5Q1, 5},
		{"who5_q2", s.Who5Q2, 5},
		{"who5_q3", s.Who5Q3, 5},
	} {
		if err := item(check.field, check.v, 0, check.max); err != nil {
			return err
		}
	}

	if s.MoodScore != nil && (*s.MoodScore < 1 || *s.MoodScore > 10) {
		return fmt.Errorf("mood_score must be between 1 and 10")
	}
	if s.EnergyLevel != "" && !levels[s.EnergyLevel] {
		return fmt.Errorf("energy_level must be low, medium or high")
	}
	if s.StressLevel != "" && !levels[s.StressLevel] {
		return fmt.Errorf("stress_level must be low, medium or high")
	}
	if len(s.Journal) > maxJournalBytes {
		return fmt.Errorf("journal exceeds %d bytes", maxJournalBytes)
	}
	return nil
}

// Outcome validates an outcome payload.
func Outcome(decisionID, action string, rating *int) error {
	if decisionID == "" {
		return fmt.Errorf("decisionId is required")
	}
	if action == "" {
		return fmt.Errorf("action is required")
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}
