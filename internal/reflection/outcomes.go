// Package reflection closes the loop between interventions and results:
// it records user feedback on past decisions and adjusts the originating
// agent's confidence from the rating.
package reflection

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
)

// Recorder persists intervention outcomes. This write path is fully
// independent of the check-in pipeline and never blocks it.
type Recorder struct {
	store store.Store
	log   zerolog.Logger
}

// NewRecorder builds a Recorder.
func NewRecorder(s store.Store, log zerolog.Logger) *Recorder {
	return &Recorder{store: s, log: log}
}

// OutcomeRequest is the feedback payload for one past intervention.
type OutcomeRequest struct {
	DecisionID            string `json:"decisionId"`
	Action                string `json:"action"`
	Completed             bool   `json:"completed"`
	Rating                *int   `json:"rating,omitempty"`
	TimeToCompleteMinutes *int   `json:"timeToComplete,omitempty"`
}

// Record persists the outcome against the originating decision and, when a
// rating is present, logs a confidence adjustment for the agent that made
// the decision.
func (r *Recorder) Record(ctx context.Context, userID string, req *OutcomeRequest) (*model.InterventionOutcome, error) {
	dec, err := r.store.Decisions().Get(ctx, req.DecisionID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve decision")
	}
	if dec.UserID != userID {
		return nil, errors.Wrap(model.ErrNotFound, "decision belongs to a different user")
	}

	outcome := &model.InterventionOutcome{
		UserID:     userID,
		DecisionID: req.DecisionID,
		Action:     req.Action,
		Completed:  req.Completed,
		Rating:     req.Rating,
	}
	if req.Completed {
		now := time.Now().UTC()
		outcome.CompletionTime = &now
	}
	if req.TimeToCompleteMinutes != nil {
		outcome.TimeToCompleteMinutes = req.TimeToCompleteMinutes
	}

	created, err := r.store.Outcomes().Create(ctx, outcome)
	if err != nil {
		return nil, errors.Wrap(err, "persist outcome")
	}

	if req.Rating != nil {
		if err := r.adjustConfidence(ctx, dec, *req.Rating); err != nil {
			// The outcome row is committed; a lost adjustment only weakens
			// future ranking, it does not fail the request.
			r.log.Error().Err(err).Str("decision_id", dec.DecisionID).Msg("confidence adjustment failed")
		}
	}
	return created, nil
}

// adjustConfidence applies (rating-3)*0.05 to the decision's confidence,
// clamped to [0,1], and records the adjustment for the agent.
func (r *Recorder) adjustConfidence(ctx context.Context, dec *model.AgentDecision, rating int) error {
	adjusted := Adjust(dec.Confidence, rating)
	return r.store.Outcomes().RecordAdjustment(ctx, &model.ConfidenceAdjustment{
		AgentName:          dec.AgentName,
		OriginalConfidence: dec.Confidence,
		AdjustedConfidence: adjusted,
		Reason:             fmt.Sprintf("user rated outcome %d/5", rating),
	})
}

// Adjust maps a 1-5 rating to a confidence delta of (rating-3)*0.05 and
// clamps the result to [0,1]. A neutral 3 leaves confidence unchanged.
func Adjust(confidence float64, rating int) float64 {
	adjusted := confidence + float64(rating-3)*0.05
	if adjusted < 0 {
		return 0
	}
	if adjusted > 1 {
		return 1
	}
	return adjusted
}

// Analytics returns per-action aggregates for the user's outcome history.
func (r *Recorder) Analytics(ctx context.Context, userID string) ([]*model.OutcomeAnalytics, error) {
	out, err := r.store.Outcomes().Analytics(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load outcome analytics")
	}
	return out, nil
}
