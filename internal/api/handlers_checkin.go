package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/api/respond"
	"github.com/empowher/empowher-server/internal/api/validate"
	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/orchestrator"
	"github.com/empowher/empowher-server/internal/reflection"
)

// CheckinHandler serves the check-in and outcome write paths.
type CheckinHandler struct {
	orch     *orchestrator.Orchestrator
	recorder *reflection.Recorder
	log      zerolog.Logger
}

// NewCheckinHandler builds the handler.
func NewCheckinHandler(orch *orchestrator.Orchestrator, rec *reflection.Recorder, log zerolog.Logger) *CheckinHandler {
	return &CheckinHandler{orch: orch, recorder: rec, log: log}
}

// SubmitCheckin POST /v0/users/{userId}/checkins
func (h *CheckinHandler) SubmitCheckin(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	var sub model.CheckinSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CheckinSubmission(&sub); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.orch.ProcessCheckin(r.Context(), userID, &sub)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("check-in processing failed")
		respond.WriteInternalError(w, "failed to process check-in")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, resp)
}

// RecordOutcome POST /v0/users/{userId}/outcomes
func (h *CheckinHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	var req reflection.OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Outcome(req.DecisionID, req.Action, req.Rating); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	outcome, err := h.recorder.Record(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "decision not found")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("outcome recording failed")
		respond.WriteInternalError(w, "failed to record outcome")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, outcome)
}
