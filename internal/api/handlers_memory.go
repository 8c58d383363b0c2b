package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/api/respond"
	"github.com/empowher/empowher-server/internal/api/validate"
	"github.com/empowher/empowher-server/internal/memory"
	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/reflection"
	"github.com/empowher/empowher-server/internal/store"
)

const (
	defaultDecisionLimit = 20
	maxDecisionLimit     = 100
)

// MemoryHandler serves the per-user read paths: memory snapshot, decision
// history and outcome analytics.
type MemoryHandler struct {
	memory   *memory.Manager
	store    store.Store
	recorder *reflection.Recorder
	log      zerolog.Logger
}

// NewMemoryHandler builds the handler.
func NewMemoryHandler(m *memory.Manager, s store.Store, rec *reflection.Recorder, log zerolog.Logger) *MemoryHandler {
	return &MemoryHandler{memory: m, store: s, recorder: rec, log: log}
}

// GetMemory GET /v0/users/{userId}/memory
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	mem, err := h.memory.Load(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("memory load failed")
		respond.WriteInternalError(w, "failed to load memory")
		return
	}
	respond.WriteJSON(w, http.StatusOK, mem)
}

// ListDecisions GET /v0/users/{userId}/decisions?limit=&offset=
func (h *MemoryHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	limit := defaultDecisionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respond.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		if n > maxDecisionLimit {
			n = maxDecisionLimit
		}
		limit = n
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respond.WriteBadRequest(w, "offset must be a non-negative integer")
			return
		}
		offset = n
	}

	out, err := h.store.Decisions().List(r.Context(), userID, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("decision list failed")
		respond.WriteInternalError(w, "failed to list decisions")
		return
	}
	if out == nil {
		out = []*model.AgentDecision{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"decisions": out, "count": len(out)})
}

// GetInterventionAnalytics GET /v0/users/{userId}/analytics/interventions
func (h *MemoryHandler) GetInterventionAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.recorder.Analytics(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("analytics query failed")
		respond.WriteInternalError(w, "failed to load analytics")
		return
	}
	if out == nil {
		out = []*model.OutcomeAnalytics{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"analytics": out, "count": len(out)})
}
