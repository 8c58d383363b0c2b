package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/agents"
	"github.com/empowher/empowher-server/internal/api/respond"
	"github.com/empowher/empowher-server/internal/instruments"
	"github.com/empowher/empowher-server/internal/store"
)

// CatalogHandler serves the static-ish reference data: instrument questions
// and crisis resources.
type CatalogHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewCatalogHandler builds the handler.
func NewCatalogHandler(s store.Store, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{store: s, log: log}
}

// GetInstruments GET /v0/instruments
func (h *CatalogHandler) GetInstruments(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, instruments.Questions())
}

// GetCrisisResources GET /v0/crisis/resources
//
// Helplines degrade to the built-in defaults; this endpoint must never fail
// for a user looking for help.
func (h *CatalogHandler) GetCrisisResources(w http.ResponseWriter, r *http.Request) {
	helplines, err := h.store.Helplines().ListActive(r.Context())
	if err != nil || len(helplines) == 0 {
		if err != nil {
			h.log.Error().Err(err).Msg("helpline query failed, serving defaults")
		}
		helplines = agents.DefaultHelplines()
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"supportMessage": agents.SupportMessage(),
		"helplines":      helplines,
	})
}
