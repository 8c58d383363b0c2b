// Package api wires the HTTP surface: routing, request validation and JSON
// responses. All domain work is delegated to the orchestrator, memory
// manager and reflection recorder.
package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/api/recovery"
	"github.com/empowher/empowher-server/internal/insight"
	"github.com/empowher/empowher-server/internal/journal"
	"github.com/empowher/empowher-server/internal/orchestrator"
	"github.com/empowher/empowher-server/internal/reflection"
	"github.com/empowher/empowher-server/internal/store"
)

// RouterDeps carries everything the router needs. isHealthy may be nil.
type RouterDeps struct {
	Store     store.Store
	Provider  insight.Provider
	Cipher    *journal.Cipher
	IsHealthy func() bool
	Log       zerolog.Logger
}

// NewRouter builds the full route table.
func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	orch := orchestrator.New(deps.Store, deps.Provider, deps.Cipher, deps.Log)
	recorder := reflection.NewRecorder(deps.Store, deps.Log)

	checkin := NewCheckinHandler(orch, recorder, deps.Log)
	memory := NewMemoryHandler(orch.Memory(), deps.Store, recorder, deps.Log)
	catalog := NewCatalogHandler(deps.Store, deps.Log)
	health := NewHealthHandler(deps.IsHealthy)

	router.HandleFunc("/v0/users/{userId}/checkins", checkin.SubmitCheckin).Methods("POST")
	router.HandleFunc("/v0/users/{userId}/outcomes", checkin.RecordOutcome).Methods("POST")
	router.HandleFunc("/v0/users/{userId}/memory", memory.GetMemory).Methods("GET")
	router.HandleFunc("/v0/users/{userId}/decisions", memory.ListDecisions).Methods("GET")
	router.HandleFunc("/v0/users/{userId}/analytics/interventions", memory.GetInterventionAnalytics).Methods("GET")

	router.HandleFunc("/v0/instruments", catalog.GetInstruments).Methods("GET")
	router.HandleFunc("/v0/crisis/resources", catalog.GetCrisisResources).Methods("GET")
	router.HandleFunc("/v0/health", health.CheckHealth).Methods("GET")

	return router
}
