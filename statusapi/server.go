// Package statusapi exposes a read-only HTTP surface over the running
// fleet of vehicle engines, for operators and integration tests that
// want the current State/Connection without subscribing to MQTT.
package statusapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"vda5050-simulator/engine"
)

// Registry tracks the engines the supervisor has spawned, keyed by
// serial number, so the HTTP handlers can snapshot them on demand.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]*engine.Engine)}
}

// Register adds engine e under its own serial number. e's own methods
// are already safe for concurrent use by the adapter and the status
// API, so Register takes no further locking responsibility.
func (reg *Registry) Register(e *engine.Engine) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.engines[e.Identity().SerialNumber] = e
}

// Get returns the engine registered under serialNumber, if any.
func (reg *Registry) Get(serialNumber string) (*engine.Engine, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	e, ok := reg.engines[serialNumber]
	return e, ok
}

func (reg *Registry) serialNumbers() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.engines))
	for name := range reg.engines {
		names = append(names, name)
	}
	return names
}

// Handler is the API's HTTP handler; NewServer wraps it in an
// http.Server for main to run and shut down.
type Handler struct {
	registry *Registry
	log      *logrus.Entry
}

// NewHandler builds a Handler over registry.
func NewHandler(registry *Registry, log *logrus.Entry) *Handler {
	return &Handler{registry: registry, log: log}
}

// Router builds the gorilla/mux router for the status API.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api.HandleFunc("/robots", h.GetRobots).Methods("GET")
	api.HandleFunc("/robots/{serialNumber}/state", h.GetRobotState).Methods("GET")
	api.HandleFunc("/robots/{serialNumber}/connection", h.GetRobotConnection).Methods("GET")

	return router
}

// HealthCheck reports that the status API is serving.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"status":    "healthy",
		"service":   "vda5050-simulator",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetRobots lists the serial numbers of every spawned vehicle.
func (h *Handler) GetRobots(w http.ResponseWriter, r *http.Request) {
	robots := h.registry.serialNumbers()
	h.writeSuccess(w, map[string]interface{}{
		"robots": robots,
		"count":  len(robots),
	})
}

// GetRobotState returns the current State payload for one robot,
// without bumping its header id.
func (h *Handler) GetRobotState(w http.ResponseWriter, r *http.Request) {
	serialNumber := mux.Vars(r)["serialNumber"]
	e, ok := h.registry.Get(serialNumber)
	if !ok {
		h.writeError(w, "unknown serial number", http.StatusNotFound)
		return
	}
	h.writeSuccess(w, e.PeekState())
}

// GetRobotConnection returns the current Connection payload for one
// robot, without bumping its header id.
func (h *Handler) GetRobotConnection(w http.ResponseWriter, r *http.Request) {
	serialNumber := mux.Vars(r)["serialNumber"]
	e, ok := h.registry.Get(serialNumber)
	if !ok {
		h.writeError(w, "unknown serial number", http.StatusNotFound)
		return
	}
	h.writeSuccess(w, e.InitialConnection())
}

func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Errorf("failed to encode status API response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// NewServer wraps handler's router in an http.Server listening on addr.
func NewServer(addr string, handler *Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
