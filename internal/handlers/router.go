package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/packlane/wmsgo/internal/buildinfo"
	"github.com/packlane/wmsgo/internal/config"
	"github.com/packlane/wmsgo/internal/database"
	"github.com/packlane/wmsgo/internal/middleware"
	"github.com/packlane/wmsgo/internal/services/sellus"
	"github.com/packlane/wmsgo/internal/store"
	"github.com/packlane/wmsgo/internal/vision"
)

// Router wraps the mux router and the engine's dependencies
type Router struct {
	*mux.Router
	db        *database.DB
	cfg       *config.Config
	engine    *sellus.Engine
	notes     *store.DeliveryNoteRepo
	extractor vision.Extractor
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, engine *sellus.Engine, notes *store.DeliveryNoteRepo, extractor vision.Extractor) *Router {
	r := &Router{
		Router:    mux.NewRouter(),
		db:        db,
		cfg:       cfg,
		engine:    engine,
		notes:     notes,
		extractor: extractor,
	}

	// Scanners in keyboard-wedge mode tend to upper-case typed URLs
	r.Use(middleware.CaseInsensitiveMiddleware)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")

	// Trigger surface (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	api.HandleFunc("/sync/stock/{productId}", r.syncProductStock).Methods("POST")
	api.HandleFunc("/sync/retry", r.retryFailedSyncs).Methods("POST")
	api.HandleFunc("/sync/resolve", r.resolveAllPendingIDs).Methods("POST")
	api.HandleFunc("/delivery-items/{id}/check", r.checkOffDeliveryItem).Methods("POST")

	api.HandleFunc("/delivery-notes", r.createDeliveryNote).Methods("POST")
	api.HandleFunc("/delivery-notes", r.listDeliveryNotes).Methods("GET")
	api.HandleFunc("/delivery-notes/{id}", r.getDeliveryNote).Methods("GET")
	api.HandleFunc("/delivery-notes/{id}/labels", r.deliveryNoteLabels).Methods("GET")

	api.HandleFunc("/scan", r.scanLabel).Methods("POST")
	api.HandleFunc("/locations", r.listLocations).Methods("GET")
	api.HandleFunc("/locations/{id}/stock", r.locationStock).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"commit":     buildinfo.CommitHash,
		"build_time": buildinfo.BuildTime,
		"start_time": buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
