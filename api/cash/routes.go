package cash

import (
	"TreasuryDash/api"

	"github.com/gorilla/mux"
)

// NewRouter mounts the cash-flow endpoints under /cash. CORS wraps the
// router in the service so preflight requests never reach route matching.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(api.RequestLogger)

	r := router.PathPrefix("/cash").Subrouter()
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/projection", h.Projection).Methods("GET")
	r.HandleFunc("/summary", h.Summary).Methods("GET")
	r.HandleFunc("/aging", h.Aging).Methods("GET")
	r.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	r.HandleFunc("/config", h.GetConfig).Methods("GET")
	r.HandleFunc("/config", h.PutConfig).Methods("PUT")
	r.HandleFunc("/alerts", h.Alerts).Methods("GET")
	r.HandleFunc("/alerts", h.ClearAlerts).Methods("DELETE")
	r.HandleFunc("/export.xlsx", h.Export).Methods("GET")
	r.HandleFunc("/events", h.Events).Methods("GET")

	return router
}
