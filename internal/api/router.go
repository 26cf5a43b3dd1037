package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the endpoints. Method checks on the submission routes live
// in the handlers because each endpoint answers a wrong method differently.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, Logging)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/submit-location", h.SubmitLocation)
	api.HandleFunc("/save-location", h.SaveLocation)
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
