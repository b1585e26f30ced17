package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
)

func NewRouter(properties *PropertyHandler, contact *ContactHandler, metrics HTTPMetrics, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Observe(log, metrics))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/properties", func(r chi.Router) {
		r.Get("/", properties.HandleSearch)
		r.Post("/", properties.HandleCreate)
		r.Get("/{id}", properties.HandleGet)
		r.Put("/{id}", properties.HandleUpdate)
		r.Delete("/{id}", properties.HandleDelete)
	})
	r.Post("/api/contact", contact.HandleSubmit)

	return r
}
