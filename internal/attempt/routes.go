package attempt

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListMine)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/answers", h.SaveAnswers)
	r.Post("/{id}/violations", h.RecordViolation)
	r.Post("/{id}/submit", h.Submit)

	return r
}
