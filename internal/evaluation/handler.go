package evaluation

import (
	"errors"
	"net/http"

	"github.com/evalhub/evalhub/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	evals, err := h.service.ListActive(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list evaluations")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, evals)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid evaluation id", http.StatusBadRequest)
		return
	}

	// The view strips answer keys, so the question set is safe to hand out
	// before an attempt starts. Order is shuffled here when the evaluation
	// asks for it.
	view, err := h.service.GetView(r.Context(), id, true)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "evaluation not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to get evaluation")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, view)
}
