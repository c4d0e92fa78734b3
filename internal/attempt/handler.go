package attempt

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evalhub/evalhub/internal/config"
	"github.com/evalhub/evalhub/internal/evaluation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) StartOrResume(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	evaluationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid evaluation id", http.StatusBadRequest)
		return
	}

	resp, err := h.service.StartOrResume(r.Context(), evaluationID)
	if err != nil {
		if denied, ok := AsAdmissionDenied(err); ok {
			config.JSON(w, http.StatusForbidden, map[string]string{"reason": string(denied.Reason)})
			return
		}
		switch {
		case errors.Is(err, ErrUnauthorized):
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		case errors.Is(err, evaluation.ErrNotFound):
			http.Error(w, "evaluation not found", http.StatusNotFound)
		default:
			log.WithError(err).Error("Failed to start attempt")
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	status := http.StatusCreated
	if resp.Resumed {
		status = http.StatusOK
	}
	config.JSON(w, status, resp)
}

func (h *Handler) SaveAnswers(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	attemptID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid attempt id", http.StatusBadRequest)
		return
	}

	var req SaveAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.SaveAnswers(r.Context(), attemptID, req.Answers)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to save answers")
		return
	}

	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) RecordViolation(w http.ResponseWriter, r *http.Request) {
	attemptID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid attempt id", http.StatusBadRequest)
		return
	}

	resp, err := h.service.RecordViolation(r.Context(), attemptID)
	if err != nil {
		if errors.Is(err, ErrThresholdExceeded) {
			// The cap is already reached: the new violation is rejected and
			// the client is expected to submit immediately.
			config.JSON(w, http.StatusConflict, resp)
			return
		}
		h.writeServiceError(w, r, err, "Failed to record violation")
		return
	}

	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	attemptID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid attempt id", http.StatusBadRequest)
		return
	}

	var req SubmitRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.WithError(err).Error("Invalid request body")
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	resp, err := h.service.Submit(r.Context(), attemptID, req.Answers, req.Auto)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to submit attempt")
		return
	}

	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	attemptID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid attempt id", http.StatusBadRequest)
		return
	}

	detail, err := h.service.Get(r.Context(), attemptID)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to get attempt")
		return
	}

	config.JSON(w, http.StatusOK, detail)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.ListMine(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to list attempts")
		return
	}

	config.JSON(w, http.StatusOK, attempts)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	log := config.WithContext(r.Context())

	switch {
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "attempt not found", http.StatusNotFound)
	case errors.Is(err, evaluation.ErrNotFound):
		http.Error(w, "evaluation not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadySubmitted):
		config.JSON(w, http.StatusConflict, map[string]string{"error": "attempt already submitted"})
	default:
		log.WithError(err).Error(logMsg)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
