package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tutorme-app/tutorme/services/booking-service/internal/model"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/store"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/tutors"
)

type TutorHandler struct {
	tutors *tutors.Service
	logger *slog.Logger
}

func NewTutorHandler(tutorSvc *tutors.Service, logger *slog.Logger) *TutorHandler {
	return &TutorHandler{tutors: tutorSvc, logger: logger}
}

// List returns all tutors, optionally filtered by subject.
func (h *TutorHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		list []*model.Tutor
		err  error
	)
	if subject := strings.TrimSpace(r.URL.Query().Get("subject")); subject != "" {
		list, err = h.tutors.BySubject(r.Context(), subject)
	} else {
		list, err = h.tutors.List(r.Context())
	}
	if err != nil {
		http.Error(w, "failed to list tutors", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*model.Tutor{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get returns one tutor profile by id.
func (h *TutorHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	t, err := h.tutors.Get(r.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			http.Error(w, "tutor not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load tutor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Upsert creates or replaces a tutor profile.
func (h *TutorHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var t model.Tutor
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	saved, err := h.tutors.Upsert(r.Context(), &t)
	if err != nil {
		h.logger.Error("tutor upsert failed", "err", err)
		http.Error(w, "failed to save tutor", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Availability returns a tutor's raw weekly pattern.
func (h *TutorHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tutorID := strings.TrimSpace(r.URL.Query().Get("tutor_id"))
	if tutorID == "" {
		http.Error(w, "tutor_id required", http.StatusBadRequest)
		return
	}
	avail, err := h.tutors.Availability(r.Context(), tutorID)
	if err != nil {
		if store.IsNotFound(err) {
			http.Error(w, "tutor not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load availability", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, avail)
}
