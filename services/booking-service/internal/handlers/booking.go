package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tutorme-app/tutorme/services/booking-service/internal/availability"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/booking"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/model"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/store"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/tutors"
)

type BookingHandler struct {
	bookings *booking.Service
	tutors   *tutors.Service
	logger   *slog.Logger
}

func NewBookingHandler(bookings *booking.Service, tutorSvc *tutors.Service, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, tutors: tutorSvc, logger: logger}
}

type slotsResponse struct {
	TutorID string   `json:"tutorId"`
	Date    string   `json:"date"`
	Weekday string   `json:"weekday"`
	Slots   []string `json:"slots"`
}

type bookingItem struct {
	BookingID     string `json:"bookingId"`
	TutorID       string `json:"tutorId"`
	StudentID     string `json:"studentId"`
	StudentName   string `json:"studentName"`
	TutorName     string `json:"tutorName"`
	Subject       string `json:"subject"`
	Topic         string `json:"topic"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	Duration      int    `json:"duration"`
	Message       string `json:"message,omitempty"`
	PaymentMethod string `json:"paymentMethod"`
	Status        string `json:"status"`
	Fee           int    `json:"fee"`
	CreatedAt     string `json:"createdAt"`
}

type statusUpdateRequest struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

type statusUpdateResponse struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

// Slots resolves the bookable hours for one tutor on one date.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tutorID := strings.TrimSpace(r.URL.Query().Get("tutor_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if tutorID == "" || dateStr == "" {
		http.Error(w, "tutor_id and date are required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	avail, err := h.tutors.Availability(r.Context(), tutorID)
	if err != nil {
		if store.IsNotFound(err) {
			http.Error(w, "tutor not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load tutor availability", http.StatusInternalServerError)
		return
	}

	slots := availability.ResolveSlots(avail, date)
	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, http.StatusOK, slotsResponse{
		TutorID: tutorID,
		Date:    dateStr,
		Weekday: availability.WeekdayName(date),
		Slots:   slots,
	})
}

// Create books a session. 409 when the slot is held by a confirmed booking.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req booking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	b, err := h.bookings.Create(r.Context(), req)
	if err != nil {
		switch {
		case booking.IsConflict(err):
			http.Error(w, err.Error(), http.StatusConflict)
		case booking.IsValidation(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("booking create failed", "err", err)
			http.Error(w, "failed to create booking", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toItem(b, time.Now().UTC()))
}

// List returns a student's or a tutor's bookings, newest-date last, with the
// display status derived for past dates.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
	tutorID := strings.TrimSpace(r.URL.Query().Get("tutor_id"))

	var (
		bookings []*model.Booking
		err      error
	)
	switch {
	case studentID != "" && tutorID == "":
		bookings, err = h.bookings.ForStudent(r.Context(), studentID)
	case tutorID != "" && studentID == "":
		bookings, err = h.bookings.ForTutor(r.Context(), tutorID)
	default:
		http.Error(w, "exactly one of student_id or tutor_id is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	items := make([]bookingItem, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, toItem(b, now))
	}
	writeJSON(w, http.StatusOK, items)
}

// Cancel sets a booking to cancelled; repeating the call is a no-op success.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		http.Error(w, "bookingId required", http.StatusBadRequest)
		return
	}

	if err := h.bookings.Cancel(r.Context(), req.BookingID); err != nil {
		if store.IsNotFound(err) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to cancel booking", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, statusUpdateResponse{BookingID: req.BookingID, Status: model.BookingStatusCancelled})
}

// UpdateStatus is the general status setter behind the dashboard.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		http.Error(w, "bookingId required", http.StatusBadRequest)
		return
	}

	if err := h.bookings.UpdateStatus(r.Context(), req.BookingID, req.Status); err != nil {
		switch {
		case booking.IsValidation(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case store.IsNotFound(err):
			http.Error(w, "booking not found", http.StatusNotFound)
		default:
			http.Error(w, "failed to update booking status", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, statusUpdateResponse{BookingID: req.BookingID, Status: req.Status})
}

func toItem(b *model.Booking, now time.Time) bookingItem {
	return bookingItem{
		BookingID:     b.BookingID,
		TutorID:       b.TutorID,
		StudentID:     b.StudentID,
		StudentName:   b.StudentName,
		TutorName:     b.TutorName,
		Subject:       b.Subject,
		Topic:         b.Topic,
		Date:          b.Date,
		StartTime:     b.StartTime,
		Duration:      b.Duration,
		Message:       b.Message,
		PaymentMethod: b.PaymentMethod,
		Status:        b.EffectiveStatus(now),
		Fee:           booking.Fee(b.Duration),
		CreatedAt:     b.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
