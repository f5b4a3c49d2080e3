// Package booking holds the conflict-checked booking ledger. Bookings are
// created through a read-then-check-then-write protocol against the document
// store: fetch the tutor's bookings, reject when a confirmed one already holds
// the requested date and start time, then persist. Two concurrent creates for
// the same slot can both pass the check before either writes; the store
// offers no transaction to close that window, so the race is an accepted and
// documented limitation rather than a silent one.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tutorme-app/tutorme/services/booking-service/internal/model"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/store"
)

const collection = "bookings"

const (
	MinDurationHours = 1
	MaxDurationHours = 4
)

var startTimePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):00$`)

// EventRecorder receives ledger change events for asynchronous publication.
type EventRecorder interface {
	Record(ctx context.Context, eventType, aggregateID string, payload any) error
}

type Service struct {
	store  store.Store
	events EventRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the ledger against a document store. events may be nil to
// disable event publication.
func NewService(st store.Store, events EventRecorder, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Request carries the caller-supplied fields of a new booking.
type Request struct {
	TutorID       string `json:"tutorId"`
	StudentID     string `json:"studentId"`
	StudentName   string `json:"studentName"`
	TutorName     string `json:"tutorName"`
	Subject       string `json:"subject"`
	Topic         string `json:"topic"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	Duration      int    `json:"duration"`
	Message       string `json:"message"`
	PaymentMethod string `json:"paymentMethod"`
}

// Create validates req, checks the tutor's ledger for a confirmed booking on
// the same date and start time, and persists a new confirmed booking.
// Returns ErrSlotTaken on conflict and *ValidationError on bad input; store
// failures pass through unchanged. The write is the final step, so an
// abandoned call leaves no partial state.
func (s *Service) Create(ctx context.Context, req Request) (*model.Booking, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	existing, err := s.store.Query(ctx, collection, "tutorId", req.TutorID)
	if err != nil {
		return nil, fmt.Errorf("query tutor bookings: %w", err)
	}
	for key, raw := range existing {
		var b model.Booking
		if err := store.Decode(raw, &b); err != nil {
			return nil, fmt.Errorf("decode booking %s: %w", key, err)
		}
		if b.Status == model.BookingStatusConfirmed && b.Date == req.Date && b.StartTime == req.StartTime {
			return nil, ErrSlotTaken
		}
	}

	id, err := s.store.GenerateID(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("generate booking id: %w", err)
	}

	b := &model.Booking{
		BookingID:     id,
		TutorID:       req.TutorID,
		StudentID:     req.StudentID,
		StudentName:   req.StudentName,
		TutorName:     req.TutorName,
		Subject:       req.Subject,
		Topic:         req.Topic,
		Date:          req.Date,
		StartTime:     req.StartTime,
		Duration:      req.Duration,
		Message:       req.Message,
		PaymentMethod: req.PaymentMethod,
		Status:        model.BookingStatusConfirmed,
		CreatedAt:     s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Set(ctx, collection+"/"+id, b); err != nil {
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	s.logger.Info("booking created",
		"booking_id", id,
		"tutor_id", b.TutorID,
		"student_id", b.StudentID,
		"date", b.Date,
		"start_time", b.StartTime,
	)
	s.record(ctx, "booking.session.booked.v1", id, b)
	return b, nil
}

// Cancel sets a booking's status to cancelled. It does not check the current
// status or the caller's identity; ownership checks belong to the caller's
// authorization layer. Cancelling an already-cancelled booking succeeds.
func (s *Service) Cancel(ctx context.Context, bookingID string) error {
	if err := s.UpdateStatus(ctx, bookingID, model.BookingStatusCancelled); err != nil {
		return err
	}
	s.record(ctx, "booking.session.cancelled.v1", bookingID, map[string]string{
		"bookingId": bookingID,
	})
	return nil
}

// UpdateStatus is a general-purpose status setter. Only confirmed and
// cancelled are known statuses; anything else is rejected to keep stray
// labels out of the ledger.
func (s *Service) UpdateStatus(ctx context.Context, bookingID, status string) error {
	if strings.TrimSpace(bookingID) == "" {
		return invalidField("bookingId", "is required")
	}
	if status != model.BookingStatusConfirmed && status != model.BookingStatusCancelled {
		return invalidField("status", fmt.Sprintf("%q is not a known status", status))
	}
	if err := s.store.Update(ctx, collection+"/"+bookingID, map[string]any{"status": status}); err != nil {
		return fmt.Errorf("update booking %s: %w", bookingID, err)
	}
	s.logger.Info("booking status updated", "booking_id", bookingID, "status", status)
	return nil
}

// Get fetches one booking by id. store.ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, bookingID string) (*model.Booking, error) {
	raw, err := s.store.Get(ctx, collection+"/"+bookingID)
	if err != nil {
		return nil, err
	}
	var b model.Booking
	if err := store.Decode(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ForTutor lists a tutor's bookings ordered by date and start hour.
func (s *Service) ForTutor(ctx context.Context, tutorID string) ([]*model.Booking, error) {
	return s.list(ctx, "tutorId", tutorID)
}

// ForStudent lists a student's bookings ordered by date and start hour.
func (s *Service) ForStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	return s.list(ctx, "studentId", studentID)
}

func (s *Service) list(ctx context.Context, field, value string) ([]*model.Booking, error) {
	docs, err := s.store.Query(ctx, collection, field, value)
	if err != nil {
		return nil, err
	}
	bookings := make([]*model.Booking, 0, len(docs))
	for key, raw := range docs {
		var b model.Booking
		if err := store.Decode(raw, &b); err != nil {
			return nil, fmt.Errorf("decode booking %s: %w", key, err)
		}
		bookings = append(bookings, &b)
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		return startHour(bookings[i].StartTime) < startHour(bookings[j].StartTime)
	})
	return bookings, nil
}

// record logs event failures instead of failing the ledger operation: the
// ledger write already happened and there is no transaction to unwind.
func (s *Service) record(ctx context.Context, eventType, aggregateID string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(ctx, eventType, aggregateID, payload); err != nil {
		s.logger.Error("event record failed", "event_type", eventType, "aggregate_id", aggregateID, "err", err)
	}
}

func validate(req Request) error {
	if strings.TrimSpace(req.TutorID) == "" {
		return invalidField("tutorId", "is required")
	}
	if strings.TrimSpace(req.StudentID) == "" {
		return invalidField("studentId", "is required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return invalidField("date", "must be a valid YYYY-MM-DD date")
	}
	if !startTimePattern.MatchString(req.StartTime) {
		return invalidField("startTime", "must be an hour boundary like 9:00 or 14:00")
	}
	if req.Duration < MinDurationHours || req.Duration > MaxDurationHours {
		return invalidField("duration", fmt.Sprintf("must be between %d and %d hours", MinDurationHours, MaxDurationHours))
	}
	if strings.TrimSpace(req.Subject) == "" {
		return invalidField("subject", "is required")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return invalidField("topic", "is required")
	}
	if !model.ValidPaymentMethod(req.PaymentMethod) {
		return invalidField("paymentMethod", "must be one of: "+strings.Join(model.PaymentMethods, ", "))
	}
	return nil
}

func startHour(startTime string) int {
	hh, _, _ := strings.Cut(startTime, ":")
	h, _ := strconv.Atoi(hh)
	return h
}
