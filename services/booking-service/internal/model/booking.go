package model

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"

	// BookingStatusCompleted is derived at read time from the session date
	// being in the past; it is never written to the store.
	BookingStatusCompleted = "completed"
)

// PaymentMethods is the accepted set of payment method labels. The service
// computes a fee but performs no capture, so these are labels only.
var PaymentMethods = []string{"Credit Card", "Bank Transfer"}

// Booking is the persisted ledger record for one tutoring session.
// Field names are the stored document layout; existing data depends on them.
type Booking struct {
	BookingID     string `json:"bookingId"`
	TutorID       string `json:"tutorId"`
	StudentID     string `json:"studentId"`
	StudentName   string `json:"studentName"`
	TutorName     string `json:"tutorName"`
	Subject       string `json:"subject"`
	Topic         string `json:"topic"`
	Date          string `json:"date"`      // "YYYY-MM-DD"
	StartTime     string `json:"startTime"` // "H:00" or "HH:00"
	Duration      int    `json:"duration"`  // hours, 1-4
	Message       string `json:"message,omitempty"`
	PaymentMethod string `json:"paymentMethod"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"` // RFC 3339
}

// EffectiveStatus maps a confirmed booking on a past date to "completed".
// Cancelled bookings stay cancelled regardless of date.
func (b *Booking) EffectiveStatus(now time.Time) string {
	if b.Status != BookingStatusConfirmed {
		return b.Status
	}
	d, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		return b.Status
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return BookingStatusCompleted
	}
	return b.Status
}

func ValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
