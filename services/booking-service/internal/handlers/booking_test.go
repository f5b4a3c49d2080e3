package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tutorme-app/tutorme/services/booking-service/internal/booking"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/model"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/store"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/tutors"
)

func newTestHandler(t *testing.T) (*BookingHandler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	logger := slog.New(slog.DiscardHandler)
	tutorSvc := tutors.NewService(mem, logger)
	bookingSvc := booking.NewService(mem, nil, logger)
	return NewBookingHandler(bookingSvc, tutorSvc, logger), mem
}

func seedTutor(t *testing.T, mem *store.Memory) {
	t.Helper()
	err := mem.Set(context.Background(), "tutors/t1", model.Tutor{
		ID:       "t1",
		Name:     "Mr Naidoo",
		Subjects: []string{"Mathematics"},
		Availability: model.WeeklyAvailability{
			"monday": {"9:00-12:00", "14:00-16:00"},
		},
	})
	if err != nil {
		t.Fatalf("seed tutor: %v", err)
	}
}

func bookBody() map[string]any {
	return map[string]any{
		"tutorId":       "t1",
		"studentId":     "s1",
		"studentName":   "Thandi",
		"tutorName":     "Mr Naidoo",
		"subject":       "Mathematics",
		"topic":         "Trigonometry",
		"date":          "2030-06-03",
		"startTime":     "14:00",
		"duration":      2,
		"paymentMethod": "Credit Card",
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSlots(t *testing.T) {
	h, mem := newTestHandler(t)
	seedTutor(t, mem)

	// 2030-06-03 is a Monday.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/slots?tutor_id=t1&date=2030-06-03", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp slotsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Weekday != "monday" {
		t.Fatalf("weekday = %q", resp.Weekday)
	}
	want := []string{"9:00", "10:00", "11:00", "14:00", "15:00"}
	if len(resp.Slots) != len(want) {
		t.Fatalf("slots = %v, want %v", resp.Slots, want)
	}
	for i := range want {
		if resp.Slots[i] != want[i] {
			t.Fatalf("slots = %v, want %v", resp.Slots, want)
		}
	}
}

func TestSlots_UnavailableDayEmpty(t *testing.T) {
	h, mem := newTestHandler(t)
	seedTutor(t, mem)

	// 2030-06-04 is a Tuesday, which the seeded tutor does not teach.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/slots?tutor_id=t1&date=2030-06-04", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp slotsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Slots) != 0 {
		t.Fatalf("expected empty slots, got %v", resp.Slots)
	}
}

func TestSlots_UnknownTutor(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/slots?tutor_id=nope&date=2030-06-03", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSlots_BadDate(t *testing.T) {
	h, mem := newTestHandler(t)
	seedTutor(t, mem)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/slots?tutor_id=t1&date=03-06-2030", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreate_Succeeds(t *testing.T) {
	h, mem := newTestHandler(t)
	seedTutor(t, mem)

	rec := postJSON(t, h.Create, bookBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var item bookingItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.BookingID == "" {
		t.Fatal("expected a minted booking id")
	}
	if item.Status != model.BookingStatusConfirmed {
		t.Fatalf("status = %q", item.Status)
	}
	if item.Fee != 700 {
		t.Fatalf("fee = %d, want 700", item.Fee)
	}
}

func TestCreate_ConflictReturns409(t *testing.T) {
	h, mem := newTestHandler(t)
	seedTutor(t, mem)

	if rec := postJSON(t, h.Create, bookBody()); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: status = %d", rec.Code)
	}

	second := bookBody()
	second["studentId"] = "s2"
	second["studentName"] = "Sipho"
	rec := postJSON(t, h.Create, second)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already booked") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCreate_ValidationReturns400(t *testing.T) {
	h, mem := newTestHandler(t)
	seedTutor(t, mem)

	body := bookBody()
	body["duration"] = 5
	rec := postJSON(t, h.Create, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreate_InvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestList_ByStudent(t *testing.T) {
	h, mem := newTestHandler(t)
	seedTutor(t, mem)

	if rec := postJSON(t, h.Create, bookBody()); rec.Code != http.StatusCreated {
		t.Fatalf("booking: status = %d", rec.Code)
	}
	other := bookBody()
	other["studentId"] = "s2"
	other["startTime"] = "9:00"
	if rec := postJSON(t, h.Create, other); rec.Code != http.StatusCreated {
		t.Fatalf("second booking: status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?student_id=s1", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var items []bookingItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].StudentID != "s1" {
		t.Fatalf("items = %+v", items)
	}
}

func TestList_RequiresExactlyOneParty(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, query := range []string{"", "student_id=s1&tutor_id=t1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?"+query, nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestCancel(t *testing.T) {
	h, mem := newTestHandler(t)
	seedTutor(t, mem)

	rec := postJSON(t, h.Create, bookBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("booking: status = %d", rec.Code)
	}
	var item bookingItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}

	cancel := postJSON(t, h.Cancel, map[string]string{"bookingId": item.BookingID})
	if cancel.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d, body = %s", cancel.Code, cancel.Body.String())
	}
	var resp statusUpdateResponse
	if err := json.Unmarshal(cancel.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != model.BookingStatusCancelled {
		t.Fatalf("status = %q", resp.Status)
	}

	// The freed slot is bookable again.
	retry := bookBody()
	retry["studentId"] = "s2"
	if rec := postJSON(t, h.Create, retry); rec.Code != http.StatusCreated {
		t.Fatalf("rebook after cancel: status = %d", rec.Code)
	}
}

func TestCancel_UnknownBooking(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postJSON(t, h.Cancel, map[string]string{"bookingId": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	h, mem := newTestHandler(t)
	seedTutor(t, mem)

	rec := postJSON(t, h.Create, bookBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("booking: status = %d", rec.Code)
	}
	var item bookingItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}

	upd := postJSON(t, h.UpdateStatus, map[string]string{"bookingId": item.BookingID, "status": "no-show"})
	if upd.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", upd.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/public/book", nil)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
