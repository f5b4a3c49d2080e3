package tutors

import (
	"context"
	"log/slog"
	"testing"

	"github.com/tutorme-app/tutorme/services/booking-service/internal/model"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/store"
)

func newTestService() *Service {
	return NewService(store.NewMemory(), slog.New(slog.DiscardHandler))
}

func TestUpsert_MintsIDAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	saved, err := svc.Upsert(ctx, &model.Tutor{
		Name:     "Mrs Dlamini",
		Subjects: []string{"Physics"},
		Availability: model.WeeklyAvailability{
			"wednesday": {"10:00-13:00"},
		},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected a minted id")
	}

	got, err := svc.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Mrs Dlamini" || len(got.Availability["wednesday"]) != 1 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestUpsert_RequiresName(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Upsert(context.Background(), &model.Tutor{}); err == nil {
		t.Fatal("expected an error for a nameless tutor")
	}
}

func TestList_SortedByName(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	for _, name := range []string{"Zola", "Anele", "Mandla"} {
		if _, err := svc.Upsert(ctx, &model.Tutor{Name: name}); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}

	tutors, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tutors) != 3 {
		t.Fatalf("len = %d", len(tutors))
	}
	for i, want := range []string{"Anele", "Mandla", "Zola"} {
		if tutors[i].Name != want {
			t.Fatalf("tutors[%d].Name = %q, want %q", i, tutors[i].Name, want)
		}
	}
}

func TestList_EmptyMarketplace(t *testing.T) {
	svc := newTestService()
	tutors, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tutors) != 0 {
		t.Fatalf("expected no tutors, got %d", len(tutors))
	}
}

func TestBySubject(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, _ = svc.Upsert(ctx, &model.Tutor{Name: "A", Subjects: []string{"Mathematics", "Physics"}})
	_, _ = svc.Upsert(ctx, &model.Tutor{Name: "B", Subjects: []string{"English"}})

	matched, err := svc.BySubject(ctx, "Physics")
	if err != nil {
		t.Fatalf("by subject: %v", err)
	}
	if len(matched) != 1 || matched[0].Name != "A" {
		t.Fatalf("matched = %+v", matched)
	}
}

func TestAvailability_AbsentPatternIsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	saved, err := svc.Upsert(ctx, &model.Tutor{Name: "No Pattern"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	avail, err := svc.Availability(ctx, saved.ID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if avail == nil || len(avail) != 0 {
		t.Fatalf("expected empty pattern, got %v", avail)
	}
}
