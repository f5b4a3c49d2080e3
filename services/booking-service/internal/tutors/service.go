// Package tutors persists tutor profiles, including the weekly availability
// the slot resolver consumes.
package tutors

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tutorme-app/tutorme/services/booking-service/internal/model"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/store"
)

const collection = "tutors"

type Service struct {
	store  store.Store
	logger *slog.Logger
}

func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Get fetches one tutor profile. store.ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, tutorID string) (*model.Tutor, error) {
	raw, err := s.store.Get(ctx, collection+"/"+tutorID)
	if err != nil {
		return nil, err
	}
	var t model.Tutor
	if err := store.Decode(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tutors sorted by name. An empty marketplace is an empty
// list, not an error.
func (s *Service) List(ctx context.Context) ([]*model.Tutor, error) {
	raw, err := s.store.Get(ctx, collection)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var byID map[string]*model.Tutor
	if err := store.Decode(raw, &byID); err != nil {
		return nil, err
	}
	tutors := make([]*model.Tutor, 0, len(byID))
	for id, t := range byID {
		if t.ID == "" {
			t.ID = id
		}
		tutors = append(tutors, t)
	}
	sort.Slice(tutors, func(i, j int) bool { return tutors[i].Name < tutors[j].Name })
	return tutors, nil
}

// BySubject filters the full tutor list in memory; subjects are stored as an
// array, which the store's equality query cannot match against.
func (s *Service) BySubject(ctx context.Context, subject string) ([]*model.Tutor, error) {
	tutors, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := tutors[:0]
	for _, t := range tutors {
		if t.Teaches(subject) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// Upsert writes a tutor profile, minting an id when the caller supplies none.
func (s *Service) Upsert(ctx context.Context, t *model.Tutor) (*model.Tutor, error) {
	if strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("tutor name is required")
	}
	if t.ID == "" {
		id, err := s.store.GenerateID(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("generate tutor id: %w", err)
		}
		t.ID = id
	}
	if err := s.store.Set(ctx, collection+"/"+t.ID, t); err != nil {
		return nil, fmt.Errorf("persist tutor: %w", err)
	}
	s.logger.Info("tutor saved", "tutor_id", t.ID, "name", t.Name)
	return t, nil
}

// Availability returns a tutor's weekly pattern. A tutor without one gets an
// empty pattern, which resolves to no slots on every date.
func (s *Service) Availability(ctx context.Context, tutorID string) (model.WeeklyAvailability, error) {
	t, err := s.Get(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if t.Availability == nil {
		return model.WeeklyAvailability{}, nil
	}
	return t.Availability, nil
}
