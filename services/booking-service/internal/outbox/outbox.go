// Package outbox records ledger change events in the document store and
// publishes them to Kafka from a polling loop. Persisting the event next to
// the ledger write keeps publication independent of broker availability;
// delivery is at-least-once, so consumers deduplicate on event id.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	otelx "github.com/tutorme-app/tutorme/libs/otel"
	"github.com/tutorme-app/tutorme/services/booking-service/internal/store"
)

const collection = "outbox"

const (
	statusPending = "pending"
	statusSent    = "sent"
)

// Event is the stored outbox record.
type Event struct {
	EventID     string          `json:"eventId"`
	EventType   string          `json:"eventType"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	Traceparent string          `json:"traceparent,omitempty"`
	Tracestate  string          `json:"tracestate,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt"`
}

// Recorder appends pending events to the outbox collection.
type Recorder struct {
	store store.Store
}

func NewRecorder(st store.Store) *Recorder {
	return &Recorder{store: st}
}

// Record stores payload as a pending event, capturing the caller's trace
// context so the publisher can resume it.
func (r *Recorder) Record(ctx context.Context, eventType, aggregateID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	id, err := r.store.GenerateID(ctx, collection)
	if err != nil {
		return fmt.Errorf("generate event id: %w", err)
	}
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	evt := Event{
		EventID:     id,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     raw,
		Traceparent: traceparent,
		Tracestate:  tracestate,
		Status:      statusPending,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	return r.store.Set(ctx, collection+"/"+id, evt)
}

// Pending returns unpublished events, oldest first.
func (r *Recorder) Pending(ctx context.Context) ([]Event, error) {
	docs, err := r.store.Query(ctx, collection, "status", statusPending)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(docs))
	for key, raw := range docs {
		var evt Event
		if err := store.Decode(raw, &evt); err != nil {
			return nil, fmt.Errorf("decode event %s: %w", key, err)
		}
		events = append(events, evt)
	}
	sortByCreation(events)
	return events, nil
}

// MarkSent flips one event to sent.
func (r *Recorder) MarkSent(ctx context.Context, eventID string) error {
	return r.store.Update(ctx, collection+"/"+eventID, map[string]any{"status": statusSent})
}

func sortByCreation(events []Event) {
	// CreatedAt is RFC 3339, so lexicographic order is chronological.
	sort.Slice(events, func(i, j int) bool {
		if events[i].CreatedAt != events[j].CreatedAt {
			return events[i].CreatedAt < events[j].CreatedAt
		}
		return events[i].EventID < events[j].EventID
	})
}
