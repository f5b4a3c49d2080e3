package store

import (
	"context"
	"encoding/json"
	"testing"
)

func TestMemory_GetSingleDocument(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	if err := mem.Set(ctx, "tutors/t1", map[string]string{"name": "Mr Naidoo"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	raw, err := mem.Get(ctx, "tutors/t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var doc map[string]string
	if err := Decode(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc["name"] != "Mr Naidoo" {
		t.Fatalf("unexpected doc: %v", doc)
	}
}

func TestMemory_GetCollectionReturnsChildren(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_ = mem.Set(ctx, "tutors/t1", map[string]string{"name": "A"})
	_ = mem.Set(ctx, "tutors/t2", map[string]string{"name": "B"})
	_ = mem.Set(ctx, "bookings/b1", map[string]string{"tutorId": "t1"})

	raw, err := mem.Get(ctx, "tutors")
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	var children map[string]json.RawMessage
	if err := Decode(raw, &children); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if _, ok := children["t1"]; !ok {
		t.Fatalf("missing child t1: %v", children)
	}
}

func TestMemory_GetAbsent(t *testing.T) {
	mem := NewMemory()
	if _, err := mem.Get(context.Background(), "tutors/nope"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_QueryByEquality(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_ = mem.Set(ctx, "bookings/b1", map[string]any{"tutorId": "t1", "status": "confirmed"})
	_ = mem.Set(ctx, "bookings/b2", map[string]any{"tutorId": "t2", "status": "confirmed"})
	_ = mem.Set(ctx, "bookings/b3", map[string]any{"tutorId": "t1", "status": "cancelled"})

	got, err := mem.Query(ctx, "bookings", "tutorId", "t1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if _, ok := got["b2"]; ok {
		t.Fatal("b2 should not match tutorId t1")
	}

	empty, err := mem.Query(ctx, "bookings", "tutorId", "t9")
	if err != nil {
		t.Fatalf("query empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no matches, got %v", empty)
	}
}

func TestMemory_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_ = mem.Set(ctx, "bookings/b1", map[string]any{"status": "confirmed", "topic": "Algebra"})
	if err := mem.Update(ctx, "bookings/b1", map[string]any{"status": "cancelled"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	raw, _ := mem.Get(ctx, "bookings/b1")
	var doc map[string]string
	if err := Decode(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc["status"] != "cancelled" || doc["topic"] != "Algebra" {
		t.Fatalf("merge lost fields: %v", doc)
	}
}

func TestMemory_UpdateAbsent(t *testing.T) {
	mem := NewMemory()
	err := mem.Update(context.Background(), "bookings/nope", map[string]any{"status": "cancelled"})
	if !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_GenerateIDUnique(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	seen := map[string]bool{}
	for range 100 {
		id, err := mem.GenerateID(ctx, "bookings")
		if err != nil {
			t.Fatalf("generate id: %v", err)
		}
		if id == "" || seen[id] {
			t.Fatalf("expected fresh unique id, got %q", id)
		}
		seen[id] = true
	}
}
