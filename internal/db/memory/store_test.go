package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/docrag/internal/db"
)

func TestGetSet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	val := []byte("value")
	if err := s.Set(ctx, "k", val); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("got %q, stored value aliased caller slice", got)
	}
}

func TestSetWithTTL_Expires(t *testing.T) {
	s := NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expired entry not evicted, len = %d", s.Len())
	}
}

func TestDel(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("1"))
	_ = s.Set(ctx, "b", []byte("2"))

	if err := s.Del(ctx, "a", "missing"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("a still present")
	}
	if _, err := s.Get(ctx, "b"); err != nil {
		t.Errorf("b removed: %v", err)
	}
}

func TestClose(t *testing.T) {
	s := NewStore()
	_ = s.Set(context.Background(), "a", []byte("1"))
	s.Close()
	if s.Len() != 0 {
		t.Errorf("len after Close = %d", s.Len())
	}
}
