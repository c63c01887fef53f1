package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Fatal("unexpected hit for missing key")
	}

	s.Set(ctx, "call-1", `{"a":1}`, time.Minute)
	v, ok, err := s.Get(ctx, "call-1")
	if err != nil || !ok || v != `{"a":1}` {
		t.Fatalf("Get() = %q, %v, %v", v, ok, err)
	}

	s.Set(ctx, "old", "x", -time.Second)
	if _, ok, _ := s.Get(ctx, "old"); ok {
		t.Error("expired key returned")
	}

	s.Delete(ctx, "call-1")
	if _, ok, _ := s.Get(ctx, "call-1"); ok {
		t.Error("deleted key returned")
	}
}
