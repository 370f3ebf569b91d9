package cache

import (
	"context"
	"testing"
	"time"
)

func TestRoomBoardWithoutRedis(t *testing.T) {
	ctx := context.Background()
	for _, b := range []*RoomBoard{nil, NewRoomBoard(nil, time.Minute)} {
		b.Set(ctx, 0, []byte(`{"date":"2024-03-01"}`))
		if _, gen, ok := b.Get(ctx); ok || gen >= 0 {
			t.Fatalf("a board without a client must always miss, got gen=%d ok=%v", gen, ok)
		}
		b.Invalidate(ctx)
	}
}

func TestNewRoomBoardDefaultsTTL(t *testing.T) {
	if b := NewRoomBoard(nil, 0); b.ttl != 30*time.Second {
		t.Fatalf("expected default ttl, got %s", b.ttl)
	}
}

func TestBoardKeyPerGeneration(t *testing.T) {
	if boardKey(3) == boardKey(4) {
		t.Fatal("each generation needs its own key")
	}
	if got := boardKey(7); got != "frontdesk:rooms:board:7" {
		t.Fatalf("unexpected key %q", got)
	}
}
