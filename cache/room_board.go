// Package cache keeps a short-lived copy of the room board in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"hotel-frontdesk/config"
)

const (
	roomBoardKey           = "frontdesk:rooms:board"
	roomBoardGenerationKey = "frontdesk:rooms:board:gen"
)

// RoomBoard caches the rendered room list under a generation number.
// Invalidate bumps the generation, so a board rendered before the bump is
// written under a key nobody reads any more. A nil client disables the cache;
// every method then behaves as a miss. Redis calls go through a circuit
// breaker.
type RoomBoard struct {
	rdb *redis.Client
	ttl time.Duration
	cb  *gobreaker.CircuitBreaker
}

func NewRoomBoard(rdb *redis.Client, ttl time.Duration) *RoomBoard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RoomBoard{rdb: rdb, ttl: ttl, cb: config.NewCircuitBreaker("Redis-RoomBoard")}
}

func boardKey(gen int64) string {
	return fmt.Sprintf("%s:%d", roomBoardKey, gen)
}

type cachedRead struct {
	payload []byte
	gen     int64
}

// Get returns the board stored for the current generation, and that
// generation. A negative generation means the cache could not be read and
// nothing should be stored.
func (b *RoomBoard) Get(ctx context.Context) ([]byte, int64, bool) {
	if b == nil || b.rdb == nil {
		return nil, -1, false
	}
	out, err := b.cb.Execute(func() (interface{}, error) {
		gen, err := b.rdb.Get(ctx, roomBoardGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		bs, err := b.rdb.Get(ctx, boardKey(gen)).Bytes()
		if errors.Is(err, redis.Nil) {
			return cachedRead{gen: gen}, nil
		}
		if err != nil {
			return nil, err
		}
		return cachedRead{payload: bs, gen: gen}, nil
	})
	if err != nil {
		log.Printf("[WARN] room board cache read: %v", err)
		return nil, -1, false
	}
	r := out.(cachedRead)
	return r.payload, r.gen, r.payload != nil
}

// Set stores payload under generation gen, as returned by the Get that
// preceded rendering it.
func (b *RoomBoard) Set(ctx context.Context, gen int64, payload []byte) {
	if b == nil || b.rdb == nil || gen < 0 {
		return
	}
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.rdb.SetEx(ctx, boardKey(gen), payload, b.ttl).Err()
	})
	if err != nil {
		log.Printf("[WARN] room board cache write: %v", err)
	}
}

func (b *RoomBoard) Invalidate(ctx context.Context) {
	if b == nil || b.rdb == nil {
		return
	}
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.rdb.Incr(ctx, roomBoardGenerationKey).Err()
	})
	if err != nil {
		log.Printf("[WARN] room board cache invalidate: %v", err)
	}
}
