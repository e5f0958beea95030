package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, ttl, nil), mr
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	in := payload{Name: "alpha", Count: 7}
	c.Set(ctx, "k1", in)

	var out payload
	if !c.Get(ctx, "k1", &out) {
		t.Fatal("Get: miss, want hit")
	}
	if out != in {
		t.Fatalf("Get = %+v, want %+v", out, in)
	}
}

func TestGetMissOnAbsentKey(t *testing.T) {
	c, _ := newTestCache(t, 0)

	var out payload
	if c.Get(context.Background(), "nope", &out) {
		t.Fatal("Get: hit, want miss")
	}
}

func TestDelIdempotent(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	c.Set(ctx, "k1", payload{Name: "x"})
	c.Del(ctx, "k1")
	c.Del(ctx, "k1") // absent now, must be a no-op

	var out payload
	if c.Get(ctx, "k1", &out) {
		t.Fatal("Get after Del: hit, want miss")
	}
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	c.Set(ctx, "k1", payload{Name: "x"})
	mr.FastForward(2 * time.Second)

	var out payload
	if c.Get(ctx, "k1", &out) {
		t.Fatal("Get after TTL: hit, want miss")
	}
}

func TestRedisDownDegradesToMiss(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()

	mr.Close()

	c.Set(ctx, "k1", payload{Name: "x"}) // must not panic or fail
	var out payload
	if c.Get(ctx, "k1", &out) {
		t.Fatal("Get with redis down: hit, want miss")
	}
	c.Del(ctx, "k1")
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t, 0)

	mr.Set("k1", "{not json")

	var out payload
	if c.Get(context.Background(), "k1", &out) {
		t.Fatal("Get of corrupt entry: hit, want miss")
	}
}
