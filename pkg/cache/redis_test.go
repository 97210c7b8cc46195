package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCache_ImplementsCache(t *testing.T) {
	var _ Cache = NewRedisCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
}

func TestRedisCache_GetReturnsErrorWhenUnreachable(t *testing.T) {
	c := NewRedisCache(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:0",
		DialTimeout: 50 * time.Millisecond,
	}))
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, hit, err := c.Get(ctx, "layout:deadbeef")
	if err == nil {
		t.Fatal("Get against an unreachable redis: want error, got nil")
	}
	if hit {
		t.Error("Get against an unreachable redis: want hit=false")
	}
}
