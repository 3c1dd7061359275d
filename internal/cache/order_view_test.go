package cache

import (
	"context"
	"testing"
	"time"

	"github.com/storefront-next/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	UseClient(client, "test")
	t.Cleanup(func() {
		UseClient(nil, "")
		_ = client.Close()
		mr.Close()
	})
	return mr
}

func TestOrderViewCacheRoundTrip(t *testing.T) {
	mr := setupMiniRedis(t)
	ctx := context.Background()
	c := NewOrderViewCache(time.Minute)

	if _, hit, err := c.Get(ctx, 5); err != nil || hit {
		t.Fatalf("expected miss, hit=%v err=%v", hit, err)
	}

	order := &models.Order{ID: 5, Status: models.OrderStatusShipped, TotalAmount: models.MustMoney("12.30")}
	if err := c.Put(ctx, order); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if !mr.Exists("test:order:view:5") {
		t.Fatalf("expected prefixed key to exist, keys=%v", mr.Keys())
	}
	if ttl := mr.TTL("test:order:view:5"); ttl != time.Minute {
		t.Fatalf("unexpected ttl: %v", ttl)
	}

	snap, hit, err := c.Get(ctx, 5)
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if snap.Order.Status != models.OrderStatusShipped || snap.Order.TotalAmount.String() != "12.30" {
		t.Fatalf("unexpected snapshot: %+v", snap.Order)
	}

	if err := c.Evict(ctx, 5); err != nil {
		t.Fatalf("evict failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, 5); hit {
		t.Fatalf("expected miss after evict")
	}
}

func TestOrderViewCacheDisabledIsNoop(t *testing.T) {
	UseClient(nil, "")
	c := NewOrderViewCache(0)
	if err := c.Put(context.Background(), &models.Order{ID: 1}); err != nil {
		t.Fatalf("disabled put should be noop: %v", err)
	}
	if _, hit, err := c.Get(context.Background(), 1); hit || err != nil {
		t.Fatalf("disabled get should miss, hit=%v err=%v", hit, err)
	}
}
