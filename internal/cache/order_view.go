package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

const defaultOrderSnapshotTTL = 10 * time.Minute

// OrderSnapshot 订单快照（用于后端不可达时的降级展示）
type OrderSnapshot struct {
	Order     models.Order `json:"order"`
	FetchedAt int64        `json:"fetched_at"`
}

// OrderViewCache 订单快照缓存，Redis 未启用时所有操作为空操作
type OrderViewCache struct {
	ttl time.Duration
}

// NewOrderViewCache 创建订单快照缓存
func NewOrderViewCache(ttl time.Duration) *OrderViewCache {
	if ttl <= 0 {
		ttl = defaultOrderSnapshotTTL
	}
	return &OrderViewCache{ttl: ttl}
}

func orderSnapshotKey(orderID uint) string {
	return fmt.Sprintf("%s:%d", constants.CacheKeyOrderView, orderID)
}

// Get 获取订单快照
func (c *OrderViewCache) Get(ctx context.Context, orderID uint) (*OrderSnapshot, bool, error) {
	var snapshot OrderSnapshot
	hit, err := GetJSON(ctx, orderSnapshotKey(orderID), &snapshot)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &snapshot, true, nil
}

// Put 写入订单快照
func (c *OrderViewCache) Put(ctx context.Context, order *models.Order) error {
	if order == nil || order.ID == 0 {
		return nil
	}
	return SetJSON(ctx, orderSnapshotKey(order.ID), OrderSnapshot{
		Order:     *order,
		FetchedAt: time.Now().Unix(),
	}, c.ttl)
}

// Evict 删除订单快照
func (c *OrderViewCache) Evict(ctx context.Context, orderID uint) error {
	return Del(ctx, orderSnapshotKey(orderID))
}
