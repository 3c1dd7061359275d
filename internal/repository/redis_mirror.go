package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisCartMirror 基于 Redis 键的购物车镜像（无过期时间）
type RedisCartMirror struct {
	client *redis.Client
	key    string
}

// NewRedisCartMirror 创建 Redis 镜像，键为 <prefix>:cart:<slot>
func NewRedisCartMirror(client *redis.Client, prefix, slot string) *RedisCartMirror {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = constants.RedisPrefixDefault
	}
	return &RedisCartMirror{
		client: client,
		key:    fmt.Sprintf("%s:%s:%s", prefix, constants.CacheKeyCartSlot, normalizeSlot(slot)),
	}
}

// Key 槽位键名
func (m *RedisCartMirror) Key() string {
	return m.key
}

// Load 读取槽位
func (m *RedisCartMirror) Load(ctx context.Context) ([]models.CartItem, error) {
	val, err := m.client.Get(ctx, m.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeItems(val)
}

// Save 覆盖槽位
func (m *RedisCartMirror) Save(ctx context.Context, items []models.CartItem) error {
	payload, err := encodeItems(items)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, m.key, payload, 0).Err()
}

// Clear 删除槽位
func (m *RedisCartMirror) Clear(ctx context.Context) error {
	return m.client.Del(ctx, m.key).Err()
}
