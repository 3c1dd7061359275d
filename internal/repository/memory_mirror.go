package repository

import (
	"context"
	"sync"

	"github.com/storefront-next/internal/models"
)

// MemoryCartMirror 进程内镜像，进程退出即丢失
type MemoryCartMirror struct {
	mu    sync.Mutex
	items []models.CartItem
	saves int
}

// NewMemoryCartMirror 创建内存镜像
func NewMemoryCartMirror(initial ...models.CartItem) *MemoryCartMirror {
	m := &MemoryCartMirror{}
	if len(initial) > 0 {
		m.items = append([]models.CartItem(nil), initial...)
	}
	return m
}

// Load 读取槽位
func (m *MemoryCartMirror) Load(_ context.Context) ([]models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CartItem{}, m.items...), nil
}

// Save 覆盖槽位
func (m *MemoryCartMirror) Save(_ context.Context, items []models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]models.CartItem(nil), items...)
	m.saves++
	return nil
}

// Clear 删除槽位
func (m *MemoryCartMirror) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.saves++
	return nil
}

// Saves 写入次数
func (m *MemoryCartMirror) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
