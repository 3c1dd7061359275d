package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storefront-next/internal/models"
)

// ErrMirrorCorrupt 槽位内容无法解析为购物车行数组
var ErrMirrorCorrupt = errors.New("cart mirror slot is corrupt")

// CartMirror 购物车持久化镜像（单一命名槽位，后写覆盖）
type CartMirror interface {
	// Load 读取槽位，槽位不存在时返回空切片
	Load(ctx context.Context) ([]models.CartItem, error)
	// Save 以完整购物车覆盖槽位
	Save(ctx context.Context, items []models.CartItem) error
	// Clear 删除槽位
	Clear(ctx context.Context) error
}

func encodeItems(items []models.CartItem) ([]byte, error) {
	if items == nil {
		items = []models.CartItem{}
	}
	return json.Marshal(items)
}

func decodeItems(raw []byte) ([]models.CartItem, error) {
	if len(raw) == 0 {
		return []models.CartItem{}, nil
	}
	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMirrorCorrupt, err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}
