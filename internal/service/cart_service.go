package service

import (
	"context"
	"errors"
	"sync"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// CartStore 单一购物车的内存权威副本，每次变更后同步写入镜像
type CartStore struct {
	mu     sync.Mutex
	items  []models.CartItem
	mirror repository.CartMirror
	// readOnly 镜像读取失败（非损坏）时置位，本进程内不再写镜像
	readOnly bool
}

// NewCartStore 从镜像加载购物车（仅读取一次）
// 镜像缺失或损坏时以空购物车启动，下一次变更会覆盖镜像
// 其他读取失败（如存储不可达）时同样以空购物车启动，但镜像保持只读，避免覆盖仍然有效的持久数据
func NewCartStore(ctx context.Context, mirror repository.CartMirror) *CartStore {
	store := &CartStore{mirror: mirror}
	if mirror == nil {
		return store
	}
	items, err := mirror.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrMirrorCorrupt):
		logger.C(ctx).Warnw("cart_mirror_corrupt", "error", err)
	case err != nil:
		store.readOnly = true
		logger.C(ctx).Warnw("cart_mirror_load_failed", "error", err, "mirror", "read_only")
	default:
		store.items = sanitizeCartItems(items)
	}
	return store
}

// sanitizeCartItems 去除无效行、合并重复商品、数量下限为 1
func sanitizeCartItems(items []models.CartItem) []models.CartItem {
	result := make([]models.CartItem, 0, len(items))
	positions := make(map[uint]int, len(items))
	for _, item := range items {
		if item.ProductID == 0 {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if idx, ok := positions[item.ProductID]; ok {
			result[idx].Quantity += item.Quantity
			continue
		}
		positions[item.ProductID] = len(result)
		result = append(result, item)
	}
	return result
}

// Snapshot 购物车深拷贝
func (s *CartStore) Snapshot() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.NewCart(s.items)
}

// AddItem 加入商品：已存在则数量 +1（不设上限），否则以数量 1 追加
func (s *CartStore) AddItem(ctx context.Context, product models.Product) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(product.ID); idx >= 0 {
		s.items[idx].Quantity++
	} else {
		s.items = append(s.items, product.ToCartItem())
	}
	return s.persistLocked(ctx)
}

// RemoveItem 删除整行，不存在时无操作
func (s *CartStore) RemoveItem(ctx context.Context, productID uint) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(productID)
	if idx < 0 {
		return models.NewCart(s.items)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return s.persistLocked(ctx)
}

// SetQuantity 设置数量，小于 1 时按 1 处理；不存在时无操作
func (s *CartStore) SetQuantity(ctx context.Context, productID uint, quantity int) models.Cart {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(productID)
	if idx < 0 {
		return models.NewCart(s.items)
	}
	s.items[idx].Quantity = quantity
	return s.persistLocked(ctx)
}

// Increment 数量 +1，已达最近一次已知库存时拒绝
func (s *CartStore) Increment(ctx context.Context, productID uint) (models.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(productID)
	if idx < 0 || s.items[idx].Quantity >= s.items[idx].StockQuantity {
		return models.NewCart(s.items), false
	}
	s.items[idx].Quantity++
	return s.persistLocked(ctx), true
}

// Decrement 数量 -1，最低为 1
func (s *CartStore) Decrement(ctx context.Context, productID uint) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(productID)
	if idx < 0 || s.items[idx].Quantity <= 1 {
		return models.NewCart(s.items)
	}
	s.items[idx].Quantity--
	return s.persistLocked(ctx)
}

// ApplyCatalog 用目录数据刷新每行的库存与可售状态，不改变数量
func (s *CartStore) ApplyCatalog(ctx context.Context, products []models.Product) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return models.Cart{Items: []models.CartItem{}}
	}
	index := models.IndexProducts(products)
	for i := range s.items {
		product, ok := index[s.items[i].ProductID]
		if !ok {
			s.items[i].Available = false
			continue
		}
		s.items[i].StockQuantity = product.StockQuantity
		s.items[i].Available = product.Available
	}
	return s.persistLocked(ctx)
}

// Clear 清空购物车并清除镜像
func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if s.mirror == nil {
		return
	}
	if s.readOnly {
		logger.C(ctx).Debugw("cart_mirror_write_skipped", "op", "clear")
		return
	}
	if err := s.mirror.Clear(ctx); err != nil {
		logger.C(ctx).Warnw("cart_mirror_clear_failed", "error", err)
	}
}

func (s *CartStore) indexLocked(productID uint) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// persistLocked 写入镜像后返回快照，写入失败只记录日志
func (s *CartStore) persistLocked(ctx context.Context) models.Cart {
	snapshot := models.NewCart(s.items)
	if s.mirror == nil {
		return snapshot
	}
	if s.readOnly {
		logger.C(ctx).Debugw("cart_mirror_write_skipped", "op", "save", "items", len(snapshot.Items))
		return snapshot
	}
	if err := s.mirror.Save(ctx, snapshot.Items); err != nil {
		logger.C(ctx).Warnw("cart_mirror_save_failed", "items", len(snapshot.Items), "error", err)
	}
	return snapshot
}
