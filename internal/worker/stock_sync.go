package worker

import (
	"context"
	"errors"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

// CartRefresher 购物车库存刷新
type CartRefresher interface {
	Refresh(ctx context.Context) (models.Cart, error)
}

// StockSyncService 周期刷新购物车库存快照
// 只能运行在持有 CartStore 的进程中（all / api），镜像只有这一个写入方
type StockSyncService struct {
	cart     CartRefresher
	interval time.Duration
}

// NewStockSyncService 创建库存同步服务
func NewStockSyncService(cart CartRefresher, interval time.Duration) (*StockSyncService, error) {
	if cart == nil {
		return nil, errors.New("cart refresher is nil")
	}
	if interval <= 0 {
		return nil, errors.New("stock sync interval must be positive")
	}
	return &StockSyncService{cart: cart, interval: interval}, nil
}

// Name 服务名称
func (s *StockSyncService) Name() string {
	return "cart_stock_sync"
}

// Start 启动时同步一次，之后按间隔同步直到 ctx 结束
func (s *StockSyncService) Start(ctx context.Context) error {
	runStockSyncLoop(ctx, s.cart, s.interval)
	return nil
}

// Stop 随 ctx 结束退出，无需额外处理
func (s *StockSyncService) Stop(_ context.Context) error {
	return nil
}

func runStockSyncLoop(ctx context.Context, cart CartRefresher, interval time.Duration) {
	syncCartStock(ctx, cart)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncCartStock(ctx, cart)
		}
	}
}

// syncCartStock 刷新一次购物车库存快照
func syncCartStock(ctx context.Context, cart CartRefresher) {
	snapshot, err := cart.Refresh(ctx)
	if err != nil {
		logger.Warnw("cart_stock_sync_failed", "error", err)
		return
	}
	attention := 0
	for _, item := range snapshot.Items {
		if !item.Available || item.Quantity > item.StockQuantity {
			attention++
		}
	}
	logger.Debugw("cart_stock_synced", "items", len(snapshot.Items), "attention", attention)
}
