package service

import (
	"context"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

// CartSync 购物车与商品目录之间的同步
type CartSync struct {
	cart    *CartStore
	catalog Catalog
}

// NewCartSync 创建购物车同步服务
func NewCartSync(cart *CartStore, catalog Catalog) *CartSync {
	return &CartSync{cart: cart, catalog: catalog}
}

// AddProduct 按商品ID拉取最新目录数据后加入购物车
func (s *CartSync) AddProduct(ctx context.Context, productID uint) (models.Cart, error) {
	if productID == 0 {
		return models.Cart{}, ErrProductNotFound
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return models.Cart{}, classifyRemote(err, FlowTransport)
	}
	if product == nil {
		return models.Cart{}, ErrProductNotFound
	}
	if !product.Available {
		return models.Cart{}, ErrProductUnavailable
	}
	return s.cart.AddItem(ctx, *product), nil
}

// Refresh 以一次目录拉取刷新购物车中的库存与可售状态
func (s *CartSync) Refresh(ctx context.Context) (models.Cart, error) {
	if s.cart.Snapshot().IsEmpty() {
		return models.Cart{Items: []models.CartItem{}}, nil
	}
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		logger.C(ctx).Warnw("cart_refresh_fetch_failed", "error", err)
		return s.cart.Snapshot(), classifyRemote(err, FlowTransport)
	}
	return s.cart.ApplyCatalog(ctx, products), nil
}
