package service

import (
	"context"

	"github.com/storefront-next/internal/backend"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/models"
)

// Catalog 商品目录（服务端为准）
type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

// OrderGateway 远端订单服务
type OrderGateway interface {
	CreateOrder(ctx context.Context, req backend.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, filter backend.OrderListFilter) (*models.Page[models.Order], error)
	ListAllOrders(ctx context.Context, filter backend.OrderListFilter) (*models.Page[models.Order], error)
	CancelOrder(ctx context.Context, id uint) (*models.Order, error)
	SetOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
}

// SessionGate 会话判定
type SessionGate interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *models.SessionUser
}

// Authorizer 角色能力判定
type Authorizer interface {
	EnforceRoles(roles []string, obj, act string) (bool, error)
}

// OrderSnapshotStore 订单视图缓存
type OrderSnapshotStore interface {
	Get(ctx context.Context, id uint) (*cache.OrderSnapshot, bool, error)
	Put(ctx context.Context, order *models.Order) error
	Evict(ctx context.Context, id uint) error
}

// OrderRefreshEnqueuer 订单刷新任务投递
type OrderRefreshEnqueuer interface {
	EnqueueOrderRefresh(ctx context.Context, orderID uint) error
}
