package service

import (
	"context"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

// orderTransitions 订单状态流转表，客户端与服务端共用同一张表
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

// NextStates 允许流转到的状态（返回副本，终态或未知状态为空）
func NextStates(status models.OrderStatus) []models.OrderStatus {
	next := orderTransitions[status]
	result := make([]models.OrderStatus, len(next))
	copy(result, next)
	return result
}

// CanTransition 判断状态流转是否合法
func CanTransition(from, to models.OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal 是否终态
func IsTerminal(status models.OrderStatus) bool {
	next, ok := orderTransitions[status]
	return ok && len(next) == 0
}

// CanCustomerCancel 顾客是否可取消
func CanCustomerCancel(status models.OrderStatus) bool {
	return status == models.OrderStatusPending || status == models.OrderStatusConfirmed
}

// OrderLifecycle 订单状态变更，合法性以流转表为准，最终以服务端为准
type OrderLifecycle struct {
	orders  OrderGateway
	timeout time.Duration
}

// NewOrderLifecycle 创建订单状态变更服务
func NewOrderLifecycle(orders OrderGateway, timeout time.Duration) *OrderLifecycle {
	if timeout <= 0 {
		timeout = defaultSubmitTimeout
	}
	return &OrderLifecycle{orders: orders, timeout: timeout}
}

// RequestTransition 请求将订单从 current 变更为 target
// 非法流转直接返回 ErrIllegalTransition，不发起请求；成功后重新拉取订单
func (l *OrderLifecycle) RequestTransition(ctx context.Context, orderID uint, current, target models.OrderStatus) (*models.Order, error) {
	if !CanTransition(current, target) {
		return nil, ErrIllegalTransition
	}
	return l.apply(ctx, orderID, target, func(c context.Context) (*models.Order, error) {
		return l.orders.SetOrderStatus(c, orderID, target)
	}, "order_status_transition", "from", current, "to", target)
}

// Cancel 顾客取消订单，仅 PENDING/CONFIRMED 可取消
func (l *OrderLifecycle) Cancel(ctx context.Context, orderID uint, current models.OrderStatus) (*models.Order, error) {
	if !CanCustomerCancel(current) {
		return nil, ErrOrderCancelNotAllowed
	}
	return l.apply(ctx, orderID, models.OrderStatusCancelled, func(c context.Context) (*models.Order, error) {
		return l.orders.CancelOrder(c, orderID)
	}, "order_cancel", "from", current)
}

// apply 执行变更并重新拉取订单；服务端拒绝时附带最新订单
// 变更已被确认但重新拉取失败时，返回变更接口的订单并标记 Stale
func (l *OrderLifecycle) apply(ctx context.Context, orderID uint, target models.OrderStatus, mutate func(context.Context) (*models.Order, error), event string, kv ...interface{}) (*models.Order, error) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()

	fields := append([]interface{}{"order_id", orderID}, kv...)
	acked, err := mutate(runCtx)
	if err != nil {
		flowErr := classifyRemote(err, FlowTransition)
		if flowErr.Kind == FlowTransition {
			if fresh, fetchErr := l.orders.GetOrder(runCtx, orderID); fetchErr == nil {
				flowErr.Order = fresh
			} else {
				logger.C(ctx).Warnw(event+"_refetch_failed", append(fields, "error", fetchErr)...)
			}
		}
		logger.C(ctx).Warnw(event+"_failed", append(fields, "kind", flowErr.Kind, "error", err)...)
		return nil, flowErr
	}

	fresh, err := l.orders.GetOrder(runCtx, orderID)
	if err != nil {
		logger.C(ctx).Warnw(event+"_refetch_failed", append(fields, "error", err)...)
		stale := &models.Order{ID: orderID, Status: target}
		if acked != nil {
			copied := *acked
			stale = &copied
		}
		stale.Stale = true
		logger.C(ctx).Infow(event, append(fields, "status", stale.Status, "stale", true)...)
		return stale, nil
	}
	logger.C(ctx).Infow(event, append(fields, "status", fresh.Status)...)
	return fresh, nil
}
