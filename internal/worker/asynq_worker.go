package worker

import (
	"context"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

// OrderSnapshotRefresher 订单快照刷新
type OrderSnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context, orderID uint) error
}

// Consumer 异步任务消费者
// 不持有购物车：worker 进程不得写购物车镜像
type Consumer struct {
	Orders OrderSnapshotRefresher
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	if c == nil {
		return &Consumer{}
	}
	consumer := &Consumer{}
	if c.OrderDesk != nil {
		consumer.Orders = c.OrderDesk
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderRefresh, c.handleOrderRefresh)
}

func (c *Consumer) handleOrderRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderRefreshPayload(task)
	if err != nil {
		logger.Warnw("worker_order_refresh_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_refresh_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.Orders == nil {
		logger.Warnw("worker_order_refresh_skip_desk_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.Orders.RefreshSnapshot(ctx, payload.OrderID); err != nil {
		logger.Warnw("worker_order_refresh_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	logger.Debugw("worker_order_refreshed", "order_id", payload.OrderID)
	return nil
}
