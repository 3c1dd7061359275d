package service

import (
	"context"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

const defaultSubmitTimeout = 30 * time.Second

// OrderSubmissionPipeline 将购物车快照提交为订单
type OrderSubmissionPipeline struct {
	orders  OrderGateway
	cart    *CartStore
	timeout time.Duration
}

// NewOrderSubmissionPipeline 创建下单流水线
func NewOrderSubmissionPipeline(orders OrderGateway, cart *CartStore, timeout time.Duration) *OrderSubmissionPipeline {
	if timeout <= 0 {
		timeout = defaultSubmitTimeout
	}
	return &OrderSubmissionPipeline{orders: orders, cart: cart, timeout: timeout}
}

// Submit 提交订单：成功后清空购物车一次；失败时购物车保持不变且不重试
// 请求与调用方的取消解耦，只受超时约束
func (p *OrderSubmissionPipeline) Submit(ctx context.Context, snapshot models.Cart, form CheckoutForm) (*models.Order, error) {
	if snapshot.IsEmpty() {
		return nil, ErrCartEmpty
	}
	req := buildCreateOrderRequest(snapshot, form)

	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	order, err := p.orders.CreateOrder(submitCtx, req)
	if err != nil {
		flowErr := classifyRemote(err, FlowSubmission)
		logger.C(ctx).Warnw("order_submit_failed",
			"items", len(req.Items),
			"kind", flowErr.Kind,
			"error", err,
		)
		return nil, flowErr
	}

	p.cart.Clear(submitCtx)
	logger.C(ctx).Infow("order_submitted",
		"order_id", order.ID,
		"items", len(req.Items),
		"total_amount", order.TotalAmount.String(),
	)
	return order, nil
}
