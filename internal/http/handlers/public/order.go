package public

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMyOrders 我的订单列表
func (h *Handler) ListMyOrders(c *gin.Context) {
	filter, page, pageSize := handlershared.OrderListFilterFromQuery(c)
	filter.SortBy = strings.TrimSpace(c.Query("sort_by"))

	result, err := h.OrderDesk.ListMyOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "Failed to load orders")
		return
	}
	handlershared.RespondOrderPage(c, result, page, pageSize)
}

// GetOrderDetail 订单详情
func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id", "Invalid order id")
	if !ok {
		return
	}
	view, err := h.OrderDesk.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to load order")
		return
	}
	response.Success(c, view)
}

// CancelOrder 取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id", "Invalid order id")
	if !ok {
		return
	}
	order, err := h.OrderDesk.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel order")
		return
	}
	response.Success(c, gin.H{"order": order})
}
