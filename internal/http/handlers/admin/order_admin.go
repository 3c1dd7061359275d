package admin

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	filter, page, pageSize := handlershared.OrderListFilterFromQuery(c)
	if raw := strings.TrimSpace(c.Query("status")); raw != "" && !strings.EqualFold(raw, "ALL") {
		status, ok := models.ParseOrderStatus(raw)
		if !ok {
			respondError(c, response.CodeBadRequest, "Invalid order status", nil)
			return
		}
		filter.Status = status
	}

	result, err := h.OrderDesk.ListAllOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "Failed to load orders")
		return
	}
	handlershared.RespondOrderPage(c, result, page, pageSize)
}

// AdminUpdateOrderStatus 管理端更新订单状态
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id", "Invalid order id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Status is required", err)
		return
	}
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		respondError(c, response.CodeBadRequest, "Invalid order status", nil)
		return
	}

	order, err := h.OrderDesk.ChangeStatus(c.Request.Context(), id, status)
	if err != nil {
		respondServiceError(c, err, "Failed to update order status")
		return
	}
	response.Success(c, gin.H{"order": order})
}

// AdminDeleteOrder 管理端删除订单
func (h *Handler) AdminDeleteOrder(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id", "Invalid order id")
	if !ok {
		return
	}
	if err := h.OrderDesk.DeleteOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete order")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
