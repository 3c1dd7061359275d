package public

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RemediateRequest 按上次校验结果修正购物车行
type RemediateRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// ValidationResponse 库存校验响应
type ValidationResponse struct {
	OK bool `json:"ok"`
	service.ValidationResult
}

// ValidateCheckout 结算前库存校验
func (h *Handler) ValidateCheckout(c *gin.Context) {
	result, err := h.CheckoutService.Validate(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to validate cart")
		return
	}
	response.Success(c, ValidationResponse{OK: result.OK(), ValidationResult: result})
}

// RemediateCheckout 按差异建议修正数量或移除商品
func (h *Handler) RemediateCheckout(c *gin.Context) {
	var req RemediateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Product id is required", err)
		return
	}
	cart, err := h.CheckoutService.Remediate(c.Request.Context(), req.ProductID)
	if err != nil {
		respondServiceError(c, err, "Failed to update cart")
		return
	}
	response.Success(c, newCartResponse(cart))
}

// SubmitCheckout 提交订单
func (h *Handler) SubmitCheckout(c *gin.Context) {
	var form service.CheckoutForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid checkout form", err)
		return
	}
	order, err := h.CheckoutService.Submit(c.Request.Context(), form)
	if err != nil {
		respondServiceError(c, err, "Failed to place order")
		return
	}
	response.Success(c, gin.H{"order": order})
}
