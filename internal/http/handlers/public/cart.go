package public

import (
	"fmt"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// SetCartQuantityRequest 修改数量请求（小于 1 时按 1 处理）
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartItemResponse 购物车行响应
type CartItemResponse struct {
	models.CartItem
	Subtotal models.Money `json:"subtotal"`
}

// CartResponse 购物车响应
type CartResponse struct {
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalAmount   models.Money       `json:"total_amount"`
}

func newCartResponse(cart models.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemResponse{CartItem: item, Subtotal: item.Subtotal()})
	}
	return CartResponse{
		Items:         items,
		TotalQuantity: cart.TotalQuantity(),
		TotalAmount:   cart.TotalAmount(),
	}
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	response.Success(c, newCartResponse(h.CartStore.Snapshot()))
}

// AddCartItem 加入购物车（从目录拉取最新商品信息）
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Product id is required", err)
		return
	}
	cart, err := h.CartSync.AddProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		respondServiceError(c, err, "Failed to add product to cart")
		return
	}
	response.Success(c, newCartResponse(cart))
}

// SetCartItemQuantity 修改购物车行数量
func (h *Handler) SetCartItemQuantity(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "product_id", "Invalid product id")
	if !ok {
		return
	}
	var req SetCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Quantity is required", err)
		return
	}
	response.Success(c, newCartResponse(h.CartStore.SetQuantity(c.Request.Context(), productID, req.Quantity)))
}

// IncrementCartItem 数量 +1（不超过已知库存）
func (h *Handler) IncrementCartItem(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "product_id", "Invalid product id")
	if !ok {
		return
	}
	cart, changed := h.CartStore.Increment(c.Request.Context(), productID)
	if !changed {
		if item, found := cart.Find(productID); found {
			response.SuccessWithMsg(c, fmt.Sprintf("Only %d %s in stock", item.StockQuantity, item.Name), newCartResponse(cart))
			return
		}
	}
	response.Success(c, newCartResponse(cart))
}

// DecrementCartItem 数量 -1（最少为 1）
func (h *Handler) DecrementCartItem(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "product_id", "Invalid product id")
	if !ok {
		return
	}
	response.Success(c, newCartResponse(h.CartStore.Decrement(c.Request.Context(), productID)))
}

// RemoveCartItem 删除购物车行
func (h *Handler) RemoveCartItem(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "product_id", "Invalid product id")
	if !ok {
		return
	}
	response.Success(c, newCartResponse(h.CartStore.RemoveItem(c.Request.Context(), productID)))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	h.CartStore.Clear(c.Request.Context())
	response.Success(c, newCartResponse(h.CartStore.Snapshot()))
}

// RefreshCart 按目录刷新购物车的库存与可售状态
func (h *Handler) RefreshCart(c *gin.Context) {
	cart, err := h.CartSync.Refresh(c.Request.Context())
	if err != nil {
		handlershared.RespondErrorWithData(c, response.CodeUnavailable, handlershared.UnreachableMsg, newCartResponse(cart), err)
		return
	}
	response.Success(c, newCartResponse(cart))
}
