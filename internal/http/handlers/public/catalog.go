package public

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品列表（透传后端目录）
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.Backend.ListProducts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load products")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	response.Success(c, products)
}
