package shared

import (
	"strconv"

	"github.com/storefront-next/internal/backend"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

// NormalizePagination 归一化分页参数。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// OrderListFilterFromQuery 读取 page/page_size（从 1 开始）并转换为后端分页（从 0 开始）
func OrderListFilterFromQuery(c *gin.Context) (backend.OrderListFilter, int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = NormalizePagination(page, pageSize)
	return backend.OrderListFilter{Page: page - 1, Size: pageSize}, page, pageSize
}

// RespondOrderPage 以统一分页结构返回订单列表
func RespondOrderPage(c *gin.Context, result *models.Page[models.Order], page, pageSize int) {
	if result == nil {
		response.SuccessWithPage(c, []models.Order{}, response.PaginationFromPage(page, pageSize, 0, 0))
		return
	}
	items := result.Items
	if items == nil {
		items = []models.Order{}
	}
	response.SuccessWithPage(c, items, response.PaginationFromPage(page, pageSize, result.TotalElements, result.TotalPages))
}
