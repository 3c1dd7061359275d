package service

import (
	"context"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

// ValidationResult 库存校验结果，不持久化
type ValidationResult struct {
	Discrepancies []models.StockDiscrepancy `json:"discrepancies"`
	Warnings      []models.StockWarning     `json:"warnings"`
	CheckedAt     time.Time                 `json:"checked_at"`
}

// OK 无阻塞差异
func (r ValidationResult) OK() bool {
	return len(r.Discrepancies) == 0
}

// Find 查找指定商品的差异
func (r ValidationResult) Find(productID uint) (models.StockDiscrepancy, bool) {
	for _, d := range r.Discrepancies {
		if d.ProductID == productID {
			return d, true
		}
	}
	return models.StockDiscrepancy{}, false
}

// StockValidator 结算前的库存校验，只读不改购物车
type StockValidator struct {
	catalog           Catalog
	lowStockThreshold int
}

// NewStockValidator 创建库存校验器
func NewStockValidator(catalog Catalog, lowStockThreshold int) *StockValidator {
	return &StockValidator{catalog: catalog, lowStockThreshold: lowStockThreshold}
}

// Validate 以一次目录拉取比对购物车每一行
func (v *StockValidator) Validate(ctx context.Context, cart models.Cart) ValidationResult {
	result := ValidationResult{
		Discrepancies: []models.StockDiscrepancy{},
		Warnings:      []models.StockWarning{},
		CheckedAt:     time.Now(),
	}
	if cart.IsEmpty() {
		return result
	}

	products, err := v.catalog.ListProducts(ctx)
	if err != nil {
		logger.C(ctx).Warnw("stock_validation_fetch_failed", "items", len(cart.Items), "error", err)
		result.Discrepancies = append(result.Discrepancies, models.ValidationUnavailableDiscrepancy())
		return result
	}

	index := models.IndexProducts(products)
	for _, item := range cart.Items {
		product, ok := index[item.ProductID]
		switch {
		case !ok:
			result.Discrepancies = append(result.Discrepancies, models.NotFoundDiscrepancy(item))
		case !product.Available:
			result.Discrepancies = append(result.Discrepancies, models.UnavailableDiscrepancy(item))
		case product.StockQuantity < item.Quantity:
			result.Discrepancies = append(result.Discrepancies, models.InsufficientStockDiscrepancy(item, product.StockQuantity))
		case product.StockQuantity <= v.lowStockThreshold:
			result.Warnings = append(result.Warnings, models.LowStockWarning(item, product.StockQuantity))
		}
	}
	if !result.OK() {
		logger.C(ctx).Infow("stock_validation_discrepancies", "count", len(result.Discrepancies))
	}
	return result
}
