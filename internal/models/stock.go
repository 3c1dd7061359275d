package models

import (
	"fmt"

	"github.com/storefront-next/internal/constants"
)

// DiscrepancyKind 库存差异类型
type DiscrepancyKind string

// 库存差异类型常量
const (
	DiscrepancyNotFound              DiscrepancyKind = "NOT_FOUND"
	DiscrepancyUnavailable           DiscrepancyKind = "UNAVAILABLE"
	DiscrepancyInsufficientStock     DiscrepancyKind = "INSUFFICIENT_STOCK"
	DiscrepancyValidationUnavailable DiscrepancyKind = "VALIDATION_UNAVAILABLE"
)

// WarningKind 非阻塞提示类型
type WarningKind string

// 提示类型常量
const (
	WarningLowStock WarningKind = "LOW_STOCK"
)

// Remediation 建议的修正动作（由 UI 显式触发）
type Remediation struct {
	Action   string `json:"action"`             // reduce_quantity / remove_item
	Quantity int    `json:"quantity,omitempty"` // reduce_quantity 的目标数量
}

// StockDiscrepancy 阻塞结算的库存差异，每次校验重新生成，不持久化
type StockDiscrepancy struct {
	ProductID         uint            `json:"product_id,omitempty"`
	ProductName       string          `json:"product_name,omitempty"`
	Kind              DiscrepancyKind `json:"kind"`
	AvailableStock    *int            `json:"available_stock,omitempty"`
	RequestedQuantity *int            `json:"requested_quantity,omitempty"`
	Message           string          `json:"message"`
	Remediation       *Remediation    `json:"remediation,omitempty"`
}

// StockWarning 不阻塞结算的提示
type StockWarning struct {
	ProductID         uint        `json:"product_id"`
	ProductName       string      `json:"product_name"`
	Kind              WarningKind `json:"kind"`
	AvailableStock    int         `json:"available_stock"`
	RequestedQuantity int         `json:"requested_quantity"`
	Message           string      `json:"message"`
}

// NotFoundDiscrepancy 商品已不存在
func NotFoundDiscrepancy(item CartItem) StockDiscrepancy {
	return StockDiscrepancy{
		ProductID:   item.ProductID,
		ProductName: item.Name,
		Kind:        DiscrepancyNotFound,
		Message:     "Product no longer available",
		Remediation: &Remediation{Action: constants.RemediationRemoveItem},
	}
}

// UnavailableDiscrepancy 商品已下架
func UnavailableDiscrepancy(item CartItem) StockDiscrepancy {
	return StockDiscrepancy{
		ProductID:   item.ProductID,
		ProductName: item.Name,
		Kind:        DiscrepancyUnavailable,
		Message:     "Product is currently unavailable",
		Remediation: &Remediation{Action: constants.RemediationRemoveItem},
	}
}

// InsufficientStockDiscrepancy 库存不足，建议将数量降到可用库存
func InsufficientStockDiscrepancy(item CartItem, available int) StockDiscrepancy {
	requested := item.Quantity
	d := StockDiscrepancy{
		ProductID:         item.ProductID,
		ProductName:       item.Name,
		Kind:              DiscrepancyInsufficientStock,
		AvailableStock:    &available,
		RequestedQuantity: &requested,
		Message:           fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", available, requested),
	}
	if available > 0 {
		d.Remediation = &Remediation{Action: constants.RemediationReduceQuantity, Quantity: available}
	} else {
		d.Remediation = &Remediation{Action: constants.RemediationRemoveItem}
	}
	return d
}

// ValidationUnavailableDiscrepancy 目录拉取失败时的合成差异（无商品信息）
func ValidationUnavailableDiscrepancy() StockDiscrepancy {
	return StockDiscrepancy{
		Kind:    DiscrepancyValidationUnavailable,
		Message: "Failed to validate stock availability. Please try again.",
	}
}

// LowStockWarning 库存充足但偏低
func LowStockWarning(item CartItem, available int) StockWarning {
	return StockWarning{
		ProductID:         item.ProductID,
		ProductName:       item.Name,
		Kind:              WarningLowStock,
		AvailableStock:    available,
		RequestedQuantity: item.Quantity,
		Message:           fmt.Sprintf("Only %d left in stock", available),
	}
}
