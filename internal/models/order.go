package models

import (
	"strings"
	"time"
)

// OrderStatus 订单状态
type OrderStatus string

// 订单状态常量
const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses 全部订单状态（按流转顺序）
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus 解析订单状态（忽略大小写），未知值返回 false
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range OrderStatuses {
		if s == candidate {
			return s, true
		}
	}
	return "", false
}

// PaymentStatus 支付状态（仅展示）
type PaymentStatus string

// 支付状态常量
const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentMethod 支付方式
type PaymentMethod string

// 支付方式常量
const (
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard      PaymentMethod = "DEBIT_CARD"
	PaymentMethodUPI            PaymentMethod = "UPI"
	PaymentMethodNetBanking     PaymentMethod = "NET_BANKING"
)

// Valid 是否为已知支付方式
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCashOnDelivery, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodUPI, PaymentMethodNetBanking:
		return true
	}
	return false
}

// Order 服务端订单视图
type Order struct {
	ID              uint          `json:"id"`                      // 订单ID
	Status          OrderStatus   `json:"status"`                  // 订单状态
	PaymentStatus   PaymentStatus `json:"payment_status"`          // 支付状态
	PaymentMethod   PaymentMethod `json:"payment_method"`          // 支付方式
	Items           []OrderItem   `json:"items"`                   // 订单项
	TotalAmount     Money         `json:"total_amount"`            // 服务端计算的总额
	ShippingAddress string        `json:"shipping_address"`        // 收货地址
	BillingAddress  string        `json:"billing_address"`         // 账单地址
	PhoneNumber     string        `json:"phone_number"`            // 联系电话
	Notes           string        `json:"notes,omitempty"`         // 备注
	Username        string        `json:"username,omitempty"`      // 下单用户
	OrderDate       time.Time     `json:"order_date"`              // 下单时间
	DeliveryDate    *time.Time    `json:"delivery_date,omitempty"` // 送达时间
	// Stale 服务端已确认变更但未能重新拉取，内容为变更接口的返回值
	Stale bool `json:"stale,omitempty"`
}

// OrderItem 订单项（服务端下单时定价）
type OrderItem struct {
	ID           uint   `json:"id"`
	ProductID    uint   `json:"product_id"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder Money  `json:"price_at_order"`
	Subtotal     Money  `json:"subtotal"`
}
