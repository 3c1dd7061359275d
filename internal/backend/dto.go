package backend

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/storefront-next/internal/models"
)

// 后端 LocalDateTime 不带时区，按本地时间解析
var localDateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// localDateTime 兼容 Spring LocalDateTime 的时间字段
type localDateTime struct {
	time.Time
	set bool
}

func (t *localDateTime) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var lastErr error
	for _, layout := range localDateTimeLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			t.Time = parsed
			t.set = true
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t localDateTime) ptr() *time.Time {
	if !t.set {
		return nil
	}
	v := t.Time
	return &v
}

type productDTO struct {
	ID               uint         `json:"id"`
	Name             string       `json:"name"`
	Brand            string       `json:"brand"`
	Description      string       `json:"description"`
	Category         string       `json:"category"`
	Price            models.Money `json:"price"`
	StockQuantity    int          `json:"stockQuantity"`
	ProductAvailable bool         `json:"productAvailable"`
}

func (p productDTO) toModel() models.Product {
	return models.Product{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Description:   p.Description,
		Category:      p.Category,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Available:     p.ProductAvailable,
	}
}

// springPage Spring Data Page 序列化结构
type springPage[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	Last          *bool `json:"last"`
}

func (p springPage[T]) isLast() bool {
	if p.Last != nil {
		return *p.Last
	}
	return p.Number+1 >= p.TotalPages
}

type orderItemDTO struct {
	ID           uint         `json:"id"`
	ProductID    uint         `json:"productId"`
	ProductName  string       `json:"productName"`
	Quantity     int          `json:"quantity"`
	PriceAtOrder models.Money `json:"priceAtOrder"`
	Subtotal     models.Money `json:"subtotal"`
}

type orderDTO struct {
	ID              uint           `json:"id"`
	OrderDate       localDateTime  `json:"orderDate"`
	Status          string         `json:"status"`
	TotalAmount     models.Money   `json:"totalAmount"`
	ShippingAddress string         `json:"shippingAddress"`
	BillingAddress  string         `json:"billingAddress"`
	PhoneNumber     string         `json:"phoneNumber"`
	Notes           string         `json:"notes"`
	DeliveryDate    localDateTime  `json:"deliveryDate"`
	PaymentStatus   string         `json:"paymentStatus"`
	PaymentMethod   string         `json:"paymentMethod"`
	Items           []orderItemDTO `json:"items"`
	Username        string         `json:"username"`
}

func (o orderDTO) toModel() *models.Order {
	order := &models.Order{
		ID:              o.ID,
		Status:          models.OrderStatus(strings.ToUpper(strings.TrimSpace(o.Status))),
		PaymentStatus:   models.PaymentStatus(strings.ToUpper(strings.TrimSpace(o.PaymentStatus))),
		PaymentMethod:   models.PaymentMethod(strings.ToUpper(strings.TrimSpace(o.PaymentMethod))),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PhoneNumber:     o.PhoneNumber,
		Notes:           o.Notes,
		Username:        o.Username,
		OrderDate:       o.OrderDate.Time,
		DeliveryDate:    o.DeliveryDate.ptr(),
		Items:           make([]models.OrderItem, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder,
			Subtotal:     item.Subtotal,
		})
	}
	return order
}

type orderLineDTO struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type createOrderDTO struct {
	Items           []orderLineDTO `json:"items"`
	ShippingAddress string         `json:"shippingAddress"`
	BillingAddress  string         `json:"billingAddress,omitempty"`
	PhoneNumber     string         `json:"phoneNumber"`
	Notes           string         `json:"notes,omitempty"`
	PaymentMethod   string         `json:"paymentMethod"`
}

type updateStatusDTO struct {
	Status string `json:"status"`
}

type userDTO struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (u userDTO) toModel() *models.SessionUser {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return &models.SessionUser{ID: u.ID, Username: u.Username, Email: u.Email, Roles: roles}
}
