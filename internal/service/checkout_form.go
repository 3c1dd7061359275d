package service

import (
	"strings"

	"github.com/storefront-next/internal/backend"
	"github.com/storefront-next/internal/models"
)

const phoneDigits = 10

// CheckoutForm 结账表单
type CheckoutForm struct {
	ShippingAddress string               `json:"shipping_address"`
	BillingAddress  string               `json:"billing_address"`
	PhoneNumber     string               `json:"phone_number"`
	Notes           string               `json:"notes"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
}

// Normalize 去除空白，补齐默认支付方式，账单地址缺省同收货地址
func (f CheckoutForm) Normalize() CheckoutForm {
	f.ShippingAddress = strings.TrimSpace(f.ShippingAddress)
	f.BillingAddress = strings.TrimSpace(f.BillingAddress)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	f.Notes = strings.TrimSpace(f.Notes)
	f.PaymentMethod = models.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(f.PaymentMethod))))
	if f.PaymentMethod == "" {
		f.PaymentMethod = models.PaymentMethodCashOnDelivery
	}
	if f.BillingAddress == "" {
		f.BillingAddress = f.ShippingAddress
	}
	return f
}

// Validate 校验表单，返回 *FormError
func (f CheckoutForm) Validate() error {
	f = f.Normalize()
	fields := map[string]string{}
	if f.ShippingAddress == "" {
		fields["shipping_address"] = "Shipping address is required"
	}
	if f.PhoneNumber == "" {
		fields["phone_number"] = "Phone number is required"
	} else if !isPhoneNumber(f.PhoneNumber) {
		fields["phone_number"] = "Phone number must be 10 digits"
	}
	if !f.PaymentMethod.Valid() {
		fields["payment_method"] = "Payment method is invalid"
	}
	if len(fields) > 0 {
		return &FormError{Fields: fields}
	}
	return nil
}

func isPhoneNumber(raw string) bool {
	if len(raw) != phoneDigits {
		return false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// buildCreateOrderRequest 由快照与表单组装下单请求，不携带价格
func buildCreateOrderRequest(snapshot models.Cart, form CheckoutForm) backend.CreateOrderRequest {
	form = form.Normalize()
	lines := make([]backend.OrderLine, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		lines = append(lines, backend.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return backend.CreateOrderRequest{
		Items:           lines,
		ShippingAddress: form.ShippingAddress,
		BillingAddress:  form.BillingAddress,
		PhoneNumber:     form.PhoneNumber,
		Notes:           form.Notes,
		PaymentMethod:   form.PaymentMethod,
	}
}
