package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/storefront-next/internal/backend"
	"github.com/storefront-next/internal/models"
)

var (
	ErrIllegalTransition     = errors.New("illegal order status transition")
	ErrCartEmpty             = errors.New("cart is empty")
	ErrCartItemNotFound      = errors.New("cart item not found")
	ErrUnauthenticated       = errors.New("session is not authenticated")
	ErrForbidden             = errors.New("operation not permitted for session roles")
	ErrOrderCancelNotAllowed = errors.New("order can not be cancelled in its current status")
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidOrderStatus    = errors.New("invalid order status")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductUnavailable    = errors.New("product is unavailable")
	ErrNoRemediation         = errors.New("no remediation available for product")
	ErrStockNotValidated     = errors.New("stock validation failed")
	ErrCartNotValidated      = errors.New("cart has no passing stock validation")
)

// FlowErrorKind 流程错误类型
type FlowErrorKind string

// 流程错误类型常量
const (
	FlowValidation FlowErrorKind = "validation"
	FlowSubmission FlowErrorKind = "submission"
	FlowTransition FlowErrorKind = "transition"
	FlowTransport  FlowErrorKind = "transport"
)

// FlowError 提交、状态变更等流程的可预期失败，Message 可直接展示给用户
type FlowError struct {
	Kind    FlowErrorKind
	Message string
	// Order 状态变更被拒绝后重新拉取的订单（拉取失败时为 nil）
	Order *models.Order
	// Discrepancies 提交前复核发现的库存差异
	Discrepancies []models.StockDiscrepancy
	Err           error
}

// Error 实现 error
func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 返回底层错误
func (e *FlowError) Unwrap() error {
	return e.Err
}

// AsFlowError 提取 FlowError
func AsFlowError(err error) (*FlowError, bool) {
	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		return flowErr, true
	}
	return nil, false
}

// FormError 结账表单字段校验失败
type FormError struct {
	Fields map[string]string
}

// Error 实现 error
func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "checkout form invalid: " + strings.Join(parts, "; ")
}

// classifyRemote 将后端错误归类为面向用户的流程错误
// rejectedKind 为服务端拒绝（4xx）时使用的类型
func classifyRemote(err error, rejectedKind FlowErrorKind) *FlowError {
	if apiErr, ok := backend.AsAPIError(err); ok && errors.Is(err, backend.ErrRejected) {
		return &FlowError{Kind: rejectedKind, Message: apiErr.UserMessage(), Err: err}
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		return &FlowError{Kind: FlowTransport, Message: apiErr.UserMessage(), Err: err}
	}
	return &FlowError{
		Kind:    FlowTransport,
		Message: "Unable to reach the store. Please check your connection and try again.",
		Err:     err,
	}
}
