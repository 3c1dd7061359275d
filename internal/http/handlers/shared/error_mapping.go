package shared

import (
	"errors"

	"github.com/storefront-next/internal/backend"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Msg    string
}

// CommonErrorRules 通用业务错误映射
var CommonErrorRules = []MappedError{
	{Target: service.ErrUnauthenticated, Code: response.CodeUnauthorized, Msg: "Please login to continue"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Msg: "Access denied for your role"},
	{Target: service.ErrCartEmpty, Code: response.CodeBadRequest, Msg: "Your cart is empty"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Msg: "Item is not in the cart"},
	{Target: service.ErrIllegalTransition, Code: response.CodeBadRequest, Msg: "This status change is not allowed"},
	{Target: service.ErrOrderCancelNotAllowed, Code: response.CodeBadRequest, Msg: "Order can only be cancelled while pending or confirmed"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Msg: "Order not found"},
	{Target: service.ErrInvalidOrderStatus, Code: response.CodeBadRequest, Msg: "Invalid order status"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Msg: "Product not found"},
	{Target: service.ErrProductUnavailable, Code: response.CodeBadRequest, Msg: "Product is currently unavailable"},
	{Target: service.ErrCartNotValidated, Code: response.CodeConflict, Msg: "Please validate your cart before placing the order"},
	{Target: service.ErrNoRemediation, Code: response.CodeBadRequest, Msg: "No stock issue to fix for this product, please validate again"},
	{Target: backend.ErrSessionCookieInvalid, Code: response.CodeBadRequest, Msg: "Invalid session cookie"},
}

// BackendErrorRules 直接调用后端（未经流程封装）时的错误映射
var BackendErrorRules = []MappedError{
	{Target: backend.ErrTransport, Code: response.CodeUnavailable, Msg: UnreachableMsg},
	{Target: backend.ErrServer, Code: response.CodeUnavailable, Msg: UnreachableMsg},
	{Target: backend.ErrResponseInvalid, Code: response.CodeUnavailable, Msg: UnreachableMsg},
}

// UnreachableMsg 后端不可达提示
const UnreachableMsg = "Unable to reach the store. Please check your connection and try again."

// ConcatErrorRules 合并多组映射规则
func ConcatErrorRules(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// RespondServiceError 将服务层错误映射为统一响应
// FormError 与 FlowError 优先处理，其余按规则表匹配，未命中时使用兜底消息。
func RespondServiceError(c *gin.Context, err error, rules []MappedError, fallbackMsg string) {
	var formErr *service.FormError
	if errors.As(err, &formErr) {
		RespondErrorWithData(c, response.CodeBadRequest, "Please fix the highlighted fields", gin.H{"fields": formErr.Fields}, nil)
		return
	}
	if flowErr, ok := service.AsFlowError(err); ok {
		respondFlowError(c, flowErr)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Msg, nil)
			return
		}
	}
	RespondError(c, response.CodeInternal, fallbackMsg, err)
}

func respondFlowError(c *gin.Context, flowErr *service.FlowError) {
	switch flowErr.Kind {
	case service.FlowValidation:
		RespondErrorWithData(c, response.CodeConflict, flowErr.Message, gin.H{
			"kind":          flowErr.Kind,
			"discrepancies": flowErr.Discrepancies,
		}, flowErr)
	case service.FlowSubmission:
		RespondErrorWithData(c, response.CodeBadRequest, flowErr.Message, gin.H{"kind": flowErr.Kind}, flowErr)
	case service.FlowTransition:
		data := gin.H{"kind": flowErr.Kind}
		if flowErr.Order != nil {
			data["order"] = flowErr.Order
		}
		RespondErrorWithData(c, response.CodeConflict, flowErr.Message, data, flowErr)
	default:
		RespondErrorWithData(c, response.CodeUnavailable, flowErr.Message, gin.H{"kind": flowErr.Kind}, flowErr)
	}
}
