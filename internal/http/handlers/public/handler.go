package public

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 前台接口处理器入口
// 说明：该处理器服务于本地 UI（购物车、结算、我的订单）。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	handlershared.RespondServiceError(c, err, publicErrorRules, fallbackMsg)
}

var publicErrorRules = handlershared.ConcatErrorRules(
	handlershared.CommonErrorRules,
	handlershared.BackendErrorRules,
)
