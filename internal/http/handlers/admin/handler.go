package admin

import "github.com/storefront-next/internal/provider"

// Handler 后台管理接口处理器入口
// 说明：该处理器仅用于卖家/管理员的订单管理 API，权限由会话角色决定。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
