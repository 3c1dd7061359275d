package public

import (
	"context"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"

	"github.com/gin-gonic/gin"
)

// SessionRequest 设置后端会话请求
type SessionRequest struct {
	Cookie string `json:"cookie" binding:"required"`
}

// Health 存活检查，附带 Redis 连通状态（不可达不影响存活）
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	redisStatus, err := cache.Status(ctx)
	if err != nil {
		logger.C(ctx).Warnw("health_redis_ping_failed", "error", err)
	}
	response.Success(c, gin.H{"status": "ok", "redis": redisStatus})
}

// GetSession 当前会话用户与管理能力
func (h *Handler) GetSession(c *gin.Context) {
	user := h.Backend.CurrentUser(c.Request.Context())
	response.Success(c, gin.H{
		"authenticated": user != nil,
		"user":          user,
		"capabilities":  h.OrderDesk.CapabilitiesFor(user),
	})
}

// PutSession 设置后端会话 Cookie
func (h *Handler) PutSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Session cookie is required", err)
		return
	}
	if err := h.Backend.SetSession(strings.TrimSpace(req.Cookie)); err != nil {
		respondServiceError(c, err, "Failed to update session")
		return
	}
	h.GetSession(c)
}

// DeleteSession 清除后端会话
func (h *Handler) DeleteSession(c *gin.Context) {
	h.Backend.ClearSession()
	response.Success(c, gin.H{"authenticated": false})
}
