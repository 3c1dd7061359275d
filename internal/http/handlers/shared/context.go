package shared

import (
	"strconv"
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

// SessionUserKey 中间件写入的当前会话用户键
const SessionUserKey = "session_user"

// GetSessionUser 读取会话中间件写入的当前用户
func GetSessionUser(c *gin.Context) (*models.SessionUser, bool) {
	value, exists := c.Get(SessionUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.SessionUser)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// ParseUintParam 解析路径参数中的正整数 ID，失败时直接返回 400。
func ParseUintParam(c *gin.Context, name, invalidMsg string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, invalidMsg, nil)
		return 0, false
	}
	return uint(id), true
}
