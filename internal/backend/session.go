package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

// ErrSessionCookieInvalid 会话 Cookie 格式错误
var ErrSessionCookieInvalid = errors.New("session cookie invalid")

// SetSession 以 "name=value; name2=value2" 形式设置会话 Cookie，并清空当前用户缓存
func (c *Client) SetSession(raw string) error {
	parsed := map[string]string{}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("%w: %q", ErrSessionCookieInvalid, part)
		}
		parsed[name] = strings.TrimSpace(value)
	}
	if len(parsed) == 0 {
		return fmt.Errorf("%w: empty", ErrSessionCookieInvalid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies = parsed
	c.resetUserLocked()
	return nil
}

// ClearSession 清除会话
func (c *Client) ClearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies = map[string]string{}
	c.resetUserLocked()
}

// HasSession 是否持有会话 Cookie
func (c *Client) HasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cookies) > 0
}

// IsAuthenticated 当前会话是否已登录
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.CurrentUser(ctx) != nil
}

// CurrentUser 当前登录用户，未登录或后端不可达时返回 nil
func (c *Client) CurrentUser(ctx context.Context) *models.SessionUser {
	if user, ok := c.cachedUser(); ok {
		return user
	}
	if !c.HasSession() {
		return nil
	}

	var resp userDTO
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &resp)
	switch {
	case err == nil:
		user := resp.toModel()
		c.storeUser(user)
		return user
	case IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden):
		c.storeUser(nil)
		return nil
	default:
		logger.C(ctx).Warnw("backend_current_user_failed", "error", err)
		return nil
	}
}

func (c *Client) cachedUser() (*models.SessionUser, bool) {
	if c.sessionTTL <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.userAt.IsZero() || time.Since(c.userAt) > c.sessionTTL {
		return nil, false
	}
	if c.userNone {
		return nil, true
	}
	copied := *c.user
	copied.Roles = append([]string(nil), c.user.Roles...)
	return &copied, true
}

func (c *Client) storeUser(user *models.SessionUser) {
	if c.sessionTTL <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
	c.userNone = user == nil
	c.userAt = time.Now()
}

func (c *Client) resetUserLocked() {
	c.user = nil
	c.userNone = false
	c.userAt = time.Time{}
}
