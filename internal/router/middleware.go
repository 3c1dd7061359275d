package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = response.RequestIDKey
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Cache-Control",
			"X-Requested-With",
			requestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		// 写入请求上下文，后端调用与服务层日志共用同一请求 ID
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// SessionAuthMiddleware 要求后端会话已登录，并将当前用户写入上下文
func SessionAuthMiddleware(gate service.SessionGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gate == nil {
			logger.Errorw("session_gate_unavailable")
			response.Unauthorized(c, "Please login to continue")
			c.Abort()
			return
		}
		user := gate.CurrentUser(c.Request.Context())
		if user == nil {
			response.Unauthorized(c, "Please login to continue")
			c.Abort()
			return
		}
		c.Set(handlershared.SessionUserKey, user)
		c.Next()
	}
}

// CapabilityMiddleware 按会话角色校验业务能力（需在 SessionAuthMiddleware 之后）
func CapabilityMiddleware(authorizer service.Authorizer, object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := handlershared.GetSessionUser(c)
		if !ok {
			response.Unauthorized(c, "Please login to continue")
			c.Abort()
			return
		}
		if authorizer == nil {
			logger.Errorw("capability_authz_unavailable", "object", object, "action", action)
			response.Forbidden(c, "Access denied for your role")
			c.Abort()
			return
		}

		allowed, err := authorizer.EnforceRoles(user.Roles, object, action)
		if err != nil {
			logger.Errorw("capability_enforce_failed",
				"username", user.Username,
				"object", object,
				"action", action,
				"error", err,
			)
			response.Forbidden(c, "Access denied for your role")
			c.Abort()
			return
		}
		if !allowed {
			logger.Warnw("capability_permission_denied",
				"username", user.Username,
				"roles", user.Roles,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"object", object,
				"action", action,
			)
			response.Forbidden(c, "Access denied for your role")
			c.Abort()
			return
		}

		c.Next()
	}
}
