package router

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	adminhandlers "github.com/storefront-next/internal/http/handlers/admin"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	submitRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout_submit", redisPrefix),
		WindowSeconds: cfg.Checkout.SubmitRateLimit.WindowSeconds,
		MaxRequests:   cfg.Checkout.SubmitRateLimit.MaxRequests,
		Message:       "Too many checkout attempts, please retry in %d seconds",
	}

	var sessionGate service.SessionGate
	if c.Backend != nil {
		sessionGate = c.Backend
	}
	var authorizer service.Authorizer
	if c.AuthzService != nil {
		authorizer = c.AuthzService
	}
	requireSession := SessionAuthMiddleware(sessionGate)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/health", publicHandler.Health)

		// 后端会话
		apiV1.GET("/session", publicHandler.GetSession)
		apiV1.PUT("/session", publicHandler.PutSession)
		apiV1.DELETE("/session", publicHandler.DeleteSession)

		// 商品目录
		apiV1.GET("/catalog/products", publicHandler.ListProducts)

		// 购物车（本地槽位，无需登录）
		cart := apiV1.Group("/cart")
		{
			cart.GET("", publicHandler.GetCart)
			cart.DELETE("", publicHandler.ClearCart)
			cart.POST("/refresh", publicHandler.RefreshCart)
			cart.POST("/items", publicHandler.AddCartItem)
			cart.PUT("/items/:product_id", publicHandler.SetCartItemQuantity)
			cart.POST("/items/:product_id/increment", publicHandler.IncrementCartItem)
			cart.POST("/items/:product_id/decrement", publicHandler.DecrementCartItem)
			cart.DELETE("/items/:product_id", publicHandler.RemoveCartItem)
		}

		// 结算
		checkout := apiV1.Group("/checkout")
		checkout.Use(requireSession)
		{
			checkout.POST("/validate", publicHandler.ValidateCheckout)
			checkout.POST("/remediate", publicHandler.RemediateCheckout)
			checkout.POST("/submit",
				RateLimitMiddleware(cache.Client(), submitRule, KeyByIPAndJSONField("phone_number")),
				publicHandler.SubmitCheckout,
			)
		}

		// 我的订单
		orders := apiV1.Group("/orders")
		orders.Use(requireSession)
		{
			orders.GET("", publicHandler.ListMyOrders)
			orders.GET("/:id", publicHandler.GetOrderDetail)
			orders.PUT("/:id/cancel", publicHandler.CancelOrder)
		}

		// 卖家/管理员
		admin := apiV1.Group("/admin")
		admin.Use(requireSession)
		{
			admin.GET("/authz/me", adminHandler.AdminGetAuthzMe)
			admin.GET("/orders",
				CapabilityMiddleware(authorizer, constants.PermObjectOrderList, constants.PermActionRead),
				adminHandler.AdminListOrders,
			)
			admin.PUT("/orders/:id/status",
				CapabilityMiddleware(authorizer, constants.PermObjectOrderStatus, constants.PermActionUpdate),
				adminHandler.AdminUpdateOrderStatus,
			)
			admin.DELETE("/orders/:id",
				CapabilityMiddleware(authorizer, constants.PermObjectOrder, constants.PermActionDelete),
				adminHandler.AdminDeleteOrder,
			)
		}
	}

	// 健康检查
	r.GET("/health", publicHandler.Health)

	return r
}
