package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/backend"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Infrastructure
	Backend    *backend.Client
	CartMirror repository.CartMirror
	OrderCache *cache.OrderViewCache

	// Services
	AuthzService    *authz.Service
	CartStore       *service.CartStore
	CartSync        *service.CartSync
	StockValidator  *service.StockValidator
	Pipeline        *service.OrderSubmissionPipeline
	OrderLifecycle  *service.OrderLifecycle
	OrderDesk       *service.OrderDesk
	CheckoutService *service.CheckoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端（未启用时为空操作客户端）
	queueClient, err := queue.NewClient(&cfg.Queue, cfg.Worker.OrderRefreshDelay())
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化基础设施
	c.initInfrastructure()

	// 2. 初始化 Services
	c.InitServices()

	return c
}

func (c *Container) initInfrastructure() {
	cfg := c.Config
	c.Backend = backend.NewClient(backend.Options{
		BaseURL:         cfg.Backend.BaseURL,
		Timeout:         cfg.Backend.Timeout(),
		SessionCookie:   cfg.Backend.SessionCookie,
		SessionCacheTTL: cfg.Backend.SessionCacheTTL(),
		PageSize:        cfg.Backend.PageSize,
	})
	c.OrderCache = cache.NewOrderViewCache(cfg.OrderCache.TTL())

	mirror, err := NewCartMirror(cfg.Cart, models.DB, cache.Client(), cache.Prefix())
	if err != nil {
		logger.Errorw("provider_init_cart_mirror_failed", "driver", cfg.Cart.Mirror, "error", err, "fallback", constants.CartMirrorMemory)
		mirror = repository.NewMemoryCartMirror()
	}
	c.CartMirror = mirror

	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}
}

// InitServices 基于已就绪的基础设施组装业务服务
func (c *Container) InitServices() {
	cfg := c.Config
	timeout := cfg.Checkout.SubmitTimeout()

	c.CartStore = service.NewCartStore(context.Background(), c.CartMirror)
	c.CartSync = service.NewCartSync(c.CartStore, c.Backend)
	c.StockValidator = service.NewStockValidator(c.Backend, cfg.Checkout.LowStockThreshold)
	c.Pipeline = service.NewOrderSubmissionPipeline(c.Backend, c.CartStore, timeout)
	c.OrderLifecycle = service.NewOrderLifecycle(c.Backend, timeout)

	deskOpts := service.OrderDeskOptions{
		Orders:    c.Backend,
		Lifecycle: c.OrderLifecycle,
		Session:   c.Backend,
	}
	if c.AuthzService != nil {
		deskOpts.Authz = c.AuthzService
	}
	if c.OrderCache != nil {
		deskOpts.Snapshots = c.OrderCache
	}
	if c.QueueClient != nil && c.QueueClient.Enabled() {
		deskOpts.Refresher = c.QueueClient
	}
	c.OrderDesk = service.NewOrderDesk(deskOpts)
	c.CheckoutService = service.NewCheckoutService(c.CartStore, c.StockValidator, c.Pipeline, c.Backend, cfg.Checkout.RevalidateOnSubmit)
}

// NewCartMirror 按 cart.mirror 选择购物车镜像驱动
func NewCartMirror(cfg config.CartConfig, db *gorm.DB, redisClient *redis.Client, redisPrefix string) (repository.CartMirror, error) {
	slot := strings.TrimSpace(cfg.Slot)
	if slot == "" {
		slot = constants.CartSlotDefault
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Mirror))
	switch driver {
	case "", constants.CartMirrorFile:
		return repository.NewFileCartMirror(cfg.Dir, slot), nil
	case constants.CartMirrorDatabase:
		if db == nil {
			return nil, fmt.Errorf("cart mirror %q requires database", driver)
		}
		return repository.NewGormCartMirror(db, slot), nil
	case constants.CartMirrorRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("cart mirror %q requires redis.enabled", driver)
		}
		return repository.NewRedisCartMirror(redisClient, redisPrefix, slot), nil
	case constants.CartMirrorMemory:
		return repository.NewMemoryCartMirror(), nil
	}
	return nil, fmt.Errorf("unknown cart mirror driver %q", driver)
}
