package app

import (
	"errors"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/router"
	"github.com/storefront-next/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		httpService := NewHTTPService(addr, engine)
		services = append(services, httpService)
	}

	// 初始化购物车库存同步，只在持有购物车的进程中运行
	if stockSync := buildStockSync(cfg, mode, container); stockSync != nil {
		services = append(services, stockSync)
	}

	// 初始化 Worker 服务
	// all 模式下队列未启用时仅运行 API
	if mode == ModeAll && !cfg.Queue.Enabled {
		logger.Infow("worker_skipped", "reason", "queue_disabled")
	} else if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	// 如果没有服务被启动（例如模式错误或配置导致都没起），应该报错或至少打日志
	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	if container.QueueClient != nil {
		runner.OnShutdown("queue_client", container.QueueClient.Close)
	}
	if redisClient := cache.Client(); redisClient != nil {
		runner.OnShutdown("redis", redisClient.Close)
	}
	return runner, nil
}

// ownsCart 该模式的进程是否持有购物车及其镜像
func ownsCart(mode string) bool {
	return mode == ModeAll || mode == ModeAPI
}

// buildStockSync 构建库存同步服务，不满足条件时返回 nil
func buildStockSync(cfg *config.Config, mode string, container *provider.Container) Service {
	if !ownsCart(mode) || container == nil || container.CartSync == nil {
		return nil
	}
	interval := cfg.Worker.StockSyncInterval()
	if interval <= 0 {
		return nil
	}
	stockSync, err := worker.NewStockSyncService(container.CartSync, interval)
	if err != nil {
		logger.Warnw("cart_stock_sync_skipped", "error", err)
		return nil
	}
	return stockSync
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
