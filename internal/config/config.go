package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/storefront-next/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Cart       CartConfig       `mapstructure:"cart"`
	Checkout   CheckoutConfig   `mapstructure:"checkout"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	OrderCache OrderCacheConfig `mapstructure:"order_cache"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置（购物车镜像 database 驱动与权限策略表共用）
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// BackendConfig 远端商城后端配置
type BackendConfig struct {
	BaseURL             string `mapstructure:"base_url"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
	SessionCookie       string `mapstructure:"session_cookie"` // 形如 JSESSIONID=xxx; XSRF-TOKEN=yyy
	SessionCacheSeconds int    `mapstructure:"session_cache_seconds"`
	PageSize            int    `mapstructure:"page_size"`
}

// Timeout 请求超时
func (c BackendConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionCacheTTL 当前用户缓存时长
func (c BackendConfig) SessionCacheTTL() time.Duration {
	if c.SessionCacheSeconds <= 0 {
		return 0
	}
	return time.Duration(c.SessionCacheSeconds) * time.Second
}

// CartConfig 购物车镜像配置
type CartConfig struct {
	Mirror string `mapstructure:"mirror"` // file / database / redis / memory
	Slot   string `mapstructure:"slot"`
	Dir    string `mapstructure:"dir"`
}

// CheckoutConfig 结算配置
type CheckoutConfig struct {
	LowStockThreshold    int  `mapstructure:"low_stock_threshold"`
	RevalidateOnSubmit   bool `mapstructure:"revalidate_on_submit"`
	SubmitTimeoutSeconds int  `mapstructure:"submit_timeout_seconds"`
	// SubmitRateLimit 下单接口限流（依赖 redis）
	SubmitRateLimit RateLimitConfig `mapstructure:"submit_rate_limit"`
}

// RateLimitConfig 限流规则配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// SubmitTimeout 提交与状态变更的超时
func (c CheckoutConfig) SubmitTimeout() time.Duration {
	if c.SubmitTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

// WorkerConfig 后台任务配置
type WorkerConfig struct {
	StockSyncIntervalSeconds int `mapstructure:"stock_sync_interval_seconds"`
	OrderRefreshDelaySeconds int `mapstructure:"order_refresh_delay_seconds"`
}

// OrderRefreshDelay 订单刷新任务延迟
func (c WorkerConfig) OrderRefreshDelay() time.Duration {
	if c.OrderRefreshDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(c.OrderRefreshDelaySeconds) * time.Second
}

// StockSyncInterval 购物车库存同步间隔，0 表示关闭
func (c WorkerConfig) StockSyncInterval() time.Duration {
	if c.StockSyncIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.StockSyncIntervalSeconds) * time.Second
}

// OrderCacheConfig 订单视图缓存配置
type OrderCacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// TTL 缓存时长
func (c OrderCacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// Load 从 config.yml 加载配置
func Load() *Config {
	loadDotEnv(".env")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	// 环境变量支持
	viper.AutomaticEnv()                                   // 自动读取环境变量
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 将 . 替换为 _ (例如 backend.base_url -> BACKEND_BASE_URL)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

// loadDotEnv 预加载 .env，已存在的环境变量优先
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		logger.Warnw("config_dotenv_load_failed", "file", path, "error", err)
		return
	}
	logger.Infow("config_dotenv_loaded", "file", path)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "storefront.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/storefront.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sf")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.queues", map[string]int{
		"default": 10,
	})
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("backend.base_url", "http://localhost:8080/api")
	v.SetDefault("backend.timeout_seconds", 10)
	v.SetDefault("backend.session_cookie", "")
	v.SetDefault("backend.session_cache_seconds", 60)
	v.SetDefault("backend.page_size", 1000)
	v.SetDefault("cart.mirror", "file")
	v.SetDefault("cart.slot", "cart")
	v.SetDefault("cart.dir", "./data")
	v.SetDefault("checkout.low_stock_threshold", 5)
	v.SetDefault("checkout.revalidate_on_submit", false)
	v.SetDefault("checkout.submit_timeout_seconds", 30)
	v.SetDefault("checkout.submit_rate_limit.window_seconds", 60)
	v.SetDefault("checkout.submit_rate_limit.max_requests", 5)
	v.SetDefault("worker.stock_sync_interval_seconds", 300)
	v.SetDefault("worker.order_refresh_delay_seconds", 5)
	v.SetDefault("order_cache.ttl_seconds", 600)
}
