package constants

// 角色常量（与后端 Spring Security 角色名保持一致）
const (
	RoleAdmin    = "ROLE_ADMIN"
	RoleSeller   = "ROLE_SELLER"
	RoleCustomer = "ROLE_USER"
)

// 权限对象与动作常量
const (
	PermObjectOrderStatus = "order_status"
	PermObjectOrder       = "order"
	PermObjectOrderList   = "order_list"
	PermActionUpdate      = "update"
	PermActionDelete      = "delete"
	PermActionRead        = "read"
)

// 购物车镜像驱动常量
const (
	CartMirrorFile     = "file"
	CartMirrorDatabase = "database"
	CartMirrorRedis    = "redis"
	CartMirrorMemory   = "memory"
)

// 购物车默认槽位
const (
	CartSlotDefault = "cart"
)

// 校验修正动作常量
const (
	RemediationReduceQuantity = "reduce_quantity"
	RemediationRemoveItem     = "remove_item"
)

// 订单列表排序字段
const (
	OrderSortByOrderDate = "orderDate"
)

// 分页默认值
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// 队列常量
const (
	QueueDefault     = "default"
	TaskOrderRefresh = "order:refresh"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "sf"
	CacheKeyOrderView  = "order:view"
	CacheKeyCartSlot   = "cart"
)

// 请求头与 Cookie 常量
const (
	HeaderRequestID   = "X-Request-ID"
	HeaderXSRFToken   = "X-XSRF-TOKEN"
	CookieXSRFToken   = "XSRF-TOKEN"
	HeaderContentType = "Content-Type"
)
