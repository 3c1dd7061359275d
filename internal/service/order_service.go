package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/storefront-next/internal/backend"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

// OrderView 订单详情视图（含当前会话可执行的操作）
type OrderView struct {
	Order      *models.Order        `json:"order"`
	NextStates []models.OrderStatus `json:"next_states"`
	CanCancel  bool                 `json:"can_cancel"`
	CanManage  bool                 `json:"can_manage"`
	CanDelete  bool                 `json:"can_delete"`
	Stale      bool                 `json:"stale"`                // 后端不可达时返回的缓存副本
	FetchedAt  *time.Time           `json:"fetched_at,omitempty"` // 缓存副本的拉取时间
}

// OrderDeskOptions 订单服务依赖
type OrderDeskOptions struct {
	Orders    OrderGateway
	Lifecycle *OrderLifecycle
	Session   SessionGate
	Authz     Authorizer
	Snapshots OrderSnapshotStore
	Refresher OrderRefreshEnqueuer
}

// OrderDesk 订单查询与操作入口（顾客取消、管理端变更状态与删除）
type OrderDesk struct {
	orders    OrderGateway
	lifecycle *OrderLifecycle
	session   SessionGate
	authz     Authorizer
	snapshots OrderSnapshotStore
	refresher OrderRefreshEnqueuer
}

// NewOrderDesk 创建订单服务
func NewOrderDesk(opts OrderDeskOptions) *OrderDesk {
	lifecycle := opts.Lifecycle
	if lifecycle == nil {
		lifecycle = NewOrderLifecycle(opts.Orders, 0)
	}
	return &OrderDesk{
		orders:    opts.Orders,
		lifecycle: lifecycle,
		session:   opts.Session,
		authz:     opts.Authz,
		snapshots: opts.Snapshots,
		refresher: opts.Refresher,
	}
}

// Capabilities 会话可用的订单管理能力
type Capabilities struct {
	ManageOrders bool `json:"manage_orders"`
	ListAll      bool `json:"list_all_orders"`
	DeleteOrders bool `json:"delete_orders"`
}

// CapabilitiesFor 计算会话角色的管理能力
func (d *OrderDesk) CapabilitiesFor(user *models.SessionUser) Capabilities {
	if user == nil {
		return Capabilities{}
	}
	return Capabilities{
		ManageOrders: d.allowed(user, constants.PermObjectOrderStatus, constants.PermActionUpdate),
		ListAll:      d.allowed(user, constants.PermObjectOrderList, constants.PermActionRead),
		DeleteOrders: d.allowed(user, constants.PermObjectOrder, constants.PermActionDelete),
	}
}

// GetOrder 获取订单详情，后端不可达时降级为缓存副本
func (d *OrderDesk) GetOrder(ctx context.Context, id uint) (*OrderView, error) {
	user, err := d.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	order, err := d.orders.GetOrder(ctx, id)
	if err == nil {
		d.remember(ctx, order)
		return d.view(user, order), nil
	}
	if backend.IsStatus(err, http.StatusNotFound) {
		d.forget(ctx, id)
		return nil, ErrOrderNotFound
	}
	if backend.IsUnavailable(err) && d.snapshots != nil {
		snapshot, hit, cacheErr := d.snapshots.Get(ctx, id)
		if cacheErr != nil {
			logger.C(ctx).Warnw("order_snapshot_get_failed", "order_id", id, "error", cacheErr)
		}
		if hit && snapshot != nil {
			view := d.view(user, &snapshot.Order)
			fetchedAt := time.Unix(snapshot.FetchedAt, 0)
			view.Stale = true
			view.FetchedAt = &fetchedAt
			logger.C(ctx).Infow("order_view_served_stale", "order_id", id, "error", err)
			return view, nil
		}
	}
	return nil, classifyRemote(err, FlowTransport)
}

// ListMyOrders 当前用户订单列表
func (d *OrderDesk) ListMyOrders(ctx context.Context, filter backend.OrderListFilter) (*models.Page[models.Order], error) {
	if _, err := d.requireUser(ctx); err != nil {
		return nil, err
	}
	page, err := d.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, classifyRemote(err, FlowTransport)
	}
	return page, nil
}

// ListAllOrders 全部订单列表（需 order_list:read）
func (d *OrderDesk) ListAllOrders(ctx context.Context, filter backend.OrderListFilter) (*models.Page[models.Order], error) {
	if _, err := d.requirePermission(ctx, constants.PermObjectOrderList, constants.PermActionRead); err != nil {
		return nil, err
	}
	page, err := d.orders.ListAllOrders(ctx, filter)
	if err != nil {
		return nil, classifyRemote(err, FlowTransport)
	}
	return page, nil
}

// CancelOrder 顾客取消订单
func (d *OrderDesk) CancelOrder(ctx context.Context, id uint) (*models.Order, error) {
	if _, err := d.requireUser(ctx); err != nil {
		return nil, err
	}
	current, err := d.current(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := d.lifecycle.Cancel(ctx, id, current.Status)
	return d.afterMutation(ctx, id, order, err)
}

// ChangeStatus 管理端变更订单状态（需 order_status:update）
func (d *OrderDesk) ChangeStatus(ctx context.Context, id uint, target models.OrderStatus) (*models.Order, error) {
	if _, err := d.requirePermission(ctx, constants.PermObjectOrderStatus, constants.PermActionUpdate); err != nil {
		return nil, err
	}
	if _, ok := models.ParseOrderStatus(string(target)); !ok {
		return nil, ErrInvalidOrderStatus
	}
	current, err := d.current(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := d.lifecycle.RequestTransition(ctx, id, current.Status, target)
	return d.afterMutation(ctx, id, order, err)
}

// DeleteOrder 管理端删除订单（需 order:delete）
func (d *OrderDesk) DeleteOrder(ctx context.Context, id uint) error {
	if _, err := d.requirePermission(ctx, constants.PermObjectOrder, constants.PermActionDelete); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.lifecycle.timeout)
	defer cancel()
	if err := d.orders.DeleteOrder(runCtx, id); err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			d.forget(ctx, id)
			return ErrOrderNotFound
		}
		logger.C(ctx).Warnw("order_delete_failed", "order_id", id, "error", err)
		return classifyRemote(err, FlowTransition)
	}
	d.forget(ctx, id)
	logger.C(ctx).Infow("order_deleted", "order_id", id)
	return nil
}

// RefreshSnapshot 重新拉取订单并写入缓存，订单不存在时清除缓存
func (d *OrderDesk) RefreshSnapshot(ctx context.Context, id uint) error {
	order, err := d.orders.GetOrder(ctx, id)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			d.forget(ctx, id)
			return nil
		}
		return err
	}
	if d.snapshots == nil {
		return nil
	}
	return d.snapshots.Put(ctx, order)
}

func (d *OrderDesk) current(ctx context.Context, id uint) (*models.Order, error) {
	order, err := d.orders.GetOrder(ctx, id)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, classifyRemote(err, FlowTransport)
	}
	return order, nil
}

func (d *OrderDesk) afterMutation(ctx context.Context, id uint, order *models.Order, err error) (*models.Order, error) {
	if err != nil {
		if flowErr, ok := AsFlowError(err); ok && flowErr.Order != nil {
			d.remember(ctx, flowErr.Order)
		}
		return nil, err
	}
	d.remember(ctx, order)
	d.enqueueRefresh(ctx, id)
	return order, nil
}

func (d *OrderDesk) view(user *models.SessionUser, order *models.Order) *OrderView {
	caps := d.CapabilitiesFor(user)
	view := &OrderView{
		Order:      order,
		NextStates: []models.OrderStatus{},
		CanCancel:  CanCustomerCancel(order.Status),
		CanManage:  caps.ManageOrders,
		CanDelete:  caps.DeleteOrders,
	}
	if caps.ManageOrders {
		view.NextStates = NextStates(order.Status)
	}
	return view
}

func (d *OrderDesk) requireUser(ctx context.Context) (*models.SessionUser, error) {
	if d.session == nil {
		return nil, ErrUnauthenticated
	}
	user := d.session.CurrentUser(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

func (d *OrderDesk) requirePermission(ctx context.Context, obj, act string) (*models.SessionUser, error) {
	user, err := d.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !d.allowed(user, obj, act) {
		logger.C(ctx).Infow("order_permission_denied", "username", user.Username, "object", obj, "action", act)
		return nil, ErrForbidden
	}
	return user, nil
}

func (d *OrderDesk) allowed(user *models.SessionUser, obj, act string) bool {
	if d.authz == nil || user == nil {
		return false
	}
	ok, err := d.authz.EnforceRoles(user.Roles, obj, act)
	if err != nil {
		logger.Warnw("order_permission_check_failed", "object", obj, "action", act, "error", err)
		return false
	}
	return ok
}

func (d *OrderDesk) remember(ctx context.Context, order *models.Order) {
	if d.snapshots == nil || order == nil {
		return
	}
	if err := d.snapshots.Put(ctx, order); err != nil {
		logger.C(ctx).Warnw("order_snapshot_put_failed", "order_id", order.ID, "error", err)
	}
}

func (d *OrderDesk) forget(ctx context.Context, id uint) {
	if d.snapshots == nil {
		return
	}
	if err := d.snapshots.Evict(ctx, id); err != nil {
		logger.C(ctx).Warnw("order_snapshot_evict_failed", "order_id", id, "error", err)
	}
}

func (d *OrderDesk) enqueueRefresh(ctx context.Context, id uint) {
	if d.refresher == nil {
		return
	}
	if err := d.refresher.EnqueueOrderRefresh(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
		logger.C(ctx).Warnw("order_refresh_enqueue_failed", "order_id", id, "error", err)
	}
}
