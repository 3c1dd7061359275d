package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/storefront-next/internal/backend"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

func money(s string) models.Money {
	return models.MustMoney(s)
}

func product(id uint, stock int, available bool) models.Product {
	return models.Product{
		ID:            id,
		Name:          fmt.Sprintf("product-%d", id),
		Brand:         "acme",
		Price:         money("9.99"),
		StockQuantity: stock,
		Available:     available,
	}
}

type fakeCatalog struct {
	mu       sync.Mutex
	products []models.Product
	err      error
	calls    int
}

func (c *fakeCatalog) ListProducts(_ context.Context) ([]models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return append([]models.Product(nil), c.products...), nil
}

func (c *fakeCatalog) GetProduct(_ context.Context, id uint) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	for _, p := range c.products {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeOrders struct {
	mu            sync.Mutex
	orders        map[uint]*models.Order
	nextID        uint
	createErr     error
	getErr        error
	statusErr     error
	cancelErr     error
	deleteErr     error
	created       []backend.CreateOrderRequest
	createCtxErr  error
	statusCalls   int
	cancelCalls   int
	getCalls      int
	deleteCalls   int
	lastListQuery backend.OrderListFilter
	// dropAfterAck 变更被接受后后端随即不可达
	dropAfterAck bool
}

func newFakeOrders(orders ...models.Order) *fakeOrders {
	f := &fakeOrders{orders: map[uint]*models.Order{}, nextID: 100}
	for i := range orders {
		o := orders[i]
		f.orders[o.ID] = &o
	}
	return f
}

func (f *fakeOrders) CreateOrder(ctx context.Context, req backend.CreateOrderRequest) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	f.createCtxErr = ctx.Err()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	order := &models.Order{ID: f.nextID, Status: models.OrderStatusPending, PaymentMethod: req.PaymentMethod, OrderDate: time.Now()}
	for _, line := range req.Items {
		order.Items = append(order.Items, models.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	f.orders[order.ID] = order
	copied := *order
	return &copied, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id uint) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	order, ok := f.orders[id]
	if !ok {
		return nil, &backend.APIError{Status: 404, Message: fmt.Sprintf("Order not found with id: %d", id)}
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, filter backend.OrderListFilter) (*models.Page[models.Order], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListQuery = filter
	return f.pageLocked(filter)
}

func (f *fakeOrders) ListAllOrders(_ context.Context, filter backend.OrderListFilter) (*models.Page[models.Order], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListQuery = filter
	return f.pageLocked(filter)
}

func (f *fakeOrders) pageLocked(filter backend.OrderListFilter) (*models.Page[models.Order], error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	page := &models.Page[models.Order]{Page: filter.Page, Size: filter.Size}
	for _, o := range f.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		page.Items = append(page.Items, *o)
	}
	page.TotalElements = int64(len(page.Items))
	page.TotalPages = 1
	return page, nil
}

func (f *fakeOrders) CancelOrder(_ context.Context, id uint) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	order, ok := f.orders[id]
	if !ok {
		return nil, &backend.APIError{Status: 404, Message: "Order not found"}
	}
	order.Status = models.OrderStatusCancelled
	if f.dropAfterAck {
		f.getErr = errUnreachable
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrders) SetOrderStatus(_ context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	order, ok := f.orders[id]
	if !ok {
		return nil, &backend.APIError{Status: 404, Message: "Order not found"}
	}
	order.Status = status
	if f.dropAfterAck {
		f.getErr = errUnreachable
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrders) DeleteOrder(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.orders[id]; !ok {
		return &backend.APIError{Status: 404, Message: "Order not found"}
	}
	delete(f.orders, id)
	return nil
}

// setStatus 模拟其他管理员并发修改
func (f *fakeOrders) setStatus(id uint, status models.OrderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[id].Status = status
}

type fakeSession struct {
	user *models.SessionUser
}

func (s *fakeSession) IsAuthenticated(_ context.Context) bool {
	return s.user != nil
}

func (s *fakeSession) CurrentUser(_ context.Context) *models.SessionUser {
	return s.user
}

func customerSession() *fakeSession {
	return &fakeSession{user: &models.SessionUser{Username: "alice", Roles: []string{"ROLE_USER"}}}
}

// fakeAuthz 以 "ROLE|obj|act" 集合模拟授权
type fakeAuthz struct {
	grants map[string]bool
	err    error
}

func (a *fakeAuthz) EnforceRoles(roles []string, obj, act string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	for _, role := range roles {
		if a.grants[role+"|"+obj+"|"+act] {
			return true, nil
		}
	}
	return false, nil
}

func adminAuthz() *fakeAuthz {
	return &fakeAuthz{grants: map[string]bool{
		"ROLE_ADMIN|order_status|update":  true,
		"ROLE_ADMIN|order_list|read":      true,
		"ROLE_ADMIN|order|delete":         true,
		"ROLE_SELLER|order_status|update": true,
		"ROLE_SELLER|order_list|read":     true,
	}}
}

type memorySnapshots struct {
	mu    sync.Mutex
	items map[uint]cache.OrderSnapshot
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{items: map[uint]cache.OrderSnapshot{}}
}

func (m *memorySnapshots) Get(_ context.Context, id uint) (*cache.OrderSnapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.items[id]
	if !ok {
		return nil, false, nil
	}
	return &snapshot, true, nil
}

func (m *memorySnapshots) Put(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[order.ID] = cache.OrderSnapshot{Order: *order, FetchedAt: time.Now().Unix()}
	return nil
}

func (m *memorySnapshots) Evict(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type fakeRefresher struct {
	mu  sync.Mutex
	ids []uint
}

func (r *fakeRefresher) EnqueueOrderRefresh(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

// failingMirror 写入总是失败
type failingMirror struct {
	repository.MemoryCartMirror
}

func (m *failingMirror) Save(_ context.Context, _ []models.CartItem) error {
	return errors.New("disk full")
}

// corruptMirror 读取返回损坏错误
type corruptMirror struct {
	repository.MemoryCartMirror
}

func (m *corruptMirror) Load(_ context.Context) ([]models.CartItem, error) {
	return nil, fmt.Errorf("%w: unexpected end of JSON input", repository.ErrMirrorCorrupt)
}

// unreachableMirror 读取失败（存储不可达），槽位内容保持不变
type unreachableMirror struct {
	repository.MemoryCartMirror
}

func (m *unreachableMirror) Load(_ context.Context) ([]models.CartItem, error) {
	return nil, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

var errUnreachable = fmt.Errorf("%w: dial tcp 127.0.0.1:8080: connect: connection refused", backend.ErrTransport)

// countingMirror 记录 Clear 次数，onClear 在清除时回调
type countingMirror struct {
	repository.MemoryCartMirror
	clears  int
	onClear func()
}

func (m *countingMirror) Clear(ctx context.Context) error {
	m.clears++
	if m.onClear != nil {
		m.onClear()
	}
	return m.MemoryCartMirror.Clear(ctx)
}

// acknowledged 服务端已保存的订单数
func (f *fakeOrders) acknowledged() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func pricedProduct(id uint, name, price string, stock int) models.Product {
	return models.Product{ID: id, Name: name, Price: money(price), StockQuantity: stock, Available: true}
}
