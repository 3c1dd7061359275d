package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

// OrderLine 下单行（仅商品与数量，价格由服务端决定）
type OrderLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items           []OrderLine          `json:"items"`
	ShippingAddress string               `json:"shipping_address"`
	BillingAddress  string               `json:"billing_address"`
	PhoneNumber     string               `json:"phone_number"`
	Notes           string               `json:"notes,omitempty"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
}

// OrderListFilter 订单列表查询条件（页码从 0 开始）
type OrderListFilter struct {
	Page   int
	Size   int
	SortBy string
	Status models.OrderStatus
}

func (f OrderListFilter) query(withStatus bool) url.Values {
	page := f.Page
	if page < 0 {
		page = 0
	}
	size := f.Size
	if size <= 0 {
		size = constants.DefaultPageSize
	}
	if size > constants.MaxPageSize {
		size = constants.MaxPageSize
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	if sortBy := strings.TrimSpace(f.SortBy); sortBy != "" {
		query.Set("sortBy", sortBy)
	}
	if withStatus && f.Status != "" {
		query.Set("status", string(f.Status))
	}
	return query
}

// CreateOrder 提交订单
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	body := createOrderDTO{
		Items:           make([]orderLineDTO, 0, len(req.Items)),
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PhoneNumber:     req.PhoneNumber,
		Notes:           req.Notes,
		PaymentMethod:   string(req.PaymentMethod),
	}
	for _, line := range req.Items {
		body.Items = append(body.Items, orderLineDTO{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	var resp orderDTO
	if err := c.do(ctx, http.MethodPost, "/orders", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// GetOrder 获取订单
func (c *Client) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var resp orderDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// ListOrders 当前用户订单列表
func (c *Client) ListOrders(ctx context.Context, filter OrderListFilter) (*models.Page[models.Order], error) {
	if filter.SortBy == "" {
		filter.SortBy = constants.OrderSortByOrderDate
	}
	return c.listOrders(ctx, "/orders", filter.query(false))
}

// ListAllOrders 全部订单（管理员/商家）
func (c *Client) ListAllOrders(ctx context.Context, filter OrderListFilter) (*models.Page[models.Order], error) {
	filter.SortBy = ""
	return c.listOrders(ctx, "/orders/admin/all", filter.query(true))
}

func (c *Client) listOrders(ctx context.Context, endpoint string, query url.Values) (*models.Page[models.Order], error) {
	var resp springPage[orderDTO]
	if err := c.do(ctx, http.MethodGet, endpoint, query, nil, &resp); err != nil {
		return nil, err
	}
	page := &models.Page[models.Order]{
		Items:         make([]models.Order, 0, len(resp.Content)),
		Page:          resp.Number,
		Size:          resp.Size,
		TotalPages:    resp.TotalPages,
		TotalElements: resp.TotalElements,
	}
	for _, o := range resp.Content {
		page.Items = append(page.Items, *o.toModel())
	}
	return page, nil
}

// CancelOrder 顾客取消订单
func (c *Client) CancelOrder(ctx context.Context, id uint) (*models.Order, error) {
	var resp orderDTO
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d/cancel", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// SetOrderStatus 管理端更新订单状态
func (c *Client) SetOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	var resp orderDTO
	body := updateStatusDTO{Status: string(status)}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/admin/%d/status", id), nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// DeleteOrder 管理端删除订单
func (c *Client) DeleteOrder(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/admin/%d", id), nil, nil, nil)
}
