package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

// ListProducts 拉取完整目录（逐页读取直到最后一页）
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0)
	for page := 0; page < maxCatalogPages; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("size", strconv.Itoa(c.pageSize))

		var resp springPage[productDTO]
		if err := c.do(ctx, http.MethodGet, "/products", query, nil, &resp); err != nil {
			return nil, err
		}
		for _, p := range resp.Content {
			products = append(products, p.toModel())
		}
		if len(resp.Content) == 0 || resp.isLast() {
			return products, nil
		}
	}
	logger.C(ctx).Warnw("backend_catalog_page_limit_reached", "pages", maxCatalogPages, "products", len(products))
	return products, nil
}

// GetProduct 获取单个商品，不存在时返回 nil
func (c *Client) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var resp productDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/product/%d", id), nil, nil, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	product := resp.toModel()
	return &product, nil
}
