package models

// Product 目录商品（以服务端为准）
type Product struct {
	ID            uint   `json:"id"`             // 商品ID
	Name          string `json:"name"`           // 名称
	Brand         string `json:"brand"`          // 品牌
	Description   string `json:"description"`    // 描述
	Category      string `json:"category"`       // 分类
	Price         Money  `json:"price"`          // 价格
	StockQuantity int    `json:"stock_quantity"` // 库存
	Available     bool   `json:"available"`      // 是否可售
}

// ToCartItem 以当前库存快照生成数量为 1 的购物车行
func (p Product) ToCartItem() CartItem {
	return CartItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Price:         p.Price,
		Quantity:      1,
		StockQuantity: p.StockQuantity,
		Available:     p.Available,
	}
}

// IndexProducts 按 ID 建立索引
func IndexProducts(products []Product) map[uint]Product {
	index := make(map[uint]Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}
