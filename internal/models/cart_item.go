package models

// CartItem 购物车行，按 ProductID 唯一
type CartItem struct {
	ProductID     uint   `json:"product_id"`     // 商品ID
	Name          string `json:"name"`           // 商品名称（加入时快照）
	Brand         string `json:"brand"`          // 品牌
	Price         Money  `json:"price"`          // 单价（仅展示，下单不提交）
	Quantity      int    `json:"quantity"`       // 数量，始终 >= 1
	StockQuantity int    `json:"stock_quantity"` // 最近一次已知库存
	Available     bool   `json:"available"`      // 最近一次已知可售状态
}

// Subtotal 行小计
func (i CartItem) Subtotal() Money {
	return i.Price.Times(i.Quantity)
}

// Cart 购物车（保持插入顺序）
type Cart struct {
	Items []CartItem `json:"items"`
}

// NewCart 从行列表构造购物车（复制输入）
func NewCart(items []CartItem) Cart {
	copied := make([]CartItem, len(items))
	copy(copied, items)
	return Cart{Items: copied}
}

// Snapshot 深拷贝，调用方修改不影响原购物车
func (c Cart) Snapshot() Cart {
	return NewCart(c.Items)
}

// IsEmpty 是否为空
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find 按商品查找行
func (c Cart) Find(productID uint) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// TotalQuantity 商品总件数
func (c Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalAmount 按加入时价格计算的合计（仅展示）
func (c Cart) TotalAmount() Money {
	total := Money{}
	for _, item := range c.Items {
		total = total.Plus(item.Subtotal())
	}
	return total
}
