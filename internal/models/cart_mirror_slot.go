package models

import "time"

// CartMirrorSlot 购物车持久化槽位（键值对存储，值为 CartItem 数组 JSON）
type CartMirrorSlot struct {
	Slot      string    `gorm:"primarykey;type:varchar(64)" json:"slot"` // 槽位名
	ItemsJSON string    `gorm:"type:text;not null" json:"items"`         // 购物车行 JSON
	UpdatedAt time.Time `json:"updated_at"`                              // 最后写入时间
}

// TableName 指定表名
func (CartMirrorSlot) TableName() string {
	return "cart_mirror_slots"
}
