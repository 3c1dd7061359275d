package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// GormCartMirror 基于数据库槽位表的购物车镜像
type GormCartMirror struct {
	db   *gorm.DB
	slot string
}

// NewGormCartMirror 创建数据库镜像
func NewGormCartMirror(db *gorm.DB, slot string) *GormCartMirror {
	return &GormCartMirror{db: db, slot: normalizeSlot(slot)}
}

// Load 读取槽位
func (r *GormCartMirror) Load(ctx context.Context) ([]models.CartItem, error) {
	var row models.CartMirrorSlot
	if err := r.db.WithContext(ctx).Where("slot = ?", r.slot).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.CartItem{}, nil
		}
		return nil, err
	}
	return decodeItems([]byte(row.ItemsJSON))
}

// Save 更新或创建槽位
func (r *GormCartMirror) Save(ctx context.Context, items []models.CartItem) error {
	payload, err := encodeItems(items)
	if err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	var existing models.CartMirrorSlot
	err = db.Where("slot = ?", r.slot).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.CartMirrorSlot{Slot: r.slot, ItemsJSON: string(payload)}).Error
	}
	if err != nil {
		return err
	}
	existing.ItemsJSON = string(payload)
	return db.Save(&existing).Error
}

// Clear 删除槽位
func (r *GormCartMirror) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("slot = ?", r.slot).Delete(&models.CartMirrorSlot{}).Error
}

func normalizeSlot(slot string) string {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return constants.CartSlotDefault
	}
	return slot
}
