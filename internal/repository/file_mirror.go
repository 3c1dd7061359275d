package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/storefront-next/internal/models"
)

// FileCartMirror 基于本地 JSON 文件的购物车镜像
type FileCartMirror struct {
	mu   sync.Mutex
	path string
}

// NewFileCartMirror 创建文件镜像，文件名为 <dir>/<slot>.json
func NewFileCartMirror(dir, slot string) *FileCartMirror {
	if dir == "" {
		dir = "."
	}
	return &FileCartMirror{path: filepath.Join(dir, normalizeSlot(slot)+".json")}
}

// Path 槽位文件路径
func (m *FileCartMirror) Path() string {
	return m.path
}

// Load 读取槽位
func (m *FileCartMirror) Load(_ context.Context) ([]models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.CartItem{}, nil
		}
		return nil, err
	}
	return decodeItems(raw)
}

// Save 写临时文件后原子替换
func (m *FileCartMirror) Save(_ context.Context, items []models.CartItem) error {
	payload, err := encodeItems(items)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cart dir failed: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp slot failed: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp slot failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp slot failed: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace slot failed: %w", err)
	}
	return nil
}

// Clear 删除槽位文件
func (m *FileCartMirror) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
