package models

// Page 分页结果
type Page[T any] struct {
	Items         []T   `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalPages    int   `json:"total_pages"`
	TotalElements int64 `json:"total_elements"`
}

// Last 是否为最后一页（页码从 0 开始）
func (p Page[T]) Last() bool {
	return p.Page+1 >= p.TotalPages
}
