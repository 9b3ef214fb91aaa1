package repository

import (
	"github.com/fith/sugar/internal/constants"

	"gorm.io/gorm"
)

// PageWindow 分页窗口
type PageWindow struct {
	TotalCount  int64
	TotalPages  int
	CurrentPage int
	Offset      int
	Limit       int
}

// Page 带分页信息的结果集
type Page[T any] struct {
	Items       []T   `json:"items"`
	TotalCount  int64 `json:"total_count"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	Offset      int   `json:"offset"`
	Limit       int   `json:"limit"`
}

// ComputePageWindow 计算分页窗口
// 页码越界时夹到 [1, 总页数]，没有数据时总页数为 0、页码为 1，不会报错
func ComputePageWindow(total int64, page, limit int) PageWindow {
	if limit <= 0 {
		limit = constants.DefaultPageLimit
	}
	if total < 0 {
		total = 0
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageWindow{
		TotalCount:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Offset:      limit * (page - 1),
		Limit:       limit,
	}
}

// Empty 窗口内是否没有数据
func (w PageWindow) Empty() bool {
	return w.TotalPages == 0
}

// NewPage 组装分页结果
func NewPage[T any](items []T, window PageWindow) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:       items,
		TotalCount:  window.TotalCount,
		TotalPages:  window.TotalPages,
		CurrentPage: window.CurrentPage,
		Offset:      window.Offset,
		Limit:       window.Limit,
	}
}

// HasNext 是否存在下一页
func (p *Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// HasPrevious 是否存在上一页
func (p *Page[T]) HasPrevious() bool {
	return p.CurrentPage > 1
}

// NextPage 下一页页码，没有下一页时返回当前页
func (p *Page[T]) NextPage() int {
	if p.HasNext() {
		return p.CurrentPage + 1
	}
	return p.CurrentPage
}

// PreviousPage 上一页页码，没有上一页时返回当前页
func (p *Page[T]) PreviousPage() int {
	if p.HasPrevious() {
		return p.CurrentPage - 1
	}
	return p.CurrentPage
}

// paginate 统计总数并按窗口取出当前页
// query 需已带好过滤条件，预加载只作用于取数查询
func paginate[T any](query *gorm.DB, page, limit int, order string, preloads ...string) (*Page[T], error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	window := ComputePageWindow(total, page, limit)
	if window.Empty() {
		return NewPage[T](nil, window), nil
	}

	findQuery := query
	for _, name := range preloads {
		findQuery = findQuery.Preload(name)
	}
	var items []T
	if err := findQuery.Order(order).Limit(window.Limit).Offset(window.Offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return NewPage(items, window), nil
}

// applyPagination 应用分页参数，统一处理非法页码与偏移量。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	return query.Limit(pageSize).Offset(offset)
}
