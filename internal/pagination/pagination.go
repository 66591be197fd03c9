// Package pagination pages list endpoints with page/page_size query
// parameters.
package pagination

import "gorm.io/gorm"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is bound from the page and page_size query parameters.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Defaults fills in the first page and the default size.
func (p *PageRequest) Defaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
}

// Offset is the number of rows before the requested page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse is one page of items plus the totals a client needs to page on.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// NewPageResponse wraps data, never encoding a nil slice as null.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// Find counts the rows matched by query, then loads the requested page in the
// given order. query must already carry its Model and filters.
func Find[T any](query *gorm.DB, page PageRequest, order string) (*PageResponse[T], error) {
	page.Defaults()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []T
	if total > int64(page.Offset()) {
		err := query.Session(&gorm.Session{}).
			Order(order).
			Offset(page.Offset()).
			Limit(page.PageSize).
			Find(&items).Error
		if err != nil {
			return nil, err
		}
	}

	result := NewPageResponse(items, page.Page, page.PageSize, total)
	return &result, nil
}
