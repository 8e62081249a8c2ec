package service

import "github.com/flicky/go-bookstore-api/internal/model"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(p model.PageRequest, defaultSort string, defaultDir model.SortDirection) model.PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	if p.Sort == "" {
		p.Sort = defaultSort
	}
	if p.Direction == "" {
		p.Direction = defaultDir
	}
	return p
}

func newPage[T any](items []T, total int, p model.PageRequest) *model.Page[T] {
	if items == nil {
		items = []T{}
	}
	return &model.Page[T]{Items: items, Total: total, Page: p.Page, Size: p.Size}
}
