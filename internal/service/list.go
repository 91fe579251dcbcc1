package service

import (
	"net/url"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
	"github.com/openfoodfacts/open-prices/internal/database/lookup"
	"github.com/openfoodfacts/open-prices/internal/repository"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// ListParams describes a filtered, ordered page request.
type ListParams struct {
	// Filters holds field__lookup=value pairs; keys that are not filterable
	// fields are ignored.
	Filters url.Values
	OrderBy string
	Page    int
	Size    int
}

// Page is one page of results.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// query compiles the filters and ordering against fields. Invalid filters
// are reported as lookup.Errors.
func (p ListParams) query(fields lookup.Fields, d dialect.Dialect) (repository.ListQuery, error) {
	p = p.normalized()

	where, err := lookup.Build(p.Filters, fields, d)
	if err != nil {
		return repository.ListQuery{}, err
	}
	order, err := lookup.Ordering(p.OrderBy, fields)
	if err != nil {
		return repository.ListQuery{}, err
	}

	q := repository.ListQuery{
		OrderBy: order,
		Limit:   p.Size,
		Offset:  (p.Page - 1) * p.Size,
	}
	if len(where) > 0 {
		q.Where = where
	}
	return q, nil
}

func newPage[T any](items []T, total int, p ListParams) *Page[T] {
	p = p.normalized()
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items: items,
		Total: total,
		Page:  p.Page,
		Size:  p.Size,
		Pages: (total + p.Size - 1) / p.Size,
	}
}
