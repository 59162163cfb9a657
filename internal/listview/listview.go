// Package listview keeps a filtered, searched and paginated view over a
// record collection. Changing the search term, the category or the base
// collection returns the view to page 1; changing the page does not
// re-filter.
package listview

import (
	"strings"

	"github.com/medflow/medflow/pkg/pagination"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "all"

// Spec describes how to search and categorize one record kind.
type Spec[T any] struct {
	// SearchFields returns the fields matched by the search term.
	SearchFields func(T) []string
	// Category returns the record's category, usually its department.
	Category func(T) string
}

// Page is one page of a filtered collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}

// View is the filter/search/page state over a base collection. A View is not
// safe for concurrent use.
type View[T any] struct {
	spec     Spec[T]
	base     []T
	search   string
	category string
	page     int
	size     int

	filtered []T
	dirty    bool
}

// New returns a View over base on page 1. A non-positive size uses the
// default page size.
func New[T any](spec Spec[T], base []T, size int) *View[T] {
	if size <= 0 {
		size = pagination.DefaultPageSize
	}
	return &View[T]{spec: spec, base: base, page: 1, size: size, dirty: true}
}

// FromParams builds a View from request parameters.
func FromParams[T any](spec Spec[T], base []T, p pagination.Params) *View[T] {
	v := New(spec, base, p.PageSize)
	v.SetSearch(p.Query)
	v.SetCategory(p.Department)
	v.SetPage(p.Page)
	return v
}

func (v *View[T]) SetSearch(term string) {
	v.search = term
	v.page = 1
	v.dirty = true
}

func (v *View[T]) SetCategory(category string) {
	v.category = category
	v.page = 1
	v.dirty = true
}

func (v *View[T]) SetBase(base []T) {
	v.base = base
	v.page = 1
	v.dirty = true
}

// SetPage moves to page. Out-of-range pages are clamped when the result is
// computed.
func (v *View[T]) SetPage(page int) {
	v.page = page
}

// Filtered returns every record that passes the search and category filters,
// in base order.
func (v *View[T]) Filtered() []T {
	if v.dirty {
		v.filtered = Filter(v.spec, v.base, v.search, v.category)
		v.dirty = false
	}
	return v.filtered
}

// Result returns the current page.
func (v *View[T]) Result() Page[T] {
	items := v.Filtered()
	total := len(items)
	page := pagination.ClampPage(v.page, total, v.size)
	start, end := pagination.Bounds(page, total, v.size)

	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{
		Items:      out,
		Page:       page,
		PageSize:   v.size,
		TotalPages: pagination.TotalPages(total, v.size),
		TotalCount: total,
	}
}

// Filter applies search and category to items. The search is a
// case-insensitive substring match over the spec's search fields. The term is
// used as given, whitespace included; only the empty term matches everything. The category matches by exact equality unless it
// is empty or AllCategories.
func Filter[T any](spec Spec[T], items []T, search, category string) []T {
	term := strings.ToLower(search)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !matchesCategory(spec, it, category) || !matchesSearch(spec, it, term) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesCategory[T any](spec Spec[T], it T, category string) bool {
	if category == "" || category == AllCategories || spec.Category == nil {
		return true
	}
	return spec.Category(it) == category
}

func matchesSearch[T any](spec Spec[T], it T, term string) bool {
	if term == "" || spec.SearchFields == nil {
		return true
	}
	for _, f := range spec.SearchFields(it) {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Categories returns the distinct non-empty categories of items in order of
// first appearance.
func Categories[T any](items []T, category func(T) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, it := range items {
		c := category(it)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
