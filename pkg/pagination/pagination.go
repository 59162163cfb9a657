package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var defaultSize atomic.Int64

func init() { defaultSize.Store(DefaultPageSize) }

// SetDefaultPageSize changes the page size used when a request gives none.
// Values outside 1..MaxPageSize are ignored.
func SetDefaultPageSize(n int) {
	if n > 0 && n <= MaxPageSize {
		defaultSize.Store(int64(n))
	}
}

// Params holds list parameters extracted from a request.
type Params struct {
	Page       int
	PageSize   int
	Query      string
	Department string
}

// FromContext extracts list parameters from the echo context. pageSize may
// also be given as limit. A missing or invalid page is page 1.
func FromContext(c echo.Context) Params {
	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if size <= 0 {
		size, _ = strconv.Atoi(c.QueryParam("limit"))
	}
	if size <= 0 {
		size = int(defaultSize.Load())
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	return Params{
		Page:       page,
		PageSize:   size,
		Query:      c.QueryParam("q"),
		Department: c.QueryParam("department"),
	}
}

// TotalPages returns ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage bounds page to [1, TotalPages(total, size)].
func ClampPage(page, total, size int) int {
	last := TotalPages(total, size)
	switch {
	case page < 1:
		return 1
	case page > last:
		return last
	}
	return page
}

// Bounds returns the half-open slice range of page within total items.
func Bounds(page, total, size int) (start, end int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	page = ClampPage(page, total, size)
	start = (page - 1) * size
	if start > total {
		start = total
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}

// Response wraps a paginated API response.
type Response struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
	TotalCount int         `json:"totalCount"`
	HasMore    bool        `json:"hasMore"`
	Links      []Link      `json:"links,omitempty"`
}

func NewResponse(data interface{}, page, pageSize, totalPages, totalCount int) *Response {
	return &Response{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: totalCount,
		HasMore:    page < totalPages,
	}
}

// WithLinks attaches navigation links built from basePath and p's filters.
func (r *Response) WithLinks(basePath string, p Params) *Response {
	p.Page = r.Page
	p.PageSize = r.PageSize
	r.Links = p.Links(basePath, r.TotalCount)
	return r
}

// Link is a single navigation link of a paginated response.
type Link struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

// Links generates self/next/previous links for a list result. The search and
// department filters are carried into every link.
func (p Params) Links(basePath string, total int) []Link {
	last := TotalPages(total, p.PageSize)
	links := []Link{{Relation: "self", URL: p.url(basePath, p.Page)}}
	if p.Page < last {
		links = append(links, Link{Relation: "next", URL: p.url(basePath, p.Page+1)})
	}
	if p.Page > 1 {
		links = append(links, Link{Relation: "previous", URL: p.url(basePath, p.Page-1)})
	}
	return links
}

func (p Params) url(basePath string, page int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("pageSize", strconv.Itoa(p.PageSize))
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Department != "" {
		v.Set("department", p.Department)
	}
	return fmt.Sprintf("%s?%s", basePath, v.Encode())
}
