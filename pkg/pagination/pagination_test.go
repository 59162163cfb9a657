package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextFor(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(contextFor("/"))

	if p.PageSize != DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", DefaultPageSize, p.PageSize)
	}
	if p.Page != 1 {
		t.Errorf("expected default page 1, got %d", p.Page)
	}
	if p.Query != "" || p.Department != "" {
		t.Errorf("expected no filters, got %+v", p)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := FromContext(contextFor("/?page=3&pageSize=25&q=+smith+&department=ICU"))

	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.PageSize != 25 {
		t.Errorf("expected page size 25, got %d", p.PageSize)
	}
	if p.Query != " smith " {
		t.Errorf("expected query ' smith ' as given, got %q", p.Query)
	}
	if p.Department != "ICU" {
		t.Errorf("expected department ICU, got %q", p.Department)
	}
}

func TestFromContext_LimitAlias(t *testing.T) {
	p := FromContext(contextFor("/?limit=15"))
	if p.PageSize != 15 {
		t.Errorf("expected page size 15, got %d", p.PageSize)
	}
}

func TestFromContext_MaxPageSize(t *testing.T) {
	p := FromContext(contextFor("/?pageSize=500"))
	if p.PageSize != MaxPageSize {
		t.Errorf("expected page size capped at %d, got %d", MaxPageSize, p.PageSize)
	}
}

func TestFromContext_InvalidPage(t *testing.T) {
	for _, target := range []string{"/?page=-2", "/?page=0", "/?page=abc"} {
		if p := FromContext(contextFor(target)); p.Page != 1 {
			t.Errorf("%s: expected page 1, got %d", target, p.Page)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name        string
		total, size int
		want        int
	}{
		{"empty", 0, 10, 1},
		{"exact", 20, 10, 2},
		{"partial", 25, 10, 3},
		{"single", 1, 10, 1},
		{"zero size uses default", 25, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPages(tt.total, tt.size); got != tt.want {
				t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
			}
		})
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name              string
		page, total, size int
		want              int
	}{
		{"in range", 2, 25, 10, 2},
		{"below", 0, 25, 10, 1},
		{"above", 9, 25, 10, 3},
		{"empty collection", 4, 0, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampPage(tt.page, tt.total, tt.size); got != tt.want {
				t.Errorf("ClampPage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name              string
		page, total, size int
		start, end        int
	}{
		{"first", 1, 25, 10, 0, 10},
		{"last partial", 3, 25, 10, 20, 25},
		{"clamped past end", 7, 25, 10, 20, 25},
		{"empty", 1, 0, 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := Bounds(tt.page, tt.total, tt.size)
			if s != tt.start || e != tt.end {
				t.Errorf("Bounds() = [%d,%d), want [%d,%d)", s, e, tt.start, tt.end)
			}
		})
	}
}

func TestNewResponse(t *testing.T) {
	data := []string{"a", "b", "c"}
	r := NewResponse(data, 1, 3, 4, 10)

	if r.TotalCount != 10 {
		t.Errorf("expected total 10, got %d", r.TotalCount)
	}
	if !r.HasMore {
		t.Error("expected hasMore when page < totalPages")
	}

	r2 := NewResponse(data, 1, 3, 1, 3)
	if r2.HasMore {
		t.Error("expected hasMore false on the last page")
	}
}

func TestParams_Links_FirstPage(t *testing.T) {
	p := Params{Page: 1, PageSize: 10}
	links := p.Links("/api/v1/patients", 25)

	linkMap := make(map[string]string)
	for _, l := range links {
		linkMap[l.Relation] = l.URL
	}

	if linkMap["self"] != "/api/v1/patients?page=1&pageSize=10" {
		t.Errorf("unexpected self link %q", linkMap["self"])
	}
	if linkMap["next"] != "/api/v1/patients?page=2&pageSize=10" {
		t.Errorf("unexpected next link %q", linkMap["next"])
	}
	if _, ok := linkMap["previous"]; ok {
		t.Error("did not expect 'previous' link on first page")
	}
}

func TestParams_Links_CarriesFilters(t *testing.T) {
	p := Params{Page: 2, PageSize: 10, Query: "ann lee", Department: "ICU"}
	links := p.Links("/api/v1/patients", 25)

	linkMap := make(map[string]string)
	for _, l := range links {
		linkMap[l.Relation] = l.URL
	}

	want := "/api/v1/patients?department=ICU&page=1&pageSize=10&q=ann+lee"
	if linkMap["previous"] != want {
		t.Errorf("expected previous %q, got %q", want, linkMap["previous"])
	}
	if _, ok := linkMap["next"]; !ok {
		t.Error("expected 'next' link")
	}
}

func TestParams_Links_SinglePage(t *testing.T) {
	p := Params{Page: 1, PageSize: 10}
	links := p.Links("/api/v1/staff", 0)

	if len(links) != 1 {
		t.Fatalf("expected 1 link (self only), got %d", len(links))
	}
	if links[0].Relation != "self" {
		t.Errorf("expected 'self', got %q", links[0].Relation)
	}
}

func TestResponse_WithLinks(t *testing.T) {
	r := NewResponse([]int{1}, 3, 10, 3, 25).WithLinks("/api/v1/staff", Params{Page: 9, PageSize: 50})
	if len(r.Links) != 2 {
		t.Fatalf("expected self and previous links, got %+v", r.Links)
	}
	if r.Links[0].URL != "/api/v1/staff?page=3&pageSize=10" {
		t.Errorf("expected links to follow the response page, got %q", r.Links[0].URL)
	}
}

func TestSetDefaultPageSize(t *testing.T) {
	defer SetDefaultPageSize(DefaultPageSize)

	SetDefaultPageSize(25)
	if p := FromContext(contextFor("/")); p.PageSize != 25 {
		t.Errorf("expected configured default 25, got %d", p.PageSize)
	}
	SetDefaultPageSize(0)
	SetDefaultPageSize(MaxPageSize + 1)
	if p := FromContext(contextFor("/")); p.PageSize != 25 {
		t.Errorf("expected out-of-range sizes to be ignored, got %d", p.PageSize)
	}
}
