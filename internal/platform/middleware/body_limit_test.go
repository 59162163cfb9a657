package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1MiB", 1 << 20},
		{"512KiB", 512 << 10},
		{"1 kB", 1000},
		{"2048", 2048},
		{"", 1 << 20},
		{"invalid", 1 << 20},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.input); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestBodyLimit_AllowsSmallBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(`{"name":"Jane"}`))
	c := e.NewContext(req, httptest.NewRecorder())

	handler := func(c echo.Context) error {
		b, err := io.ReadAll(c.Request().Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if string(b) != `{"name":"Jane"}` {
			t.Errorf("unexpected body %q", b)
		}
		return nil
	}
	if err := BodyLimit("1KiB")(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBodyLimit_RejectsOversizedContentLength(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(bytes.Repeat([]byte("x"), 2048)))
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := BodyLimit("1KiB")(func(echo.Context) error { called = true; return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %v", err)
	}
	if called {
		t.Error("handler must not run")
	}
}

func TestBodyLimit_EnforcesLimitDuringRead(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(bytes.Repeat([]byte("x"), 2048)))
	req.ContentLength = -1
	c := e.NewContext(req, httptest.NewRecorder())

	err := BodyLimit("1KiB")(func(c echo.Context) error {
		_, err := io.ReadAll(c.Request().Body)
		return err
	})(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 while reading, got %v", err)
	}
}

func TestBodyLimit_SkipsEmptyBody(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := BodyLimit("1")(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
