package middleware

import (
	"io"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
)

const defaultBodyLimit = 1 << 20

// BodyLimit rejects request bodies larger than limit with 413. limit is a
// human-readable size such as "512KB" or "1MiB"; an empty or unparseable
// value means 1 MiB.
func BodyLimit(limit string) echo.MiddlewareFunc {
	max := parseLimit(limit)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}
			if req.ContentLength > max {
				return tooLarge(max)
			}
			req.Body = &limitedReadCloser{ReadCloser: req.Body, remaining: max, limit: max}
			return next(c)
		}
	}
}

// limitedReadCloser enforces the limit when Content-Length is absent or
// wrong.
type limitedReadCloser struct {
	io.ReadCloser
	remaining int64
	limit     int64
	exceeded  bool
}

func (r *limitedReadCloser) Read(p []byte) (int, error) {
	if r.exceeded {
		return 0, tooLarge(r.limit)
	}
	if int64(len(p)) > r.remaining+1 {
		p = p[:r.remaining+1]
	}
	n, err := r.ReadCloser.Read(p)
	r.remaining -= int64(n)
	if r.remaining < 0 {
		r.exceeded = true
		return 0, tooLarge(r.limit)
	}
	return n, err
}

func tooLarge(limit int64) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusRequestEntityTooLarge, map[string]interface{}{
		"error": "request body exceeds " + humanize.IBytes(uint64(limit)),
	})
}

func parseLimit(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultBodyLimit
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n == 0 {
		return defaultBodyLimit
	}
	return int64(n)
}
