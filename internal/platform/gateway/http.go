package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medflow/medflow/pkg/apperror"
)

// HTTPError maps a gateway error onto an HTTP error with a JSON body.
func HTTPError(err error) *echo.HTTPError {
	msg := "internal error"
	var ae *apperror.Error
	if errors.As(err, &ae) && ae.Kind != apperror.KindInternal {
		msg = ae.Message
	}

	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, map[string]interface{}{"error": msg})
	case apperror.KindValidation:
		body := map[string]interface{}{"error": msg}
		if len(ae.Fields) > 0 {
			body["fields"] = ae.Fields
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, body)
	case apperror.KindLoadFailure:
		return echo.NewHTTPError(http.StatusServiceUnavailable, map[string]interface{}{"error": msg, "retry": true})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, map[string]interface{}{"error": msg})
}

// LoadError is HTTPError for a failed LoadResult.
func LoadError[T any](r LoadResult[T]) *echo.HTTPError {
	return HTTPError(r.Err())
}

// ParseID reads the :id path parameter.
func ParseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{"error": "invalid id"})
	}
	return id, nil
}

// BindFields decodes the JSON request body into Fields.
func BindFields(c echo.Context) (Fields, error) {
	var f Fields
	if err := (&echo.DefaultBinder{}).BindBody(c, &f); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}
	if f == nil {
		f = Fields{}
	}
	return f, nil
}

// Announcer reports mutation outcomes. Successful mutations also trigger
// OnChange so that derived views can be refreshed by re-fetching.
type Announcer struct {
	Notifier Notifier
	OnChange func(ctx context.Context)
	Clock    func() time.Time
}

// Mutation announces the outcome of a create, update or delete.
func (a Announcer) Mutation(ctx context.Context, kind, noticeType string, id int64, err error) {
	now := time.Now
	if a.Clock != nil {
		now = a.Clock
	}
	n := Notice{Type: noticeType, Entity: kind, ID: id, At: now()}
	if err != nil {
		n.Type = NoticeMutationFailed
		n.Message = err.Error()
	} else {
		n.Message = kind + " " + noticeType
	}
	if a.Notifier != nil {
		a.Notifier.Notify(ctx, n)
	}
	if err == nil && a.OnChange != nil {
		a.OnChange(ctx)
	}
}
