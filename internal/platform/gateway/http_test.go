package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medflow/medflow/pkg/apperror"
)

func TestHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", apperror.NotFound("patient", 3), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", apperror.NotFound("patient", 3)), http.StatusNotFound},
		{"validation", apperror.Validation("patient", map[string]string{"name": "Name is required"}), http.StatusUnprocessableEntity},
		{"load failure", apperror.LoadFailure("staff", errors.New("down")), http.StatusServiceUnavailable},
		{"internal", apperror.Internal("staff", "create staff failed", errors.New("boom")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := HTTPError(tt.err)
			if he.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, he.Code)
			}
		})
	}
}

func TestHTTPError_Bodies(t *testing.T) {
	he := HTTPError(apperror.Validation("patient", map[string]string{"email": "Email format is invalid"}))
	body := he.Message.(map[string]interface{})
	fields, ok := body["fields"].(map[string]string)
	if !ok || fields["email"] == "" {
		t.Errorf("expected field errors in body, got %v", body)
	}

	he = HTTPError(apperror.LoadFailure("staff", errors.New("down")))
	if body := he.Message.(map[string]interface{}); body["retry"] != true {
		t.Errorf("expected retry flag, got %v", body)
	}

	he = HTTPError(apperror.Internal("staff", "create staff failed", errors.New("pq: secret detail")))
	if body := he.Message.(map[string]interface{}); body["error"] != "internal error" {
		t.Errorf("expected backend detail to be hidden, got %v", body)
	}
}

func TestParseID(t *testing.T) {
	e := echo.New()
	for _, tt := range []struct {
		raw   string
		want  int64
		valid bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(tt.raw)

		id, err := ParseID(c)
		if (err == nil) != tt.valid || id != tt.want {
			t.Errorf("ParseID(%q) = %d, %v", tt.raw, id, err)
		}
	}
}

func TestBindFields(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name_c":"Ada","totalBeds":"12"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	f, err := BindFields(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f["name_c"] != "Ada" || f["totalBeds"] != "12" {
		t.Errorf("unexpected fields %v", f)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c = e.NewContext(req, httptest.NewRecorder())
	if _, err := BindFields(c); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestAnnouncer_Mutation(t *testing.T) {
	n := &recordingNotifier{}
	changed := 0
	a := Announcer{Notifier: n, OnChange: func(context.Context) { changed++ }}

	a.Mutation(context.Background(), "patient", NoticeCreated, 7, nil)
	a.Mutation(context.Background(), "patient", NoticeUpdated, 7, errors.New("invalid patient"))

	if len(n.notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(n.notices))
	}
	if n.notices[0].Type != NoticeCreated || n.notices[0].ID != 7 {
		t.Errorf("unexpected success notice %+v", n.notices[0])
	}
	if n.notices[1].Type != NoticeMutationFailed || n.notices[1].Message != "invalid patient" {
		t.Errorf("unexpected failure notice %+v", n.notices[1])
	}
	if changed != 1 {
		t.Errorf("expected OnChange only after success, got %d calls", changed)
	}
}
