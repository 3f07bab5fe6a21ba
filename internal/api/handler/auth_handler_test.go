package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/devapi"
	"github.com/vehicle-parking/vpa-client/internal/pkg/validate"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, email, password string) (domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (devapi.LoginResult, error)
	existing   map[string]bool
}

func (s *stubAuthService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	return s.registerFn(ctx, username, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (devapi.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) EmailExists(_ context.Context, email string) bool {
	return s.existing[email]
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validate.New()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (string, map[string]any) {
	t.Helper()
	var resp struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp.Status, resp.Data
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, email, password string) (domain.User, error) {
			if username != "alice" || email != "a@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s %s", username, email, password)
			}
			return domain.User{ID: 3, Username: username, Email: email}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"name":"alice","email":"a@example.com","password":"secret"}`), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	status, data := decodeEnvelope(t, rec)
	if status != "success" || data["id"] != float64(3) || data["email"] != "a@example.com" {
		t.Fatalf("unexpected payload: %s %+v", status, data)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (domain.User, error) {
			return domain.User{}, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"username":"bob","email":"b@x.io","password":"pw"}`), httptest.NewRecorder())

	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (domain.User, error) {
			t.Fatalf("should not be called")
			return domain.User{}, nil
		},
	}
	h := NewAuthHandler(stub)

	for _, body := range []string{
		"not-json",
		`{"email":"b@x.io","password":"pw"}`,
		`{"username":"bob","email":"not-an-email","password":"pw"}`,
	} {
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", body), httptest.NewRecorder())
		err := h.Register(c)

		var he *echo.HTTPError
		var ve *domain.ValidationError
		if !errors.As(err, &he) && !errors.As(err, &ve) {
			t.Fatalf("body %q: expected a 400-class error, got %v", body, err)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (devapi.LoginResult, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return devapi.LoginResult{
				User:  domain.User{ID: 1, Username: "alice", Email: email, Role: domain.RoleAdmin},
				Token: "token123",
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	_, data := decodeEnvelope(t, rec)
	if data["token"] != "token123" || data["role"] != "admin" || data["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", data)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (devapi.LoginResult, error) {
			return devapi.LoginResult{}, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"a@x.io","password":"bad"}`), httptest.NewRecorder())

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_CheckEmail(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{existing: map[string]bool{"taken@x.io": true}})

	for email, want := range map[string]bool{"taken@x.io": true, "free@x.io": false} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/check-email?email="+email, nil), rec)
		if err := h.CheckEmail(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if _, data := decodeEnvelope(t, rec); data["exists"] != want {
			t.Fatalf("%s: expected exists=%v, got %+v", email, want, data)
		}
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/check-email", nil), httptest.NewRecorder())
	var he *echo.HTTPError
	if err := h.CheckEmail(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
