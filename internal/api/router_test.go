package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/api/handler"
	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/devapi"
)

type testServer struct {
	e     *echo.Echo
	auth  *devapi.AuthService
	token map[string]string
}

func newTestServer(t *testing.T, requireAuth bool) *testServer {
	t.Helper()
	state := devapi.NewState()
	auth := devapi.NewAuthService(state, "secret", time.Hour)
	if err := auth.SeedAdmin("admin@gmail.com", "admin123"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	parking := devapi.NewParkingService(state, zerolog.Nop())
	exports := devapi.NewExportService(state, t.TempDir(), 1, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := exports.Start(ctx); err != nil {
		t.Fatalf("start exports: %v", err)
	}

	e := NewRouter(Options{
		Auth:        auth,
		Parking:     parking,
		Exports:     exports,
		Ready:       map[string]handler.Checker{"exports": exports},
		JWTSecret:   "secret",
		RequireAuth: requireAuth,
		Log:         zerolog.Nop(),
	})
	return &testServer{e: e, auth: auth, token: map[string]string{}}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var resp map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: invalid json: %v", method, path, err)
		}
	}
	return rec, resp
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec, resp := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body.String())
	}
	return resp["data"].(map[string]any)["token"].(string)
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	s := newTestServer(t, true)

	rec, resp := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"admin@gmail.com","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp["status"] != "error" || resp["message"] != "Invalid credentials" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	if _, ok := resp["data"].(map[string]any); !ok {
		t.Fatalf("expected empty data object, got %+v", resp["data"])
	}

	rec, resp = s.do(t, http.MethodGet, "/api/lots", "", "")
	if rec.Code != http.StatusUnauthorized || resp["message"] != "Missing authorization header" {
		t.Fatalf("expected 401 without token, got %d %+v", rec.Code, resp)
	}
}

func TestRouter_AdminRoutesRequireRole(t *testing.T) {
	s := newTestServer(t, true)
	s.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"bob","email":"bob@x.io","password":"pw1234"}`)
	userToken := s.login(t, "bob@x.io", "pw1234")
	adminToken := s.login(t, "admin@gmail.com", "admin123")

	if rec, _ := s.do(t, http.MethodGet, "/api/users", userToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user, got %d", rec.Code)
	}
	rec, resp := s.do(t, http.MethodGet, "/api/users", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
	if users := resp["data"].(map[string]any)["users"].([]any); len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	// Another user's bookings are off limits.
	if rec, _ := s.do(t, http.MethodGet, "/api/bookings/user?user_id=1", userToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_ParkingFlow(t *testing.T) {
	s := newTestServer(t, true)
	adminToken := s.login(t, "admin@gmail.com", "admin123")
	s.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"bob","email":"bob@x.io","password":"pw1234"}`)
	userToken := s.login(t, "bob@x.io", "pw1234")

	rec, resp := s.do(t, http.MethodPost, "/api/lots", adminToken,
		`{"prime_location_name":"Central","address":"1 Main","pin_code":"560001","price_per_hour":12.5,"number_of_spots":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create lot: %d %s", rec.Code, rec.Body.String())
	}
	lot := resp["data"].(map[string]any)
	if len(lot["spots"].([]any)) != 2 {
		t.Fatalf("expected 2 spots, got %+v", lot)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/reserve", userToken, `{"user_id":2,"lot_id":1,"vehicle_number":"KA01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reserve: %d %s", rec.Code, rec.Body.String())
	}
	if resp["data"].(map[string]any)["reservation_id"] != float64(1) {
		t.Fatalf("unexpected reservation %+v", resp)
	}

	rec, resp = s.do(t, http.MethodGet, "/api/admin/lots/1/spots", adminToken, "")
	if rec.Code != http.StatusOK || len(resp["spots"].([]any)) != 2 {
		t.Fatalf("admin spots: %d %+v", rec.Code, resp)
	}

	if rec, _ := s.do(t, http.MethodDelete, "/api/lots/1", adminToken, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting an occupied lot, got %d", rec.Code)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/bookings/release/1", adminToken, "")
	if rec.Code != http.StatusOK || resp["data"].(map[string]any)["status"] != domain.BookingReleased {
		t.Fatalf("release: %d %+v", rec.Code, resp)
	}
	if rec, _ := s.do(t, http.MethodPost, "/api/bookings/release/1", adminToken, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on double release, got %d", rec.Code)
	}

	rec, resp = s.do(t, http.MethodGet, "/api/bookings/user?user_id=2", userToken, "")
	if rec.Code != http.StatusOK || len(resp["data"].(map[string]any)["bookings"].([]any)) != 1 {
		t.Fatalf("user bookings: %d %+v", rec.Code, resp)
	}

	for _, path := range []string{"/api/charts", "/api/chart/admin"} {
		rec, resp = s.do(t, http.MethodGet, path, adminToken, "")
		if rec.Code != http.StatusOK || resp["data"].(map[string]any)["spots_by_lot"] == nil {
			t.Fatalf("%s: %d %+v", path, rec.Code, resp)
		}
	}
}

func TestRouter_Export(t *testing.T) {
	s := newTestServer(t, false)
	s.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"bob","email":"bob@x.io","password":"pw1234"}`)

	rec, resp := s.do(t, http.MethodGet, "/api/export-csv?user_id=2", "", "")
	if rec.Code != http.StatusOK || resp["status"] != "started" {
		t.Fatalf("start export: %d %+v", rec.Code, resp)
	}
	taskID := resp["task_id"].(string)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec, resp = s.do(t, http.MethodGet, "/api/download-csv?task_id="+taskID, "", "")
		if resp == nil {
			break
		}
		if resp["status"] != domain.ExportPending {
			t.Fatalf("unexpected export status %+v", resp)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.HasPrefix(rec.Body.String(), "reservation_id,") {
		t.Fatalf("expected csv body, got %q", rec.Body.String())
	}

	if rec, _ := s.do(t, http.MethodGet, "/api/download-csv?task_id=missing", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_Probes(t *testing.T) {
	s := newTestServer(t, false)

	for _, path := range []string{"/health", "/health/ready"} {
		if rec, resp := s.do(t, http.MethodGet, path, "", ""); rec.Code != http.StatusOK || resp["status"] != "ok" {
			t.Fatalf("%s: %d %+v", path, rec.Code, resp)
		}
	}

	s.do(t, http.MethodGet, "/api/lots", "", "")
	rec, _ := s.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "requests_total") {
		t.Fatalf("metrics missing request counter: %d", rec.Code)
	}
}

func TestErrorHandler_UnknownErrorIsMasked(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("disk on fire"), c)

	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "disk") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestErrorHandler_ValidationError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(&domain.ValidationError{Fields: []string{"email is required", "password is required"}}, c)

	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "email is required; password is required") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
