package navigation

import (
	"errors"
	"testing"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

func TestResolve_StaticAndParamRoutes(t *testing.T) {
	table := MustTable(Routes())

	cases := []struct {
		path  string
		view  domain.ViewID
		param string
	}{
		{"/", domain.ViewLogin, ""},
		{"", domain.ViewLogin, ""},
		{"/register", domain.ViewRegister, ""},
		{"/register/", domain.ViewRegister, ""},
		{"/user/dashboard?tab=1", domain.ViewUserDashboard, ""},
		{"/user/spots/7", domain.ViewUserSpots, "7"},
		{"/admin/spots/12#top", domain.ViewAdminSpots, "12"},
		{"/admin/bookings", domain.ViewAdminBookings, ""},
	}

	for _, tc := range cases {
		m := table.Resolve(tc.path)
		if m.Route.View != tc.view {
			t.Fatalf("Resolve(%q) view = %s, want %s", tc.path, m.Route.View, tc.view)
		}
		if got := m.Param("lotId"); got != tc.param {
			t.Fatalf("Resolve(%q) lotId = %q, want %q", tc.path, got, tc.param)
		}
	}
}

func TestResolve_UnknownPathsFallBack(t *testing.T) {
	table := MustTable(Routes())

	for _, p := range []string{
		"/nope", "/user", "/user/spots", "/user/spots/1/extra",
		"/admin/spots/1/x/y", "/admin/dashboard/x",
	} {
		m := table.Resolve(p)
		if m.Route.View != domain.ViewNotFound {
			t.Fatalf("Resolve(%q) view = %s, want NotFound", p, m.Route.View)
		}
		if m.Param("lotId") != "" {
			t.Fatalf("Resolve(%q) leaked lotId %q", p, m.Param("lotId"))
		}
		if m.Route.Meta.RequiresAuth {
			t.Fatalf("fallback route must not require auth")
		}
	}

	m := table.Resolve("/a/b")
	if m.Param("pathMatch") != "a/b" {
		t.Fatalf("unexpected pathMatch: %q", m.Param("pathMatch"))
	}
}

func TestResolve_QueryIsKept(t *testing.T) {
	table := MustTable(Routes())

	m := table.Resolve("/user/lots?page=2&q=central")
	if m.Path != "/user/lots" {
		t.Fatalf("unexpected path %q", m.Path)
	}
	if m.Query.Get("page") != "2" || m.Query.Get("q") != "central" {
		t.Fatalf("unexpected query %v", m.Query)
	}
}

func TestRoutes_GuardAnnotations(t *testing.T) {
	for _, r := range Routes() {
		switch {
		case r.Path == "/" || r.Path == "/register" || r.Path == FallbackPath:
			if r.Meta.RequiresAuth || r.Meta.Role != "" {
				t.Fatalf("%s must be public", r.Path)
			}
		case len(r.Path) > 6 && r.Path[:7] == "/admin/":
			if !r.Meta.RequiresAuth || r.Meta.Role != domain.RoleAdmin {
				t.Fatalf("%s must require admin", r.Path)
			}
		case len(r.Path) > 5 && r.Path[:6] == "/user/":
			if !r.Meta.RequiresAuth || r.Meta.Role != domain.RoleUser {
				t.Fatalf("%s must require user", r.Path)
			}
		default:
			t.Fatalf("unexpected route %s", r.Path)
		}
	}
}

func TestNewTable_RequiresFallback(t *testing.T) {
	_, err := NewTable([]domain.Route{{Name: "login", Path: "/", View: domain.ViewLogin}})
	if !errors.Is(err, ErrNoFallback) {
		t.Fatalf("expected ErrNoFallback, got %v", err)
	}
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	routes := []domain.Route{
		{Path: "/", View: domain.ViewLogin},
		{Path: "/", View: domain.ViewRegister},
		{Path: FallbackPath, View: domain.ViewNotFound},
	}
	if _, err := NewTable(routes); err == nil {
		t.Fatalf("expected error for duplicate path")
	}
}
