package navigation

import (
	"testing"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

func sessionFor(role string) domain.Session {
	if role == "" {
		return domain.Session{}
	}
	return domain.Session{User: &domain.User{ID: 1, Username: "u", Role: role}, Role: role}
}

func TestGuard(t *testing.T) {
	table := MustTable(Routes())
	from := table.Resolve("/").Route

	cases := []struct {
		name   string
		role   string
		path   string
		allow  bool
		reason string
	}{
		{"anonymous public", "", "/register", true, ""},
		{"anonymous not found", "", "/missing", true, ""},
		{"anonymous protected", "", "/user/lots", false, ReasonUnauthenticated},
		{"anonymous admin", "", "/admin/users", false, ReasonUnauthenticated},
		{"user own area", domain.RoleUser, "/user/charts", true, ""},
		{"user admin area", domain.RoleUser, "/admin/dashboard", false, ReasonRole},
		{"admin own area", domain.RoleAdmin, "/admin/spots/3", true, ""},
		{"admin user area", domain.RoleAdmin, "/user/bookings", false, ReasonRole},
		{"admin login page", domain.RoleAdmin, "/", true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Guard(sessionFor(tc.role), table.Resolve(tc.path).Route, from)
			if d.Allow != tc.allow {
				t.Fatalf("allow = %v, want %v", d.Allow, tc.allow)
			}
			if !d.Allow && d.Redirect != LoginPath {
				t.Fatalf("redirect = %q, want %q", d.Redirect, LoginPath)
			}
			if d.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", d.Reason, tc.reason)
			}
		})
	}
}

func TestGuard_RoleWithoutUserIsUnauthenticated(t *testing.T) {
	to := domain.Route{Path: "/user/lots", Meta: domain.RouteMeta{RequiresAuth: true, Role: domain.RoleUser}}
	d := Guard(domain.Session{Role: domain.RoleUser}, to, domain.Route{})
	if d.Allow || d.Reason != ReasonUnauthenticated {
		t.Fatalf("unexpected decision %+v", d)
	}
}
