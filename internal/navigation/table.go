// Package navigation maps client paths to views and decides, per navigation
// attempt, whether the current session may enter them.
package navigation

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

// FallbackPath matches every path no other route claims.
const FallbackPath = "/*"

// LoginPath is the root path, where rejected navigations are sent.
const LoginPath = "/"

const routeKey = "navigation.route"

var ErrNoFallback = errors.New("navigation table has no fallback route")

// Routes returns the application's navigation table.
func Routes() []domain.Route {
	user := domain.RouteMeta{RequiresAuth: true, Role: domain.RoleUser}
	admin := domain.RouteMeta{RequiresAuth: true, Role: domain.RoleAdmin}

	return []domain.Route{
		{Name: "login", Path: "/", View: domain.ViewLogin},
		{Name: "register", Path: "/register", View: domain.ViewRegister},

		{Name: "UserDashboard", Path: "/user/dashboard", View: domain.ViewUserDashboard, Meta: user},
		{Name: "UserLots", Path: "/user/lots", View: domain.ViewUserLots, Meta: user},
		{Name: "UserSpots", Path: "/user/spots/:lotId", View: domain.ViewUserSpots, Meta: user},
		{Name: "UserBookings", Path: "/user/bookings", View: domain.ViewUserBookings, Meta: user},
		{Name: "UserCharts", Path: "/user/charts", View: domain.ViewUserCharts, Meta: user},

		{Name: "AdminDashboard", Path: "/admin/dashboard", View: domain.ViewAdminDashboard, Meta: admin},
		{Name: "AdminLots", Path: "/admin/lots", View: domain.ViewAdminLots, Meta: admin},
		{Name: "AdminSpots", Path: "/admin/spots/:lotId", View: domain.ViewAdminSpots, Meta: admin},
		{Name: "AdminUsers", Path: "/admin/users", View: domain.ViewAdminUsers, Meta: admin},
		{Name: "AdminBookings", Path: "/admin/bookings", View: domain.ViewAdminBookings, Meta: admin},
		{Name: "AdminCharts", Path: "/admin/charts", View: domain.ViewAdminCharts, Meta: admin},

		{Name: "notFound", Path: FallbackPath, View: domain.ViewNotFound},
	}
}

// Match is a resolved path.
type Match struct {
	Route domain.Route
	// Path is the normalised requested path.
	Path   string
	Params map[string]string
	Query  url.Values
}

// Param returns a path parameter, or "".
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Table resolves paths against a fixed set of routes. It is immutable after
// NewTable and safe for concurrent use.
type Table struct {
	e        *echo.Echo
	routes   []domain.Route
	fallback domain.Route
}

// NewTable compiles routes. Exactly one route must use FallbackPath so that
// every path resolves.
func NewTable(routes []domain.Route) (*Table, error) {
	t := &Table{e: echo.New(), routes: append([]domain.Route(nil), routes...)}

	seen := make(map[string]struct{}, len(routes))
	hasFallback := false
	for _, r := range t.routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("route %q: path must start with /", r.Path)
		}
		if _, dup := seen[r.Path]; dup {
			return nil, fmt.Errorf("route %q declared twice", r.Path)
		}
		seen[r.Path] = struct{}{}

		if r.Path == FallbackPath {
			t.fallback = r
			hasFallback = true
		}

		route := r
		t.e.GET(r.Path, func(c echo.Context) error {
			c.Set(routeKey, route)
			return nil
		})
	}
	if !hasFallback {
		return nil, ErrNoFallback
	}
	return t, nil
}

// MustTable is NewTable for static tables known to be valid.
func MustTable(routes []domain.Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns a copy of the compiled routes.
func (t *Table) Routes() []domain.Route {
	return append([]domain.Route(nil), t.routes...)
}

// Resolve matches raw (a path, optionally with query) to a route. It never
// fails: unknown paths resolve to the fallback route.
func (t *Table) Resolve(raw string) Match {
	path, query := Normalize(raw)
	m := Match{Path: path, Query: query, Params: map[string]string{}}

	req, _ := http.NewRequest(http.MethodGet, path, nil)
	c := t.e.NewContext(req, nil)
	t.e.Router().Find(http.MethodGet, path, c)

	if h := c.Handler(); h != nil && h(c) == nil {
		if r, ok := c.Get(routeKey).(domain.Route); ok && r.Path != FallbackPath {
			if params, ok := segmentParams(c.ParamNames(), c.ParamValues()); ok {
				m.Route = r
				m.Params = params
				return m
			}
		}
	}

	m.Route = t.fallback
	m.Params = fallbackParams(path)
	return m
}

// segmentParams collects named path parameters. The router backtracks into a
// trailing parameter, so a value spanning several segments (or none) means
// the path has a different shape than the route and is not a match.
func segmentParams(names, values []string) (map[string]string, bool) {
	params := make(map[string]string, len(names))
	for i, name := range names {
		if i >= len(values) {
			return nil, false
		}
		v := values[i]
		if v == "" || strings.Contains(v, "/") {
			return nil, false
		}
		params[name] = v
	}
	return params, true
}

func fallbackParams(path string) map[string]string {
	return map[string]string{"pathMatch": strings.TrimPrefix(path, "/")}
}

// Normalize strips the fragment, splits off the query and removes a trailing
// slash. The empty path is the root.
func Normalize(raw string) (string, url.Values) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}

	var query url.Values
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		query, _ = url.ParseQuery(raw[i+1:])
		raw = raw[:i]
	}
	if query == nil {
		query = url.Values{}
	}

	if p, err := url.PathUnescape(raw); err == nil {
		raw = p
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	if len(raw) > 1 {
		raw = strings.TrimRight(raw, "/")
		if raw == "" {
			raw = "/"
		}
	}
	return raw, query
}
