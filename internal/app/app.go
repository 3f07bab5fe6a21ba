// Package app wires the stores and the navigator into one client session and
// acts on the outcomes the stores return.
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/core/ports"
	"github.com/vehicle-parking/vpa-client/internal/core/service"
	"github.com/vehicle-parking/vpa-client/internal/navigation"
)

// Options are the dependencies of an App.
type Options struct {
	API     ports.APIClient
	Storage ports.Storage
	// RestoreSession rebuilds the session from the persisted credential on Bootstrap.
	RestoreSession bool
	// Routes defaults to navigation.Routes().
	Routes []domain.Route
	Log    zerolog.Logger
}

// loader fetches what a view shows.
type loader func(ctx context.Context, m navigation.Match) error

// App is one running client. Create it with New, call Bootstrap once, and
// Close it when done.
type App struct {
	Session *service.SessionStore
	Admin   *service.AdminStore
	User    *service.UserStore
	Nav     *navigation.Navigator

	storage ports.Storage
	loaders map[domain.ViewID]loader
	log     zerolog.Logger

	mu      sync.Mutex
	closers []func(context.Context) error
	closed  bool
}

func New(opts Options) (*App, error) {
	if opts.API == nil {
		return nil, errors.New("app: api client is required")
	}
	routes := opts.Routes
	if routes == nil {
		routes = navigation.Routes()
	}
	table, err := navigation.NewTable(routes)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	session := service.NewSessionStore(opts.API, opts.Storage, opts.RestoreSession, opts.Log.With().Str("component", "session").Logger())
	a := &App{
		Session: session,
		Admin:   service.NewAdminStore(opts.API, opts.Log.With().Str("component", "admin").Logger()),
		User:    service.NewUserStore(opts.API, session, opts.Log.With().Str("component", "user").Logger()),
		Nav:     navigation.NewNavigator(table, session, opts.Log.With().Str("component", "navigator").Logger()),
		storage: opts.Storage,
		log:     opts.Log,
	}
	a.loaders = a.viewLoaders()
	return a, nil
}

func (a *App) viewLoaders() map[domain.ViewID]loader {
	userLots := func(ctx context.Context, _ navigation.Match) error { return a.User.FetchLots(ctx) }
	adminLots := func(ctx context.Context, _ navigation.Match) error { return a.Admin.FetchLots(ctx) }

	return map[domain.ViewID]loader{
		domain.ViewUserDashboard: userLots,
		domain.ViewUserLots:      userLots,
		domain.ViewUserSpots: func(ctx context.Context, m navigation.Match) error {
			id, err := lotParam(m)
			if err != nil {
				return err
			}
			return a.User.FetchSpots(ctx, id)
		},
		domain.ViewUserBookings: func(ctx context.Context, _ navigation.Match) error { return a.User.FetchBookings(ctx) },
		domain.ViewUserCharts: func(ctx context.Context, _ navigation.Match) error {
			_, err := a.User.FetchCharts(ctx)
			return err
		},
		domain.ViewAdminDashboard: adminLots,
		domain.ViewAdminLots:      adminLots,
		domain.ViewAdminUsers:     func(ctx context.Context, _ navigation.Match) error { return a.Admin.FetchUsers(ctx) },
		domain.ViewAdminBookings:  func(ctx context.Context, _ navigation.Match) error { return a.Admin.FetchBookings(ctx) },
		domain.ViewAdminCharts: func(ctx context.Context, _ navigation.Match) error {
			_, err := a.Admin.FetchCharts(ctx)
			return err
		},
	}
}

func lotParam(m navigation.Match) (int, error) {
	id, err := strconv.Atoi(m.Param("lotId"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("lot id %q: %w", m.Param("lotId"), domain.ErrInvalidInput)
	}
	return id, nil
}

// OnClose registers a teardown step. Steps run in reverse order on Close.
func (a *App) OnClose(fn func(context.Context) error) {
	a.mu.Lock()
	a.closers = append(a.closers, fn)
	a.mu.Unlock()
}

// Bootstrap restores the persisted session when enabled and opens the
// landing view: the role's dashboard when signed in, the login view otherwise.
func (a *App) Bootstrap(ctx context.Context) (navigation.Navigation, error) {
	restored, err := a.Session.Restore(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("session restore failed")
	}
	if restored {
		return a.Open(ctx, domain.DashboardPath(a.Session.Snapshot().Role))
	}
	return a.Open(ctx, navigation.LoginPath)
}

// Open navigates to path and loads the data of the view it lands on. A load
// failure is returned alongside the completed navigation.
func (a *App) Open(ctx context.Context, path string) (navigation.Navigation, error) {
	nav, err := a.Nav.Navigate(path)
	if err != nil {
		return nav, err
	}
	return nav, a.load(ctx, nav)
}

// Back returns to the previous view and reloads it.
func (a *App) Back(ctx context.Context) (navigation.Navigation, bool, error) {
	nav, ok, err := a.Nav.Back()
	if !ok || err != nil {
		return nav, ok, err
	}
	return nav, true, a.load(ctx, nav)
}

func (a *App) load(ctx context.Context, nav navigation.Navigation) error {
	fn, ok := a.loaders[nav.Match.Route.View]
	if !ok {
		return nil
	}
	if err := fn(ctx, nav.Match); err != nil {
		return fmt.Errorf("load %s: %w", nav.Match.Route.Name, err)
	}
	return nil
}

// Login signs in, persists the issued credential and opens the role's
// dashboard.
func (a *App) Login(ctx context.Context, email, password string) (navigation.Navigation, error) {
	out, err := a.Session.Login(ctx, email, password)
	if err != nil {
		return navigation.Navigation{}, err
	}
	a.completeLogin(ctx, out)
	return a.Open(ctx, out.Redirect)
}

// completeLogin writes the issued credential where the HTTP adapter reads it.
func (a *App) completeLogin(ctx context.Context, out service.Outcome) {
	if out.Token == "" || a.storage == nil {
		return
	}
	if err := a.storage.Set(ctx, ports.TokenKey, out.Token); err != nil {
		a.log.Warn().Err(err).Msg("persist credential")
	}
}

// Register creates an account and returns to the login view.
func (a *App) Register(ctx context.Context, name, email, password string) (navigation.Navigation, error) {
	out, err := a.Session.Register(ctx, name, email, password)
	if err != nil {
		return navigation.Navigation{}, err
	}
	return a.Open(ctx, out.Redirect)
}

// Logout ends the session, drops every cached collection and returns to
// the login view with a fresh history.
func (a *App) Logout(ctx context.Context) (navigation.Navigation, error) {
	out := a.Session.Logout(ctx)
	a.Admin.Reset()
	a.User.Reset()
	a.Nav.Reset()
	return a.Open(ctx, out.Redirect)
}

// Reset returns the app to its freshly constructed state without touching
// persistent storage.
func (a *App) Reset() {
	a.Session.Reset()
	a.Admin.Reset()
	a.User.Reset()
	a.Nav.Reset()
}

// Close resets the app and runs the registered teardown steps. Calling it
// again is a no-op.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	a.Reset()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
