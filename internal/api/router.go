package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/vehicle-parking/vpa-client/docs"
	"github.com/vehicle-parking/vpa-client/internal/api/handler"
	"github.com/vehicle-parking/vpa-client/internal/api/middleware"
	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/pkg/validate"
)

// Options are the dependencies of the development API.
type Options struct {
	Auth    handler.AuthService
	Parking handler.ParkingService
	Exports handler.ExportService
	// Ready lists the dependencies of the readiness probe.
	Ready map[string]handler.Checker

	JWTSecret string
	// RequireAuth guards every non-auth route with the JWT middleware and
	// admin routes with RBAC.
	RequireAuth bool
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Routes live under /api; probes, metrics and docs at the root.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)
	e.Validator = validate.New()

	// Each router gets its own registry so several can coexist in one process.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(opts.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "vpa_devapi",
		Registerer: reg,
		Skipper:    func(c echo.Context) bool { return c.Path() == "/metrics" },
	}))

	// --- Probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(opts.Auth)
	lotHandler := handler.NewLotHandler(opts.Parking)
	spotHandler := handler.NewSpotHandler(opts.Parking)
	bookingHandler := handler.NewBookingHandler(opts.Parking)
	adminHandler := handler.NewAdminHandler(opts.Parking)
	exportHandler := handler.NewExportHandler(opts.Exports)

	var user, admin []echo.MiddlewareFunc
	if opts.RequireAuth {
		authMiddleware := middleware.Auth(opts.JWTSecret)
		user = []echo.MiddlewareFunc{authMiddleware}
		admin = []echo.MiddlewareFunc{authMiddleware, middleware.RBAC(domain.RoleAdmin)}
	}

	g := e.Group("/api")

	// --- Auth routes ---
	g.POST("/auth/register", authHandler.Register)
	g.POST("/auth/login", authHandler.Login)
	g.POST("/auth/logout", authHandler.Logout)
	g.GET("/auth/check-email", authHandler.CheckEmail)

	// --- User routes ---
	g.GET("/lots", lotHandler.List, user...)
	g.GET("/lots/:id", lotHandler.Get, user...)
	g.GET("/lots/:id/spots", lotHandler.Spots, user...)
	g.GET("/spots/:id", spotHandler.Get, user...)
	g.POST("/reserve", bookingHandler.Reserve, user...)
	g.GET("/bookings/user", bookingHandler.ForUser, user...)
	g.GET("/chart/user-dashboard", adminHandler.UserCharts, user...)
	g.GET("/export-csv", exportHandler.Start, user...)
	g.GET("/download-csv", exportHandler.Download, user...)

	// --- Admin routes ---
	g.POST("/lots", lotHandler.Create, admin...)
	g.PUT("/lots/:id", lotHandler.Update, admin...)
	g.DELETE("/lots/:id", lotHandler.Delete, admin...)
	g.GET("/admin", adminHandler.Dashboard, admin...)
	g.GET("/admin/bookings", bookingHandler.All, admin...)
	g.GET("/admin/lots/:id/spots", lotHandler.AdminSpots, admin...)
	g.GET("/admin/spot-details/:id", spotHandler.AdminDetails, admin...)
	g.GET("/users", adminHandler.Users, admin...)
	g.GET("/charts", adminHandler.Charts, admin...)
	g.GET("/chart/admin", adminHandler.Charts, admin...)
	g.POST("/bookings/release/:id", bookingHandler.Release, admin...)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Debug()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
