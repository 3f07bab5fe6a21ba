package domain

// ViewID names the screen a route renders.
type ViewID string

const (
	ViewLogin          ViewID = "Login"
	ViewRegister       ViewID = "Register"
	ViewUserDashboard  ViewID = "UserDashboard"
	ViewUserLots       ViewID = "Lots"
	ViewUserSpots      ViewID = "Spots"
	ViewUserBookings   ViewID = "Bookings"
	ViewUserCharts     ViewID = "UserCharts"
	ViewAdminDashboard ViewID = "AdminDashboard"
	ViewAdminLots      ViewID = "AdminLots"
	ViewAdminSpots     ViewID = "AdminSpots"
	ViewAdminUsers     ViewID = "AdminUsers"
	ViewAdminBookings  ViewID = "AdminBookings"
	ViewAdminCharts    ViewID = "AdminCharts"
	ViewNotFound       ViewID = "NotFound"
)

// RouteMeta carries the guard annotations of a route.
type RouteMeta struct {
	RequiresAuth bool
	// Role is empty when any (or no) role may enter.
	Role string
}

// Route is a static navigation table entry.
type Route struct {
	Name string
	Path string
	View ViewID
	Meta RouteMeta
}
