package repl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/navigation"
)

const width = 72

func rule(w io.Writer, ch string) {
	fmt.Fprintln(w, strings.Repeat(ch, width))
}

func title(w io.Writer, text string) {
	fmt.Fprintln(w)
	rule(w, "=")
	fmt.Fprintf(w, "  %s\n", text)
	rule(w, "=")
}

// render prints the view a navigation landed on from the stores' current data.
func (r *REPL) render(ctx context.Context, nav navigation.Navigation) {
	w := r.out
	if nav.Redirected {
		fmt.Fprintf(w, "(%s redirected to %s: %s)\n", nav.Requested, nav.Match.Path, nav.Reason)
	}

	switch nav.Match.Route.View {
	case domain.ViewLogin:
		title(w, "SIGN IN")
		fmt.Fprintln(w, "  /login <email> <password>    or    /go /register")
	case domain.ViewRegister:
		title(w, "REGISTER")
		fmt.Fprintln(w, "  /register <name> <email> <password>")
	case domain.ViewUserDashboard:
		s := r.app.Session.Snapshot()
		title(w, "DASHBOARD: "+username(s))
		printLots(w, r.app.User.Lots())
	case domain.ViewUserLots:
		title(w, "PARKING LOTS")
		printLots(w, r.app.User.Lots())
	case domain.ViewUserSpots:
		spots := r.app.User.Spots()
		title(w, "SPOTS: "+spots.LotName)
		printSpots(w, spots.Spots)
	case domain.ViewUserBookings:
		title(w, "MY BOOKINGS")
		printBookings(w, r.app.User.Bookings(), false)
	case domain.ViewUserCharts:
		title(w, "MY PARKING SUMMARY")
		printCharts(w, r.app.User.Charts(), true)
	case domain.ViewAdminDashboard:
		title(w, "ADMIN DASHBOARD")
		if sum, err := r.app.Admin.FetchDashboard(ctx); err == nil {
			printSummary(w, sum)
		} else {
			fmt.Fprintf(w, "  summary unavailable: %v\n", err)
		}
		printLots(w, r.app.Admin.Lots())
	case domain.ViewAdminLots:
		title(w, "PARKING LOTS")
		printLots(w, r.app.Admin.Lots())
	case domain.ViewAdminSpots:
		title(w, "SPOTS: lot "+nav.Match.Param("lotId"))
		spots, err := r.app.Admin.FetchLotSpots(ctx, atoi(nav.Match.Param("lotId")))
		if err != nil {
			fmt.Fprintf(w, "  %v\n", err)
			return
		}
		printSpots(w, spots)
	case domain.ViewAdminUsers:
		title(w, "USERS")
		printUsers(w, r.app.Admin.Users())
	case domain.ViewAdminBookings:
		title(w, "ALL BOOKINGS")
		printBookings(w, r.app.Admin.Bookings(), true)
	case domain.ViewAdminCharts:
		title(w, "OCCUPANCY")
		printCharts(w, r.app.Admin.Charts(), false)
	case domain.ViewNotFound:
		title(w, "NOT FOUND")
		fmt.Fprintf(w, "  Nothing lives at %s\n", nav.Requested)
	}
}

func username(s domain.Session) string {
	if s.User == nil {
		return "guest"
	}
	return s.User.Username
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func printSession(w io.Writer, s domain.Session) {
	if !s.Authenticated() {
		fmt.Fprintln(w, "Not signed in.")
		return
	}
	fmt.Fprintf(w, "Signed in as %s <%s> (id %d, role %s)\n", s.User.Username, s.User.Email, s.User.ID, s.Role)
}

func printLots(w io.Writer, lots []domain.Lot) {
	if len(lots) == 0 {
		fmt.Fprintln(w, "  No parking lots.")
		return
	}
	fmt.Fprintf(w, "  %-4s %-22s %-8s %10s %6s  %s\n", "ID", "LOCATION", "PIN", "PRICE/H", "SPOTS", "ADDRESS")
	rule(w, "-")
	for _, l := range lots {
		fmt.Fprintf(w, "  %-4d %-22s %-8s %10s %6d  %s\n",
			l.ID, l.PrimeLocationName, l.PinCode, l.PricePerHour.StringFixed(2), l.NumberOfSpots, l.Address)
	}
}

func printSpots(w io.Writer, spots []domain.Spot) {
	if len(spots) == 0 {
		fmt.Fprintln(w, "  No spots.")
		return
	}
	free := 0
	for _, s := range spots {
		if s.Available() {
			free++
		}
	}
	fmt.Fprintf(w, "  %d of %d available\n", free, len(spots))
	fmt.Fprintf(w, "  %-6s %-8s %-10s %s\n", "ID", "NUMBER", "STATUS", "VEHICLE")
	rule(w, "-")
	for _, s := range spots {
		status, vehicle := "available", ""
		if !s.Available() {
			status = "occupied"
		}
		if s.VehicleNumber != nil {
			vehicle = *s.VehicleNumber
		}
		fmt.Fprintf(w, "  %-6d %-8s %-10s %s\n", s.ID, s.SpotNumber, status, vehicle)
	}
}

func printSpotInfo(w io.Writer, info domain.SpotInfo) {
	fmt.Fprintf(w, "Spot %s (id %d) in %s: %s\n", info.SpotNumber, info.SpotID, deref(info.LotName), spotStatus(info.Status))
	if info.VehicleNumber != nil {
		fmt.Fprintf(w, "  vehicle %s since %s by %s <%s>\n",
			*info.VehicleNumber, deref(info.ReservedAt), deref(info.UserName), deref(info.UserEmail))
	}
}

func printOccupant(w io.Writer, spotID int, occ domain.SpotOccupant) {
	if occ.VehicleNumber == nil {
		fmt.Fprintf(w, "Spot %d is free.\n", spotID)
		return
	}
	fmt.Fprintf(w, "Spot %d: vehicle %s parked since %s by %s <%s>, %s so far\n",
		spotID, *occ.VehicleNumber, deref(occ.StartTime), deref(occ.User.Name), deref(occ.User.Email),
		occ.CostTillNow.StringFixed(2))
}

func spotStatus(s string) string {
	if s == domain.SpotAvailable {
		return "available"
	}
	return "occupied"
}

func printBookings(w io.Writer, bookings []domain.Booking, withUser bool) {
	if len(bookings) == 0 {
		fmt.Fprintln(w, "  No bookings.")
		return
	}
	fmt.Fprintf(w, "  %-5s %-16s %-6s %-10s %-20s %-9s %8s", "ID", "LOT", "SPOT", "VEHICLE", "PARKED", "STATUS", "COST")
	if withUser {
		fmt.Fprintf(w, "  %s", "USER")
	}
	fmt.Fprintln(w)
	rule(w, "-")
	for _, b := range bookings {
		status, cost := "active", "-"
		if b.Released() {
			status = "released"
		}
		if b.Cost.Valid {
			cost = b.Cost.Decimal.StringFixed(2)
		}
		fmt.Fprintf(w, "  %-5d %-16s %-6s %-10s %-20s %-9s %8s",
			b.ID, deref(b.LotName), deref(b.SpotNumber), b.VehicleNumber, deref(b.ParkingTimestamp), status, cost)
		if withUser && b.User != nil {
			fmt.Fprintf(w, "  %s", b.User.Email)
		}
		fmt.Fprintln(w)
	}
}

func printUsers(w io.Writer, users []domain.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "  No users.")
		return
	}
	fmt.Fprintf(w, "  %-4s %-18s %-28s %-7s %s\n", "ID", "USERNAME", "EMAIL", "ACTIVE", "CREATED")
	rule(w, "-")
	for _, u := range users {
		fmt.Fprintf(w, "  %-4d %-18s %-28s %-7t %s\n", u.ID, u.Username, u.Email, u.Active, u.CreatedAt)
	}
}

func printSummary(w io.Writer, s domain.DashboardSummary) {
	fmt.Fprintf(w, "  lots %d | spots %d (%d occupied) | users %d | active reservations %d\n",
		s.Lots, s.Spots, s.OccupiedSpots, s.Users, s.ActiveReservations)
	rule(w, "-")
}

func printCharts(w io.Writer, c domain.ChartData, perUser bool) {
	if c.Empty() {
		fmt.Fprintln(w, "  No chart data.")
		return
	}
	for _, o := range c.SpotsByLot {
		if perUser {
			fmt.Fprintf(w, "  %-22s booked %d time(s)\n", o.LotName, o.UserBooked)
			continue
		}
		fmt.Fprintf(w, "  %-22s %s%s  %d/%d occupied\n", o.LotName,
			strings.Repeat("#", o.Occupied), strings.Repeat(".", o.Available), o.Occupied, o.TotalSpots)
	}
	if len(c.MonthlyReservations) > 0 {
		fmt.Fprintln(w)
		for _, m := range c.MonthlyReservations {
			fmt.Fprintf(w, "  %s  %s %d\n", m.Month, strings.Repeat("#", m.Count), m.Count)
		}
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Session
  /login <email> <password>          sign in
  /register <name> <email> <pass>    create an account
  /logout                            sign out
  /session                           who am I

Navigation
  /go <path>                         open a path, e.g. /go /admin/lots
  /where                             current location
  /back                              previous location
  /dashboard                         your dashboard

Admin
  /lots                              list lots
  /lot-create <name> <pin> <price> <spots> <address...>
  /lot-update <id> [name=..] [pin=..] [price=..] [spots=..] [address=..]
  /lot-delete <id>
  /spots <lot-id>                    spot grid of a lot
  /spot <spot-id>                    who is parked there
  /users                             registered users
  /bookings                          every booking
  /release <booking-id>              finalize a booking
  /charts                            occupancy charts

User
  /lots                              available lots
  /spots <lot-id>                    spots of a lot
  /spot <spot-id>                    spot details
  /reserve <lot-id> <vehicle>        take the first free spot
  /my-bookings                       your bookings
  /charts                            your parking summary
  /export                            start a CSV export of your bookings
  /export-status <task-id> [file]    poll an export, optionally saving it

  /help                              this list
  /exit                              quit`)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
