// Package repl is the text front end of the parking client: slash commands in,
// rendered views out.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vehicle-parking/vpa-client/internal/app"
	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/navigation"
)

var errExit = errors.New("exit")

// REPL reads commands from in and writes views to out.
type REPL struct {
	app *app.App
	in  *bufio.Reader
	out io.Writer
}

func New(a *app.App, in io.Reader, out io.Writer) *REPL {
	return &REPL{app: a, in: bufio.NewReader(in), out: out}
}

// Run renders nav, then loops until /exit, end of input or ctx is done.
func (r *REPL) Run(ctx context.Context, nav navigation.Navigation) error {
	r.printf("Vehicle Parking\n")
	r.printf("Type /help for commands.\n")
	r.printf("%s\n", strings.Repeat("-", 60))
	r.render(ctx, nav)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		r.printf("\n%s> ", r.prompt())
		input, err := r.in.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			if derr := r.Dispatch(ctx, input); derr != nil {
				if errors.Is(derr, errExit) {
					r.printf("Goodbye!\n")
					return nil
				}
				r.printf("Error: %v\n", derr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (r *REPL) prompt() string {
	if m, ok := r.app.Nav.Current(); ok {
		return m.Path
	}
	return ""
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Dispatch runs one command line.
func (r *REPL) Dispatch(ctx context.Context, input string) error {
	if !strings.HasPrefix(input, "/") {
		r.printf("Commands start with /. Type /help for the list.\n")
		return nil
	}
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "login":
		if len(args) != 2 {
			return usage("/login <email> <password>")
		}
		return r.open(ctx)(r.app.Login(ctx, args[0], args[1]))

	case "register":
		if len(args) != 3 {
			return usage("/register <name> <email> <password>")
		}
		taken, err := r.app.Session.CheckEmail(ctx, args[1])
		if err == nil && taken {
			r.printf("%s is already registered.\n", args[1])
			return nil
		}
		nav, err := r.app.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		r.printf("Registered. Sign in with /login.\n")
		r.render(ctx, nav)

	case "logout":
		return r.open(ctx)(r.app.Logout(ctx))

	case "go":
		if len(args) != 1 {
			return usage("/go <path>")
		}
		return r.open(ctx)(r.app.Open(ctx, args[0]))

	case "where":
		m, ok := r.app.Nav.Current()
		if !ok {
			r.printf("Nowhere yet.\n")
			return nil
		}
		r.printf("%s (%s)\n", m.Path, m.Route.View)

	case "back":
		nav, ok, err := r.app.Back(ctx)
		if !ok {
			r.printf("No history.\n")
			return nil
		}
		return r.open(ctx)(nav, err)

	case "session":
		printSession(r.out, r.app.Session.Snapshot())

	case "dashboard":
		return r.open(ctx)(r.app.Open(ctx, domain.DashboardPath(r.app.Session.Snapshot().Role)))

	case "lots":
		return r.openFor(ctx, "/admin/lots", "/user/lots")

	case "users":
		return r.open(ctx)(r.app.Open(ctx, "/admin/users"))

	case "bookings":
		return r.open(ctx)(r.app.Open(ctx, "/admin/bookings"))

	case "my-bookings":
		return r.open(ctx)(r.app.Open(ctx, "/user/bookings"))

	case "charts":
		return r.openFor(ctx, "/admin/charts", "/user/charts")

	case "spots":
		if len(args) != 1 {
			return usage("/spots <lot-id>")
		}
		if _, err := positive(args[0]); err != nil {
			return err
		}
		return r.openFor(ctx, "/admin/spots/"+args[0], "/user/spots/"+args[0])

	case "spot":
		if len(args) != 1 {
			return usage("/spot <spot-id>")
		}
		id, err := positive(args[0])
		if err != nil {
			return err
		}
		if r.isAdmin() {
			occ, err := r.app.Admin.SpotDetails(ctx, id)
			if err != nil {
				return err
			}
			printOccupant(r.out, id, occ)
			return nil
		}
		info, err := r.app.User.SpotInfo(ctx, id)
		if err != nil {
			return err
		}
		printSpotInfo(r.out, info)

	case "lot-create":
		return r.createLot(ctx, args)

	case "lot-update":
		return r.updateLot(ctx, args)

	case "lot-delete":
		if len(args) != 1 {
			return usage("/lot-delete <lot-id>")
		}
		id, err := positive(args[0])
		if err != nil {
			return err
		}
		env, err := r.app.Admin.DeleteLot(ctx, id)
		if err != nil {
			return err
		}
		r.printf("%s\n", orDefault(env.Message, "Parking lot deleted"))
		return r.refresh(ctx)

	case "release":
		if len(args) != 1 {
			return usage("/release <booking-id>")
		}
		id, err := positive(args[0])
		if err != nil {
			return err
		}
		env, err := r.app.Admin.FinalizeBooking(ctx, id)
		if err != nil {
			return err
		}
		r.printf("%s\n", orDefault(env.Message, "Reservation finalized"))
		return r.refresh(ctx)

	case "reserve":
		if len(args) != 2 {
			return usage("/reserve <lot-id> <vehicle-number>")
		}
		lotID, err := positive(args[0])
		if err != nil {
			return err
		}
		res, err := r.app.User.Reserve(ctx, lotID, args[1])
		if err != nil {
			return err
		}
		r.printf("Reserved spot %d (reservation %d).\n", res.SpotID, res.ReservationID)
		return r.refresh(ctx)

	case "export":
		task, err := r.app.User.StartExport(ctx)
		if err != nil {
			return err
		}
		r.printf("Export started. Poll it with /export-status %s\n", task)

	case "export-status":
		if len(args) < 1 || len(args) > 2 {
			return usage("/export-status <task-id> [file]")
		}
		return r.exportStatus(ctx, args)

	case "help", "h":
		printHelp(r.out)

	case "exit", "quit", "q":
		return errExit

	default:
		r.printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

// open renders a navigation result. Load errors are reported after the view.
func (r *REPL) open(ctx context.Context) func(navigation.Navigation, error) error {
	return func(nav navigation.Navigation, err error) error {
		if nav.Match.Route.View == "" {
			return err
		}
		r.render(ctx, nav)
		return err
	}
}

func (r *REPL) openFor(ctx context.Context, adminPath, userPath string) error {
	if r.isAdmin() {
		return r.open(ctx)(r.app.Open(ctx, adminPath))
	}
	return r.open(ctx)(r.app.Open(ctx, userPath))
}

// refresh reloads and re-renders the current view after a mutation.
func (r *REPL) refresh(ctx context.Context) error {
	m, ok := r.app.Nav.Current()
	if !ok {
		return nil
	}
	return r.open(ctx)(r.app.Open(ctx, m.Path))
}

func (r *REPL) isAdmin() bool {
	return r.app.Session.Snapshot().Role == domain.RoleAdmin
}

// createLot parses "/lot-create <name> <pin-code> <price> <spots> <address...>".
func (r *REPL) createLot(ctx context.Context, args []string) error {
	if len(args) < 5 {
		return usage("/lot-create <name> <pin-code> <price-per-hour> <spots> <address...>")
	}
	price, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("price %q: %w", args[2], domain.ErrInvalidInput)
	}
	spots, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("spots %q: %w", args[3], domain.ErrInvalidInput)
	}

	env, err := r.app.Admin.CreateLot(ctx, domain.LotInput{
		PrimeLocationName: args[0],
		PinCode:           args[1],
		PricePerHour:      price,
		NumberOfSpots:     spots,
		Address:           strings.Join(args[4:], " "),
	})
	if err != nil {
		return err
	}
	r.printf("%s\n", orDefault(env.Message, "Parking lot created"))
	return r.refresh(ctx)
}

// updateLot parses "/lot-update <id> key=value...". Values may not contain spaces
// except address, which takes the rest of the line.
func (r *REPL) updateLot(ctx context.Context, args []string) error {
	const help = "/lot-update <lot-id> [name=..] [pin=..] [price=..] [spots=..] [address=..]"
	if len(args) < 2 {
		return usage(help)
	}
	id, err := positive(args[0])
	if err != nil {
		return err
	}

	var in domain.LotUpdate
	for i := 1; i < len(args); i++ {
		key, value, ok := strings.Cut(args[i], "=")
		if !ok {
			return usage(help)
		}
		switch key {
		case "name":
			in.PrimeLocationName = &value
		case "pin":
			in.PinCode = &value
		case "address":
			addr := strings.Join(append([]string{value}, args[i+1:]...), " ")
			in.Address = &addr
			i = len(args)
		case "price":
			p, err := decimal.NewFromString(value)
			if err != nil {
				return fmt.Errorf("price %q: %w", value, domain.ErrInvalidInput)
			}
			in.PricePerHour = &p
		case "spots":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("spots %q: %w", value, domain.ErrInvalidInput)
			}
			in.NumberOfSpots = &n
		default:
			return usage(help)
		}
	}

	env, err := r.app.Admin.UpdateLot(ctx, id, in)
	if err != nil {
		return err
	}
	r.printf("%s\n", orDefault(env.Message, "Parking lot updated"))
	return r.refresh(ctx)
}

func (r *REPL) exportStatus(ctx context.Context, args []string) error {
	st, err := r.app.User.ExportStatus(ctx, args[0])
	if err != nil {
		return err
	}
	switch st.State {
	case domain.ExportPending:
		r.printf("Export is still running.\n")
	case domain.ExportFailed:
		r.printf("Export failed: %s\n", st.Message)
	case domain.ExportReady:
		if len(args) == 2 {
			if err := os.WriteFile(args[1], st.CSV, 0o600); err != nil {
				return err
			}
			r.printf("Saved %d bytes to %s\n", len(st.CSV), args[1])
			return nil
		}
		r.printf("%s", st.CSV)
	}
	return nil
}

func usage(line string) error {
	return fmt.Errorf("usage: %s", line)
}

func positive(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a valid id: %w", raw, domain.ErrInvalidInput)
	}
	return n, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
