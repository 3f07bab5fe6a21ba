package navigation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/core/ports"
)

const maxRedirects = 5

var ErrRedirectLoop = errors.New("navigation redirected too many times")

// Navigation reports where a navigation attempt ended up.
type Navigation struct {
	Requested string
	Match     Match
	// Redirected is set when a guard sent the navigation elsewhere.
	Redirected bool
	Reason     string
}

// Navigator runs every navigation attempt through its guards and keeps the
// current location and history.
type Navigator struct {
	table   *Table
	session ports.SessionReader
	guards  []GuardFunc
	log     zerolog.Logger

	mu      sync.Mutex
	current *Match
	history []Match
}

// NewNavigator builds a navigator. With no guards, Guard is used.
func NewNavigator(table *Table, session ports.SessionReader, log zerolog.Logger, guards ...GuardFunc) *Navigator {
	if len(guards) == 0 {
		guards = []GuardFunc{Guard}
	}
	return &Navigator{table: table, session: session, guards: guards, log: log}
}

// Table returns the navigation table.
func (n *Navigator) Table() *Table { return n.table }

// Navigate moves to path, following guard redirects.
func (n *Navigator) Navigate(path string) (Navigation, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.navigate(path, true)
}

// Back returns to the previous location, guarded like any other navigation.
// It reports false when there is no history.
func (n *Navigator) Back() (Navigation, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.history) == 0 {
		return Navigation{}, false, nil
	}
	prev := n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]

	nav, err := n.navigate(prev.Path, false)
	return nav, true, err
}

// Current returns the current location, if any navigation succeeded yet.
func (n *Navigator) Current() (Match, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return Match{}, false
	}
	return *n.current, true
}

// Reset forgets the current location and history.
func (n *Navigator) Reset() {
	n.mu.Lock()
	n.current = nil
	n.history = nil
	n.mu.Unlock()
}

func (n *Navigator) navigate(path string, push bool) (Navigation, error) {
	nav := Navigation{Requested: path}
	var from domain.Route
	if n.current != nil {
		from = n.current.Route
	}
	session := n.session.Snapshot()

	target := path
	for hop := 0; ; hop++ {
		if hop > maxRedirects {
			return nav, fmt.Errorf("navigate %s: %w", path, ErrRedirectLoop)
		}

		m := n.table.Resolve(target)
		d := n.check(session, m.Route, from)
		if d.Allow {
			nav.Match = m
			break
		}

		n.log.Debug().
			Str("to", m.Path).
			Str("redirect", d.Redirect).
			Str("reason", d.Reason).
			Msg("navigation redirected")
		nav.Redirected = true
		if nav.Reason == "" {
			nav.Reason = d.Reason
		}
		target = d.Redirect
	}

	if push && n.current != nil {
		n.history = append(n.history, *n.current)
	}
	m := nav.Match
	n.current = &m
	return nav, nil
}

func (n *Navigator) check(s domain.Session, to, from domain.Route) Decision {
	for _, g := range n.guards {
		if d := g(s, to, from); !d.Allow {
			if d.Redirect == "" {
				d.Redirect = LoginPath
			}
			return d
		}
	}
	return Decision{Allow: true}
}
