package navigation

import "github.com/vehicle-parking/vpa-client/internal/core/domain"

// Rejection reasons.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonRole            = "role"
)

// Decision is the outcome of guarding one navigation attempt.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   string
}

// GuardFunc inspects a navigation from one route to another.
type GuardFunc func(s domain.Session, to, from domain.Route) Decision

// Guard is the application guard. Both failures bounce to the login path.
func Guard(s domain.Session, to, from domain.Route) Decision {
	if to.Meta.RequiresAuth && !s.Authenticated() {
		return Decision{Redirect: LoginPath, Reason: ReasonUnauthenticated}
	}
	if to.Meta.Role != "" && to.Meta.Role != s.Role {
		return Decision{Redirect: LoginPath, Reason: ReasonRole}
	}
	return Decision{Allow: true}
}
