package ports

import "github.com/vehicle-parking/vpa-client/internal/core/domain"

// SessionReader exposes the current session to the navigation guard and the
// user data store.
type SessionReader interface {
	Snapshot() domain.Session
}
