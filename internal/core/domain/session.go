package domain

// Session is the client's view of who is signed in.
//
// Role is always set when User is set. Token mirrors the persisted credential
// only when a session was restored from storage; a fresh login leaves it empty.
type Session struct {
	User  *User
	Role  string
	Token string
}

// Authenticated reports whether an identity is present.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// Clone returns a copy that shares no pointers with s.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// DashboardPath is where a freshly signed-in role lands.
func DashboardPath(role string) string {
	if role == RoleAdmin {
		return "/admin/dashboard"
	}
	return "/user/dashboard"
}
