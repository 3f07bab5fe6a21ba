package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/core/envelope"
	"github.com/vehicle-parking/vpa-client/internal/core/ports"
	"github.com/vehicle-parking/vpa-client/internal/pkg/validate"
)

var timeNow = time.Now

const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
)

// Outcome tells the caller where to go after a session transition.
type Outcome struct {
	Redirect string
	// Token is the credential the server issued on login, if any. The store
	// never keeps it; persisting it is up to the caller.
	Token string
}

// SessionStore owns the signed-in identity. It never navigates: every
// transition returns an Outcome for the caller to act on.
type SessionStore struct {
	api      ports.APIClient
	storage  ports.Storage
	validate *validate.Validator
	log      zerolog.Logger
	restore  bool

	mu      sync.RWMutex
	session domain.Session
}

// NewSessionStore builds an empty session. storage is only consulted when
// restore is enabled.
func NewSessionStore(api ports.APIClient, storage ports.Storage, restore bool, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		api:      api,
		storage:  storage,
		validate: validate.New(),
		log:      log,
		restore:  restore && storage != nil,
	}
}

// Snapshot returns a copy of the current session.
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

func (s *SessionStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

// Login signs in. On failure the session is left untouched and the returned
// *domain.UserError carries the server message, or a generic one.
func (s *SessionStore) Login(ctx context.Context, email, password string) (Outcome, error) {
	creds := domain.Credentials{Email: email, Password: password}
	if err := s.validate.Struct(creds); err != nil {
		return Outcome{}, &domain.UserError{Message: msgLoginFailed, Err: err}
	}

	env, err := s.api.Post(ctx, "/auth/login", creds)
	if err != nil {
		s.log.Info().Err(err).Str("email", email).Msg("login failed")
		return Outcome{}, loginError(err)
	}

	user, err := envelope.Object[domain.User](env, "")
	if err != nil {
		return Outcome{}, &domain.UserError{Message: msgLoginFailed, Err: err}
	}
	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}
	user.Role = role

	s.mu.Lock()
	s.session = domain.Session{User: &user, Role: role}
	s.mu.Unlock()

	s.log.Info().Int("user_id", user.ID).Str("role", role).Msg("signed in")
	return Outcome{
		Redirect: domain.DashboardPath(role),
		Token:    envelope.String(env, "token"),
	}, nil
}

func loginError(err error) error {
	msg := domain.ServerMessage(err)
	if msg == "" {
		msg = msgLoginFailed
	}
	return &domain.UserError{Message: msg, Err: err}
}

// Register creates an account and sends the caller back to the login view.
// API failures are reported with a generic message.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) (Outcome, error) {
	reg := domain.Registration{Name: name, Email: email, Password: password}
	if err := s.validate.Struct(reg); err != nil {
		return Outcome{}, &domain.UserError{Message: msgRegistrationFailed, Err: err}
	}

	if _, err := s.api.Post(ctx, "/auth/register", reg); err != nil {
		s.log.Info().Err(err).Str("email", email).Msg("registration failed")
		return Outcome{}, &domain.UserError{Message: msgRegistrationFailed, Err: err}
	}
	s.log.Info().Str("email", email).Msg("registered")
	return Outcome{Redirect: "/"}, nil
}

// Logout clears the session. The persisted credential is only removed when
// session restoration is enabled, otherwise the next start would sign back in.
func (s *SessionStore) Logout(ctx context.Context) Outcome {
	s.Reset()

	if s.restore {
		if err := s.storage.Delete(ctx, ports.TokenKey); err != nil {
			s.log.Warn().Err(err).Msg("clear persisted credential")
		}
	}
	s.log.Info().Msg("signed out")
	return Outcome{Redirect: "/"}
}

// Reset drops the session without touching storage.
func (s *SessionStore) Reset() {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()
}

// Restore rebuilds the session from the persisted credential. It reports
// false when restoration is disabled, no credential is stored, or its claims
// carry no identity. The token signature is not checked; the API still
// verifies it on every request.
func (s *SessionStore) Restore(ctx context.Context) (bool, error) {
	if !s.restore {
		return false, nil
	}

	token, err := s.storage.Get(ctx, ports.TokenKey)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	user, ok := userFromToken(token)
	if !ok {
		s.log.Warn().Msg("persisted credential carries no identity")
		return false, nil
	}

	s.mu.Lock()
	s.session = domain.Session{User: &user, Role: user.Role, Token: token}
	s.mu.Unlock()

	s.log.Info().Int("user_id", user.ID).Str("role", user.Role).Msg("session restored")
	return true, nil
}

func userFromToken(token string) (domain.User, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.User{}, false
	}

	var u domain.User
	switch sub := claims["sub"].(type) {
	case string:
		u.ID, _ = strconv.Atoi(sub)
	case float64:
		u.ID = int(sub)
	}
	u.Username, _ = claims["username"].(string)
	u.Email, _ = claims["email"].(string)
	u.Role, _ = claims["role"].(string)

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(timeNow()) {
		return domain.User{}, false
	}
	if u.ID == 0 && u.Email == "" {
		return domain.User{}, false
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	return u, true
}

// CheckEmail asks whether an account already uses email.
func (s *SessionStore) CheckEmail(ctx context.Context, email string) (bool, error) {
	env, err := s.api.Get(ctx, "/auth/check-email", url.Values{"email": {email}})
	if err != nil {
		return false, err
	}
	raw := env.Raw("exists")
	if raw == nil {
		return false, errors.New("check email: missing exists flag")
	}
	return string(raw) == "true", nil
}
