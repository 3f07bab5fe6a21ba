package devapi

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

// AuthService implements registration and login.
type AuthService struct {
	state     *State
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(state *State, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{state: state, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// LoginResult is a successful login: the user with its role and a signed token.
type LoginResult struct {
	User  domain.User
	Token string
}

// SeedAdmin creates the administrator account unless its email is taken.
func (s *AuthService) SeedAdmin(email, password string) error {
	_, err := s.create("admin", email, password, domain.RoleAdmin)
	if err == domain.ErrUserExists {
		return nil
	}
	return err
}

// Register creates a regular user.
func (s *AuthService) Register(_ context.Context, username, email, password string) (domain.User, error) {
	if username == "" || email == "" || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return s.create(username, email, password, domain.RoleUser)
}

func (s *AuthService) create(username, email, password, role string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.accountByEmail(email) != nil {
		return domain.User{}, domain.ErrUserExists
	}
	st.seqAccount++
	a := &account{
		id:           st.seqAccount,
		username:     username,
		email:        email,
		passwordHash: hash,
		role:         role,
		active:       true,
		createdAt:    st.now(),
	}
	st.accounts[a.id] = a
	return a.user(), nil
}

// EmailExists reports whether an account uses email.
func (s *AuthService) EmailExists(_ context.Context, email string) bool {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.accountByEmail(email) != nil
}

func (s *AuthService) Login(_ context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	s.state.mu.RLock()
	a := s.state.accountByEmail(email)
	var acc account
	if a != nil {
		acc = *a
	}
	s.state.mu.RUnlock()

	if a == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	user := acc.user()
	user.Role = acc.role
	token, err := s.generateToken(user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) generateToken(user domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      strconv.Itoa(user.ID),
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
