package devapi

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

func TestAuthService_SeedAndLogin(t *testing.T) {
	svc := NewAuthService(NewState(), "secret", time.Hour)
	if err := svc.SeedAdmin("admin@gmail.com", "admin123"); err != nil {
		t.Fatalf("SeedAdmin returned error: %v", err)
	}
	if err := svc.SeedAdmin("admin@gmail.com", "admin123"); err != nil {
		t.Fatalf("seeding twice must be a no-op, got %v", err)
	}

	res, err := svc.Login(context.Background(), "admin@gmail.com", "admin123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.Role != domain.RoleAdmin || res.User.Username != "admin" {
		t.Fatalf("unexpected user %+v", res.User)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["sub"] != "1" || claims["role"] != "admin" {
		t.Fatalf("unexpected claims %v", claims)
	}
}

func TestAuthService_Register(t *testing.T) {
	svc := NewAuthService(NewState(), "secret", time.Hour)
	ctx := context.Background()

	u, err := svc.Register(ctx, "bob", "bob@x.io", "pw1234")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.ID == 0 || u.Email != "bob@x.io" {
		t.Fatalf("unexpected user %+v", u)
	}
	if _, err := svc.Register(ctx, "bob2", "BOB@x.io", "pw"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := svc.Register(ctx, "", "c@x.io", "pw"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if !svc.EmailExists(ctx, "bob@x.io") || svc.EmailExists(ctx, "nobody@x.io") {
		t.Fatalf("EmailExists is wrong")
	}

	res, err := svc.Login(ctx, "bob@x.io", "pw1234")
	if err != nil || res.User.Role != domain.RoleUser {
		t.Fatalf("Login = %+v, %v", res, err)
	}
}

func TestAuthService_LoginRejects(t *testing.T) {
	svc := NewAuthService(NewState(), "secret", time.Hour)
	svc.Register(context.Background(), "bob", "bob@x.io", "pw1234")

	for _, tc := range []struct{ email, password string }{
		{"bob@x.io", "wrong"},
		{"ghost@x.io", "pw1234"},
		{"", ""},
	} {
		if _, err := svc.Login(context.Background(), tc.email, tc.password); err != domain.ErrInvalidCredentials {
			t.Fatalf("Login(%q): expected ErrInvalidCredentials, got %v", tc.email, err)
		}
	}
}
