package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/internal/users"
	pkgAuth "github.com/medsupply/cotizaciones-api/pkg/auth"
	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "medsupply-api",
	ExpirationMinutes: 30,
}

func TestServiceLoginMintsRoleClaim(t *testing.T) {
	creds := &users.Credentials{
		ID:           7,
		Username:     "vendedor1",
		PasswordHash: mustHashPassword(t, "clave-segura"),
		Active:       true,
		Role:         enums.RoleSeller,
	}
	svc := buildTestService(t, stubUserRepo{creds: creds})

	resp, err := svc.Login(context.Background(), LoginRequest{Username: " vendedor1 ", Password: "clave-segura"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Message != "Login exitoso" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.User.ID != 7 || resp.User.Role != enums.RoleSeller {
		t.Fatalf("unexpected principal %+v", resp.User)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.Token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "vendedor1" || claims.Role != enums.RoleSeller {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestServiceLoginAcceptsBcryptSeedHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	svc := buildTestService(t, stubUserRepo{creds: &users.Credentials{
		ID: 1, Username: "admin", PasswordHash: string(hash), Active: true, Role: enums.RoleAdmin,
	}})

	if _, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "admin123"}); err != nil {
		t.Fatalf("login with bcrypt hash: %v", err)
	}
}

func TestServiceLoginFailures(t *testing.T) {
	active := &users.Credentials{ID: 2, Username: "ana", Active: true, Role: enums.RoleSeller}
	inactive := &users.Credentials{ID: 3, Username: "beto", Active: false, Role: enums.RoleSeller}
	active.PasswordHash = mustHashPassword(t, "correcta")
	inactive.PasswordHash = active.PasswordHash

	cases := []struct {
		name string
		repo stubUserRepo
		req  LoginRequest
		code pkgerrors.Code
		want error
	}{
		{"missing password", stubUserRepo{creds: active}, LoginRequest{Username: "ana"}, pkgerrors.CodeValidation, ErrMissingCredentials},
		{"unknown user", stubUserRepo{err: gorm.ErrRecordNotFound}, LoginRequest{Username: "x", Password: "y"}, pkgerrors.CodeUnauthorized, ErrInvalidCredentials},
		{"wrong password", stubUserRepo{creds: active}, LoginRequest{Username: "ana", Password: "incorrecta"}, pkgerrors.CodeUnauthorized, ErrInvalidCredentials},
		{"inactive", stubUserRepo{creds: inactive}, LoginRequest{Username: "beto", Password: "correcta"}, pkgerrors.CodeForbidden, ErrInactiveUser},
		{"store failure", stubUserRepo{err: errors.New("boom")}, LoginRequest{Username: "x", Password: "y"}, pkgerrors.CodeDependency, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := buildTestService(t, tc.repo)
			_, err := svc.Login(context.Background(), tc.req)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := pkgerrors.CodeOf(err); got != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, got)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{JWTConfig: testJWT}); err == nil {
		t.Fatalf("expected error without repository")
	}
	if _, err := NewService(ServiceParams{UserRepo: stubUserRepo{}}); err == nil {
		t.Fatalf("expected error without jwt secret")
	}
}

func buildTestService(t *testing.T, repo stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: testJWT})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	creds *users.Credentials
	err   error
}

func (s stubUserRepo) FindCredentials(ctx context.Context, username string) (*users.Credentials, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.creds == nil || s.creds.Username != username {
		return nil, gorm.ErrRecordNotFound
	}
	return s.creds, nil
}
