package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/internal/users"
	pkgAuth "github.com/medsupply/cotizaciones-api/pkg/auth"
	"github.com/medsupply/cotizaciones-api/pkg/config"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/security"
)

const invalidCredentialsMessage = "Credenciales inválidas"

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user inactive")
)

// Service defines the behavior needed by the login controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type userRepository interface {
	FindCredentials(ctx context.Context, username string) (*users.Credentials, error)
}

type service struct {
	users  userRepository
	jwtCfg config.JWTConfig
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo  userRepository
	JWTConfig config.JWTConfig
	Logger    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		users:  params.UserRepo,
		jwtCfg: params.JWTConfig,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingCredentials, "Usuario y contraseña son obligatorios")
	}

	creds, err := s.users.FindCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar usuario")
	}
	if !creds.Active {
		return nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, ErrInactiveUser, "Usuario inactivo. Contacte al administrador")
	}

	valid, err := security.VerifyPassword(req.Password, creds.PasswordHash)
	if err != nil {
		s.logg.Warn(ctx, "auth.invalid_stored_hash")
		return nil, invalidCredentials()
	}
	if !valid {
		return nil, invalidCredentials()
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:   creds.ID,
		Username: creds.Username,
		Role:     creds.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	ctx = s.logg.WithPrincipal(ctx, creds.ID, string(creds.Role))
	s.logg.Info(ctx, "auth.login")
	return &LoginResponse{
		Message: "Login exitoso",
		Token:   token,
		User:    Principal{ID: creds.ID, Username: creds.Username, Role: creds.Role},
	}, nil
}

func invalidCredentials() error {
	return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrInvalidCredentials, invalidCredentialsMessage)
}
