package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
	"github.com/medsupply/cotizaciones-api/pkg/security"
)

type Service interface {
	Profile(ctx context.Context, userID int64) (*UserDTO, error)
	Get(ctx context.Context, id int64) (*UserDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[UserDTO], error)
	Create(ctx context.Context, input CreateInput) (*UserDTO, error)
	Update(ctx context.Context, id int64, patch Patch) (*UserDTO, error)
	Delete(ctx context.Context, actorID, id int64) error
	Roles(ctx context.Context) ([]RoleDTO, error)
}

type repository interface {
	FindByID(ctx context.Context, id int64) (*UserDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]UserDTO, int64, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	RoleExists(ctx context.Context, roleID int64) (bool, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
}

type service struct {
	repo     repository
	password config.PasswordConfig
}

func NewService(repo repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, password: password}, nil
}

func (s *service) Profile(ctx context.Context, userID int64) (*UserDTO, error) {
	return s.Get(ctx, userID)
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar usuario")
	}
	return user, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[UserDTO], error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar usuarios")
	}
	if rows == nil {
		rows = []UserDTO{}
	}
	return pagination.NewPage(params, total, rows), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*UserDTO, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" || input.RoleID <= 0 {
		return nil, missingFields()
	}
	if utf8.RuneCountInString(input.Password) < MinPasswordLength {
		return nil, passwordTooShort()
	}
	if err := s.checkRole(ctx, input.RoleID); err != nil {
		return nil, err
	}
	if taken, err := s.repo.UsernameTaken(ctx, username, 0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar usuario")
	} else if taken {
		return nil, usernameTaken(false)
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	user := &models.User{Username: username, PasswordHash: hash, RoleID: input.RoleID, Active: active}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "usuarios_usuario_key", "usuarios.usuario") {
			return nil, usernameTaken(false)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear usuario")
	}
	return s.Get(ctx, user.ID)
}

func (s *service) checkRole(ctx context.Context, roleID int64) error {
	ok, err := s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar rol")
	}
	if !ok {
		return unknownRole(roleID)
	}
	return nil
}

func (s *service) Update(ctx context.Context, id int64, patch Patch) (*UserDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, noFieldsToUpdate()
	}

	updates := map[string]any{}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if username == "" {
			return nil, missingFields()
		}
		if taken, err := s.repo.UsernameTaken(ctx, username, id); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar usuario")
		} else if taken {
			return nil, usernameTaken(true)
		}
		updates["usuario"] = username
	}
	if patch.Password != nil {
		if utf8.RuneCountInString(*patch.Password) < MinPasswordLength {
			return nil, passwordTooShort()
		}
		hash, err := security.HashPassword(*patch.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		updates["password_hash"] = hash
	}
	if patch.RoleID != nil {
		if err := s.checkRole(ctx, *patch.RoleID); err != nil {
			return nil, err
		}
		updates["id_rol"] = *patch.RoleID
	}
	if patch.Active != nil {
		updates["activo"] = *patch.Active
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err, "usuarios_usuario_key", "usuarios.usuario") {
			return nil, usernameTaken(true)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar usuario")
	}
	return s.Get(ctx, id)
}

// Delete removes an account other than the caller's own.
func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return cannotDeleteSelf()
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return userHasQuotations()
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "eliminar usuario")
	}
	if affected == 0 {
		return userNotFound()
	}
	return nil
}

func (s *service) Roles(ctx context.Context) ([]RoleDTO, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar roles")
	}
	out := make([]RoleDTO, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleDTO{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return out, nil
}
