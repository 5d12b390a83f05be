package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
	"github.com/medsupply/cotizaciones-api/pkg/rut"
)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*ClientDTO, error)
	Get(ctx context.Context, id int64) (*ClientDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[ClientDTO], error)
	Update(ctx context.Context, id int64, patch Patch) (*ClientDTO, error)
	Delete(ctx context.Context, id int64) error
	CheckRUT(value string) RUTCheck
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &service{repo: repo, validate: validator.New()}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ClientDTO, error) {
	name := strings.TrimSpace(input.Name)
	if strings.TrimSpace(input.RUT) == "" || name == "" {
		return nil, missingFields()
	}
	formatted, err := rut.Format(input.RUT)
	if err != nil {
		return nil, invalidRUT(input.RUT, err)
	}
	email, err := s.normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	if taken, err := s.repo.ExistsByRUT(ctx, formatted, 0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar rut")
	} else if taken {
		return nil, duplicateRUT()
	}
	if email != nil {
		if taken, err := s.repo.ExistsByEmail(ctx, *email, 0); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar correo")
		} else if taken {
			return nil, duplicateEmail()
		}
	}

	client := &models.Client{
		RUT:     formatted,
		Name:    name,
		Email:   email,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, s.mapWriteError(err, "crear cliente")
	}
	out := toDTO(*client)
	return &out, nil
}

// normalizeEmail returns nil for an absent or blank email.
func (s *service) normalizeEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil, nil
	}
	if err := s.validate.Var(trimmed, "email"); err != nil {
		return nil, invalidEmail()
	}
	return &trimmed, nil
}

func (s *service) mapWriteError(err error, action string) error {
	switch {
	case db.IsUniqueViolation(err, "clientes_rut_key", "clientes.rut"):
		return duplicateRUT()
	case db.IsUniqueViolation(err, "clientes_correo_key", "clientes.correo"):
		return duplicateEmail()
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}

func (s *service) Get(ctx context.Context, id int64) (*ClientDTO, error) {
	client, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountQuotations(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "contar cotizaciones")
	}
	out := toDTO(*client)
	out.Quotations = &count
	return &out, nil
}

func (s *service) find(ctx context.Context, id int64) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clientNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar cliente")
	}
	return client, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[ClientDTO], error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[ClientDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar clientes")
	}
	out := make([]ClientDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return pagination.NewPage(params, total, out), nil
}

func (s *service) Update(ctx context.Context, id int64, patch Patch) (*ClientDTO, error) {
	if patch.Empty() {
		return nil, noFieldsToUpdate()
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.RUT != nil {
		formatted, err := rut.Format(*patch.RUT)
		if err != nil {
			return nil, invalidRUT(*patch.RUT, err)
		}
		if taken, err := s.repo.ExistsByRUT(ctx, formatted, id); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar rut")
		} else if taken {
			return nil, duplicateRUT()
		}
		updates["rut"] = formatted
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, missingFields()
		}
		updates["nombre"] = name
	}
	if patch.Email != nil {
		email, err := s.normalizeEmail(patch.Email)
		if err != nil {
			return nil, err
		}
		if email != nil {
			if taken, err := s.repo.ExistsByEmail(ctx, *email, id); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar correo")
			} else if taken {
				return nil, duplicateEmail()
			}
			updates["correo"] = *email
		} else {
			updates["correo"] = nil
		}
	}
	if patch.Phone != nil {
		updates["telefono"] = *patch.Phone
	}
	if patch.Address != nil {
		updates["direccion"] = *patch.Address
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, s.mapWriteError(err, "actualizar cliente")
	}
	client, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toDTO(*client)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.CountQuotations(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "contar cotizaciones")
	}
	if count > 0 {
		return hasQuotations(count)
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return hasQuotations(0)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "eliminar cliente")
	}
	if affected == 0 {
		return clientNotFound()
	}
	return nil
}

// CheckRUT validates a RUT for the public helper endpoint.
func (s *service) CheckRUT(value string) RUTCheck {
	formatted, err := rut.Format(value)
	if err != nil {
		return RUTCheck{Valid: false, Message: "RUT inválido"}
	}
	return RUTCheck{Valid: true, Formatted: &formatted, Message: "RUT válido"}
}
