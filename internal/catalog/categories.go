package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
)

type CategoryService interface {
	Create(ctx context.Context, input CategoryInput) (*Category, error)
	Get(ctx context.Context, id int64) (*CategoryDetail, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, id int64, input CategoryInput) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	repo Repository
}

func NewCategoryService(repo Repository) (CategoryService, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &categoryService{repo: repo}, nil
}

func (s *categoryService) Create(ctx context.Context, input CategoryInput) (*Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, missingCategoryName()
	}
	if taken, err := s.repo.CategoryNameTaken(ctx, name, 0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar categoría")
	} else if taken {
		return nil, duplicateCategory(false)
	}

	category := &models.Category{Name: name, Description: input.Description}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if isDuplicateCategory(err) {
			return nil, duplicateCategory(false)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear categoría")
	}
	return s.find(ctx, category.ID)
}

func isDuplicateCategory(err error) bool {
	return db.IsUniqueViolation(err, "categorias_producto_nombre_categoria_key", "categorias_producto.nombre_categoria")
}

func (s *categoryService) find(ctx context.Context, id int64) (*Category, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, categoryNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar categoría")
	}
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, id int64) (*CategoryDetail, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ProductsInCategory(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar productos de la categoría")
	}
	if products == nil {
		products = []Product{}
	}
	return &CategoryDetail{Category: *category, Products: products}, nil
}

func (s *categoryService) List(ctx context.Context) ([]Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar categorías")
	}
	if rows == nil {
		rows = []Category{}
	}
	return rows, nil
}

// Update replaces name and description; the name stays mandatory.
func (s *categoryService) Update(ctx context.Context, id int64, input CategoryInput) (*Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, missingCategoryName()
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if taken, err := s.repo.CategoryNameTaken(ctx, name, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar categoría")
	} else if taken {
		return nil, duplicateCategory(true)
	}

	updates := map[string]any{"nombre_categoria": name, "descripcion": input.Description}
	if err := s.repo.UpdateCategory(ctx, id, updates); err != nil {
		if isDuplicateCategory(err) {
			return nil, duplicateCategory(true)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar categoría")
	}
	return s.find(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.CountCategoryProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "contar productos")
	}
	if count > 0 {
		return categoryInUse(count)
	}
	affected, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return categoryInUse(0)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "eliminar categoría")
	}
	if affected == 0 {
		return categoryNotFound()
	}
	return nil
}
