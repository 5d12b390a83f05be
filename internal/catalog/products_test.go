package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/dbtest"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

func newProducts(t *testing.T) (ProductService, *db.Client) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewProductService(NewRepository(conn.DB()))
	require.NoError(t, err)
	return svc, conn
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func intPtr(v int) *int { return &v }
func boolPtr(v bool) *bool { return &v }
func strPtr(v string) *string { return &v }

func TestCreateProduct(t *testing.T) {
	svc, conn := newProducts(t)
	cat := dbtest.SeedCategory(t, conn, "Tijeras")

	created, err := svc.Create(context.Background(), ProductInput{
		Code:       "TIJ-001",
		Name:       "Tijera Mayo",
		Price:      price(15000),
		CategoryID: &cat.ID,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.Equal(t, 0, created.Stock)
	assert.True(t, created.Price.Equal(decimal.NewFromInt(15000)))
	require.NotNil(t, created.CategoryName)
	assert.Equal(t, "Tijeras", *created.CategoryName)

	byCode, err := svc.GetByCode(context.Background(), "TIJ-001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	_, err = svc.Create(context.Background(), ProductInput{Code: "TIJ-001", Name: "Otra", Price: price(1)})
	require.ErrorIs(t, err, ErrDuplicateCode)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newProducts(t)
	missing := int64(99)

	cases := []struct {
		name  string
		input ProductInput
		want  error
	}{
		{"missing price", ProductInput{Code: "A", Name: "A"}, ErrMissingProductFields},
		{"missing code", ProductInput{Name: "A", Price: price(1)}, ErrMissingProductFields},
		{"zero price", ProductInput{Code: "A", Name: "A", Price: price(0)}, ErrInvalidPrice},
		{"negative stock", ProductInput{Code: "A", Name: "A", Price: price(1), Stock: intPtr(-1)}, ErrInvalidStock},
		{"unknown category", ProductInput{Code: "A", Name: "A", Price: price(1), CategoryID: &missing}, ErrUnknownCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	svc, conn := newProducts(t)
	cat := dbtest.SeedCategory(t, conn, "Pinzas")
	first := dbtest.SeedProduct(t, conn, "P-1", 1000, true)
	dbtest.SeedProduct(t, conn, "P-2", 2000, true)

	_, err := svc.Update(context.Background(), first.ID, ProductPatch{Code: strPtr("P-2")})
	require.ErrorIs(t, err, ErrDuplicateCode)

	updated, err := svc.Update(context.Background(), first.ID, ProductPatch{
		Price:    price(1200),
		Category: CategoryRef{Set: true, Value: &cat.ID},
		Stock:    intPtr(3),
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(1200)))
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, cat.ID, *updated.CategoryID)
	assert.Equal(t, 3, updated.Stock)

	cleared, err := svc.Update(context.Background(), first.ID, ProductPatch{Category: CategoryRef{Set: true}})
	require.NoError(t, err)
	assert.Nil(t, cleared.CategoryID)

	_, err = svc.Update(context.Background(), first.ID, ProductPatch{})
	require.ErrorIs(t, err, ErrNoFieldsToUpdate)

	_, err = svc.Update(context.Background(), 999, ProductPatch{Name: strPtr("x")})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestStockAndActivation(t *testing.T) {
	svc, conn := newProducts(t)
	p := dbtest.SeedProduct(t, conn, "S-1", 500, true)

	_, err := svc.SetStock(context.Background(), p.ID, nil)
	require.ErrorIs(t, err, ErrMissingStock)
	_, err = svc.SetStock(context.Background(), p.ID, intPtr(-5))
	require.ErrorIs(t, err, ErrInvalidStock)

	got, err := svc.SetStock(context.Background(), p.ID, intPtr(42))
	require.NoError(t, err)
	assert.Equal(t, 42, got.Stock)

	got, err = svc.SetActive(context.Background(), p.ID, nil)
	require.NoError(t, err)
	assert.False(t, got.Active)

	got, err = svc.SetActive(context.Background(), p.ID, nil)
	require.NoError(t, err)
	assert.True(t, got.Active)

	got, err = svc.SetActive(context.Background(), p.ID, boolPtr(false))
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = svc.SetActive(context.Background(), 999, nil)
	require.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.SetStock(context.Background(), 999, intPtr(1))
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProductBlockedWhenQuoted(t *testing.T) {
	svc, conn := newProducts(t)
	quoted := dbtest.SeedProduct(t, conn, "Q-1", 1000, true)
	free := dbtest.SeedProduct(t, conn, "F-1", 1000, true)

	client := dbtest.SeedClient(t, conn, "12345678-5", "Hospital")
	user := dbtest.SeedUser(t, conn, "vendedor", dbtest.RoleSellerID)
	q := dbtest.SeedQuotation(t, conn, client.ID, user.ID, enums.QuotationStatePending)
	require.NoError(t, conn.DB().Create(&models.QuotationLine{
		QuotationID: q.ID,
		ProductID:   quoted.ID,
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(1000),
		Discount:    decimal.Zero,
	}).Error)

	err := svc.Delete(context.Background(), quoted.ID)
	require.ErrorIs(t, err, ErrProductReferenced)
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.EqualValues(t, 1, details["cotizaciones_asociadas"])
	assert.NotEmpty(t, details["sugerencia"])

	require.NoError(t, svc.Delete(context.Background(), free.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), free.ID), ErrProductNotFound)
}

func TestListProducts(t *testing.T) {
	svc, conn := newProducts(t)
	cat := dbtest.SeedCategory(t, conn, "Separadores")
	first := dbtest.SeedProduct(t, conn, "SEP-1", 1000, true)
	dbtest.SeedProduct(t, conn, "SEP-2", 1000, false)
	dbtest.SeedProduct(t, conn, "PIN-1", 1000, true)
	_, err := svc.Update(context.Background(), first.ID, ProductPatch{Category: CategoryRef{Set: true, Value: &cat.ID}})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), ProductFilters{Code: "sep"}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.List(context.Background(), ProductFilters{Code: "sep", Active: boolPtr(true)}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "SEP-1", page.Data[0].Code)

	page, err = svc.List(context.Background(), ProductFilters{CategoryID: &cat.ID}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.NotNil(t, page.Data[0].CategoryName)

	page, err = svc.List(context.Background(), ProductFilters{}, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.TotalPages)
}
