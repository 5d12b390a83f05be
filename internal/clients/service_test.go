package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/dbtest"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	return svc, client
}

func strPtr(s string) *string { return &s }

func TestCreateCanonicalizesRUT(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateInput{
		RUT:   "12.345.678-5",
		Name:  " Hospital Regional ",
		Email: strPtr("compras@hospital.cl"),
	})
	require.NoError(t, err)
	assert.Equal(t, "12345678-5", created.RUT)
	assert.Equal(t, "Hospital Regional", created.Name)
	assert.NotZero(t, created.ID)

	_, err = svc.Create(context.Background(), CreateInput{RUT: "12345678-5", Name: "Otro"})
	require.ErrorIs(t, err, ErrDuplicateRUT)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = svc.Create(context.Background(), CreateInput{RUT: "11.111.111-1", Name: "Otro", Email: strPtr("compras@hospital.cl")})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Name: "Sin RUT"})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Create(context.Background(), CreateInput{RUT: "12345678-4", Name: "Mal DV"})
	require.ErrorIs(t, err, ErrInvalidRUT)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.Create(context.Background(), CreateInput{RUT: "12345678-5", Name: "X", Email: strPtr("no-es-correo")})
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, conn := newTestService(t)
	first, err := svc.Create(context.Background(), CreateInput{RUT: "12345678-5", Name: "Clínica A", Email: strPtr("a@clinica.cl")})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), CreateInput{RUT: "11111111-1", Name: "Clínica B"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), second.ID, Patch{RUT: strPtr("12.345.678-5")})
	require.ErrorIs(t, err, ErrDuplicateRUT)

	_, err = svc.Update(context.Background(), second.ID, Patch{Email: strPtr("a@clinica.cl")})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	updated, err := svc.Update(context.Background(), first.ID, Patch{Email: strPtr(""), Phone: strPtr("+56 2 2345 6789")})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
	require.NotNil(t, updated.Phone)

	_, err = svc.Update(context.Background(), first.ID, Patch{})
	require.ErrorIs(t, err, ErrNoFieldsToUpdate)

	_, err = svc.Update(context.Background(), 999, Patch{Name: strPtr("x")})
	require.ErrorIs(t, err, ErrClientNotFound)

	user := dbtest.SeedUser(t, conn, "vendedor", dbtest.RoleSellerID)
	dbtest.SeedQuotation(t, conn, first.ID, user.ID, enums.QuotationStatePending)

	err = svc.Delete(context.Background(), first.ID)
	require.ErrorIs(t, err, ErrHasQuotations)
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.EqualValues(t, 1, details["cotizaciones_asociadas"])

	got, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Quotations)
	assert.EqualValues(t, 1, *got.Quotations)

	require.NoError(t, svc.Delete(context.Background(), second.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), second.ID), ErrClientNotFound)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	for _, in := range []CreateInput{
		{RUT: "12345678-5", Name: "Hospital del Sur"},
		{RUT: "11111111-1", Name: "Clínica Norte", Email: strPtr("norte@clinica.cl")},
		{RUT: "6000007-7", Name: "Hospital Central"},
	} {
		_, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), ListFilters{Name: "hospital"}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Hospital Central", page.Data[0].Name)

	page, err = svc.List(context.Background(), ListFilters{Email: "NORTE"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "11111111-1", page.Data[0].RUT)

	page, err = svc.List(context.Background(), ListFilters{}, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 1)
}

func TestCheckRUT(t *testing.T) {
	svc, _ := newTestService(t)

	ok := svc.CheckRUT("12.345.678-5")
	assert.True(t, ok.Valid)
	require.NotNil(t, ok.Formatted)
	assert.Equal(t, "12345678-5", *ok.Formatted)

	bad := svc.CheckRUT("12.345.678-0")
	assert.False(t, bad.Valid)
	assert.Nil(t, bad.Formatted)
	assert.Equal(t, "RUT inválido", bad.Message)
}
