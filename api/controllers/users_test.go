package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsupply/cotizaciones-api/internal/auth"
	"github.com/medsupply/cotizaciones-api/internal/users"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

type fakeAuth struct {
	req auth.LoginRequest
	err error
}

func (f *fakeAuth) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &auth.LoginResponse{Message: "Login exitoso", Token: "jwt", User: auth.Principal{ID: 1, Username: req.Username, Role: enums.RoleAdmin}}, nil
}

type fakeUsers struct {
	users.Service
	profileID int64
	filters   users.ListFilters
	created   users.CreateInput
	actorID   int64
	deletedID int64
	err       error
}

func (f *fakeUsers) Profile(ctx context.Context, userID int64) (*users.UserDTO, error) {
	f.profileID = userID
	return &users.UserDTO{ID: userID, Username: "jperez", Role: enums.RoleSeller}, nil
}

func (f *fakeUsers) List(ctx context.Context, filters users.ListFilters, params pagination.Params) (pagination.Page[users.UserDTO], error) {
	f.filters = filters
	return pagination.NewPage[users.UserDTO](params, 0, nil), nil
}

func (f *fakeUsers) Create(ctx context.Context, input users.CreateInput) (*users.UserDTO, error) {
	f.created = input
	if f.err != nil {
		return nil, f.err
	}
	return &users.UserDTO{ID: 5, Username: input.Username, RoleID: input.RoleID, Active: true}, nil
}

func (f *fakeUsers) Delete(ctx context.Context, actorID, id int64) error {
	f.actorID = actorID
	f.deletedID = id
	return f.err
}

func TestAuthLoginReturnsToken(t *testing.T) {
	svc := &fakeAuth{}
	req := jsonRequest(http.MethodPost, "/usuarios/login", `{"usuario":"admin","password":"admin123"}`)
	rec := serve(t, http.MethodPost, "/usuarios/login", AuthLogin(svc, logger.Nop()), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "admin", svc.req.Username)
	assert.Equal(t, "admin123", svc.req.Password)
	body := decodeMap(t, rec)
	assert.Equal(t, "jwt", body["token"])
	assert.Equal(t, "admin", body["usuario"].(map[string]any)["rol"])
}

func TestAuthLoginMapsInvalidCredentials(t *testing.T) {
	svc := &fakeAuth{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "Credenciales inválidas")}
	req := jsonRequest(http.MethodPost, "/usuarios/login", `{"usuario":"admin","password":"nope"}`)
	rec := serve(t, http.MethodPost, "/usuarios/login", AuthLogin(svc, logger.Nop()), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Credenciales inválidas", decodeErr(t, rec).Message)
}

func TestUserProfileReadsPrincipal(t *testing.T) {
	svc := &fakeUsers{}
	req := asUser(httptest.NewRequest(http.MethodGet, "/usuarios/perfil", nil), 17, "vendedor")
	rec := serve(t, http.MethodGet, "/usuarios/perfil", UserProfile(svc, logger.Nop()), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 17, svc.profileID)
}

func TestUserProfileWithoutPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/usuarios/perfil", nil)
	rec := serve(t, http.MethodGet, "/usuarios/perfil", UserProfile(&fakeUsers{}, logger.Nop()), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserListFilters(t *testing.T) {
	svc := &fakeUsers{}
	req := httptest.NewRequest(http.MethodGet, "/usuarios?activo=true&rol=vendedor", nil)
	rec := serve(t, http.MethodGet, "/usuarios", UserList(svc, logger.Nop()), req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filters.Active)
	assert.True(t, *svc.filters.Active)
	assert.Equal(t, "vendedor", svc.filters.Role)
}

func TestUserCreateNeverEchoesPassword(t *testing.T) {
	svc := &fakeUsers{}
	req := jsonRequest(http.MethodPost, "/usuarios", `{"usuario":"mrojas","password":"secreto123","id_rol":2}`)
	rec := serve(t, http.MethodPost, "/usuarios", UserCreate(svc, logger.Nop()), req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "secreto123", svc.created.Password)
	assert.EqualValues(t, 2, svc.created.RoleID)
	assert.NotContains(t, rec.Body.String(), "secreto123")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUserDeletePassesActor(t *testing.T) {
	svc := &fakeUsers{}
	req := asUser(httptest.NewRequest(http.MethodDelete, "/usuarios/8", nil), 1, "admin")
	rec := serve(t, http.MethodDelete, "/usuarios/{id}", UserDelete(svc, logger.Nop()), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, svc.actorID)
	assert.EqualValues(t, 8, svc.deletedID)
}

func TestUserDeleteSelfIsRejected(t *testing.T) {
	svc := &fakeUsers{err: pkgerrors.New(pkgerrors.CodeValidation, "No puede eliminar su propio usuario")}
	req := asUser(httptest.NewRequest(http.MethodDelete, "/usuarios/1", nil), 1, "admin")
	rec := serve(t, http.MethodDelete, "/usuarios/{id}", UserDelete(svc, logger.Nop()), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
