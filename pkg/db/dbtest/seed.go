package dbtest

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

// Role ids as seeded by the first migration.
const (
	RoleAdminID    int64 = 1
	RoleSellerID   int64 = 2
	RoleReadOnlyID int64 = 3
)

func mustCreate(t *testing.T, client *db.Client, value any) {
	t.Helper()
	if err := client.DB().Create(value).Error; err != nil {
		t.Fatalf("seed %T: %v", value, err)
	}
}

func SeedUser(t *testing.T, client *db.Client, username string, roleID int64) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", RoleID: roleID, Active: true}
	mustCreate(t, client, user)
	return user
}

func SeedClient(t *testing.T, client *db.Client, rut, name string) *models.Client {
	t.Helper()
	c := &models.Client{RUT: rut, Name: name}
	mustCreate(t, client, c)
	return c
}

func SeedCategory(t *testing.T, client *db.Client, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	mustCreate(t, client, c)
	return c
}

func SeedProduct(t *testing.T, client *db.Client, code string, price int64, active bool) *models.Product {
	t.Helper()
	p := &models.Product{
		Code:   code,
		Name:   "Producto " + code,
		Price:  decimal.NewFromInt(price),
		Stock:  10,
		Active: active,
	}
	mustCreate(t, client, p)
	return p
}

// SeedQuotation inserts a header without lines in the given state.
func SeedQuotation(t *testing.T, client *db.Client, clientID, userID int64, state enums.QuotationState) *models.Quotation {
	t.Helper()
	date, err := types.ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	q := &models.Quotation{
		ClientID:  clientID,
		UserID:    userID,
		IssueDate: date,
		State:     state,
		Total:     decimal.Zero,
	}
	mustCreate(t, client, q)
	return q
}

func SeedShipment(t *testing.T, client *db.Client, quotationID int64, state enums.ShipmentState) *models.Shipment {
	t.Helper()
	s := &models.Shipment{
		QuotationID: quotationID,
		SendDate:    types.Today(),
		Address:     "Av. Siempre Viva 742",
		State:       state,
	}
	mustCreate(t, client, s)
	return s
}

// Count returns the number of rows in table.
func Count(t *testing.T, client *db.Client, table string) int64 {
	t.Helper()
	var n int64
	if err := client.DB().Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
