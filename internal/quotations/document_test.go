package quotations

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

func TestRenderProducesPDF(t *testing.T) {
	date, err := types.ParseDate("2024-01-15")
	require.NoError(t, err)
	note := "Entrega en bodega"
	detail := &Detail{
		Header: Header{
			ID:           7,
			IssueDate:    date,
			State:        enums.QuotationStatePending,
			Total:        decimal.NewFromInt(2900),
			Observations: &note,
			ClientName:   "Clínica Central",
		},
		ClientRUT: "12345678-5",
		Seller:    "vendedor1",
		Lines: []Line{{
			ProductCode: "P1",
			ProductName: "Guantes de nitrilo talla M caja de cien unidades extra largos",
			Quantity:    3,
			UnitPrice:   decimal.NewFromInt(1000),
			Discount:    decimal.NewFromInt(100),
			Subtotal:    decimal.NewFromInt(2900),
		}},
	}

	out, err := NewDocumentRenderer(config.CompanyConfig{Name: "Insumos Médicos", RUT: "76543210-3"}).Render(detail)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "cotizacion_7.pdf", Filename(7))

	_, err = NewDocumentRenderer(config.CompanyConfig{}).Render(nil)
	assert.Error(t, err)
}
