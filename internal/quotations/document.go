package quotations

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/medsupply/cotizaciones-api/pkg/config"
)

// DocumentRenderer prints a quotation as an A4 PDF with the issuing company's
// letterhead.
type DocumentRenderer struct {
	company config.CompanyConfig
}

func NewDocumentRenderer(company config.CompanyConfig) *DocumentRenderer {
	return &DocumentRenderer{company: company}
}

// Filename is the attachment name used for a quotation document.
func Filename(id int64) string {
	return fmt.Sprintf("cotizacion_%d.pdf", id)
}

func (r *DocumentRenderer) Render(detail *Detail) ([]byte, error) {
	if detail == nil {
		return nil, fmt.Errorf("pdf: quotation detail required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(fmt.Sprintf("Cotización %d", detail.ID), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 7, tr(r.company.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{
		labeled("RUT", r.company.RUT),
		r.company.Address,
		joinNonEmpty(" | ", r.company.Phone, r.company.Email),
	} {
		if line != "" {
			pdf.CellFormat(contentW, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(fmt.Sprintf("Cotización N° %d", detail.ID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Fecha de emisión: "+detail.IssueDate.String()), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Estado: "+detail.State.String()), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Vendedor: "+detail.Seller), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Cliente", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(detail.ClientName+" ("+detail.ClientRUT+")"), "", 1, "L", false, 0, "")
	for _, v := range []*string{detail.ClientAddress, detail.ClientEmail, detail.ClientPhone} {
		if v != nil && *v != "" {
			pdf.CellFormat(contentW, 5, tr(*v), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	cols := []float64{contentW * 0.14, contentW * 0.36, contentW * 0.10, contentW * 0.14, contentW * 0.12, contentW * 0.14}
	headers := []string{"Código", "Producto", "Cant.", "P. Unit.", "Desc.", "Subtotal"}
	aligns := []string{"L", "L", "C", "R", "R", "R"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(cols[i], 6, tr(h), "1", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, line := range detail.Lines {
		name := line.ProductName
		if len([]rune(name)) > 40 {
			name = string([]rune(name)[:39]) + "..."
		}
		values := []string{
			line.ProductCode,
			name,
			fmt.Sprintf("%d", line.Quantity),
			money(line.UnitPrice),
			money(line.Discount),
			money(line.Subtotal),
		}
		for i, v := range values {
			pdf.CellFormat(cols[i], 6, tr(v), "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	labelW := cols[0] + cols[1] + cols[2] + cols[3] + cols[4]
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, 7, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(cols[5], 7, money(detail.Total), "1", 1, "R", false, 0, "")

	if detail.Observations != nil && *detail.Observations != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "Observaciones", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, tr(*detail.Observations), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render quotation %d: %w", detail.ID, err)
	}
	return buf.Bytes(), nil
}

func money(v decimal.Decimal) string {
	return "$" + v.StringFixed(0)
}

func labeled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func joinNonEmpty(sep string, values ...string) string {
	out := ""
	for _, v := range values {
		if v == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += v
	}
	return out
}
