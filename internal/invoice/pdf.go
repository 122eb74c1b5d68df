// Package invoice renders invoices as PDF and mails them to clients.
package invoice

import (
	"bytes"
	"fmt"

	"farmacia/m/domain"

	"github.com/go-pdf/fpdf"
)

// Render lays out one invoice on an A4 page.
func Render(doc domain.InvoiceDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Factura "+doc.Invoice.Number, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr("Farmacia"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Factura: "+doc.Invoice.Number), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Fecha: "+doc.Invoice.IssuedAt), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Cliente: "+doc.ClientName), "", 1, "L", false, 0, "")
	if doc.BranchName != "" {
		pdf.CellFormat(0, 6, tr("Sucursal: "+doc.BranchName), "", 1, "L", false, 0, "")
	}
	if doc.AgentName != "" {
		pdf.CellFormat(0, 6, tr("Atendido por: "+doc.AgentName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	widths := []float64{90, 25, 35, 40}
	pdf.SetFont("Helvetica", "B", 11)
	for i, h := range []string{"Producto", "Cantidad", "Precio", "Subtotal"} {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range doc.Sale.Items {
		name := item.ProductName
		if name == "" {
			name = fmt.Sprintf("Producto %d", item.ProductID)
		}
		pdf.CellFormat(widths[0], 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, "Q "+item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, "Q "+item.Subtotal().StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, "Q "+doc.Sale.Total.StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", doc.Invoice.Number, err)
	}
	return buf.Bytes(), nil
}
