package billing

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/cafemanage/api/internal/model"
)

// PDFRenderer renders bills with a fixed single-page receipt layout.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// RenderBill produces the bill PDF for an order.
func (r *PDFRenderer) RenderBill(order model.Order, settings model.Settings) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Bill %s", order.ID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, settings.CafeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Bill %s", order.ID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Customer: %s", order.CustomerName), "", 1, "L", false, 0, "")
	if order.TableNumber != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Table: %s", order.TableNumber), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Date: %s %s", order.Date, order.Time), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Item table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range order.Items {
		pdf.CellFormat(90, 6, line.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", line.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, line.Price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, line.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	totalRow := func(label, amount string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(140, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, amount, "", 1, "R", false, 0, "")
	}
	totalRow("Subtotal", order.Subtotal.StringFixed(2), false)
	totalRow("Tax", order.Tax.StringFixed(2), false)
	totalRow("Service Charge", order.ServiceCharge.StringFixed(2), false)
	totalRow("Total", order.Total.StringFixed(2), true)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Payment: %s", order.PaymentStatus), "", 1, "L", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 5, "Thank you for your visit!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render bill %s: %w", order.ID, err)
	}
	return buf.Bytes(), nil
}
