package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// renderFPDF draws the document with gofpdf, used when no Gotenberg endpoint
// is configured. Core fonts are cp1252, so amounts here are formatted with
// the currency code rather than the symbol.
func renderFPDF(p DocumentPayload) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(30, 64, 175)
	pdf.CellFormat(0, 10, strings.ToUpper(p.Kind), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(107, 114, 128)
	meta := fmt.Sprintf("%s  |  Date: %s  |  %s", p.Number, formatDate(p.Date), formatDate(p.SecondDate))
	if p.Status != "" {
		meta += "  |  " + strings.ToUpper(p.Status)
	}
	pdf.CellFormat(0, 6, tr(meta), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(31, 41, 55)
	colWidth := 90.0
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colWidth, 5, "From", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(colWidth, 5, tr(partyBlock(p.Company.Name, p.Company.Address, p.Company.Phone, p.Company.Email, p.Company.GSTNumber)), "", "L", false)
	fromBottom := pdf.GetY()

	pdf.SetXY(15+colWidth, top)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colWidth, 5, "To", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(15 + colWidth)
	pdf.MultiCell(colWidth, 5, tr(partyBlock(p.Client.Name, p.Client.Address, p.Client.Phone, p.Client.Email, "")), "", "L", false)
	if pdf.GetY() < fromBottom {
		pdf.SetY(fromBottom)
	}
	pdf.Ln(6)

	widths := []float64{10, 80, 20, 35, 35}
	headers := []string{"#", "Item", "Qty", "Unit Price", "Amount"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(30, 64, 175)
	pdf.SetTextColor(255, 255, 255)
	for i, head := range headers {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, head, "", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(31, 41, 55)
	for _, row := range p.Items {
		name := row.Name
		if row.Description != "" {
			name += " - " + row.Description
		}
		pdf.CellFormat(widths[0], 7, fmt.Sprintf("%d", row.Index), "B", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, tr(name), "B", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, row.Quantity, "B", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(row.UnitPrice), "B", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, tr(row.LineTotal), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	summary := func(label, value string, bold bool) {
		if bold {
			pdf.SetFont("Helvetica", "B", 11)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.CellFormat(110, 7, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, tr(value), "", 1, "R", false, 0, "")
	}
	summary("Subtotal", p.Subtotal, false)
	if p.DiscountAmount != "" {
		summary("Discount "+p.DiscountLabel, "-"+p.DiscountAmount, false)
	}
	if p.TaxAmount != "" {
		summary("Tax "+p.TaxLabel, p.TaxAmount, false)
	}
	summary("Grand Total", p.GrandTotal, true)

	writeTermsBlock(pdf, tr, "Terms & Conditions", p.Terms)
	writeTermsBlock(pdf, tr, "Payment Terms", p.PaymentTerms)

	if p.SignatureName != "" {
		pdf.Ln(14)
		pdf.SetFont("Helvetica", "I", 12)
		pdf.CellFormat(0, 7, tr(p.SignatureName), "", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(107, 114, 128)
		pdf.CellFormat(0, 5, "Authorised Signatory", "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("fpdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func partyBlock(name, address, phone, email, gst string) string {
	lines := []string{name, address}
	if phone != "" || email != "" {
		lines = append(lines, strings.TrimSuffix(phone+"  "+email, "  "))
	}
	if gst != "" {
		lines = append(lines, "GSTIN: "+gst)
	}
	return strings.Join(lines, "\n")
}

func writeTermsBlock(pdf *gofpdf.Fpdf, tr func(string) string, title, body string) {
	if body == "" {
		return
	}
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 5, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(55, 65, 81)
	pdf.MultiCell(0, 5, tr(body), "", "L", false)
}
