// Package export renders assembled documents as printable PDFs. It consumes
// billing records read-only; document layout lives here and in the embedded
// templates, never in the billing layer.
package export

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/billcraft/billcraft/internal/billing"
	"github.com/billcraft/billcraft/internal/currency"
	"github.com/billcraft/billcraft/internal/totals"
)

// AmountFormatter renders a monetary amount for the output medium.
type AmountFormatter func(amount float64, code currency.Code) string

// ItemRow is one rendered line of the items table.
type ItemRow struct {
	Index       int
	Name        string
	Description string
	Quantity    string
	UnitPrice   string
	LineTotal   string
}

// DocumentPayload aggregates everything the document templates need.
type DocumentPayload struct {
	Kind       string // "Quotation" or "Invoice"
	Number     string
	Date       string
	SecondDate string // validUntil or dueDate
	Status     string

	Company billing.CompanyDetails
	Client  billing.ClientDetails
	Items   []ItemRow

	Subtotal       string
	DiscountLabel  string
	DiscountAmount string
	TaxLabel       string
	TaxAmount      string
	GrandTotal     string

	Terms        string
	PaymentTerms string

	SignatureName string
	// SignatureImage is a data URL; typed so the template engine keeps it.
	SignatureImage template.URL

	Filename string
}

// QuotationPayload builds the render payload for a quotation.
func QuotationPayload(q *billing.Quotation, format AmountFormatter) DocumentPayload {
	p := basePayload("Quotation", q.Currency, q.Items, q.Totals(),
		totals.Discount{Kind: q.DiscountType, Value: q.DiscountValue}, q.TaxPercent,
		q.Terms, q.PaymentTerms, q.Signature, format)
	p.Number = q.QuoteNumber
	p.Date = q.Date
	p.SecondDate = q.ValidUntil
	p.Company = q.Company
	p.Client = q.Client
	p.Filename = documentFilename("Quotation", q.Client.Name, q.QuoteNumber)
	return p
}

// InvoicePayload builds the render payload for an invoice.
func InvoicePayload(inv *billing.Invoice, format AmountFormatter) DocumentPayload {
	p := basePayload("Invoice", inv.Currency, inv.Items, inv.Totals(),
		totals.Discount{Kind: inv.DiscountType, Value: inv.DiscountValue}, inv.TaxPercent,
		inv.Terms, inv.PaymentTerms, inv.Signature, format)
	p.Number = inv.InvoiceNumber
	p.Date = inv.Date
	p.SecondDate = inv.DueDate
	p.Status = string(inv.Status)
	p.Company = inv.Company
	p.Client = inv.Client
	p.Filename = documentFilename("Invoice", inv.Client.Name, inv.InvoiceNumber)
	return p
}

func basePayload(kind string, code currency.Code, items []billing.LineItem, result totals.Result, discount totals.Discount, taxPercent float64, terms, paymentTerms string, sig *billing.Signature, format AmountFormatter) DocumentPayload {
	rows := make([]ItemRow, len(items))
	for i, item := range items {
		rows[i] = ItemRow{
			Index:       i + 1,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    formatQty(item.Quantity),
			UnitPrice:   format(item.UnitPrice, code),
			LineTotal:   format(item.LineTotal, code),
		}
	}

	p := DocumentPayload{
		Kind:         kind,
		Items:        rows,
		Subtotal:     format(result.Subtotal, code),
		GrandTotal:   format(result.GrandTotal, code),
		Terms:        terms,
		PaymentTerms: paymentTerms,
	}
	if result.DiscountAmount > 0 {
		p.DiscountAmount = format(result.DiscountAmount, code)
		if discount.Kind == totals.DiscountPercentage {
			p.DiscountLabel = fmt.Sprintf("(%s%%)", formatQty(discount.Value))
		} else {
			p.DiscountLabel = "(fixed)"
		}
	}
	if taxPercent > 0 {
		p.TaxAmount = format(result.TaxAmount, code)
		p.TaxLabel = fmt.Sprintf("(%s%%)", formatQty(taxPercent))
	}
	if sig != nil {
		if sig.Type == billing.SignatureImage {
			p.SignatureImage = template.URL(sig.Value)
		} else {
			p.SignatureName = sig.Value
		}
	}
	return p
}

func formatQty(qty float64) string {
	s := fmt.Sprintf("%.4f", qty)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// formatDate turns a YYYY-MM-DD form date into the printed style, leaving
// unparseable values untouched.
func formatDate(value string) string {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return t.Format("02 Jan 2006")
}

var filenameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func sanitizeFilename(name string) string {
	return strings.Trim(filenameUnsafe.ReplaceAllString(name, "_"), "_")
}

func documentFilename(kind, clientName, number string) string {
	return fmt.Sprintf("%s_%s_%s.pdf", kind, sanitizeFilename(clientName), sanitizeFilename(number))
}
