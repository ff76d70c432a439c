package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billcraft/billcraft/internal/billing"
	"github.com/billcraft/billcraft/internal/currency"
	"github.com/billcraft/billcraft/internal/totals"
)

func sampleQuotation() *billing.Quotation {
	return &billing.Quotation{
		ID:          "q-1",
		QuoteNumber: "QT-202501-0042",
		Date:        "2025-01-15",
		ValidUntil:  "2025-02-14",
		Currency:    currency.INR,
		Company: billing.CompanyDetails{
			Name:    "Acme Traders",
			Address: "12 MG Road, Bengaluru",
			Phone:   "+91 98765 43210",
			Email:   "billing@acme.example",
		},
		Client: billing.ClientDetails{
			Name:    "Globex / Industries",
			Address: "5 Park Street, Kolkata",
		},
		Items: []billing.LineItem{
			{ID: "i-1", Name: "Consulting", Description: "January retainer", Quantity: 2, UnitPrice: 500, LineTotal: 1000},
		},
		DiscountType:  totals.DiscountPercentage,
		DiscountValue: 10,
		TaxPercent:    18,
		Terms:         "Valid for 30 days.",
		Signature:     &billing.Signature{Type: billing.SignatureTyped, Value: "A. Sharma"},
		UpdatedAt:     time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestQuotationPayload(t *testing.T) {
	p := QuotationPayload(sampleQuotation(), currency.FormatCode)

	assert.Equal(t, "Quotation", p.Kind)
	assert.Equal(t, "QT-202501-0042", p.Number)
	assert.Equal(t, "INR 1,000.00", p.Subtotal)
	assert.Equal(t, "INR 100.00", p.DiscountAmount)
	assert.Equal(t, "(10%)", p.DiscountLabel)
	assert.Equal(t, "INR 162.00", p.TaxAmount)
	assert.Equal(t, "INR 1,062.00", p.GrandTotal)
	assert.Equal(t, "A. Sharma", p.SignatureName)
	assert.Empty(t, p.SignatureImage)
	assert.Equal(t, "Quotation_Globex_Industries_QT_202501_0042.pdf", p.Filename)
}

func TestPayloadOmitsZeroAdjustments(t *testing.T) {
	q := sampleQuotation()
	q.DiscountValue = 0
	q.TaxPercent = 0
	p := QuotationPayload(q, currency.FormatCode)

	assert.Empty(t, p.DiscountAmount)
	assert.Empty(t, p.DiscountLabel)
	assert.Empty(t, p.TaxAmount)
	assert.Equal(t, "INR 1,000.00", p.GrandTotal)
}

func TestInvoicePayloadCarriesStatus(t *testing.T) {
	inv := &billing.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-202501-0007",
		Date:          "2025-01-20",
		DueDate:       "2025-02-19",
		Status:        billing.InvoiceStatusSent,
		Currency:      currency.USD,
		Client:        billing.ClientDetails{Name: "Initech", Address: "somewhere"},
		Items: []billing.LineItem{
			{Name: "Widget", Quantity: 3, UnitPrice: 9.99, LineTotal: 29.97},
		},
	}
	p := InvoicePayload(inv, currency.FormatCode)

	assert.Equal(t, "Invoice", p.Kind)
	assert.Equal(t, "sent", p.Status)
	assert.Equal(t, "2025-02-19", p.SecondDate)
	assert.Equal(t, "Invoice_Initech_INV_202501_0007.pdf", p.Filename)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Globex / Industries": "Globex_Industries",
		"  plain  ":           "plain",
		"already_ok":          "already_ok",
		"über & co":           "ber_co",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "2", formatQty(2))
	assert.Equal(t, "2.5", formatQty(2.5))
	assert.Equal(t, "0.125", formatQty(0.125))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "15 Jan 2025", formatDate("2025-01-15"))
	assert.Equal(t, "not-a-date", formatDate("not-a-date"))
}

func TestRenderHTML(t *testing.T) {
	tpl, err := parseTemplates()
	require.NoError(t, err)

	p := QuotationPayload(sampleQuotation(), currency.Format)
	html, err := renderHTML(tpl, p)
	require.NoError(t, err)

	assert.Contains(t, html, "QT-202501-0042")
	assert.Contains(t, html, "Acme Traders")
	assert.Contains(t, html, "15 Jan 2025")
	assert.Contains(t, html, "A. Sharma")

	_, err = renderHTML(tpl, DocumentPayload{Kind: "Receipt"})
	assert.Error(t, err)
}

func TestRenderFPDF(t *testing.T) {
	p := QuotationPayload(sampleQuotation(), currency.FormatCode)
	pdf, err := renderFPDF(p)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestServiceOfflineRender(t *testing.T) {
	svc, err := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)

	filename, pdf, err := svc.Quotation(context.Background(), sampleQuotation())
	require.NoError(t, err)
	assert.Equal(t, "Quotation_Globex_Industries_QT_202501_0042.pdf", filename)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
