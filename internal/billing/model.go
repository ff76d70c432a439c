// Package billing holds the document model, the keyed document store, and the
// lifecycle service for quotations and invoices.
package billing

import (
	"time"

	"github.com/billcraft/billcraft/internal/currency"
	"github.com/billcraft/billcraft/internal/totals"
)

// InvoiceStatus tracks where an invoice sits in its payment lifecycle.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// SignatureType distinguishes a typed name from an uploaded image.
type SignatureType string

const (
	SignatureTyped SignatureType = "typed"
	SignatureImage SignatureType = "image"
)

// CompanyDetails is the issuing company profile. The singleton profile is
// copied by value into each document at creation time.
type CompanyDetails struct {
	Name      string `json:"name" validate:"required,max=100"`
	Address   string `json:"address" validate:"required,max=500"`
	Phone     string `json:"phone" validate:"required,phoneish"`
	Email     string `json:"email" validate:"required,email"`
	GSTNumber string `json:"gstNumber,omitempty" validate:"omitempty,gstin"`
	Logo      string `json:"logo,omitempty"` // base64 encoded image
}

// ClientDetails is the billed party.
type ClientDetails struct {
	Name    string `json:"name" validate:"required,max=100"`
	Company string `json:"company,omitempty" validate:"max=100"`
	Address string `json:"address" validate:"required,max=500"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,phoneish"`
}

// LineItem is one billed row. LineTotal is a cached derived field; it is
// refreshed from quantity and unit price whenever a document is assembled.
type LineItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description,omitempty" validate:"max=500"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	LineTotal   float64 `json:"lineTotal"`
}

// Signature is either a typed name or a base64 image payload.
type Signature struct {
	Type  SignatureType `json:"type" validate:"required,oneof=typed image"`
	Value string        `json:"value" validate:"required"`
}

// Quotation is a stored quotation document.
type Quotation struct {
	ID                 string              `json:"id"`
	QuoteNumber        string              `json:"quoteNumber"`
	Date               string              `json:"date"`
	ValidUntil         string              `json:"validUntil"`
	Currency           currency.Code       `json:"currency"`
	Company            CompanyDetails      `json:"company"`
	Client             ClientDetails       `json:"client"`
	Items              []LineItem          `json:"items"`
	DiscountType       totals.DiscountKind `json:"discountType"`
	DiscountValue      float64             `json:"discountValue"`
	TaxPercent         float64             `json:"taxPercent"`
	GrandTotal         float64             `json:"grandTotal"`
	Terms              string              `json:"terms,omitempty"`
	PaymentTerms       string              `json:"paymentTerms,omitempty"`
	Signature          *Signature          `json:"signature,omitempty"`
	ConvertedToInvoice bool                `json:"convertedToInvoice,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// Invoice is a stored invoice document. SourceQuoteID links back to the
// quotation it was converted from, when there is one.
type Invoice struct {
	ID            string              `json:"id"`
	InvoiceNumber string              `json:"invoiceNumber"`
	Date          string              `json:"date"`
	DueDate       string              `json:"dueDate"`
	Status        InvoiceStatus       `json:"status"`
	SourceQuoteID string              `json:"sourceQuoteId,omitempty"`
	Currency      currency.Code       `json:"currency"`
	Company       CompanyDetails      `json:"company"`
	Client        ClientDetails       `json:"client"`
	Items         []LineItem          `json:"items"`
	DiscountType  totals.DiscountKind `json:"discountType"`
	DiscountValue float64             `json:"discountValue"`
	TaxPercent    float64             `json:"taxPercent"`
	GrandTotal    float64             `json:"grandTotal"`
	Terms         string              `json:"terms,omitempty"`
	PaymentTerms  string              `json:"paymentTerms,omitempty"`
	Signature     *Signature          `json:"signature,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// totalsItems converts line items for the calculation pipeline.
func totalsItems(items []LineItem) []totals.Item {
	out := make([]totals.Item, len(items))
	for i, item := range items {
		out[i] = totals.Item{
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}
	return out
}

// Totals recomputes the full result from the stored line totals.
func (q *Quotation) Totals() totals.Result {
	return totals.Compute(totalsItems(q.Items), totals.Discount{Kind: q.DiscountType, Value: q.DiscountValue}, q.TaxPercent)
}

// Totals recomputes the full result from the stored line totals.
func (inv *Invoice) Totals() totals.Result {
	return totals.Compute(totalsItems(inv.Items), totals.Discount{Kind: inv.DiscountType, Value: inv.DiscountValue}, inv.TaxPercent)
}
