package billing

import (
	"github.com/billcraft/billcraft/internal/currency"
	"github.com/billcraft/billcraft/internal/totals"
)

// QuotationForm is the fully-validated input for creating or updating a
// quotation. Identifier, timestamps, and totals are computed server-side.
type QuotationForm struct {
	Company       CompanyDetails      `json:"company" validate:"required"`
	Client        ClientDetails       `json:"client" validate:"required"`
	QuoteNumber   string              `json:"quoteNumber" validate:"max=40"`
	Date          string              `json:"date" validate:"required,datetime=2006-01-02"`
	ValidUntil    string              `json:"validUntil" validate:"required,datetime=2006-01-02"`
	Currency      currency.Code       `json:"currency" validate:"required,currency"`
	Items         []LineItem          `json:"items" validate:"required,min=1,dive"`
	DiscountType  totals.DiscountKind `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue float64             `json:"discountValue" validate:"gte=0"`
	TaxPercent    float64             `json:"taxPercent" validate:"gte=0,lte=100"`
	Terms         string              `json:"terms,omitempty"`
	PaymentTerms  string              `json:"paymentTerms,omitempty"`
	Signature     *Signature          `json:"signature,omitempty" validate:"omitempty"`
}

// InvoiceForm is the input for creating or updating an invoice. When
// SourceQuoteID is set, empty sections default from that quotation and a
// successful save marks it converted.
type InvoiceForm struct {
	Company       CompanyDetails      `json:"company" validate:"required"`
	Client        ClientDetails       `json:"client" validate:"required"`
	InvoiceNumber string              `json:"invoiceNumber" validate:"max=40"`
	Date          string              `json:"date" validate:"required,datetime=2006-01-02"`
	DueDate       string              `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Status        InvoiceStatus       `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	SourceQuoteID string              `json:"sourceQuoteId,omitempty"`
	Currency      currency.Code       `json:"currency" validate:"required,currency"`
	Items         []LineItem          `json:"items" validate:"required,min=1,dive"`
	DiscountType  totals.DiscountKind `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue float64             `json:"discountValue" validate:"gte=0"`
	TaxPercent    float64             `json:"taxPercent" validate:"gte=0,lte=100"`
	Terms         string              `json:"terms,omitempty"`
	PaymentTerms  string              `json:"paymentTerms,omitempty"`
	Signature     *Signature          `json:"signature,omitempty" validate:"omitempty"`
}

// StatusUpdateRequest changes an invoice's lifecycle status.
type StatusUpdateRequest struct {
	Status InvoiceStatus `json:"status" validate:"required,oneof=draft sent paid overdue"`
}

// DashboardStats aggregates the landing-page counters.
type DashboardStats struct {
	TotalQuotations   int     `json:"totalQuotations"`
	TotalInvoices     int     `json:"totalInvoices"`
	PendingQuotations int     `json:"pendingQuotations"`
	TotalRevenue      float64 `json:"totalRevenue"`
}

// ActivityItem is one row of the recent-activity feed.
type ActivityItem struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"` // quotation or invoice
	Title      string  `json:"title"`
	ClientName string  `json:"clientName"`
	Amount     string  `json:"amount"`
	Date       string  `json:"date"`
	GrandTotal float64 `json:"grandTotal"`
}
