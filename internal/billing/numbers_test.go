package billing

import (
	"regexp"
	"testing"
	"time"
)

func TestDocumentNumberFormat(t *testing.T) {
	now := time.Date(2025, 8, 5, 12, 0, 0, 0, time.UTC)

	quotePattern := regexp.MustCompile(`^QT-202508-\d{4}$`)
	invoicePattern := regexp.MustCompile(`^INV-202508-\d{4}$`)

	for i := 0; i < 50; i++ {
		if got := NewQuoteNumber(now); !quotePattern.MatchString(got) {
			t.Fatalf("quote number %q does not match %v", got, quotePattern)
		}
		if got := NewInvoiceNumber(now); !invoicePattern.MatchString(got) {
			t.Fatalf("invoice number %q does not match %v", got, invoicePattern)
		}
	}
}
