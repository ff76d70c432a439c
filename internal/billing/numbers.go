package billing

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Document numbers are display data, not identity. The date-prefix plus
// random-suffix scheme can collide across a collection; identity is always
// the uuid and numbers are never checked for uniqueness at save time.

// NewQuoteNumber returns a number like QT-202608-0421.
func NewQuoteNumber(now time.Time) string {
	return newDocNumber("QT", now)
}

// NewInvoiceNumber returns a number like INV-202608-0421.
func NewInvoiceNumber(now time.Time) string {
	return newDocNumber("INV", now)
}

func newDocNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("200601"), rand.IntN(10000))
}
