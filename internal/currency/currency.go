// Package currency formats monetary amounts for the fixed set of supported
// currencies. Formatting is symbol substitution plus locale digit grouping;
// there is no conversion.
package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Code identifies a supported currency.
type Code string

const (
	INR Code = "INR"
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
)

// Codes lists the supported currencies in display order.
var Codes = []Code{INR, USD, EUR, GBP}

var symbols = map[Code]string{
	INR: "₹",
	USD: "$",
	EUR: "€",
	GBP: "£",
}

// Every currency groups in the Indian lakh/crore style, matching the
// documents this tool produces regardless of the billed currency.
var locale = language.MustParse("en-IN")

// Supported reports whether code is one of the fixed currency set.
func Supported(code Code) bool {
	_, ok := symbols[code]
	return ok
}

// Symbol returns the display symbol for code, empty for unknown codes.
func Symbol(code Code) string {
	return symbols[code]
}

// Format renders amount as a symbol-prefixed string with exactly two decimal
// digits and grouped digits, e.g. ₹1,00,000.00 or $1,00,000.00.
func Format(amount float64, code Code) string {
	return symbols[code] + grouped(amount)
}

// FormatCode renders amount with the currency code instead of the symbol,
// e.g. "INR 1,00,000.00". Used where the output medium cannot carry the
// symbol glyphs.
func FormatCode(amount float64, code Code) string {
	return string(code) + " " + grouped(amount)
}

func grouped(amount float64) string {
	p := message.NewPrinter(locale)
	return p.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// GSTRates lists the preset tax percentages offered by the form layer.
var GSTRates = []float64{0, 5, 12, 18, 28}

// DefaultTerms is the boilerplate terms block for new documents.
const DefaultTerms = `1. Payment is due within 30 days of invoice date.
2. All prices are in the quoted currency.
3. This quotation is valid for the period mentioned above.
4. Taxes are applied as per applicable laws.`

// DefaultPaymentTerms is the boilerplate payment instructions block.
const DefaultPaymentTerms = `Bank Transfer / UPI / Cheque
Account details will be provided on confirmation.`
