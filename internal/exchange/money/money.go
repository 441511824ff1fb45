// Package money defines the numeric policy for user-entered amounts and the
// locale-aware display formatting for supported currencies.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ErrInvalidAmount = errors.New("please enter a valid positive amount")

// Balances are displayed the way the backend's home market expects them:
// Turkish grouping/decimal separators, at least two and at most four
// fraction digits.
const (
	MinFractionDigits = 2
	MaxFractionDigits = 4
)

var printer = message.NewPrinter(language.MustParse("tr-TR"))

// ParseAmount parses a user-entered amount. Anything that is not a finite,
// strictly positive number is rejected before it can reach the network.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// CurrencyCode maps the service's currency types onto ISO 4217 codes.
// "GOLD" is not an ISO code; the bullion code XAU stands in for it, and the
// legacy "TL" label maps to TRY. Unknown types fall back to TRY, matching the
// service's home currency.
func CurrencyCode(currencyType string) string {
	switch strings.ToUpper(currencyType) {
	case "TL", "TRY":
		return "TRY"
	case "USD":
		return "USD"
	case "EUR":
		return "EUR"
	case "GOLD":
		return "XAU"
	default:
		return "TRY"
	}
}

// Format renders an amount for display, e.g. Format(1234.5, "USD") in tr-TR
// yields "1.234,50 $".
func Format(amount float64, currencyType string) string {
	num := printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(MinFractionDigits),
		number.MaxFractionDigits(MaxFractionDigits),
	))

	code := CurrencyCode(currencyType)
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %s", num, code)
	}
	return fmt.Sprintf("%s %s", num, printer.Sprint(currency.Symbol(unit)))
}
