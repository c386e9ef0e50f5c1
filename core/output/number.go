package output

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"solarwise/core/types"
)

// printer adds thousand separators; English locale keeps output stable.
var printer = message.NewPrinter(language.English)

// FormatDecimal formats d with the given number of places and thousand separators.
// Example: FormatDecimal(1234.5, 2) returns "1,234.50".
func FormatDecimal(d decimal.Decimal, places int32) string {
	fixed := d.Abs().StringFixed(places)
	intPart, frac, _ := strings.Cut(fixed, ".")

	out := printer.Sprintf("%d", decimal.RequireFromString(intPart).IntPart())
	if frac != "" {
		out += "." + frac
	}
	if d.Round(places).IsNegative() {
		out = "-" + out
	}
	return out
}

// FormatAmount renders a money amount as "LKR 1,234.50"
func FormatAmount(currency types.Currency, a types.Amount) string {
	return string(currency) + " " + FormatDecimal(a.Decimal(), 2)
}

// FormatUnits renders a consumption, keeping fractional units when present
func FormatUnits(u types.Units) string {
	places := int32(0)
	if exp := u.Decimal().Exponent(); exp < 0 && !u.Decimal().IsInteger() {
		places = -exp
	}
	return FormatDecimal(u.Decimal(), places) + " kWh"
}
