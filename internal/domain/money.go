package domain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is a currency value in minor units (paise). Keeping amounts integral
// makes the ledger conservation invariant exact; decimals are rounded to two
// places at the parse boundary and never again.
type Amount int64

// AmountFromDecimal converts a decimal currency value (e.g. from a JSON
// payload) into minor units, rounding half away from zero to two places.
func AmountFromDecimal(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// Decimal returns the amount as a whole-unit float for JSON payloads.
func (a Amount) Decimal() float64 {
	return float64(a) / 100
}

var displayPrinter = message.NewPrinter(language.MustParse("en-IN"))

// Display renders the amount with en-IN digit grouping and at most two
// decimal places, matching how totals are shown on the donation page.
func (a Amount) Display() string {
	if a%100 == 0 {
		return displayPrinter.Sprintf("%v", int64(a/100))
	}
	return displayPrinter.Sprintf("%.2f", a.Decimal())
}
