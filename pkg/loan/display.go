package loan

import (
	"github.com/shopspring/decimal"
)

// FormatAmount converts a smallest-unit amount into a human decimal string
// for the given token decimals, e.g. 1500000 with 6 decimals -> "1.5".
//
// Display formatting only. Authoritative comparisons and sums stay on the
// integer Amount type.
func FormatAmount(a *Amount, decimals int32) string {
	if a == nil {
		return "0"
	}
	return decimal.NewFromBigInt(&a.Int, -decimals).String()
}
