package loan

import (
	"fmt"
	"math/big"
	"strings"
)

// Amount is an arbitrary-precision integer amount in smallest currency
// units. Currency sums must never pass through float64 or int64; Amount
// wraps big.Int and marshals as a decimal string so large values survive
// JSON transport intact.
type Amount struct {
	big.Int
}

// NewAmount returns an Amount holding the given value.
func NewAmount(v int64) *Amount {
	a := new(Amount)
	a.SetInt64(v)
	return a
}

// ParseAmount parses a non-negative base-10 amount string.
func ParseAmount(s string) (*Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount is empty")
	}
	a := new(Amount)
	if _, ok := a.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid amount %q: not a base-10 integer", s)
	}
	if a.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q: must not be negative", s)
	}
	return a, nil
}

// MarshalJSON serializes the amount as a decimal string.
func (a *Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both a decimal string and a bare JSON number, since
// some callers serialize BigInt-like values without quotes.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return fmt.Errorf("amount is empty")
	}
	if _, ok := a.SetString(s, 10); !ok {
		return fmt.Errorf("invalid amount %q: not a base-10 integer", s)
	}
	return nil
}

// SumRepayments returns the exact total of all repayment amounts.
func SumRepayments(repayments []Repayment) *Amount {
	total := new(Amount)
	for i := range repayments {
		if repayments[i].Amount == nil {
			continue
		}
		total.Add(&total.Int, &repayments[i].Amount.Int)
	}
	return total
}
