package common

import "github.com/nikolaydubina/fpdecimal"

// Decimal is the exact fixed-point scalar used for every price and size in
// the book. No floating-point arithmetic appears anywhere in matching.
type Decimal = fpdecimal.Decimal

// Zero is the additive identity, exported for callers that need it without
// importing fpdecimal directly.
var Zero = fpdecimal.Zero

// ParseDecimal parses a decimal string such as "512" or "512.25".
func ParseDecimal(s string) (Decimal, error) {
	return fpdecimal.FromString(s)
}
