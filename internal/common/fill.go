package common

import "fmt"

// MakerFill records one maker's contribution to a taker's match, in the
// exact order it was consumed (best price first, FIFO within a level).
type MakerFill struct {
	Maker  OrderID
	Filled Decimal
}

func (f MakerFill) String() string {
	return fmt.Sprintf("MakerFill{maker: %d, filled: %s}", f.Maker, f.Filled.String())
}
