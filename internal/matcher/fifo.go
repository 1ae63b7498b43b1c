// Package matcher implements crossing strategies for a book.Book. FIFO is
// the only strategy this exchange runs: price-time priority, oldest order
// at a price level filled first.
package matcher

import (
	"github.com/saiputravu/ladderbook/internal/book"
	"github.com/saiputravu/ladderbook/internal/common"
)

// FIFO matches strictly in price-time priority: at the best opposing
// price, the oldest resting order is filled first, and a level is not
// touched until the one ahead of it in price is fully drained.
type FIFO struct{}

// Sweep walks the opposite side's ladder from best price outward, filling
// taker volume against the front of each page until size is exhausted,
// the side empties, or (for a limit order) the best remaining price no
// longer crosses limit.
//
// limit == nil means a market order: the crossing check is skipped
// entirely and the sweep runs until size is exhausted or liquidity runs
// out. Book.PlaceMarket relies on this to never rest a residual.
func (FIFO) Sweep(b *book.Book, taker common.OrderID, side common.Side, size common.Decimal, limit *common.Decimal) (book.Match, common.Decimal) {
	opposite := side.Opposite()
	remaining := size
	match := book.Match{Taker: taker}

	for remaining.GreaterThan(common.Zero) {
		bestPrice, ok := b.BestPrice(opposite)
		if !ok {
			break
		}
		if limit != nil && !crosses(side, *limit, bestPrice) {
			break
		}

		front, ok := b.FrontOrder(opposite, bestPrice)
		if !ok {
			// The ladder reported a best price with no front order, which
			// means a page was left empty instead of being deleted.
			panic("matcher: best price resolved to an empty page")
		}

		filled := b.Fill(opposite, bestPrice, remaining)
		remaining = remaining.Sub(filled)
		match.Fills = append(match.Fills, common.MakerFill{Maker: front.ID, Filled: filled})
	}

	match.TakerFilled = size.Sub(remaining)
	return match, remaining
}

// crosses reports whether a taker on side with the given limit price may
// take liquidity resting at best on the opposite side. A bid crosses an
// ask at or below its limit; an ask crosses a bid at or above its limit.
func crosses(side common.Side, limit, best common.Decimal) bool {
	if side == common.Bid {
		return limit.GreaterThanOrEqual(best)
	}
	return limit.LessThanOrEqual(best)
}
