package book

import (
	"fmt"

	"github.com/tidwall/btree"

	"github.com/saiputravu/ladderbook/internal/common"
)

// ladder is a price-sorted collection of pages for one side of a book. Asks
// are sorted ascending (best ask is lowest price); bids are sorted
// descending (best bid is highest price). Both orderings place top-of-book
// at the tree's minimum, so every sweep is a Min()/MinMut() walk regardless
// of side.
type ladder = btree.BTreeG[*ladderEntry]

type ladderEntry struct {
	price common.Decimal
	page  *page
}

func newLadder(side common.Side) *ladder {
	switch side {
	case common.Ask:
		return btree.NewBTreeG(func(a, b *ladderEntry) bool {
			return a.price.LessThan(b.price)
		})
	default:
		return btree.NewBTreeG(func(a, b *ladderEntry) bool {
			return a.price.GreaterThan(b.price)
		})
	}
}

// locator is where InsertResting and Cancel know to find a resting order
// without a linear scan of the ladder.
type locator struct {
	price common.Decimal
	side  common.Side
}

// Match is the record of one taker order being crossed against the book.
// Fills are in the exact order makers were consumed: best price first,
// earliest order first within a price.
type Match struct {
	Taker       common.OrderID
	Fills       []common.MakerFill
	TakerFilled common.Decimal
}

// Matcher implements the crossing rule for a Book. The FIFO strategy is the
// only one this system specifies, but Book never assumes which strategy is
// installed: it only calls Sweep and relies on the returned Match and
// remainder.
//
// limit is nil for a market order (sweep unconditionally until size is
// exhausted or the side empties) and non-nil for a limit order (sweep only
// while the best opposing price satisfies limit).
type Matcher interface {
	Sweep(b *Book, taker common.OrderID, side common.Side, size common.Decimal, limit *common.Decimal) (Match, common.Decimal)
}

// Book is the two-sided price ladder for one symbol. It owns no concurrency
// primitives: callers (the owning shard) serialize access.
type Book struct {
	Symbol  string
	matcher Matcher

	asks *ladder
	bids *ladder

	// index resolves a resting order id to the side and price its page
	// lives at, so Cancel never has to decide which side a crossed book
	// would put it on.
	index map[common.OrderID]locator
}

// NewBook constructs an empty book for symbol, using matcher for crossing.
func NewBook(symbol string, matcher Matcher) *Book {
	return &Book{
		Symbol:  symbol,
		matcher: matcher,
		asks:    newLadder(common.Ask),
		bids:    newLadder(common.Bid),
		index:   make(map[common.OrderID]locator),
	}
}

func (b *Book) ladder(side common.Side) *ladder {
	if side == common.Ask {
		return b.asks
	}
	return b.bids
}

// BestPrice returns the top-of-book price on side, if the side is non-empty.
func (b *Book) BestPrice(side common.Side) (common.Decimal, bool) {
	entry, ok := b.ladder(side).Min()
	if !ok {
		return common.Zero, false
	}
	return entry.price, true
}

// PageAmount returns the total unfilled resting at price on side, or zero
// if no such page exists.
func (b *Book) PageAmount(side common.Side, price common.Decimal) common.Decimal {
	entry, ok := b.ladder(side).Get(&ladderEntry{price: price})
	if !ok {
		return common.Zero
	}
	return entry.page.amount
}

// Contains reports whether id is currently resting anywhere in the book.
func (b *Book) Contains(id common.OrderID) bool {
	_, ok := b.index[id]
	return ok
}

// FrontOrder returns the oldest resting order at price on side, used by a
// Matcher to decide how much of a level it can take before moving on.
func (b *Book) FrontOrder(side common.Side, price common.Decimal) (common.Order, bool) {
	entry, ok := b.ladder(side).Get(&ladderEntry{price: price})
	if !ok {
		return common.Order{}, false
	}
	return entry.page.front()
}

// Fill consumes up to amount of liquidity from the front order at price on
// side and returns how much was actually filled (min(amount, front's
// unfilled)). If the front order is exhausted it is removed from the page
// and its index entry is dropped; if the page becomes empty it is removed
// from the ladder.
func (b *Book) Fill(side common.Side, price common.Decimal, amount common.Decimal) common.Decimal {
	entry, ok := b.ladder(side).Get(&ladderEntry{price: price})
	if !ok {
		panic(fmt.Sprintf("ladderbook: Fill against missing page %s %s", side, price.String()))
	}
	front, ok := entry.page.front()
	if !ok {
		panic(fmt.Sprintf("ladderbook: Fill against empty page %s %s", side, price.String()))
	}

	filled := amount
	if front.Unfilled.LessThan(filled) {
		filled = front.Unfilled
	}
	front.Unfilled = front.Unfilled.Sub(filled)

	if front.Unfilled.Equal(common.Zero) {
		// remove subtracts the stored unfilled, which equals filled here.
		entry.page.remove(front.ID)
		delete(b.index, front.ID)
		if entry.page.empty() {
			b.ladder(side).Delete(entry)
		}
	} else {
		entry.page.amount = entry.page.amount.Sub(filled)
		entry.page.setFront(front)
	}
	return filled
}

// InsertResting places order on side at price, creating the page if this
// is the first order at that price. Caller guarantees order.ID is not
// already resting anywhere in the book.
func (b *Book) InsertResting(side common.Side, price common.Decimal, order common.Order) {
	l := b.ladder(side)
	entry, ok := l.Get(&ladderEntry{price: price})
	if !ok {
		l.Set(&ladderEntry{price: price, page: newPage(order)})
	} else {
		entry.page.insert(order)
	}
	b.index[order.ID] = locator{price: price, side: side}
}

// Cancel removes id from wherever it rests and reports the order as it
// stood immediately before removal. It is a no-op returning false if id is
// not currently resting.
func (b *Book) Cancel(id common.OrderID) (common.Order, bool) {
	loc, ok := b.index[id]
	if !ok {
		return common.Order{}, false
	}
	l := b.ladder(loc.side)
	entry, ok := l.Get(&ladderEntry{price: loc.price})
	if !ok {
		panic(fmt.Sprintf("ladderbook: index referenced missing page for order %d", id))
	}
	order, ok := entry.page.remove(id)
	if !ok {
		panic(fmt.Sprintf("ladderbook: index referenced order %d not present in its page", id))
	}
	delete(b.index, id)
	if entry.page.empty() {
		l.Delete(entry)
	}
	return order, true
}

// PlaceLimit runs the full insert-or-match orchestration for a limit order:
// reject malformed input, sweep the opposite side while it crosses limit,
// then rest any residual at price on side.
func (b *Book) PlaceLimit(id common.OrderID, side common.Side, price common.Decimal, size common.Decimal) common.InsertLimitResult {
	if price.LessThanOrEqual(common.Zero) || size.LessThanOrEqual(common.Zero) || b.Contains(id) {
		return common.OrderDataInvalid()
	}

	_, remaining := b.matcher.Sweep(b, id, side, size, &price)
	if remaining.Equal(common.Zero) {
		return common.FullyFilled()
	}
	b.InsertResting(side, price, common.Order{ID: id, Unfilled: remaining})
	if remaining.Equal(size) {
		return common.Success(id)
	}
	return common.PartiallyFilled(id, remaining)
}

// PlaceMarket runs the market-order orchestration: reject malformed input,
// then sweep the opposite side unconditionally (no limit) until size is
// exhausted or liquidity runs out. A residual is never rested.
func (b *Book) PlaceMarket(id common.OrderID, side common.Side, size common.Decimal) common.InsertLimitResult {
	if size.LessThanOrEqual(common.Zero) || b.Contains(id) {
		return common.OrderDataInvalid()
	}

	_, remaining := b.matcher.Sweep(b, id, side, size, nil)
	if remaining.Equal(common.Zero) {
		return common.FullyFilled()
	}
	return common.PartiallyFilled(id, remaining)
}
