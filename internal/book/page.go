package book

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/saiputravu/ladderbook/internal/common"
)

// page is one price level: an insertion-ordered mapping from order id to
// order record, plus a cached sum of unfilled across its orders. Iteration
// order equals insertion order, which is the time priority of the venue.
type page struct {
	orders *linkedhashmap.Map // common.OrderID -> common.Order
	amount common.Decimal
}

func newPage(order common.Order) *page {
	p := &page{orders: linkedhashmap.New(), amount: order.Unfilled}
	p.orders.Put(order.ID, order)
	return p
}

// insert appends order to the end of the page. Caller guarantees the id is
// not already present anywhere in the book.
func (p *page) insert(order common.Order) {
	p.orders.Put(order.ID, order)
	p.amount = p.amount.Add(order.Unfilled)
}

// remove deletes the order with the given id, if present, decrementing
// amount by its unfilled quantity. It does not delete the page itself.
func (p *page) remove(id common.OrderID) (common.Order, bool) {
	v, found := p.orders.Get(id)
	if !found {
		return common.Order{}, false
	}
	order := v.(common.Order)
	p.orders.Remove(id)
	p.amount = p.amount.Sub(order.Unfilled)
	return order, true
}

// front returns the oldest resting order in the page (lowest insertion
// key), without removing it.
func (p *page) front() (common.Order, bool) {
	it := p.orders.Iterator()
	if !it.First() {
		return common.Order{}, false
	}
	return it.Value().(common.Order), true
}

// setFront replaces the front order's record after the matcher has
// decremented its unfilled quantity in place.
func (p *page) setFront(order common.Order) {
	p.orders.Put(order.ID, order)
}

func (p *page) empty() bool {
	return p.orders.Empty()
}

func (p *page) size() int {
	return p.orders.Size()
}
