// Package engine owns the dispatcher: the symbol-to-book map, the
// process-wide order id counter, and the id-to-symbol index used to route
// cancels. Each symbol's book runs on its own goroutine, supervised by a
// tomb, and is reached only through its mailbox channel.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/ladderbook/internal/book"
	"github.com/saiputravu/ladderbook/internal/common"
)

// ErrUnknownSymbol is returned when a request names a symbol the engine
// was not configured with.
var ErrUnknownSymbol = errors.New("engine: unknown symbol")

const defaultMailboxDepth = 256

// command is one piece of work queued to a shard's mailbox. It runs on the
// shard's own goroutine and reports its result back over reply.
type command interface {
	execute(b *book.Book)
}

type placeLimitCmd struct {
	id    common.OrderID
	side  common.Side
	price common.Decimal
	size  common.Decimal
	reply chan common.InsertLimitResult
}

func (c placeLimitCmd) execute(b *book.Book) {
	c.reply <- b.PlaceLimit(c.id, c.side, c.price, c.size)
}

type placeMarketCmd struct {
	id    common.OrderID
	side  common.Side
	size  common.Decimal
	reply chan common.InsertLimitResult
}

func (c placeMarketCmd) execute(b *book.Book) {
	c.reply <- b.PlaceMarket(c.id, c.side, c.size)
}

type cancelCmd struct {
	id    common.OrderID
	reply chan common.CancelLimitResult
}

func (c cancelCmd) execute(b *book.Book) {
	if _, ok := b.Cancel(c.id); !ok {
		c.reply <- common.CancelResultNotFound()
		return
	}
	c.reply <- common.CancelResultSuccess()
}

// Snapshot is a point-in-time observational read of a book, used by tests
// and telemetry. It never mutates the book.
type Snapshot struct {
	BestAsk    common.Decimal
	HasAsk     bool
	BestBid    common.Decimal
	HasBid     bool
	PageAmount common.Decimal
}

type snapshotCmd struct {
	side     common.Side
	price    common.Decimal
	withPage bool
	reply    chan Snapshot
}

func (c snapshotCmd) execute(b *book.Book) {
	var s Snapshot
	s.BestAsk, s.HasAsk = b.BestPrice(common.Ask)
	s.BestBid, s.HasBid = b.BestPrice(common.Bid)
	if c.withPage {
		s.PageAmount = b.PageAmount(c.side, c.price)
	}
	c.reply <- s
}

type containsCmd struct {
	id    common.OrderID
	reply chan bool
}

func (c containsCmd) execute(b *book.Book) {
	c.reply <- b.Contains(c.id)
}

// shard is one symbol's owning execution context: a book reachable only
// through mailbox, dequeued one command at a time by runShard.
type shard struct {
	symbol  string
	book    *book.Book
	mailbox chan command
}

// Engine is the dispatcher. It owns no price-ladder logic itself; every
// mutation is delegated to the owning shard via its mailbox.
type Engine struct {
	shards map[string]*shard

	nextID atomic.Uint64

	indexMu sync.Mutex
	index   map[common.OrderID]string

	tomb *tomb.Tomb
}

// New constructs an engine with one shard per symbol, matched with
// matcher. Symbols are case-sensitive as given; callers normalise case at
// the transport boundary.
func New(symbols []string, matcher book.Matcher, mailboxDepth int) *Engine {
	if mailboxDepth <= 0 {
		mailboxDepth = defaultMailboxDepth
	}
	e := &Engine{
		shards: make(map[string]*shard, len(symbols)),
		index:  make(map[common.OrderID]string),
	}
	e.nextID.Store(1)
	for _, symbol := range symbols {
		e.shards[symbol] = &shard{
			symbol:  symbol,
			book:    book.NewBook(symbol, matcher),
			mailbox: make(chan command, mailboxDepth),
		}
	}
	return e
}

// Run starts one supervised goroutine per shard and blocks until ctx is
// cancelled or a shard goroutine fails. It is safe to call once.
func (e *Engine) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)
	e.tomb = t

	for _, s := range e.shards {
		s := s
		t.Go(func() error {
			return e.runShard(t, s)
		})
	}

	log.Info().Int("symbols", len(e.shards)).Msg("engine running")
	<-t.Dying()
	return t.Err()
}

func (e *Engine) runShard(t *tomb.Tomb, s *shard) error {
	log.Info().Str("symbol", s.symbol).Msg("shard starting")
	for {
		select {
		case <-t.Dying():
			return nil
		case cmd := <-s.mailbox:
			cmd.execute(s.book)
		}
	}
}

func (e *Engine) assignID() common.OrderID {
	return common.OrderID(e.nextID.Add(1) - 1)
}

func (e *Engine) recordSymbol(id common.OrderID, symbol string) {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	e.index[id] = symbol
}

func (e *Engine) symbolFor(id common.OrderID) (string, bool) {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	symbol, ok := e.index[id]
	return symbol, ok
}

func (e *Engine) forgetSymbol(id common.OrderID) {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	delete(e.index, id)
}

// PlaceLimit assigns an order id and routes a place-limit request to the
// owning shard for symbol. The id is assigned only after shape validation
// passes, so malformed requests never burn an id.
func (e *Engine) PlaceLimit(ctx context.Context, symbol string, side common.Side, price, size common.Decimal) (common.InsertLimitResult, error) {
	if price.LessThanOrEqual(common.Zero) || size.LessThanOrEqual(common.Zero) {
		return common.OrderDataInvalid(), nil
	}
	s, ok := e.shards[symbol]
	if !ok {
		return common.InsertLimitResult{}, ErrUnknownSymbol
	}

	id := e.assignID()
	e.recordSymbol(id, symbol)

	reply := make(chan common.InsertLimitResult, 1)
	cmd := placeLimitCmd{id: id, side: side, price: price, size: size, reply: reply}
	if err := e.send(ctx, s, cmd); err != nil {
		return common.InsertLimitResult{}, err
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return common.InsertLimitResult{}, ctx.Err()
	}
}

// PlaceMarket assigns an order id and routes a place-market request to the
// owning shard for symbol.
func (e *Engine) PlaceMarket(ctx context.Context, symbol string, side common.Side, size common.Decimal) (common.InsertLimitResult, error) {
	if size.LessThanOrEqual(common.Zero) {
		return common.OrderDataInvalid(), nil
	}
	s, ok := e.shards[symbol]
	if !ok {
		return common.InsertLimitResult{}, ErrUnknownSymbol
	}

	id := e.assignID()
	e.recordSymbol(id, symbol)

	reply := make(chan common.InsertLimitResult, 1)
	cmd := placeMarketCmd{id: id, side: side, size: size, reply: reply}
	if err := e.send(ctx, s, cmd); err != nil {
		return common.InsertLimitResult{}, err
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return common.InsertLimitResult{}, ctx.Err()
	}
}

// CancelLimit routes a cancel request to the shard that owns id, resolved
// via the dispatcher's own id-to-symbol index rather than any book state.
// An id the engine never assigned resolves to OrderIdNotFound without
// touching any shard.
func (e *Engine) CancelLimit(ctx context.Context, id common.OrderID) (common.CancelLimitResult, error) {
	symbol, ok := e.symbolFor(id)
	if !ok {
		return common.CancelResultNotFound(), nil
	}
	s := e.shards[symbol]

	reply := make(chan common.CancelLimitResult, 1)
	if err := e.send(ctx, s, cancelCmd{id: id, reply: reply}); err != nil {
		return common.CancelLimitResult{}, err
	}
	select {
	case res := <-reply:
		if res.Status == common.CancelSuccess {
			e.forgetSymbol(id)
		}
		return res, nil
	case <-ctx.Done():
		return common.CancelLimitResult{}, ctx.Err()
	}
}

// BestAsk and BestBid are observational reads used by tests and telemetry.
func (e *Engine) BestAsk(ctx context.Context, symbol string) (common.Decimal, bool, error) {
	snap, err := e.snapshot(ctx, symbol, false, 0, common.Zero)
	if err != nil {
		return common.Zero, false, err
	}
	return snap.BestAsk, snap.HasAsk, nil
}

func (e *Engine) BestBid(ctx context.Context, symbol string) (common.Decimal, bool, error) {
	snap, err := e.snapshot(ctx, symbol, false, 0, common.Zero)
	if err != nil {
		return common.Zero, false, err
	}
	return snap.BestBid, snap.HasBid, nil
}

// PageAmount returns the total unfilled resting at price on side for
// symbol.
func (e *Engine) PageAmount(ctx context.Context, symbol string, side common.Side, price common.Decimal) (common.Decimal, error) {
	snap, err := e.snapshot(ctx, symbol, true, side, price)
	if err != nil {
		return common.Zero, err
	}
	return snap.PageAmount, nil
}

func (e *Engine) snapshot(ctx context.Context, symbol string, withPage bool, side common.Side, price common.Decimal) (Snapshot, error) {
	s, ok := e.shards[symbol]
	if !ok {
		return Snapshot{}, ErrUnknownSymbol
	}
	reply := make(chan Snapshot, 1)
	cmd := snapshotCmd{side: side, price: price, withPage: withPage, reply: reply}
	if err := e.send(ctx, s, cmd); err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Contains reports whether id is currently resting in whichever symbol's
// book it belongs to.
func (e *Engine) Contains(ctx context.Context, id common.OrderID) (bool, error) {
	symbol, ok := e.symbolFor(id)
	if !ok {
		return false, nil
	}
	s := e.shards[symbol]
	reply := make(chan bool, 1)
	if err := e.send(ctx, s, containsCmd{id: id, reply: reply}); err != nil {
		return false, err
	}
	select {
	case found := <-reply:
		return found, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (e *Engine) send(ctx context.Context, s *shard, cmd command) error {
	select {
	case s.mailbox <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
