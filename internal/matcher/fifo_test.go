package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiputravu/ladderbook/internal/book"
	"github.com/saiputravu/ladderbook/internal/common"
	"github.com/saiputravu/ladderbook/internal/matcher"
)

func newTestBook() *book.Book {
	return book.NewBook("TEST", matcher.FIFO{})
}

func dec(t *testing.T, s string) common.Decimal {
	t.Helper()
	d, err := common.ParseDecimal(s)
	require.NoError(t, err)
	return d
}

var nextID = common.OrderID(0)

func testID() common.OrderID {
	nextID++
	return nextID
}

func TestSweep_SinglePriceLevelPartialFill(t *testing.T) {
	b := newTestBook()
	maker := testID()
	b.InsertResting(common.Ask, dec(t, "100.00"), common.Order{ID: maker, Unfilled: dec(t, "10")})

	taker := testID()
	limit := dec(t, "100.00")
	m, remaining := matcher.FIFO{}.Sweep(b, taker, common.Bid, dec(t, "4"), &limit)

	assert.True(t, remaining.Equal(common.Zero))
	require.Len(t, m.Fills, 1)
	assert.Equal(t, maker, m.Fills[0].Maker)
	assert.True(t, m.Fills[0].Filled.Equal(dec(t, "4")))
	assert.True(t, b.PageAmount(common.Ask, dec(t, "100.00")).Equal(dec(t, "6")))
}

func TestSweep_MultipleMakersFilledInArrivalOrder(t *testing.T) {
	b := newTestBook()
	first := testID()
	second := testID()
	b.InsertResting(common.Ask, dec(t, "100.00"), common.Order{ID: first, Unfilled: dec(t, "5")})
	b.InsertResting(common.Ask, dec(t, "100.00"), common.Order{ID: second, Unfilled: dec(t, "5")})

	taker := testID()
	limit := dec(t, "100.00")
	m, remaining := matcher.FIFO{}.Sweep(b, taker, common.Bid, dec(t, "7"), &limit)

	assert.True(t, remaining.Equal(common.Zero))
	require.Len(t, m.Fills, 2)
	assert.Equal(t, first, m.Fills[0].Maker)
	assert.True(t, m.Fills[0].Filled.Equal(dec(t, "5")))
	assert.Equal(t, second, m.Fills[1].Maker)
	assert.True(t, m.Fills[1].Filled.Equal(dec(t, "2")))
	assert.False(t, b.Contains(first))
	assert.True(t, b.Contains(second))
}

func TestSweep_InsufficientLiquidityLeavesRemainder(t *testing.T) {
	b := newTestBook()
	maker := testID()
	b.InsertResting(common.Ask, dec(t, "100.00"), common.Order{ID: maker, Unfilled: dec(t, "5")})

	taker := testID()
	limit := dec(t, "100.00")
	m, remaining := matcher.FIFO{}.Sweep(b, taker, common.Bid, dec(t, "20"), &limit)

	assert.True(t, remaining.Equal(dec(t, "15")))
	assert.True(t, m.TakerFilled.Equal(dec(t, "5")))
	_, ok := b.BestPrice(common.Ask)
	assert.False(t, ok)
}

func TestSweep_CrossesMultiplePricesBestFirst(t *testing.T) {
	b := newTestBook()
	cheap := testID()
	dear := testID()
	b.InsertResting(common.Ask, dec(t, "100.00"), common.Order{ID: cheap, Unfilled: dec(t, "5")})
	b.InsertResting(common.Ask, dec(t, "101.00"), common.Order{ID: dear, Unfilled: dec(t, "5")})

	taker := testID()
	limit := dec(t, "101.00")
	m, remaining := matcher.FIFO{}.Sweep(b, taker, common.Bid, dec(t, "8"), &limit)

	assert.True(t, remaining.Equal(common.Zero))
	require.Len(t, m.Fills, 2)
	assert.Equal(t, cheap, m.Fills[0].Maker)
	assert.True(t, m.Fills[0].Filled.Equal(dec(t, "5")))
	assert.Equal(t, dear, m.Fills[1].Maker)
	assert.True(t, m.Fills[1].Filled.Equal(dec(t, "3")))
}

func TestSweep_StopsAtLimitWithoutCrossingFurther(t *testing.T) {
	b := newTestBook()
	near := testID()
	far := testID()
	b.InsertResting(common.Ask, dec(t, "100.00"), common.Order{ID: near, Unfilled: dec(t, "5")})
	b.InsertResting(common.Ask, dec(t, "101.00"), common.Order{ID: far, Unfilled: dec(t, "5")})

	taker := testID()
	limit := dec(t, "100.00")
	m, remaining := matcher.FIFO{}.Sweep(b, taker, common.Bid, dec(t, "8"), &limit)

	assert.True(t, remaining.Equal(dec(t, "3")))
	require.Len(t, m.Fills, 1)
	assert.Equal(t, near, m.Fills[0].Maker)
	assert.True(t, b.Contains(far))
}

func TestSweep_MarketOrderIgnoresLimitEntirely(t *testing.T) {
	b := newTestBook()
	maker := testID()
	b.InsertResting(common.Ask, dec(t, "500.00"), common.Order{ID: maker, Unfilled: dec(t, "5")})

	taker := testID()
	m, remaining := matcher.FIFO{}.Sweep(b, taker, common.Bid, dec(t, "5"), nil)

	assert.True(t, remaining.Equal(common.Zero))
	require.Len(t, m.Fills, 1)
	assert.True(t, m.Fills[0].Filled.Equal(dec(t, "5")))
}

func TestSweep_EmptyBookReturnsFullRemainder(t *testing.T) {
	b := newTestBook()

	taker := testID()
	limit := dec(t, "100.00")
	m, remaining := matcher.FIFO{}.Sweep(b, taker, common.Bid, dec(t, "10"), &limit)

	assert.True(t, remaining.Equal(dec(t, "10")))
	assert.Empty(t, m.Fills)
}
