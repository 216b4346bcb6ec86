package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(price, volume string) PriceLevel {
	return NewPriceLevel(decimal.RequireFromString(price), decimal.RequireFromString(volume))
}

func testSymbol(t *testing.T) *MarketSymbol {
	t.Helper()
	symbol, err := NewMarketSymbol("xmr", "btc")
	require.NoError(t, err)
	return symbol
}

func TestLiveOrderBook_DepthInvariant(t *testing.T) {
	book := NewLiveOrderBook(testSymbol(t), 5)

	var bids, asks []PriceLevel
	for i := 0; i < 8; i++ {
		bids = append(bids, NewPriceLevel(decimal.NewFromInt(int64(100-i)), decimal.NewFromInt(1)))
		asks = append(asks, NewPriceLevel(decimal.NewFromInt(int64(110+i)), decimal.NewFromInt(1)))
	}
	book.Reset(bids, asks)

	snapshot := book.TakeSnapshot()
	require.Len(t, snapshot.Asks, 5)
	require.Len(t, snapshot.Bids, 5)

	for i := 1; i < len(snapshot.Asks); i++ {
		assert.True(t, snapshot.Asks[i-1].Price.LessThan(snapshot.Asks[i].Price),
			"asks must be strictly ascending")
	}
	for i := 1; i < len(snapshot.Bids); i++ {
		assert.True(t, snapshot.Bids[i-1].Price.LessThan(snapshot.Bids[i].Price),
			"bids must be strictly ascending")
	}

	// the retained levels are the ones closest to the spread
	assert.True(t, snapshot.Asks[0].Price.Equal(decimal.NewFromInt(110)))
	assert.True(t, snapshot.Bids[len(snapshot.Bids)-1].Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, snapshot.Bids[0].Price.Equal(decimal.NewFromInt(96)))
}

func TestLiveOrderBook_ChangeSuppression(t *testing.T) {
	book := NewLiveOrderBook(testSymbol(t), 5)
	book.Reset([]PriceLevel{level("100", "1")}, []PriceLevel{level("101", "2")})

	first := book.TakeSnapshotIfChanged()
	require.NotNil(t, first)

	second := book.TakeSnapshotIfChanged()
	assert.Nil(t, second, "no mutation between calls must suppress the view")

	book.ApplyUpdate(NewOrderBookUpdate([]PriceLevel{level("99", "3")}, nil))
	third := book.TakeSnapshotIfChanged()
	require.NotNil(t, third)
	assert.Len(t, third.Bids, 2)
}

func TestLiveOrderBook_SnapshotThenDelta(t *testing.T) {
	book := NewLiveOrderBook(testSymbol(t), 5)
	book.Reset([]PriceLevel{level("100", "1"), level("101", "2")}, nil)

	book.ApplyUpdate(NewOrderBookUpdate([]PriceLevel{level("99", "3")}, nil))

	snapshot := book.TakeSnapshot()
	require.Len(t, snapshot.Bids, 3)
	assert.True(t, snapshot.Bids[0].Price.Equal(decimal.NewFromInt(99)))
	assert.True(t, snapshot.Bids[2].Price.Equal(decimal.NewFromInt(101)))
}

func TestLiveOrderBook_ZeroVolumeRemoves(t *testing.T) {
	book := NewLiveOrderBook(testSymbol(t), 5)
	book.Reset([]PriceLevel{level("100", "1"), level("99", "2")}, nil)

	book.ApplyUpdate(NewOrderBookUpdate([]PriceLevel{level("100", "0")}, nil))
	snapshot := book.TakeSnapshot()
	require.Len(t, snapshot.Bids, 1)
	assert.True(t, snapshot.Bids[0].Price.Equal(decimal.NewFromInt(99)))

	// removing an absent level is a no-op
	book.ApplyUpdate(NewOrderBookUpdate([]PriceLevel{level("100", "0")}, nil))
	snapshot = book.TakeSnapshot()
	assert.Len(t, snapshot.Bids, 1)
}

func TestLiveOrderBook_ZeroVolumeOnResetNeverInserts(t *testing.T) {
	book := NewLiveOrderBook(testSymbol(t), 5)
	book.Reset([]PriceLevel{level("100", "0")}, []PriceLevel{level("101", "0")})

	snapshot := book.TakeSnapshot()
	assert.Empty(t, snapshot.Bids)
	assert.Empty(t, snapshot.Asks)
}

func TestLiveOrderBook_ExistingLevelIsNotOverwritten(t *testing.T) {
	book := NewLiveOrderBook(testSymbol(t), 5)
	book.Reset([]PriceLevel{level("100", "1")}, nil)

	// a later delta for the same price does not rewrite the resting volume
	book.ApplyUpdate(NewOrderBookUpdate([]PriceLevel{level("100", "7")}, nil))
	snapshot := book.TakeSnapshot()
	require.Len(t, snapshot.Bids, 1)
	assert.True(t, snapshot.Bids[0].Volume.Equal(decimal.NewFromInt(1)))

	// a snapshot arriving after a delta keeps the delta's level too
	book.ApplyUpdate(NewOrderBookUpdate([]PriceLevel{level("99", "4")}, nil))
	book.Reset([]PriceLevel{level("99", "9")}, nil)
	snapshot = book.TakeSnapshot()
	require.Len(t, snapshot.Bids, 2)
	assert.True(t, snapshot.Bids[0].Volume.Equal(decimal.NewFromInt(4)))
}

func TestLiveOrderBook_DeepChangeBeyondDepthIsSuppressed(t *testing.T) {
	book := NewLiveOrderBook(testSymbol(t), 2)
	book.Reset(
		[]PriceLevel{level("100", "1"), level("99", "1"), level("98", "1")},
		[]PriceLevel{level("101", "1"), level("102", "1"), level("103", "1")},
	)
	require.NotNil(t, book.TakeSnapshotIfChanged())

	// mutating a level outside the emitted depth leaves the view unchanged
	book.ApplyUpdate(NewOrderBookUpdate([]PriceLevel{level("97", "5")}, []PriceLevel{level("104", "5")}))
	assert.Nil(t, book.TakeSnapshotIfChanged())
}

func TestOrderBookSnapshot_AvgPrice(t *testing.T) {
	book := NewLiveOrderBook(testSymbol(t), 5)

	empty := book.TakeSnapshot()
	assert.Nil(t, empty.AvgPrice())

	book.Reset([]PriceLevel{level("100", "1")}, []PriceLevel{level("104", "1")})
	avg := book.TakeSnapshot().AvgPrice()
	require.NotNil(t, avg)
	assert.True(t, avg.Equal(decimal.NewFromInt(102)))
}

func TestOrderBookStorage(t *testing.T) {
	storage := NewOrderBookStorage(5)
	symbol := testSymbol(t)

	_, err := storage.Get(symbol)
	assert.ErrorIs(t, err, ErrOrderBookNotFound)

	book := storage.GetOrCreate(symbol)
	require.NotNil(t, book)
	assert.Same(t, book, storage.GetOrCreate(symbol))
	assert.Equal(t, 1, storage.Count())

	book.Reset([]PriceLevel{level("100", "1")}, nil)

	storage.Clear()
	assert.Equal(t, 0, storage.Count())

	// a recreated book starts empty until the next snapshot arrives
	fresh := storage.GetOrCreate(symbol)
	bids, asks := fresh.Len()
	assert.Zero(t, bids)
	assert.Zero(t, asks)
}
