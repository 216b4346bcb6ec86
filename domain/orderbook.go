package domain

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBookDepth = 5

// PriceLevel is resting liquidity at one price. A volume of zero means
// "remove this level", never "a level of size zero".
type PriceLevel struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
}

func NewPriceLevel(price, volume decimal.Decimal) PriceLevel {
	return PriceLevel{Price: price, Volume: volume}
}

func (pl PriceLevel) Equal(other PriceLevel) bool {
	return pl.Price.Equal(other.Price) && pl.Volume.Equal(other.Volume)
}

// OrderBookUpdate is one incremental delta: levels to add and zero-volume
// levels to remove, per side.
type OrderBookUpdate struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

func NewOrderBookUpdate(bids, asks []PriceLevel) *OrderBookUpdate {
	return &OrderBookUpdate{Bids: bids, Asks: asks}
}

// OrderBookSnapshot is an immutable depth-limited view. Both sides are
// returned ascending by price; bids hold the top levels closest to the
// spread, asks the bottom ones.
type OrderBookSnapshot struct {
	// UNIX timestamp in ms (when the view was built)
	Timestamp int64
	Symbol    *MarketSymbol
	Asks      []PriceLevel
	Bids      []PriceLevel
}

// AvgPrice returns (lowest ask + highest bid) / 2, or nil when either side
// is empty.
func (s *OrderBookSnapshot) AvgPrice() *decimal.Decimal {
	if len(s.Asks) == 0 || len(s.Bids) == 0 {
		return nil
	}
	lowestAsk := s.Asks[0].Price
	highestBid := s.Bids[len(s.Bids)-1].Price
	avg := lowestAsk.Add(highestBid).Div(decimal.NewFromInt(2))
	return &avg
}

// LiveOrderBook aggregates snapshot and delta messages for one pair into a
// depth-limited, change-detected view. All mutation happens on the
// connection's single message-handling goroutine; the mutex only guards
// concurrent snapshot reads.
type LiveOrderBook struct {
	symbol *MarketSymbol
	depth  int

	mu   sync.Mutex
	bids map[string]PriceLevel
	asks map[string]PriceLevel

	// last depth-limited view handed out, used to suppress no-op emissions
	lastBids []PriceLevel
	lastAsks []PriceLevel
}

func NewLiveOrderBook(symbol *MarketSymbol, depth int) *LiveOrderBook {
	if depth <= 0 {
		depth = DefaultBookDepth
	}
	return &LiveOrderBook{
		symbol: symbol,
		depth:  depth,
		bids:   make(map[string]PriceLevel),
		asks:   make(map[string]PriceLevel),
	}
}

// Reset seeds the book from a full exchange snapshot. A level already present
// keeps its volume: a delta that raced ahead of the snapshot response must not
// be clobbered by the older baseline. Zero-volume levels are never inserted.
func (b *LiveOrderBook) Reset(bids, asks []PriceLevel) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetSide(b.bids, bids)
	b.resetSide(b.asks, asks)
}

func (b *LiveOrderBook) resetSide(side map[string]PriceLevel, levels []PriceLevel) {
	for _, level := range levels {
		if level.Volume.IsZero() {
			continue
		}
		key := level.Price.String()
		if _, ok := side[key]; !ok {
			side[key] = level
		}
	}
}

// ApplyUpdate applies one delta. Zero volume removes the level (no-op when
// absent). A non-zero level is inserted only when its price is new; an
// existing level's volume stays untouched until removed.
func (b *LiveOrderBook) ApplyUpdate(update *OrderBookUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.updateSide(b.bids, update.Bids)
	b.updateSide(b.asks, update.Asks)
}

func (b *LiveOrderBook) updateSide(side map[string]PriceLevel, levels []PriceLevel) {
	for _, level := range levels {
		key := level.Price.String()
		if level.Volume.IsZero() {
			delete(side, key)
			continue
		}
		if _, ok := side[key]; !ok {
			side[key] = level
		}
	}
}

// TakeSnapshot builds the current depth-limited view.
func (b *LiveOrderBook) TakeSnapshot() *OrderBookSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *LiveOrderBook) snapshotLocked() *OrderBookSnapshot {
	asks := sortedLevels(b.asks)
	if len(asks) > b.depth {
		asks = asks[:b.depth]
	}

	bids := sortedLevels(b.bids)
	if len(bids) > b.depth {
		bids = bids[len(bids)-b.depth:]
	}

	return &OrderBookSnapshot{
		Timestamp: time.Now().UnixMilli(),
		Symbol:    b.symbol,
		Asks:      asks,
		Bids:      bids,
	}
}

// TakeSnapshotIfChanged returns the current view, or nil when the
// depth-limited levels are value-identical to the last view it returned.
func (b *LiveOrderBook) TakeSnapshotIfChanged() *OrderBookSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := b.snapshotLocked()
	if levelsEqual(snapshot.Asks, b.lastAsks) && levelsEqual(snapshot.Bids, b.lastBids) {
		return nil
	}

	b.lastAsks = snapshot.Asks
	b.lastBids = snapshot.Bids
	return snapshot
}

// Depth returns the configured number of levels retained per side.
func (b *LiveOrderBook) Depth() int {
	return b.depth
}

// Len reports the number of resting levels per side (bids, asks).
func (b *LiveOrderBook) Len() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bids), len(b.asks)
}

func sortedLevels(side map[string]PriceLevel) []PriceLevel {
	levels := make([]PriceLevel, 0, len(side))
	for _, level := range side {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Price.LessThan(levels[j].Price)
	})
	return levels
}

func levelsEqual(a, b []PriceLevel) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
