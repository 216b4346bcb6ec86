package domain

import (
	"sort"
	"sync"
)

// SubscriptionSet records which pairs are wanted on which channels. The
// connection supervisor replays it verbatim after every reconnect, and the
// message handler consults it to decide what to forward. Registration happens
// on the caller's goroutine while lookups run on the connection's, so every
// access goes through the mutex.
type SubscriptionSet struct {
	mu       sync.Mutex
	channels map[Channel]map[string]*MarketSymbol
}

func NewSubscriptionSet() *SubscriptionSet {
	return &SubscriptionSet{
		channels: make(map[Channel]map[string]*MarketSymbol),
	}
}

// Register is idempotent: subscribing the same (channel, pair) twice is a
// no-op.
func (s *SubscriptionSet) Register(channel Channel, symbol *MarketSymbol) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs, ok := s.channels[channel]
	if !ok {
		pairs = make(map[string]*MarketSymbol)
		s.channels[channel] = pairs
	}
	pairs[symbol.String()] = symbol
}

func (s *SubscriptionSet) Has(channel Channel, symbol *MarketSymbol) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs, ok := s.channels[channel]
	if !ok {
		return false
	}
	_, ok = pairs[symbol.String()]
	return ok
}

// PairsFor returns the pairs registered on one channel, ordered by symbol so
// that subscription requests are issued in a stable sequence.
func (s *SubscriptionSet) PairsFor(channel Channel) []*MarketSymbol {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedSymbols(s.channels[channel])
}

// AllPairs returns the deduplicated union across every channel. One upstream
// delta subscription per pair is enough even when several channels want it.
func (s *SubscriptionSet) AllPairs() []*MarketSymbol {
	s.mu.Lock()
	defer s.mu.Unlock()

	union := make(map[string]*MarketSymbol)
	for _, pairs := range s.channels {
		for key, symbol := range pairs {
			union[key] = symbol
		}
	}
	return sortedSymbols(union)
}

func sortedSymbols(pairs map[string]*MarketSymbol) []*MarketSymbol {
	symbols := make([]*MarketSymbol, 0, len(pairs))
	for _, symbol := range pairs {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].String() < symbols[j].String()
	})
	return symbols
}
