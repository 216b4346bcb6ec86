package domain

import (
	"log"
	"os"
	"sync"
)

var storageLogger = log.New(os.Stdout, "[orderbook-storage] ", log.LstdFlags)

// OrderBookStorage holds one LiveOrderBook per subscribed pair for a single
// connection. The whole table is dropped on reconnect: a fresh snapshot
// request reseeds every book.
type OrderBookStorage struct {
	mu    sync.Mutex
	depth int
	books map[string]*LiveOrderBook
}

func NewOrderBookStorage(depth int) *OrderBookStorage {
	return &OrderBookStorage{
		depth: depth,
		books: make(map[string]*LiveOrderBook),
	}
}

func (o *OrderBookStorage) GetOrCreate(symbol *MarketSymbol) *LiveOrderBook {
	o.mu.Lock()
	defer o.mu.Unlock()

	if book, ok := o.books[symbol.String()]; ok {
		return book
	}

	book := NewLiveOrderBook(symbol, o.depth)
	o.books[symbol.String()] = book
	return book
}

func (o *OrderBookStorage) Get(symbol *MarketSymbol) (*LiveOrderBook, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	book, ok := o.books[symbol.String()]
	if !ok {
		return nil, ErrOrderBookNotFound
	}
	return book, nil
}

// Clear discards every book. Called when a connection is re-established so
// that stale pre-disconnect levels never leak into the new session.
func (o *OrderBookStorage) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.books) > 0 {
		storageLogger.Printf("dropping %d order book(s) for resync", len(o.books))
	}
	o.books = make(map[string]*LiveOrderBook)
}

func (o *OrderBookStorage) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.books)
}
