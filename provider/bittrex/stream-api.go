package bittrex

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/spooky-finn/go-live-markets/config"
	"github.com/spooky-finn/go-live-markets/domain"
)

// BittrexStreamAPI turns the raw hub traffic into normalized live events:
// it owns the per-pair order books, consults the subscription registry to
// decide what to forward, and publishes everything through the dispatcher
// tagged with the exchange. All frame handling runs on the stream client's
// reader goroutine, so book state needs no external locking.
type BittrexStreamAPI struct {
	// credentials are kept for parity with the authenticated REST clients;
	// the push feed itself is public.
	creds domain.Credentials

	subs       *domain.SubscriptionSet
	books      *domain.OrderBookStorage
	dispatcher *domain.EventDispatcher
	client     *StreamClient

	querySeq int64
}

func NewBittrexStreamAPI(
	creds domain.Credentials,
	subs *domain.SubscriptionSet,
	dispatcher *domain.EventDispatcher,
	opts *StreamClientOptions,
) *BittrexStreamAPI {
	api := &BittrexStreamAPI{
		creds:      creds,
		subs:       subs,
		books:      domain.NewOrderBookStorage(config.BookDepth),
		dispatcher: dispatcher,
	}
	api.client = NewStreamClient(opts, api)
	return api
}

func (api *BittrexStreamAPI) Connect() error {
	return api.client.Connect()
}

func (api *BittrexStreamAPI) IsConnected() bool {
	return api.client.IsConnected()
}

func (api *BittrexStreamAPI) Close() error {
	return api.client.Close()
}

// Subscribe registers the interest and, on a live connection, issues the
// incremental hub queries right away. Either way the registry replays the
// full set on the next reconnect.
func (api *BittrexStreamAPI) Subscribe(channel domain.Channel, symbol *domain.MarketSymbol) error {
	marketName, err := toMarketName(symbol)
	if err != nil {
		return err
	}

	if api.subs.Has(channel, symbol) {
		return nil
	}
	alreadyStreamed := api.subs.Has(domain.ChannelLiveTrades, symbol) ||
		api.subs.Has(domain.ChannelLiveFullOrderBook, symbol)
	api.subs.Register(channel, symbol)

	if !api.client.IsConnected() {
		return nil
	}

	var queries []HubQuery
	if !alreadyStreamed {
		queries = append(queries, NewHubQuery("SubscribeToExchangeDeltas", []interface{}{marketName}, "1"))
	}
	if channel == domain.ChannelLiveFullOrderBook {
		queries = append(queries, NewHubQuery("QueryExchangeState", []interface{}{marketName}, api.nextQueryID()))
	}
	for _, query := range queries {
		if err := api.client.SendQuery(query); err != nil {
			return err
		}
	}
	return nil
}

// OnConnect rebuilds the whole upstream subscription state: one delta
// subscription per pair across all channels, plus one snapshot query per
// full-order-book pair. Book state never survives a reconnect; the snapshot
// responses reseed it.
func (api *BittrexStreamAPI) OnConnect() []HubQuery {
	api.books.Clear()

	var queries []HubQuery
	for _, symbol := range api.subs.AllPairs() {
		marketName, err := toMarketName(symbol)
		if err != nil {
			logger.Printf("skipping subscription for %s: %s", symbol, err)
			continue
		}
		queries = append(queries, NewHubQuery("SubscribeToExchangeDeltas", []interface{}{marketName}, "1"))
	}
	for _, symbol := range api.subs.PairsFor(domain.ChannelLiveFullOrderBook) {
		marketName, err := toMarketName(symbol)
		if err != nil {
			continue
		}
		queries = append(queries, NewHubQuery("QueryExchangeState", []interface{}{marketName}, api.nextQueryID()))
	}
	return queries
}

// Handle routes one application frame. Frame-level failures are logged and
// swallowed; the connection stays up.
func (api *BittrexStreamAPI) Handle(method string, payload json.RawMessage) {
	switch {
	case method == "uE":
		api.handleMarketDelta(payload)
	case method == "uS":
		api.handleMarketSummary(payload)
	case strings.HasPrefix(method, "QE"):
		api.handleExchangeState(payload)
	default:
		if config.DebugMode {
			logger.Printf("ignoring frame with unknown method %q", method)
		}
	}
}

func (api *BittrexStreamAPI) handleMarketDelta(payload json.RawMessage) {
	delta, err := DecodeArrayFrame[MarketDelta](payload)
	if err != nil {
		logger.Printf("dropping market delta frame: %s", err)
		return
	}

	symbol, err := pairFromMarketName(delta.MarketName)
	if err != nil {
		// off-catalog market, drop without an event
		return
	}

	if api.subs.Has(domain.ChannelLiveFullOrderBook, symbol) {
		book := api.books.GetOrCreate(symbol)
		book.ApplyUpdate(domain.NewOrderBookUpdate(
			levelsFromOrderLogs(delta.Buys),
			levelsFromOrderLogs(delta.Sells),
		))
		if snapshot := book.TakeSnapshotIfChanged(); snapshot != nil {
			api.dispatcher.Publish(domain.ExchangeBittrex, domain.NewOrderBookEvent(snapshot))
		}
	}

	if api.subs.Has(domain.ChannelLiveTrades, symbol) {
		for _, fill := range delta.Fills {
			api.dispatcher.Publish(domain.ExchangeBittrex, domain.NewTradeEvent(&domain.LiveTrade{
				EventMs: fill.TimeStamp,
				Symbol:  symbol,
				Amount:  fill.Quantity,
				Price:   fill.Rate,
				Side:    domain.TradeSideFromString(fill.OrderType),
			}))
		}
	}
}

func (api *BittrexStreamAPI) handleMarketSummary(payload json.RawMessage) {
	summary, err := DecodeArrayFrame[SummaryDeltaResponse](payload)
	if err != nil {
		logger.Printf("dropping market summary frame: %s", err)
		return
	}
	if config.DebugMode {
		logger.Printf("market summary nonce=%d with %d delta(s)", summary.Nonce, len(summary.Deltas))
	}
}

// handleExchangeState seeds a book from a snapshot reply. The full view is
// emitted unconditionally: a fresh baseline is always news to subscribers.
func (api *BittrexStreamAPI) handleExchangeState(payload json.RawMessage) {
	state, err := DecodeStringFrame[ExchangeState](payload)
	if err != nil {
		logger.Printf("dropping exchange state frame: %s", err)
		return
	}

	symbol, err := pairFromMarketName(state.MarketName)
	if err != nil {
		return
	}

	book := api.books.GetOrCreate(symbol)
	book.Reset(
		levelsFromOrderPairs(state.Buys),
		levelsFromOrderPairs(state.Sells),
	)
	api.dispatcher.Publish(domain.ExchangeBittrex, domain.NewOrderBookEvent(book.TakeSnapshot()))
}

func (api *BittrexStreamAPI) nextQueryID() string {
	return fmt.Sprintf("QE%d", atomic.AddInt64(&api.querySeq, 1))
}

func levelsFromOrderLogs(logs []OrderLog) []domain.PriceLevel {
	levels := make([]domain.PriceLevel, 0, len(logs))
	for _, l := range logs {
		levels = append(levels, domain.NewPriceLevel(l.Rate, l.Quantity))
	}
	return levels
}

func levelsFromOrderPairs(pairs []OrderPair) []domain.PriceLevel {
	levels := make([]domain.PriceLevel, 0, len(pairs))
	for _, p := range pairs {
		levels = append(levels, domain.NewPriceLevel(p.Rate, p.Quantity))
	}
	return levels
}
