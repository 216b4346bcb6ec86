package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Exchange tags every outgoing event with its origin. The set is closed:
// the connection-manager switch enumerates the supported members.
type Exchange string

const (
	ExchangeBittrex  Exchange = "bittrex"
	ExchangeBitstamp Exchange = "bitstamp"
	ExchangeKraken   Exchange = "kraken"
)

// Channel is a category of subscribed market data.
type Channel string

const (
	ChannelLiveTrades        Channel = "live_trades"
	ChannelLiveFullOrderBook Channel = "live_full_order_book"
)

type TradeSide int

const (
	TradeSideUnknown TradeSide = iota
	TradeSideBuy
	TradeSideSell
)

func (ts TradeSide) String() string {
	switch ts {
	case TradeSideBuy:
		return "buy"
	case TradeSideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// TradeSideFromString maps an exchange-native order type ("BUY"/"SELL",
// any casing) onto a TradeSide.
func TradeSideFromString(s string) TradeSide {
	switch strings.ToLower(s) {
	case "buy":
		return TradeSideBuy
	case "sell":
		return TradeSideSell
	default:
		return TradeSideUnknown
	}
}

// LiveTrade is one fill observed on the trade feed.
type LiveTrade struct {
	// UNIX timestamp in ms (when the fill occurred on the exchange)
	EventMs int64
	Symbol  *MarketSymbol
	Amount  decimal.Decimal
	Price   decimal.Decimal
	Side    TradeSide
}

type LiveEventType int

const (
	// LiveEventTypeNoop marks a decoded frame that yielded nothing
	// actionable. Noop events are never published.
	LiveEventTypeNoop LiveEventType = iota
	LiveEventTypeTrade
	LiveEventTypeOrderBook
)

// LiveEvent is the tagged union handed to subscribers. Exactly the field
// matching Type is set.
type LiveEvent struct {
	Type      LiveEventType
	Trade     *LiveTrade
	OrderBook *OrderBookSnapshot
}

func NewTradeEvent(t *LiveTrade) LiveEvent {
	return LiveEvent{Type: LiveEventTypeTrade, Trade: t}
}

func NewOrderBookEvent(s *OrderBookSnapshot) LiveEvent {
	return LiveEvent{Type: LiveEventTypeOrderBook, OrderBook: s}
}

// LiveEventEnvelope pairs an event with the exchange it came from.
type LiveEventEnvelope struct {
	Exchange Exchange
	Event    LiveEvent
}
