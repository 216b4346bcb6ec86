package bittrex

import "github.com/shopspring/decimal"

// Wire records carried inside compressed frames. The exchange abbreviates
// every field down to one or two letters; rates and quantities decode
// straight into decimals so no precision is lost before aggregation.

// OrderLog is one price-level change inside a market delta.
type OrderLog struct {
	Type     int             `json:"TY"`
	Rate     decimal.Decimal `json:"R"`
	Quantity decimal.Decimal `json:"Q"`
}

// Fill is one executed trade inside a market delta.
type Fill struct {
	FillId    int             `json:"FI"`
	OrderType string          `json:"OT"`
	Rate      decimal.Decimal `json:"R"`
	Quantity  decimal.Decimal `json:"Q"`
	TimeStamp int64           `json:"T"`
}

// MarketDelta is the payload of a "uE" frame: incremental changes to one
// market's book plus the fills that caused them.
type MarketDelta struct {
	MarketName string     `json:"M"`
	Nonce      int64      `json:"N"`
	Buys       []OrderLog `json:"Z"`
	Sells      []OrderLog `json:"S"`
	Fills      []Fill     `json:"f"`
}

// OrderPair is one resting level inside a full exchange state.
type OrderPair struct {
	Rate     decimal.Decimal `json:"R"`
	Quantity decimal.Decimal `json:"Q"`
}

// FillEntry is one historical fill inside a full exchange state. The book
// aggregator ignores these; they are kept so the record parses completely.
type FillEntry struct {
	FillType  string          `json:"F"`
	Id        int64           `json:"I"`
	OrderType string          `json:"OT"`
	Price     decimal.Decimal `json:"P"`
	Quantity  decimal.Decimal `json:"Q"`
	TimeStamp int64           `json:"T"`
}

// ExchangeState is the payload of a "QE*" snapshot response: the full set of
// resting levels for one market.
type ExchangeState struct {
	MarketName string      `json:"M"`
	Nonce      int64       `json:"N"`
	Buys       []OrderPair `json:"Z"`
	Sells      []OrderPair `json:"S"`
	Fills      []FillEntry `json:"f"`
}

// SummaryDelta is one market's 24h statistics inside a "uS" frame.
type SummaryDelta struct {
	MarketName     string          `json:"M"`
	High           decimal.Decimal `json:"H"`
	Low            decimal.Decimal `json:"L"`
	Volume         decimal.Decimal `json:"V"`
	Last           decimal.Decimal `json:"l"`
	BaseVolume     decimal.Decimal `json:"m"`
	TimeStamp      int64           `json:"T"`
	Bid            decimal.Decimal `json:"B"`
	Ask            decimal.Decimal `json:"A"`
	OpenBuyOrders  int64           `json:"G"`
	OpenSellOrders int64           `json:"g"`
	PrevDay        decimal.Decimal `json:"PD"`
	Created        int64           `json:"x"`
}

// SummaryDeltaResponse is the payload of a "uS" frame.
type SummaryDeltaResponse struct {
	Nonce  int64          `json:"N"`
	Deltas []SummaryDelta `json:"D"`
}
