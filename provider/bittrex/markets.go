package bittrex

import (
	"fmt"
	"strings"

	"github.com/spooky-finn/go-live-markets/domain"
)

// The exchange names its markets "QUOTE-BASE" in upper case: xmr_btc is
// quoted in btc, so its market name is "BTC-XMR".

// knownCurrencies is the static catalog of currencies this bridge will
// translate. Frames for markets outside it are dropped as unsupported.
var knownCurrencies = map[string]struct{}{
	"ADA": {}, "BAT": {}, "BCH": {}, "BSV": {}, "BTC": {}, "CVC": {},
	"DASH": {}, "DCR": {}, "DGB": {}, "DOGE": {}, "EOS": {}, "ETC": {},
	"ETH": {}, "EUR": {}, "GBP": {}, "GNT": {}, "KMD": {}, "LSK": {},
	"LTC": {}, "MANA": {}, "NEO": {}, "NXT": {}, "OMG": {}, "PAY": {},
	"PIVX": {}, "QTUM": {}, "REP": {}, "SC": {}, "SNT": {}, "STEEM": {},
	"STORJ": {}, "STRAT": {}, "SYS": {}, "TUSD": {}, "USD": {},
	"USDT": {}, "VTC": {}, "WAVES": {}, "XEM": {}, "XLM": {}, "XMR": {},
	"XRP": {}, "XVG": {}, "ZEC": {}, "ZEN": {}, "ZRX": {},
}

func isKnownCurrency(code string) bool {
	_, ok := knownCurrencies[strings.ToUpper(code)]
	return ok
}

// toMarketName renders a symbol as the exchange-native market identifier.
func toMarketName(symbol *domain.MarketSymbol) (string, error) {
	if !isKnownCurrency(symbol.BaseAsset) || !isKnownCurrency(symbol.QuoteAsset) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedPair, symbol)
	}
	return strings.ToUpper(symbol.QuoteAsset + "-" + symbol.BaseAsset), nil
}

// pairFromMarketName resolves an exchange-native market identifier back into
// a symbol, or ErrUnsupportedPair when either leg is off-catalog.
func pairFromMarketName(name string) (*domain.MarketSymbol, error) {
	split := strings.Split(name, "-")
	if len(split) != 2 {
		return nil, fmt.Errorf("%w: malformed market name %q", domain.ErrUnsupportedPair, name)
	}
	quote, base := split[0], split[1]
	if !isKnownCurrency(base) || !isKnownCurrency(quote) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPair, name)
	}
	symbol, err := domain.NewMarketSymbol(base, quote)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPair, name)
	}
	return symbol, nil
}
