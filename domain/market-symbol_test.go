package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarketSymbol(t *testing.T) {
	symbol, err := NewMarketSymbol("XMR", "btc")
	require.NoError(t, err)

	assert.Equal(t, "xmr", symbol.BaseAsset)
	assert.Equal(t, "btc", symbol.QuoteAsset)
	assert.Equal(t, "xmr_btc", symbol.String())
	assert.Equal(t, "xmr-btc", symbol.Join("-"))
}

func TestNewMarketSymbol_Invalid(t *testing.T) {
	_, err := NewMarketSymbol("", "btc")
	assert.Error(t, err, "empty base must be rejected")

	_, err = NewMarketSymbol("btc", "BTC")
	assert.Error(t, err, "identical base and quote must be rejected")
}

func TestNewMarketSymbolFromString(t *testing.T) {
	symbol, err := NewMarketSymbolFromString("eth_usdt")
	require.NoError(t, err)
	assert.Equal(t, "eth", symbol.BaseAsset)
	assert.Equal(t, "usdt", symbol.QuoteAsset)

	_, err = NewMarketSymbolFromString("ethusdt")
	assert.Error(t, err)
}

func TestMarketSymbol_Equal(t *testing.T) {
	a, _ := NewMarketSymbol("xmr", "btc")
	b, _ := NewMarketSymbol("XMR", "BTC")
	c, _ := NewMarketSymbol("eth", "btc")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}
