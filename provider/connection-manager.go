package provider

import (
	"fmt"

	"github.com/spooky-finn/go-live-markets/domain"
	"github.com/spooky-finn/go-live-markets/provider/bittrex"
)

// NewStreamBot selects the streaming implementation for an exchange. The
// switch is closed on purpose: the remaining exchanges only have synchronous
// REST clients and no push feed here.
func NewStreamBot(
	exchange domain.Exchange,
	creds domain.Credentials,
	subs *domain.SubscriptionSet,
	dispatcher *domain.EventDispatcher,
) (domain.StreamBot, error) {
	switch exchange {
	case domain.ExchangeBittrex:
		return bittrex.NewBittrexStreamAPI(creds, subs, dispatcher, nil), nil
	case domain.ExchangeBitstamp, domain.ExchangeKraken:
		return nil, fmt.Errorf("exchange %q has no streaming support", exchange)
	default:
		return nil, fmt.Errorf("unknown exchange %q", exchange)
	}
}
