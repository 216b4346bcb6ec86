package domain

// StreamBot is the capability surface of one exchange streaming connection.
// Connect blocks until the transport is up (or the initial backoff budget is
// exhausted); afterwards the bot keeps itself connected until Close.
type StreamBot interface {
	Connect() error
	IsConnected() bool
	// Subscribe registers a (channel, pair) interest. On a live connection
	// the upstream subscription is issued immediately; either way it is
	// replayed after every reconnect.
	Subscribe(channel Channel, symbol *MarketSymbol) error
	Close() error
}
