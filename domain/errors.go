package domain

import "errors"

// Frame-level errors. All of them are recovered locally: the frame is logged
// and dropped, the connection stays up.
var (
	ErrDecode          = errors.New("malformed base64 payload")
	ErrDecompress      = errors.New("corrupt deflate stream")
	ErrParse           = errors.New("unexpected message shape")
	ErrMissingData     = errors.New("empty frame envelope")
	ErrUnsupportedPair = errors.New("unsupported trading pair")
)

// Connection-level errors. Connect failures and idle timeouts feed the
// backoff cycle internally; only ErrBackoffExhausted and ErrShutdown are
// surfaced to the owner of the connection.
var (
	ErrConnect          = errors.New("failed to establish stream connection")
	ErrBackoffExhausted = errors.New("connection retry time exhausted")
	ErrShutdown         = errors.New("stream client is shutting down")
)

var ErrOrderBookNotFound = errors.New("order book not found")
