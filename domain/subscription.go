package domain

// Subscription is a handle on a stream of values. Unsubscribe is safe to call
// more than once; the Stream channel is closed once the subscription is gone.
type Subscription[T any] struct {
	Stream      <-chan T
	Unsubscribe func()
	Topic       string
}
