package bittrex

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/spooky-finn/go-live-markets/config"
	"github.com/spooky-finn/go-live-markets/domain"
	"github.com/spooky-finn/go-live-markets/helpers"
)

var logger = log.New(os.Stdout, "[bittrex] ", log.LstdFlags)

const (
	hubName = "c2"

	// SignalR websocket endpoint with the hub connection data baked in.
	DefaultEndpoint = "wss://socket.bittrex.com/signalr/connect" +
		"?transport=webSockets&clientProtocol=1.5" +
		"&connectionData=%5B%7B%22name%22%3A%22c2%22%7D%5D"

	controlWriteWait = 10 * time.Second
)

type ConnState int

const (
	StateConnecting ConnState = iota
	StateConnected
	StateBackoff
	StateShuttingDown
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateBackoff:
		return "backoff"
	case StateShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// HubQuery is an outbound hub method invocation. The correlation id comes
// back on the matching reply frame.
type HubQuery struct {
	Hub    string        `json:"H"`
	Method string        `json:"M"`
	Args   []interface{} `json:"A"`
	ID     string        `json:"I"`
}

func NewHubQuery(method string, args []interface{}, id string) HubQuery {
	return HubQuery{Hub: hubName, Method: method, Args: args, ID: id}
}

// hubMessage is the inbound envelope: zero or more hub invocations, or a
// correlated reply to an earlier query.
type hubMessage struct {
	Cursor      string          `json:"C"`
	Invocations []hubInvocation `json:"M"`
	Result      json.RawMessage `json:"R"`
	ID          string          `json:"I"`
}

type hubInvocation struct {
	Hub    string          `json:"H"`
	Method string          `json:"M"`
	Args   json.RawMessage `json:"A"`
}

// FrameHandler consumes decoded hub traffic. OnConnect runs after every
// successful (re)connect, before any frame is delivered, and returns the
// queries to replay. Handle runs sequentially on the connection's reader
// goroutine, in arrival order.
type FrameHandler interface {
	OnConnect() []HubQuery
	Handle(method string, payload json.RawMessage)
}

type StreamClientOptions struct {
	Endpoint               string
	PingInterval           time.Duration
	IdleTimeout            time.Duration
	BackoffInitialInterval time.Duration
	BackoffMultiplier      float64
	// MaxElapsedTime bounds the initial connect; zero retries forever.
	// Reconnects after an established session always retry forever.
	MaxElapsedTime time.Duration
}

func DefaultStreamClientOptions() *StreamClientOptions {
	return &StreamClientOptions{
		Endpoint:               DefaultEndpoint,
		PingInterval:           config.PingInterval,
		IdleTimeout:            config.IdleTimeout,
		BackoffInitialInterval: config.BackoffInitialInterval,
		BackoffMultiplier:      config.BackoffMultiplier,
		MaxElapsedTime:         config.ConnMaxElapsedTime,
	}
}

// StreamClient owns one long-lived hub connection. It walks an explicit
// state machine: connecting -> connected -> backoff -> connecting, with
// shutting-down reachable from anywhere via Close.
type StreamClient struct {
	opts    *StreamClientOptions
	handler FrameHandler

	mu    sync.Mutex
	conn  *websocket.Conn
	state ConnState

	done      chan struct{}
	closeOnce sync.Once
}

func NewStreamClient(opts *StreamClientOptions, handler FrameHandler) *StreamClient {
	if opts == nil {
		opts = DefaultStreamClientOptions()
	}
	return &StreamClient{
		opts:    opts,
		handler: handler,
		state:   StateConnecting,
		done:    make(chan struct{}),
	}
}

// Connect blocks through the initial dial, retrying with exponential backoff.
// When MaxElapsedTime is configured and runs out it fails permanently with
// ErrBackoffExhausted and no further attempts are made. On success the client
// keeps itself connected in the background until Close.
func (c *StreamClient) Connect() error {
	conn, err := c.dial(c.newPolicy(c.opts.MaxElapsedTime))
	if err != nil {
		c.setState(StateShuttingDown)
		return err
	}
	c.attach(conn)
	go c.supervise(conn)
	return nil
}

func (c *StreamClient) IsConnected() bool {
	return c.State() == StateConnected
}

func (c *StreamClient) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SendQuery writes one hub invocation on the live connection.
func (c *StreamClient) SendQuery(query HubQuery) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnected || c.conn == nil {
		return fmt.Errorf("%w: no established connection", domain.ErrConnect)
	}
	if config.DebugMode {
		logger.Printf("sending query %s", helpers.ToJsonString(query))
	}
	return c.conn.WriteJSON(query)
}

// Close halts reconnection from any state and releases the transport. A frame
// already pulled off the socket still finishes dispatching.
func (c *StreamClient) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.state = StateShuttingDown
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
	return nil
}

// supervise runs sessions until shutdown. Each lost session goes through
// backoff and a fresh dial, then replays the handler's OnConnect queries.
func (c *StreamClient) supervise(conn *websocket.Conn) {
	for {
		err := c.runSession(conn)
		conn.Close()
		if c.isShutdown() {
			return
		}
		logger.Printf("connection lost: %s, reconnecting", err)

		next, dialErr := c.dial(c.newPolicy(0))
		if dialErr != nil {
			// only shutdown can stop an unbounded dial
			return
		}
		c.attach(next)
		conn = next
	}
}

// attach installs the connection and replays subscription state.
func (c *StreamClient) attach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.state == StateShuttingDown {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.state = StateConnected
	c.mu.Unlock()

	for _, query := range c.handler.OnConnect() {
		if err := c.SendQuery(query); err != nil {
			logger.Printf("failed to send on-connect query %q: %s", query.Method, err)
			return
		}
	}
}

// runSession reads frames until the connection dies. Any traffic, including
// ping/pong control frames, refreshes the idle deadline; a silent peer times
// the session out.
func (c *StreamClient) runSession(conn *websocket.Conn) error {
	stopPinger := make(chan struct{})
	defer close(stopPinger)
	go c.pinger(conn, stopPinger)

	refresh := func() error {
		return conn.SetReadDeadline(time.Now().Add(c.opts.IdleTimeout))
	}
	if err := refresh(); err != nil {
		return err
	}
	conn.SetPongHandler(func(string) error { return refresh() })
	conn.SetPingHandler(func(appData string) error {
		if err := refresh(); err != nil {
			return err
		}
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(controlWriteWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		refresh()
		c.dispatchFrame(frame)
	}
}

func (c *StreamClient) pinger(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(controlWriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// dispatchFrame routes hub invocations by method name and correlated replies
// by their query id. An unparseable envelope is logged and dropped.
func (c *StreamClient) dispatchFrame(frame []byte) {
	var message hubMessage
	if err := json.Unmarshal(frame, &message); err != nil {
		logger.Printf("dropping unparseable frame: %s", err)
		return
	}

	for _, invocation := range message.Invocations {
		if invocation.Method == "" {
			continue
		}
		c.handler.Handle(invocation.Method, invocation.Args)
	}

	if message.ID != "" && len(message.Result) > 0 {
		c.handler.Handle(message.ID, message.Result)
	}
}

// dial attempts the transport until it succeeds, the policy gives up, or the
// client shuts down.
func (c *StreamClient) dial(policy backoff.BackOff) (*websocket.Conn, error) {
	c.setState(StateConnecting)
	for {
		if c.isShutdown() {
			return nil, domain.ErrShutdown
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.opts.Endpoint, nil)
		if err == nil {
			return conn, nil
		}
		connErr := fmt.Errorf("%w: %s", domain.ErrConnect, err)

		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			return nil, fmt.Errorf("%w: %s", domain.ErrBackoffExhausted, connErr)
		}
		if config.DebugMode {
			logger.Printf("%s, retrying in %s", connErr, wait)
		}

		c.setState(StateBackoff)
		select {
		case <-c.done:
			return nil, domain.ErrShutdown
		case <-time.After(wait):
		}
		c.setState(StateConnecting)
	}
}

func (c *StreamClient) newPolicy(maxElapsed time.Duration) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.BackoffInitialInterval
	policy.Multiplier = c.opts.BackoffMultiplier
	policy.MaxElapsedTime = maxElapsed
	policy.Reset()
	return policy
}

func (c *StreamClient) setState(state ConnState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateShuttingDown {
		return
	}
	c.state = state
}

func (c *StreamClient) isShutdown() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
