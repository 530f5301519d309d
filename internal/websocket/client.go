package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"GGPoker/internal/game/table"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second // 单次写超时
	defaultPingPeriod = 54 * time.Second
	handshakeTimeout  = 10 * time.Second
)

var ErrConnectionLost = errors.New("connection lost")

type Status int32

const (
	Disconnected Status = iota
	Connecting
	Connected
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Sink receives everything the channel reads.
type Sink interface {
	Replace(table.Snapshot)
	Append(raw string)
}

type Options struct {
	// Header is called before every dial; nil means no extra headers.
	Header func() http.Header
	Dialer *websocket.Dialer
	// Backoff is the reconnect policy. The zero value never reconnects.
	Backoff Backoff
	// PingPeriod < 0 disables keepalive pings; 0 means the default.
	PingPeriod time.Duration
	// PongWait is how long a connection may stay silent; 0 means
	// PingPeriod * 10/9.
	PongWait time.Duration
	// OnStatus is called on every status change, from the channel goroutine.
	// err wraps ErrConnectionLost when a connection dropped or a dial failed.
	// It must not call Close.
	OnStatus func(s Status, err error)
	Logger   *log.Logger
}

// Channel keeps one realtime connection to the game server and feeds every
// inbound frame, in arrival order, into its sink.
type Channel struct {
	url  string
	sink Sink
	opts Options
	log  *log.Logger

	status atomic.Int32

	mu   sync.Mutex
	conn *websocket.Conn

	started   atomic.Bool
	startOnce sync.Once
	closeOnce sync.Once
	quit      chan struct{}
	done      chan struct{}
}

func NewChannel(url string, sink Sink, opts Options) *Channel {
	if opts.Dialer == nil {
		d := *websocket.DefaultDialer
		d.HandshakeTimeout = handshakeTimeout
		opts.Dialer = &d
	}
	if opts.PingPeriod == 0 {
		opts.PingPeriod = defaultPingPeriod
	}
	if opts.PongWait == 0 {
		opts.PongWait = opts.PingPeriod * 10 / 9
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Channel{
		url:  url,
		sink: sink,
		opts: opts,
		log:  opts.Logger.With("component", "channel"),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (c *Channel) Status() Status {
	return Status(c.status.Load())
}

// Start launches the connection loop in the background. Cancelling ctx has
// the same effect as Close.
func (c *Channel) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		c.started.Store(true)
		go c.run(ctx)
		go func() {
			select {
			case <-ctx.Done():
				_ = c.Close()
			case <-c.done:
			}
		}()
	})
}

// Done is closed once the connection loop has exited.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close tears the connection down and waits for the read loop to exit. It is
// safe to call at any time and more than once.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.quit)
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = conn.Close()
		}
	})
	if c.started.Load() {
		<-c.done
	}
	return nil
}

func (c *Channel) closing() bool {
	select {
	case <-c.quit:
		return true
	default:
		return false
	}
}

func (c *Channel) setStatus(s Status, err error) {
	prev := Status(c.status.Swap(int32(s)))
	if prev == s && err == nil {
		return
	}
	if err != nil {
		c.log.Warn("status", "status", s, "err", err)
	} else {
		c.log.Info("status", "status", s)
	}
	if c.opts.OnStatus != nil {
		c.opts.OnStatus(s, err)
	}
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)
	defer c.setStatus(Disconnected, nil)

	attempt := 0
	for {
		if c.closing() || ctx.Err() != nil {
			return
		}

		c.setStatus(Connecting, nil)
		err := c.connectAndRead(ctx, &attempt)
		if c.closing() || ctx.Err() != nil {
			return
		}
		c.setStatus(Disconnected, fmt.Errorf("%w: %v", ErrConnectionLost, err))

		attempt++
		delay, ok := c.opts.Backoff.Next(attempt)
		if !ok {
			if c.opts.Backoff.Retries > 0 {
				c.log.Error("giving up reconnecting", "attempts", attempt-1)
			}
			return
		}
		c.log.Info("reconnecting", "attempt", attempt, "in", delay)

		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-c.quit:
			t.Stop()
			return
		case <-ctx.Done():
			t.Stop()
			return
		}
	}
}

func (c *Channel) connectAndRead(ctx context.Context, attempt *int) error {
	var header http.Header
	if c.opts.Header != nil {
		header = c.opts.Header()
	}
	conn, err := c.dial(ctx, header)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closing() {
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		_ = conn.Close()
	}()

	*attempt = 0
	c.setStatus(Connected, nil)
	return c.readPump(conn)
}

// dial connects and completes the handshake, giving up as soon as Close is
// called. The handshake only honours deadlines, so the raw TCP connection is
// closed on quit to unblock it.
func (c *Channel) dial(ctx context.Context, header http.Header) (*websocket.Conn, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		rawMu sync.Mutex
		raw   net.Conn
	)
	d := *c.opts.Dialer
	netDial := d.NetDialContext
	if netDial == nil {
		netDial = (&net.Dialer{}).DialContext
	}
	d.NetDialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		nc, err := netDial(ctx, network, addr)
		if err == nil {
			rawMu.Lock()
			raw = nc
			rawMu.Unlock()
		}
		return nc, err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-c.quit:
			cancel()
			rawMu.Lock()
			if raw != nil {
				_ = raw.Close()
			}
			rawMu.Unlock()
		case <-stop:
		}
	}()

	conn, _, err := d.DialContext(ctx, c.url, header)
	return conn, err
}

// 读协程: frames are handled one at a time, so snapshots apply in order.
func (c *Channel) readPump(conn *websocket.Conn) error {
	if c.opts.PingPeriod > 0 {
		pongWait := c.opts.PongWait
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		stop := make(chan struct{})
		defer close(stop)
		go c.pingPump(conn, stop)
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.handle(raw)
	}
}

// 心跳: keeps idle connections open and detects dead peers through the read deadline.
func (c *Channel) pingPump(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

func (c *Channel) handle(raw []byte) {
	switch m := Decode(raw).(type) {
	case GameState:
		c.sink.Replace(m.Snapshot)
		c.log.Debug("snapshot", "hand", m.Snapshot.HandNumber, "round", m.Snapshot.CurrentRound)
	case Unrecognized:
		if m.Err != nil {
			c.log.Debug("unparsed frame", "err", m.Err)
		}
		c.sink.Append(m.Raw)
	}
}
