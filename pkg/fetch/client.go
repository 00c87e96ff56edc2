package fetch

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"humblerss/rssproxy/pkg/httpwire"
	"humblerss/rssproxy/pkg/telemetry/logging"
	"humblerss/rssproxy/pkg/uri"
)

// Callback receives the outcome of a fetch exactly once.
type Callback func(Result)

// Result is the outcome of one fetch.
type Result struct {
	// ID identifies the fetch in logs, spans and the journal.
	ID string

	Method string

	// Target is the percent-decoded URL that was requested.
	Target string

	// Response is never nil: either the upstream response or the 434 sentinel.
	Response *httpwire.Response

	// Reason is ReasonNone when the upstream exchange completed.
	Reason Reason

	// Err is the underlying cause when Reason is not ReasonNone.
	Err error

	Start    time.Time
	Duration time.Duration
}

// OK reports whether the upstream exchange completed, whatever its status.
func (r Result) OK() bool {
	return r.Reason == ReasonNone
}

// Client performs a single HTTP/1.1 GET-style exchange.
//
// A Client is single use: SendRequest may be called once. The exchange runs
// on its own goroutine; a timer armed with the timeout races it, and the
// first of the two to finish wins an atomic guard. The loser does nothing.
type Client struct {
	opts Options
	id   string

	state atomic.Int32
	sent  atomic.Bool
	done  atomic.Bool

	// mu guards the connection handle and the timer against the
	// completion path running on another goroutine.
	mu      sync.Mutex
	conn    net.Conn
	timer   *time.Timer
	stopCtx func() bool

	cancel   context.CancelFunc
	span     trace.Span
	callback Callback
	method   string
	target   string
	start    time.Time
}

// New creates an idle Client.
func New(opts Options) *Client {
	return &Client{
		opts: opts.withDefaults(),
		id:   uuid.NewString(),
	}
}

// ID returns the fetch id assigned at construction.
func (c *Client) ID() string {
	return c.id
}

// State returns the current phase.
func (c *Client) State() State {
	return State(c.state.Load())
}

// SendRequest starts the exchange and returns immediately. callback is
// invoked exactly once, from another goroutine, with the upstream response
// or the 434 sentinel.
//
// A positive timeout bounds the whole exchange. Cancelling ctx aborts the
// fetch the same way. A second call returns ErrAlreadySent.
func (c *Client) SendRequest(ctx context.Context, method, rawURL string, timeout time.Duration, callback Callback) error {
	if !c.sent.CompareAndSwap(false, true) {
		return ErrAlreadySent
	}
	if callback == nil {
		callback = func(Result) {}
	}

	u := uri.Parse(rawURL)
	if u.Port == "" {
		u.SetPort(DefaultPort)
	}

	c.method = method
	c.target = uri.Decode(rawURL)
	c.callback = callback
	c.start = time.Now()

	ctx = logging.WithFetchID(ctx, c.id)
	ctx, c.span = c.opts.Tracer.Start(ctx, "fetch "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("fetch.id", c.id),
			attribute.String("http.request.method", method),
			attribute.String("server.address", u.Host),
			attribute.String("server.port", u.Port),
		),
	)
	ctx, c.cancel = context.WithCancel(ctx)

	c.mu.Lock()
	if timeout > 0 {
		c.timer = time.AfterFunc(timeout, func() {
			c.complete(httpwire.Unavailable(), ReasonTimeout, ErrTimeout)
		})
	}
	c.stopCtx = context.AfterFunc(ctx, func() {
		c.complete(httpwire.Unavailable(), ReasonCanceled, context.Cause(ctx))
	})
	c.mu.Unlock()

	go c.run(ctx, method, u)
	return nil
}

// Fetch performs the exchange and blocks until it completes.
func (c *Client) Fetch(ctx context.Context, method, rawURL string, timeout time.Duration) Result {
	ch := make(chan Result, 1)
	err := c.SendRequest(ctx, method, rawURL, timeout, func(r Result) { ch <- r })
	if err != nil {
		return Result{
			ID:       c.id,
			Method:   method,
			Target:   uri.Decode(rawURL),
			Response: httpwire.Unavailable(),
			Reason:   ReasonInternal,
			Err:      err,
			Start:    time.Now(),
		}
	}
	return <-ch
}

// Get fetches rawURL with a fresh Client.
func Get(ctx context.Context, opts Options, rawURL string, timeout time.Duration) Result {
	return New(opts).Fetch(ctx, "GET", rawURL, timeout)
}

func (c *Client) run(ctx context.Context, method string, u uri.URI) {
	res, err := c.exchange(ctx, method, u)
	switch {
	case errors.Is(err, errSuperseded):
	case err != nil:
		c.complete(httpwire.Unavailable(), reasonOf(err), err)
	default:
		c.complete(res, ReasonNone, nil)
	}
}

func (c *Client) exchange(ctx context.Context, method string, u uri.URI) (*httpwire.Response, error) {
	if !c.advance(StateResolving) {
		return nil, errSuperseded
	}
	addrs, err := c.opts.Resolver.LookupHost(ctx, u.Host)
	if err != nil {
		return nil, phaseError(ReasonDNS, err)
	}
	if len(addrs) == 0 {
		return nil, phaseError(ReasonDNS, ErrNoAddresses)
	}

	if !c.advance(StateConnecting) {
		return nil, errSuperseded
	}
	conn, err := c.connect(ctx, addrs, u.Port)
	if err != nil {
		return nil, err
	}
	if !c.attach(conn) {
		return nil, errSuperseded
	}

	if !c.advance(StateSending) {
		return nil, errSuperseded
	}
	req := httpwire.OutboundRequest{
		Method:    method,
		Host:      u.Host,
		Path:      u.RequestTarget(),
		UserAgent: c.opts.UserAgent,
	}
	if _, err := req.WriteTo(conn); err != nil {
		return nil, phaseError(ReasonWrite, err)
	}

	if !c.advance(StateAwaitingHeaders) {
		return nil, errSuperseded
	}
	br := bufio.NewReader(conn)
	res, err := httpwire.ReadResponseHead(br, c.opts.MaxHeadBytes)
	if err != nil {
		if errors.Is(err, httpwire.ErrMalformedStatus) || errors.Is(err, httpwire.ErrHeadTooLarge) {
			return nil, phaseError(ReasonProtocol, err)
		}
		return nil, phaseError(ReasonRead, err)
	}
	if res.Version != httpwire.ProtoHTTP11 {
		return nil, phaseError(ReasonVersion, errors.New("unsupported upstream version "+res.Version))
	}
	if res.StatusCode != httpwire.StatusOK {
		return res, nil
	}

	if !c.advance(StateReadingBody) {
		return nil, errSuperseded
	}
	if err := c.readBody(br, res); err != nil {
		return nil, err
	}
	return res, nil
}

// connect dials each candidate in order and returns the first connection.
// It gives up early once the fetch has completed elsewhere.
func (c *Client) connect(ctx context.Context, addrs []string, port string) (net.Conn, error) {
	var lastErr error
	for _, addr := range addrs {
		if c.done.Load() {
			return nil, errSuperseded
		}
		conn, err := c.opts.Dialer.DialContext(ctx, "tcp", net.JoinHostPort(addr, port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
		c.opts.Logger.Debug("Dial failed, trying next candidate", "fetch_id", c.id, "address", addr, "error", err)
	}
	return nil, phaseError(ReasonConnect, lastErr)
}

func (c *Client) readBody(br *bufio.Reader, res *httpwire.Response) error {
	framing, n := httpwire.DecideFraming(&res.Header)
	limit := c.opts.MaxBodyBytes

	switch framing {
	case httpwire.FramingEmpty:
		return nil

	case httpwire.FramingLength:
		if limit > 0 && n > limit {
			return phaseError(ReasonTooLarge, ErrBodyTooLarge)
		}
		res.Body = make([]byte, n)
		if _, err := io.ReadFull(br, res.Body); err != nil {
			return phaseError(ReasonRead, err)
		}
		return nil

	case httpwire.FramingChunked:
		r := httpwire.NewChunkedReader(br, c.opts.MaxHeadBytes)
		if limit > 0 {
			r = io.LimitReader(r, limit+1)
		}
		body, err := io.ReadAll(r)
		if err != nil {
			if errors.Is(err, httpwire.ErrChunkFormat) {
				return phaseError(ReasonFraming, err)
			}
			return phaseError(ReasonRead, err)
		}
		if limit > 0 && int64(len(body)) > limit {
			return phaseError(ReasonTooLarge, ErrBodyTooLarge)
		}
		res.Body = body
		return nil

	default:
		return phaseError(ReasonFraming, errors.New("response carries neither Content-Length nor chunked encoding"))
	}
}

// advance moves to s unless the fetch has already completed.
func (c *Client) advance(s State) bool {
	for {
		cur := c.state.Load()
		if State(cur) == StateDone || c.done.Load() {
			return false
		}
		if c.state.CompareAndSwap(cur, int32(s)) {
			c.span.AddEvent(s.String())
			return true
		}
	}
}

// attach publishes conn so the completion path can close it. If the fetch
// already completed, conn is closed here instead.
func (c *Client) attach(conn net.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done.Load() {
		conn.Close()
		return false
	}
	c.conn = conn
	return true
}

func (c *Client) closeConn() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return
	}
	if tc, ok := conn.(interface {
		CloseRead() error
		CloseWrite() error
	}); ok {
		_ = tc.CloseRead()
		_ = tc.CloseWrite()
	}
	_ = conn.Close()
}

// complete delivers the outcome if no other path has. It runs on the fetch
// goroutine, the timer goroutine or the context watcher.
func (c *Client) complete(res *httpwire.Response, reason Reason, err error) {
	if !c.done.CompareAndSwap(false, true) {
		return
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.stopCtx != nil {
		c.stopCtx()
	}
	c.mu.Unlock()

	c.cancel()
	c.closeConn()
	c.state.Store(int32(StateDone))

	result := Result{
		ID:       c.id,
		Method:   c.method,
		Target:   c.target,
		Response: res,
		Reason:   reason,
		Err:      err,
		Start:    c.start,
		Duration: time.Since(c.start),
	}

	c.endSpan(result)
	c.opts.Logger.Debug("Fetch completed",
		"fetch_id", c.id,
		"target", c.target,
		"status", res.StatusCode,
		"outcome", reason.Outcome(),
		"bytes", len(res.Body),
		"duration_ms", result.Duration.Milliseconds(),
	)

	for _, o := range c.opts.Observers {
		o.ObserveFetch(result)
	}
	c.callback(result)
}

func (c *Client) endSpan(r Result) {
	c.span.SetAttributes(
		attribute.Int("http.response.status_code", r.Response.StatusCode),
		attribute.Int("http.response.body.size", len(r.Response.Body)),
		attribute.String("fetch.outcome", r.Reason.Outcome()),
	)
	if !r.OK() {
		if r.Err != nil {
			c.span.RecordError(r.Err)
		}
		c.span.SetStatus(codes.Error, string(r.Reason))
	}
	c.span.End()
}
