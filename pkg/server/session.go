package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"humblerss/rssproxy/pkg/httpwire"
)

type sessionKey struct{}

// Session is one inbound connection serving exactly one exchange.
type Session struct {
	id     string
	conn   net.Conn
	start  time.Time
	server *Server

	// mu guards span and cancel, which are set once the request head has
	// been read and may be read by a concurrent forced close.
	mu     sync.Mutex
	span   trace.Span
	cancel context.CancelFunc

	finished  atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(srv *Server, conn net.Conn) *Session {
	return &Session{
		id:     uuid.NewString(),
		conn:   conn,
		start:  time.Now(),
		server: srv,
		span:   trace.SpanFromContext(context.Background()),
		done:   make(chan struct{}),
	}
}

// SessionFromContext returns the session serving ctx, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// RemoteAddr returns the client address.
func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

// Start returns when the connection was accepted.
func (s *Session) Start() time.Time {
	return s.start
}

// Done is closed once the session has responded or been dropped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Abort closes the connection without a response. It is a no-op once the
// session has responded.
func (s *Session) Abort() {
	s.drop(DropAborted)
}

func (s *Session) respond(res *httpwire.Response) {
	if !s.finished.CompareAndSwap(false, true) {
		s.server.logger.Debug("Ignoring repeated respond", "session_id", s.id)
		return
	}

	if res == nil {
		res = &httpwire.Response{}
	}
	if res.StatusCode == 0 {
		res.StatusCode = httpwire.StatusOK
	}
	if res.Version == "" {
		res.Version = httpwire.ProtoHTTP11
	}

	buf := httpwire.AppendResponse(make([]byte, 0, 256+len(res.Body)), res, s.server.name)
	if _, err := s.conn.Write(buf); err != nil {
		s.server.logger.Warn("Response write failed",
			"session_id", s.id,
			"status", res.StatusCode,
			"error", err,
		)
	}
	s.server.observer.ResponseWritten(res.StatusCode, len(buf))

	s.currentSpan().SetAttributes(
		attribute.Int("http.response.status_code", res.StatusCode),
		attribute.Int("http.response.body.size", len(res.Body)),
	)
	s.finish()
}

func (s *Session) drop(reason string) {
	if !s.finished.CompareAndSwap(false, true) {
		return
	}
	s.server.observer.ConnectionDropped(reason)
	s.currentSpan().SetStatus(codes.Error, "dropped: "+reason)
	s.finish()
}

// begin attaches the session span and the cancel func of the handler
// context. If the session already finished, both are released at once and
// begin reports false.
func (s *Session) begin(span trace.Span, cancel context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished.Load() {
		span.End()
		cancel()
		return false
	}
	s.span = span
	s.cancel = cancel
	return true
}

func (s *Session) currentSpan() trace.Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.span
}

func (s *Session) finish() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()

		s.mu.Lock()
		span, cancel := s.span, s.cancel
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		span.End()
		close(s.done)
	})
}

func (s *Session) logAttrs() []any {
	return []any{
		slog.String("session_id", s.id),
		slog.String("remote_addr", s.RemoteAddr()),
	}
}
