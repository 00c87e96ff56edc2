package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"humblerss/rssproxy/pkg/config"
	"humblerss/rssproxy/pkg/httpwire"
	"humblerss/rssproxy/pkg/telemetry/tracing"
)

// forcedCloseGrace bounds the wait for session goroutines after their
// connections were force-closed.
const forcedCloseGrace = time.Second

var (
	// ErrServerRunning is returned by Listen on a server that is already listening.
	ErrServerRunning = errors.New("server is already running")

	// ErrNotListening is returned by Serve before Listen.
	ErrNotListening = errors.New("server is not listening")

	// ErrForcedShutdown is returned by Shutdown when sessions had to be
	// closed before they responded.
	ErrForcedShutdown = errors.New("shutdown deadline exceeded, connections force-closed")
)

// Options configures a Server.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Observer receives session lifecycle events.
	Observer Observer

	// Tracer starts one server span per session. Defaults to the global
	// provider's tracer.
	Tracer trace.Tracer

	// Signals, when non-empty, trigger a graceful shutdown from Serve.
	Signals []os.Signal

	// OnShutdown runs when shutdown begins, before the listener closes.
	OnShutdown func()
}

// Server accepts raw HTTP/1.1 connections and hands each request to a
// Handler fixed at construction.
//
// Every connection runs on its own goroutine and serves one exchange.
// Serve sets GOMAXPROCS to the configured thread count, so the runtime's
// network poller multiplexes all sockets over that many OS threads.
type Server struct {
	address         string
	threads         int
	readTimeout     time.Duration
	maxHeaderBytes  int
	shutdownTimeout time.Duration
	name            string

	handler  Handler
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
	opts     Options

	listener net.Listener

	// baseCtx parents every session context. It is cancelled when
	// shutdown force-closes the remaining sessions.
	baseCtx    context.Context
	cancelBase context.CancelFunc

	shutdownChan chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
	shutdownErr  error

	mu        sync.RWMutex
	isRunning bool
	closing   bool
	sessions  map[*Session]struct{}
	wg        sync.WaitGroup
}

// New creates a server. handler cannot be changed afterwards.
func New(cfg *config.Config, handler Handler, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracing.InstrumentationName)
	}

	return &Server{
		address:         cfg.ListenAddress(),
		threads:         cfg.Threads,
		readTimeout:     cfg.Server.ReadTimeout,
		maxHeaderBytes:  cfg.Server.MaxHeaderBytes,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		name:            cfg.Server.Name,
		handler:         handler,
		logger:          opts.Logger.With("component", "server"),
		observer:        opts.Observer,
		tracer:          opts.Tracer,
		opts:            opts,
		shutdownChan:    make(chan struct{}),
		sessions:        make(map[*Session]struct{}),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, a configured signal arrives or Stop is called. It then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds the listening socket.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrServerRunning
	}

	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	s.listener = ln
	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())
	s.isRunning = true
	return nil
}

// Serve runs the accept loop on a socket bound by Listen and blocks until
// shutdown has completed.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.RLock()
	ln := s.listener
	s.mu.RUnlock()
	if ln == nil {
		return ErrNotListening
	}

	if s.threads > 0 {
		prev := runtime.GOMAXPROCS(s.threads)
		s.logger.Debug("Worker threads configured", "threads", s.threads, "previous", prev)
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Proxy server listening", "address", ln.Addr().String(), "threads", s.threads)
		if err := s.acceptLoop(ln); err != nil {
			errChan <- err
		}
	}()

	var sigChan chan os.Signal
	if len(s.opts.Signals) > 0 {
		sigChan = make(chan os.Signal, 1)
		signal.Notify(sigChan, s.opts.Signals...)
		defer signal.Stop(sigChan)
	}

	select {
	case <-ctx.Done():
		s.logger.Info("Context cancelled, initiating shutdown")
	case sig := <-sigChan:
		s.logger.Info("Received shutdown signal", "signal", sig.String())
	case <-s.shutdownChan:
		s.logger.Info("Shutdown requested")
	case err := <-errChan:
		s.logger.Error("Accept loop failed", "error", err)
		_ = s.Shutdown(context.Background())
		return err
	}

	return s.Shutdown(context.Background())
}

// Stop asks a running Serve to shut down.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.shutdownChan) })
}

func (s *Server) acceptLoop(ln net.Listener) error {
	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if backoff == 0 {
					backoff = 5 * time.Millisecond
				} else if backoff *= 2; backoff > time.Second {
					backoff = time.Second
				}
				s.logger.Warn("Accept failed, retrying", "error", err, "backoff", backoff)
				time.Sleep(backoff)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		backoff = 0

		sess := newSession(s, conn)
		if !s.track(sess) {
			_ = conn.Close()
			continue
		}
		go s.serveConn(sess)
	}
}

// track registers a session unless shutdown has begun.
func (s *Server) track(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) serveConn(sess *Session) {
	defer s.untrack(sess)

	s.observer.ConnectionOpened()
	defer func() {
		s.observer.ConnectionClosed(time.Since(sess.start))
	}()

	if tc, ok := sess.conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	if s.readTimeout > 0 {
		_ = sess.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}

	req, err := httpwire.ReadRequestHead(bufio.NewReader(sess.conn), s.maxHeaderBytes)
	if err != nil {
		s.logger.Debug("Dropping connection, request head unreadable", append(sess.logAttrs(), "error", err)...)
		sess.drop(DropRead)
		return
	}
	_ = sess.conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(s.baseCtx)
	ctx = context.WithValue(ctx, sessionKey{}, sess)
	ctx, span := s.tracer.Start(ctx, "session",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("session.id", sess.id),
			attribute.String("client.address", sess.RemoteAddr()),
			attribute.String("http.request.method", req.Method),
			attribute.String("url.original", req.URL),
		),
	)
	if !sess.begin(span, cancel) {
		return
	}

	s.invoke(ctx, sess, req)
	<-sess.done
}

// invoke runs the handler. A panic that escapes the handler drops the
// connection.
func (s *Server) invoke(ctx context.Context, sess *Session, req *httpwire.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Handler panicked, dropping connection", append(sess.logAttrs(), "panic", rec)...)
			sess.drop(DropPanic)
		}
	}()

	s.handler.Serve(ctx, req, &httpwire.Response{}, sess.respond)
}

// Shutdown stops accepting connections and waits for in-flight sessions
// until the configured shutdown timeout or ctx expires, whichever is first.
// Sessions still open after that are closed without a response.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.closing = true
		ln := s.listener
		s.mu.Unlock()

		if s.opts.OnShutdown != nil {
			s.opts.OnShutdown()
		}

		s.logger.Info("Initiating graceful shutdown", "timeout", s.shutdownTimeout.String(), "active", s.ActiveSessions())
		_ = ln.Close()

		if s.shutdownTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
			defer cancel()
		}

		if !waitGroup(ctx, &s.wg) {
			n := s.forceClose()
			s.logger.Warn("Shutdown deadline exceeded, closed remaining connections", "closed", n)
			s.shutdownErr = ErrForcedShutdown

			graceCtx, cancel := context.WithTimeout(context.Background(), forcedCloseGrace)
			defer cancel()
			if !waitGroup(graceCtx, &s.wg) {
				s.logger.Error("Handlers did not return after forced close")
			}
		}
		s.cancelBase()

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("Proxy server stopped")
	})

	return s.shutdownErr
}

func (s *Server) forceClose() int {
	s.mu.RLock()
	open := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()

	for _, sess := range open {
		sess.drop(DropShutdown)
	}
	s.cancelBase()
	return len(open)
}

// waitGroup waits for wg and reports whether it finished before ctx.
func waitGroup(ctx context.Context, wg *sync.WaitGroup) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning returns true between Listen and the end of Shutdown.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// ActiveSessions returns the number of open sessions.
func (s *Server) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Health reports an error unless the server is accepting connections.
func (s *Server) Health(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || s.closing {
		return errors.New("server is not accepting connections")
	}
	return nil
}
