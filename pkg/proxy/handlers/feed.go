package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"humblerss/rssproxy/pkg/fetch"
	"humblerss/rssproxy/pkg/httpwire"
	"humblerss/rssproxy/pkg/server"
	"humblerss/rssproxy/pkg/telemetry/logging"
	"humblerss/rssproxy/pkg/transform"
	"humblerss/rssproxy/pkg/uri"
)

// URLPrefix is the only request target the feed handler accepts.
const URLPrefix = "/?url="

// ContentTypeJSON is sent with every transformed body.
const ContentTypeJSON = "application/json; charset=utf-8"

// TransformObserver is told the result of every transform.
// The metrics collector implements it.
type TransformObserver interface {
	RecordTransform(ok bool, d time.Duration)
}

// FeedConfig configures a FeedHandler.
type FeedConfig struct {
	// Timeout bounds every upstream fetch. Zero disables the timer.
	Timeout time.Duration

	// Fetch is passed to every fetch client. Journal and metrics observers
	// are attached here.
	Fetch fetch.Options

	// Transform defaults to transform.RSSToJSON.
	Transform transform.Func

	Observer TransformObserver
	Logger   *slog.Logger
}

// FeedHandler serves GET /?url=<target>: it fetches the target and relays
// it transformed.
type FeedHandler struct {
	timeout   atomic.Int64
	fetchOpts fetch.Options
	transform transform.Func
	observer  TransformObserver
	logger    *slog.Logger
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(cfg FeedConfig) *FeedHandler {
	h := &FeedHandler{
		fetchOpts: cfg.Fetch,
		transform: cfg.Transform,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
	}
	if h.transform == nil {
		h.transform = transform.RSSToJSON
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With("component", "feed_handler")
	h.timeout.Store(int64(cfg.Timeout))
	return h
}

// SetTimeout changes the fetch timeout for requests that start afterwards.
// It is safe to call while requests are being served.
func (h *FeedHandler) SetTimeout(d time.Duration) {
	h.timeout.Store(int64(d))
}

// Timeout returns the current fetch timeout.
func (h *FeedHandler) Timeout() time.Duration {
	return time.Duration(h.timeout.Load())
}

// Serve implements server.Handler.
func (h *FeedHandler) Serve(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
	if req.Method != "GET" {
		res.StatusCode = httpwire.StatusNotImplemented
		respond(res)
		return
	}
	if req.Version != httpwire.ProtoHTTP11 {
		res.StatusCode = httpwire.StatusHTTPVersionNotSupported
		respond(res)
		return
	}
	if !strings.HasPrefix(req.URL, URLPrefix) {
		res.StatusCode = httpwire.StatusNotImplemented
		respond(res)
		return
	}

	target := req.URL[len(URLPrefix):]
	ctx = logging.WithTarget(ctx, uri.Decode(target))

	client := fetch.New(h.fetchOpts)
	err := client.SendRequest(ctx, "GET", target, h.Timeout(), func(r fetch.Result) {
		h.relay(ctx, r, res)
		respond(res)
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to start fetch", "error", err)
		res.StatusCode = httpwire.StatusHostUnavailable
		respond(res)
	}
}

// relay fills res from the fetch result.
func (h *FeedHandler) relay(ctx context.Context, r fetch.Result, res *httpwire.Response) {
	if r.Response.StatusCode != httpwire.StatusOK {
		res.StatusCode = r.Response.StatusCode
		if !r.OK() {
			h.logger.InfoContext(ctx, "Upstream unavailable",
				"fetch_id", r.ID,
				"outcome", r.Reason.Outcome(),
				"error", r.Err,
			)
		}
		return
	}

	start := time.Now()
	body, ok := h.transform(r.Response.Body)
	if h.observer != nil {
		h.observer.RecordTransform(ok, time.Since(start))
	}
	if !ok {
		h.logger.InfoContext(ctx, "Upstream body could not be transformed",
			"fetch_id", r.ID,
			"bytes", len(r.Response.Body),
		)
		res.StatusCode = httpwire.StatusUnsupportedMediaType
		return
	}

	res.StatusCode = httpwire.StatusOK
	res.Header.Set("Content-Type", ContentTypeJSON)
	res.Header.Set("Content-Length", strconv.Itoa(len(body)))
	res.Body = body
}
