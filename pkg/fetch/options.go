package fetch

import (
	"context"
	"log/slog"
	"net"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"humblerss/rssproxy/pkg/httpwire"
)

// DefaultPort is used when the target URL names no port.
const DefaultPort = "80"

// TracerName is the instrumentation scope of fetch spans.
const TracerName = "humblerss/rssproxy/pkg/fetch"

// Resolver turns a host into candidate addresses, tried in order.
// *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Dialer opens stream connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Observer is told about every completed fetch before its callback runs.
// Implementations must not block.
type Observer interface {
	ObserveFetch(Result)
}

// Options configures a Client. The zero value is usable.
type Options struct {
	// Resolver defaults to net.DefaultResolver.
	Resolver Resolver

	// Dialer defaults to a zero net.Dialer.
	Dialer Dialer

	// MaxHeadBytes bounds the status line plus headers.
	// Zero selects httpwire.DefaultMaxHeadBytes.
	MaxHeadBytes int

	// MaxBodyBytes bounds the body. Zero means unlimited.
	MaxBodyBytes int64

	// UserAgent is sent upstream when non-empty.
	UserAgent string

	Observers []Observer

	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Resolver == nil {
		o.Resolver = net.DefaultResolver
	}
	if o.Dialer == nil {
		o.Dialer = &net.Dialer{}
	}
	if o.MaxHeadBytes <= 0 {
		o.MaxHeadBytes = httpwire.DefaultMaxHeadBytes
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(TracerName)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Logger = o.Logger.With("component", "fetch")
	return o
}
