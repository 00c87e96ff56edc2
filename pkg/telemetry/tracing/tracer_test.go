package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"humblerss/rssproxy/pkg/config"
)

func enabledConfig(sampler string) *config.TracingConfig {
	return &config.TracingConfig{
		Enabled:     true,
		Sampler:     sampler,
		SampleRatio: 1.0,
		Exporter:    "otlp",
		Endpoint:    "localhost:4317",
		ServiceName: "test-service",
		OTLP: config.OTLPConfig{
			Insecure: true,
			Timeout:  time.Second,
		},
	}
}

// TestNew tests the creation of a new tracer
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name: "disabled tracing",
			config: &config.TracingConfig{
				Enabled:     false,
				ServiceName: "test-service",
			},
		},
		{
			name:   "enabled with ratio sampler",
			config: enabledConfig(config.SamplerRatio),
		},
		{
			name: "unsupported exporter",
			config: func() *config.TracingConfig {
				cfg := enabledConfig(config.SamplerAlways)
				cfg.Exporter = "zipkin"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name:    "invalid sampler",
			config:  enabledConfig("sometimes"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := otel.GetTracerProvider()
			defer otel.SetTracerProvider(prev)

			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tracer.Enabled() != tt.config.Enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.config.Enabled)
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			// No spans were started, so shutting down does not reach the collector.
			if err := tracer.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestNewWithExporter_RecordsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(enabledConfig(config.SamplerAlways), exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, parent := tracer.Start(context.Background(), "session")
	if TraceID(ctx) == "" {
		t.Error("TraceID() is empty inside a sampled span")
	}

	// The global provider is the one just installed.
	_, child := otel.Tracer("fetch").Start(ctx, "fetch GET")
	SetStatus(child, errors.New("connection refused"))
	child.End()
	SetStatus(parent, nil)
	parent.End()

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
	}
	if byName["fetch GET"].Parent.SpanID() != byName["session"].SpanContext.SpanID() {
		t.Error("fetch span is not a child of the session span")
	}
	if byName["fetch GET"].Status.Code != codes.Error {
		t.Errorf("fetch span status = %v, want Error", byName["fetch GET"].Status.Code)
	}
	if byName["session"].Status.Code != codes.Ok {
		t.Errorf("session span status = %v, want Ok", byName["session"].Status.Code)
	}
}

func TestSampler_FromConfigFile(t *testing.T) {
	const sessions = 8

	tests := []struct {
		name string
		// tracing holds the sampler keys of telemetry.tracing.
		tracing string
		// remote starts every session inside a sampled remote trace.
		remote    bool
		wantSpans int
		wantErr   bool
	}{
		{name: "always", tracing: "sampler: always", wantSpans: 2 * sessions},
		{name: "never", tracing: "sampler: never", wantSpans: 0},
		{name: "never keeps a sampled parent", tracing: "sampler: never", remote: true, wantSpans: 2 * sessions},
		{name: "full ratio", tracing: "sampler: ratio\n    sample_ratio: 1.0", wantSpans: 2 * sessions},
		{name: "unknown sampler", tracing: "sampler: sometimes", wantErr: true},
		{name: "ratio above one", tracing: "sampler: ratio\n    sample_ratio: 1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "telemetry:\n  tracing:\n    enabled: true\n    endpoint: localhost:4317\n    " + tt.tracing + "\n"
			cfg, err := config.Parse([]byte(doc))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if err := config.Validate(cfg); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			prev := otel.GetTracerProvider()
			defer otel.SetTracerProvider(prev)

			exporter := tracetest.NewInMemoryExporter()
			tracer, err := NewWithExporter(&cfg.Telemetry.Tracing, exporter)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewWithExporter() accepted an invalid sampler")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewWithExporter() error = %v", err)
			}
			defer tracer.Shutdown(context.Background())

			parent := context.Background()
			if tt.remote {
				parent = trace.ContextWithRemoteSpanContext(parent, trace.NewSpanContext(trace.SpanContextConfig{
					TraceID:    trace.TraceID{0x01},
					SpanID:     trace.SpanID{0x01},
					TraceFlags: trace.FlagsSampled,
					Remote:     true,
				}))
			}
			for i := 0; i < sessions; i++ {
				ctx, session := tracer.Start(parent, "session")
				_, fetch := otel.Tracer("fetch").Start(ctx, "fetch GET")
				if fetch.SpanContext().IsSampled() != session.SpanContext().IsSampled() {
					t.Errorf("session %d: fetch span sampling differs from its session", i)
				}
				fetch.End()
				session.End()
			}
			if err := tracer.ForceFlush(context.Background()); err != nil {
				t.Fatalf("ForceFlush() error = %v", err)
			}

			if n := len(exporter.GetSpans()); n != tt.wantSpans {
				t.Errorf("exported %d spans, want %d", n, tt.wantSpans)
			}
		})
	}
}

func TestDisabledTracer(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, span := tracer.Start(context.Background(), "session")
	span.End()

	if TraceID(ctx) != "" {
		t.Error("noop tracer produced a trace ID")
	}
	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Errorf("ForceFlush() error = %v", err)
	}
	if tracer.Trace() == nil {
		t.Error("Trace() returned nil")
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID() = %q, want empty", got)
	}
}
