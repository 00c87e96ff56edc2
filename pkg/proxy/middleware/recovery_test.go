package middleware

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"humblerss/rssproxy/pkg/config"
	"humblerss/rssproxy/pkg/httpwire"
	"humblerss/rssproxy/pkg/server"
)

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		wrapped := RecoveryMiddleware(server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
			panic("test panic")
		}))

		responded := false
		// Should not panic
		wrapped.Serve(context.Background(), &httpwire.Request{Method: "GET"}, &httpwire.Response{}, func(*httpwire.Response) {
			responded = true
		})

		if responded {
			t.Error("recovered panic should not produce a response")
		}
	})

	t.Run("passes through normal requests", func(t *testing.T) {
		wrapped := RecoveryMiddleware(server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
			res.StatusCode = httpwire.StatusOK
			respond(res)
		}))

		var got *httpwire.Response
		wrapped.Serve(context.Background(), &httpwire.Request{Method: "GET"}, &httpwire.Response{}, func(r *httpwire.Response) {
			got = r
		})

		if got == nil || got.StatusCode != httpwire.StatusOK {
			t.Errorf("response = %+v, want 200", got)
		}
	})

	t.Run("drops the session connection", func(t *testing.T) {
		cfg := config.Default()
		cfg.Port = 0
		cfg.Server.ListenHost = "127.0.0.1"

		srv := server.New(cfg, RecoveryMiddleware(server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
			panic(struct{ reason string }{"not a string"})
		})), server.Options{})
		if err := srv.Listen(); err != nil {
			t.Fatalf("Listen() error = %v", err)
		}
		go srv.Serve(context.Background())
		defer srv.Stop()

		conn, err := net.Dial("tcp", srv.Addr().String())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

		io.WriteString(conn, "GET /?url=x HTTP/1.1\r\n\r\n")
		out, err := io.ReadAll(conn)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("got response %q after panic, want closed connection", out)
		}
	})
}
