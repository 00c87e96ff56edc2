package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"humblerss/rssproxy/pkg/transform"
)

func TestRouter(t *testing.T) {
	srv := httptest.NewServer(newRouter(50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer srv.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantParsed bool
		wantDated  bool
	}{
		{name: "full", method: http.MethodGet, path: "/", wantStatus: 200, wantParsed: true, wantDated: true},
		{name: "missing dates", method: http.MethodGet, path: "/missing", wantStatus: 200, wantParsed: true},
		{name: "delayed", method: http.MethodGet, path: "/timeout", wantStatus: 200, wantParsed: true, wantDated: true},
		{name: "broken", method: http.MethodGet, path: "/broken", wantStatus: 200},
		{name: "wrong method", method: http.MethodPost, path: "/", wantStatus: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if resp.StatusCode != http.StatusOK {
				return
			}
			if ct := resp.Header.Get("Content-Type"); ct != contentTypeRSS {
				t.Errorf("Content-Type = %q", ct)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatal(err)
			}
			feed, err := transform.Parse(body)
			if (err == nil) != tt.wantParsed {
				t.Fatalf("Parse() error = %v, wantParsed %v", err, tt.wantParsed)
			}
			if !tt.wantParsed {
				return
			}
			if len(feed.Items) != 2 {
				t.Errorf("got %d items, want 2", len(feed.Items))
			}
			if dated := feed.Items[0].Published != 0; dated != tt.wantDated {
				t.Errorf("item dated = %v, want %v", dated, tt.wantDated)
			}
		})
	}
}
