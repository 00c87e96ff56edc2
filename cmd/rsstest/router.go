package main

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/gorilla/mux"
)

const contentTypeRSS = "application/rss+xml; charset=utf-8"

// routes serves the fixture feeds.
type routes struct {
	now    func() time.Time
	delay  time.Duration
	logger *slog.Logger
}

func newRouter(delay time.Duration, logger *slog.Logger) *mux.Router {
	rt := &routes{now: time.Now, delay: delay, logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/", rt.full).Methods(http.MethodGet)
	router.HandleFunc("/missing", rt.missing).Methods(http.MethodGet)
	router.HandleFunc("/timeout", rt.timeout).Methods(http.MethodGet)
	router.HandleFunc("/broken", rt.broken).Methods(http.MethodGet)
	router.Use(rt.logRequests)
	return router
}

func (rt *routes) full(w http.ResponseWriter, _ *http.Request) {
	rt.writeFeed(w, fullFeed(rt.now()))
}

func (rt *routes) missing(w http.ResponseWriter, _ *http.Request) {
	rt.writeFeed(w, missingFeed())
}

func (rt *routes) timeout(w http.ResponseWriter, r *http.Request) {
	select {
	case <-time.After(rt.delay):
	case <-r.Context().Done():
		return
	}
	rt.full(w, r)
}

func (rt *routes) broken(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", contentTypeRSS)
	_, _ = io.WriteString(w, BrokenRSS)
}

func (rt *routes) writeFeed(w http.ResponseWriter, feed *feeds.Feed) {
	rss, err := feed.ToRss()
	if err != nil {
		rt.logger.Error("Failed to render feed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeRSS)
	_, _ = io.WriteString(w, rss)
}

func (rt *routes) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		rt.logger.Debug("Fixture request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
