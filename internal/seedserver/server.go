// Package seedserver answers seed payload requests over HTTP.
package seedserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pders01/notes-seed/internal/models"
	"github.com/pders01/notes-seed/internal/seed"
)

const (
	// HealthPath answers a fixed liveness payload
	HealthPath = "/health"
	// SeedPath answers the loaded seed document
	SeedPath = "/seed"
)

var (
	healthBody   = []byte(`{"ok":true}`)
	notFoundBody = []byte(`{"error":"not_found"}`)
)

// Options configures a Server
type Options struct {
	Logger *slog.Logger

	// Document is served on SeedPath. It is shared by every request and
	// never modified.
	Document *seed.Document

	Host string
	Port int
}

// Server serves one immutable seed document over HTTP
type Server struct {
	log  *slog.Logger
	doc  *seed.Document
	addr string

	srv *http.Server
}

// New validates opts and returns a Server that has not bound yet.
// Port 0 picks a free port on Listen.
func New(opts Options) (*Server, error) {
	if opts.Document == nil {
		return nil, errors.New("missing Document")
	}
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid Port: %d", opts.Port)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Server{
		log:  logger,
		doc:  opts.Document,
		addr: net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
	}, nil
}

// ServeHTTP routes a request. There is no access log.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusNotFound, notFoundBody)
		return
	}

	switch r.URL.Path {
	case HealthPath:
		writeJSON(w, http.StatusOK, healthBody)
	case SeedPath:
		writeJSON(w, http.StatusOK, s.doc.Bytes())
	default:
		writeJSON(w, http.StatusNotFound, notFoundBody)
	}
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Listen binds the configured address
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. Each connection is handled on its own goroutine.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.srv = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelError),
	}

	s.log.Info("seed server listening",
		"addr", ln.Addr().String(),
		"conversations", s.doc.Count(models.Conversations),
		"messages", s.doc.Count(models.Messages),
		"notes", s.doc.Count(models.Notes),
		"branches", s.doc.Count(models.Branches),
		"snapshots", s.doc.Count(models.Snapshots),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("seed server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down seed server: %w", err)
	}
	s.log.Info("seed server stopped")
	return nil
}
