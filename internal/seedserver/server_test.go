package seedserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/notes-seed/internal/seed"
)

func newTestServer(t *testing.T, doc *seed.Document) *Server {
	t.Helper()
	s, err := New(Options{Document: doc, Host: "127.0.0.1", Port: 0})
	require.NoError(t, err)
	return s
}

func TestNewRequiresDocument(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{Document: seed.Default(), Port: 70000})
	require.Error(t, err)
}

func TestServer_routes(t *testing.T) {
	s := newTestServer(t, seed.Default())

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/health", http.StatusOK, `{"ok":true}`},
		{"seed", http.MethodGet, "/seed", http.StatusOK, string(seed.Default().Bytes())},
		{"seed with query", http.MethodGet, "/seed?v=1", http.StatusOK, string(seed.Default().Bytes())},
		{"unknown path", http.MethodGet, "/seeds", http.StatusNotFound, `{"error":"not_found"}`},
		{"root", http.MethodGet, "/", http.StatusNotFound, `{"error":"not_found"}`},
		{"post to seed", http.MethodPost, "/seed", http.StatusNotFound, `{"error":"not_found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "http://127.0.0.1:8765"+tt.target, nil)
			w := httptest.NewRecorder()
			s.ServeHTTP(w, r)

			res := w.Result()
			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
			assert.Equal(t, strconv.Itoa(len(body)), res.Header.Get("Content-Length"))
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestServer_healthIgnoresSeedContent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	doc, err := seed.Load(path)
	require.NoError(t, err)
	s := newTestServer(t, doc)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, map[string]any{"ok": true}, got)
}

func TestServer_concurrentClients(t *testing.T) {
	doc := seed.Default()
	ts := httptest.NewServer(newTestServer(t, doc))
	defer ts.Close()

	const clients = 16
	bodies := make([][]byte, clients)

	var wg conc.WaitGroup
	for i := 0; i < clients; i++ {
		i := i
		wg.Go(func() {
			resp, err := http.Get(ts.URL + SeedPath)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			bodies[i], _ = io.ReadAll(resp.Body)
		})
	}
	wg.Wait()

	for i, b := range bodies {
		assert.Equal(t, string(doc.Bytes()), string(b), "client %d", i)
	}
}

func TestServer_serveUntilCancelled(t *testing.T) {
	s := newTestServer(t, seed.Default())
	ln, err := s.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln)
	}()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + HealthPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
