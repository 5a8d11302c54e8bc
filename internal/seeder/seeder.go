// Package seeder fetches a seed payload and materializes it into a
// workspace store.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/pders01/notes-seed/internal/models"
	"github.com/pders01/notes-seed/internal/store"
)

const (
	// DefaultSeedURL is where the seed server listens by default
	DefaultSeedURL = "http://127.0.0.1:8765/seed"
	// DefaultTimeout bounds the whole fetch
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrUpstreamUnavailable means the seed endpoint could not be reached,
	// timed out, or answered with a non-200 status
	ErrUpstreamUnavailable = errors.New("seed endpoint unavailable")
	// ErrMalformedPayload means the seed endpoint answered with something
	// other than a valid seed document
	ErrMalformedPayload = errors.New("malformed seed payload")
)

// Options configures a single materialization run
type Options struct {
	Workspace string
	SeedURL   string
	Replace   bool
	Timeout   time.Duration

	// Fs defaults to the OS filesystem
	Fs afero.Fs
	// HTTPClient defaults to a client with Timeout applied
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Now stamps index.json; defaults to time.Now
	Now func() time.Time
}

// Fetch retrieves and decodes the seed document at url
func Fetch(ctx context.Context, client *http.Client, url string) (*models.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid seed url %q: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: seed endpoint returned %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrUpstreamUnavailable, err)
	}

	payload, err := models.DecodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return payload, nil
}

// Run clears the store if asked, fetches the payload, writes every record
// and then index.json. A fetch failure leaves the store untouched (apart
// from the clear). A write failure aborts the run and may leave a partially
// written store behind.
func Run(ctx context.Context, opts Options) (*models.Summary, error) {
	if opts.Workspace == "" {
		return nil, errors.New("workspace is required")
	}
	workspace, err := filepath.Abs(opts.Workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	seedURL := opts.SeedURL
	if seedURL == "" {
		seedURL = DefaultSeedURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if ctx == nil {
		ctx = context.Background()
	}

	st := store.New(fs, workspace)
	if opts.Replace {
		logger.Info("clearing store", "store", st.Root())
	}
	if err := st.Prepare(opts.Replace); err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Debug("fetching seed", "url", seedURL)
	payload, err := Fetch(fetchCtx, client, seedURL)
	if err != nil {
		return nil, err
	}

	idx := models.Index{Version: models.IndexVersion}
	for _, c := range models.Collections {
		records := payload.Records(c)
		for _, r := range records {
			if err := st.WriteRecord(c, r); err != nil {
				return nil, fmt.Errorf("failed to write %s/%s: %w", c, r.ID, err)
			}
		}
		idx.SetCount(c, len(records))
		logger.Debug("wrote collection", "collection", string(c), "records", len(records))
	}

	idx.GeneratedAt = now().Unix()
	if err := st.WriteIndex(idx); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}

	logger.Info("store seeded",
		"store", st.Root(),
		"conversations", idx.Conversations,
		"messages", idx.Messages,
		"notes", idx.Notes,
		"branches", idx.Branches,
		"snapshots", idx.Snapshots,
	)

	return &models.Summary{Seeded: idx, Store: st.Root()}, nil
}
