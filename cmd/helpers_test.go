package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"

	"github.com/pders01/notes-seed/internal/seed"
	"github.com/pders01/notes-seed/internal/seedserver"
	"github.com/pders01/notes-seed/internal/testutil"
)

// newTestCommand returns a command whose stdout is captured
func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// startSeedServer serves the built-in seed document for the test's lifetime
func startSeedServer(t *testing.T) string {
	t.Helper()
	s, err := seedserver.New(seedserver.Options{Document: seed.Default()})
	if err != nil {
		t.Fatalf("failed to create seed server: %v", err)
	}
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts.URL + seedserver.SeedPath
}

// seedTestWorkspace materializes the built-in seed into ws
func seedTestWorkspace(t *testing.T, ws *testutil.TempWorkspace) {
	t.Helper()

	seedWorkspace = ws.Path
	seedURL = startSeedServer(t)
	seedReplace = true
	seedTimeout = 0
	seedToon = false

	cmd, _ := newTestCommand()
	if err := runSeed(cmd, []string{}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}
