package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/pders01/notes-seed/internal/config"
	"github.com/pders01/notes-seed/internal/seeder"
)

var (
	seedWorkspace string
	seedURL       string
	seedReplace   bool
	seedTimeout   time.Duration
	seedToon      bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a workspace store from the seed server",
	Long: `Fetch the seed document and write it into <workspace>/.codex-notes:

  conversations/<id>.json
  messages/<id>.json
  notes/<id>.json
  branches/<id>.json
  snapshots/<id>.json
  index.json

Existing records with the same id are overwritten. Use --replace to delete
the whole store first so the result matches the seed exactly.

On success a JSON summary is printed to stdout.

Examples:
  notes-seed seed --workspace /tmp/ws
  notes-seed seed --workspace /tmp/ws --replace --seed-url http://127.0.0.1:9000/seed`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedWorkspace, "workspace", "", "Workspace root to seed (required)")
	seedCmd.Flags().StringVar(&seedURL, "seed-url", "", "Seed endpoint (default http://127.0.0.1:8765/seed)")
	seedCmd.Flags().BoolVar(&seedReplace, "replace", false, "Delete the existing .codex-notes store before writing")
	seedCmd.Flags().DurationVar(&seedTimeout, "timeout", 0, "Fetch timeout (default 10s)")
	seedCmd.Flags().BoolVar(&seedToon, "toon", false, "Output summary in LLM-friendly toon format")
	_ = seedCmd.MarkFlagRequired("workspace")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedWorkspace == "" {
		return fmt.Errorf("workspace is required (use --workspace)")
	}

	url := seedURL
	if url == "" {
		url = config.GetSeedURL()
	}
	timeout := seedTimeout
	if timeout == 0 {
		timeout = config.GetTimeout()
	}

	summary, err := seeder.Run(commandContext(cmd), seeder.Options{
		Workspace: seedWorkspace,
		SeedURL:   url,
		Replace:   seedReplace,
		Timeout:   timeout,
		Logger:    newLogger(cmd),
	})
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	if seedToon {
		output, err := gotoon.Encode(summary)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(stdout(cmd), output)
		return nil
	}

	return printJSON(cmd, summary)
}

// printJSON writes v as 2-space indented JSON without HTML escaping
func printJSON(cmd *cobra.Command, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err := stdout(cmd).Write(buf.Bytes())
	return err
}
