package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/pders01/notes-seed/internal/models"
	"github.com/pders01/notes-seed/internal/store"
)

var (
	statsWorkspace string
	statsJSON      bool
	statsToon      bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Long: `Compare the counts recorded in index.json with the record files on disk.

A freshly seeded store has no drift. Drift means records were added or
removed after the last seed run (or the run failed part way).

Examples:
  notes-seed stats --workspace /tmp/ws
  notes-seed stats --workspace /tmp/ws --json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsWorkspace, "workspace", "", "Workspace containing .codex-notes")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
	statsCmd.Flags().BoolVar(&statsToon, "toon", false, "Output in LLM-friendly toon format")
}

type collectionStats struct {
	Collection string `json:"collection"`
	Indexed    int    `json:"indexed"`
	OnDisk     int    `json:"on_disk"`
}

type storeStats struct {
	Store       string            `json:"store"`
	HasIndex    bool              `json:"has_index"`
	Version     int               `json:"version,omitempty"`
	GeneratedAt int64             `json:"generated_at,omitempty"`
	Collections []collectionStats `json:"collections"`
	Drift       []string          `json:"drift"`
}

func collectStats(st *store.Store) (*storeStats, error) {
	stats := &storeStats{
		Store:       st.Root(),
		Collections: []collectionStats{},
		Drift:       []string{},
	}

	idx, err := st.ReadIndex()
	switch {
	case err == nil:
		stats.HasIndex = true
		stats.Version = idx.Version
		stats.GeneratedAt = idx.GeneratedAt
	case errors.Is(err, store.ErrNotFound):
		idx = &models.Index{}
	default:
		return nil, err
	}

	for _, c := range models.Collections {
		n, err := st.CountRecords(c)
		if err != nil {
			return nil, err
		}
		cs := collectionStats{Collection: string(c), Indexed: idx.Count(c), OnDisk: n}
		stats.Collections = append(stats.Collections, cs)
		if stats.HasIndex && cs.Indexed != cs.OnDisk {
			stats.Drift = append(stats.Drift, string(c))
		}
	}

	return stats, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore(statsWorkspace)
	if err != nil {
		return err
	}

	stats, err := collectStats(st)
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	if statsJSON {
		return printJSON(cmd, stats)
	}

	if statsToon {
		output, err := gotoon.Encode(stats)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(stdout(cmd), output)
		return nil
	}

	out := stdout(cmd)
	fmt.Fprintln(out, "Store Statistics")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Store:     %s\n", stats.Store)
	if stats.HasIndex {
		fmt.Fprintf(out, "Version:   %d\n", stats.Version)
		fmt.Fprintf(out, "Generated: %s\n", time.Unix(stats.GeneratedAt, 0).UTC().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintln(out, "Index:     missing (run: notes-seed index rebuild)")
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  %-15s %7s %7s\n", "collection", "indexed", "on disk")
	for _, cs := range stats.Collections {
		marker := ""
		if stats.HasIndex && cs.Indexed != cs.OnDisk {
			marker = "  ← drift"
		}
		fmt.Fprintf(out, "  %-15s %7d %7d%s\n", cs.Collection, cs.Indexed, cs.OnDisk, marker)
	}

	if len(stats.Drift) > 0 {
		fmt.Fprintf(out, "\n%d collection(s) differ from index.json\n", len(stats.Drift))
	}

	return nil
}
