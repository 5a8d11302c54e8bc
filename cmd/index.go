package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	indexWorkspace string
	indexJSON      bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the store index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recount records on disk and rewrite index.json",
	Long: `Recount the record files in every collection and rewrite index.json.

A seed run already writes the index from the document it fetched. Use this
after editing the store by hand.

Example:
  notes-seed index rebuild --workspace /tmp/ws`,
	Args: cobra.NoArgs,
	RunE: runIndexRebuild,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexRebuildCmd)

	indexRebuildCmd.Flags().StringVar(&indexWorkspace, "workspace", "", "Workspace containing .codex-notes")
	indexRebuildCmd.Flags().BoolVar(&indexJSON, "json", false, "Output in JSON format")
}

func runIndexRebuild(cmd *cobra.Command, args []string) error {
	st, err := openStore(indexWorkspace)
	if err != nil {
		return err
	}

	idx, err := st.RebuildIndex(time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	if indexJSON {
		return printJSON(cmd, idx)
	}

	fmt.Fprintf(stdout(cmd), "rebuilt index: conversations=%d messages=%d notes=%d branches=%d snapshots=%d\n",
		idx.Conversations, idx.Messages, idx.Notes, idx.Branches, idx.Snapshots)
	return nil
}
