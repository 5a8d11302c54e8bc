package cmd

import (
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/pders01/notes-seed/internal/models"
)

var (
	listWorkspace string
	listJSON      bool
	listToon      bool
)

var listCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List record ids in a store collection",
	Long: `List the ids of every record file in one collection, sorted.

Collections: conversations, messages, notes, branches, snapshots

Examples:
  notes-seed list notes --workspace /tmp/ws
  notes-seed list messages --workspace /tmp/ws --json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listWorkspace, "workspace", "", "Workspace containing .codex-notes")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listToon, "toon", false, "Output in LLM-friendly toon format")
}

type listOutput struct {
	Collection string   `json:"collection"`
	IDs        []string `json:"ids"`
}

func runList(cmd *cobra.Command, args []string) error {
	collection, err := models.ParseCollection(args[0])
	if err != nil {
		return err
	}

	st, err := openStore(listWorkspace)
	if err != nil {
		return err
	}

	ids, err := st.ListIDs(collection)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", collection, err)
	}

	result := listOutput{Collection: string(collection), IDs: ids}

	if listJSON {
		return printJSON(cmd, result)
	}

	if listToon {
		output, err := gotoon.Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(stdout(cmd), output)
		return nil
	}

	out := stdout(cmd)
	if len(ids) == 0 {
		fmt.Fprintf(out, "No %s found\n", collection)
		return nil
	}

	fmt.Fprintf(out, "Found %d record(s) in %s:\n\n", len(ids), collection)
	for _, id := range ids {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}
