package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/notes-seed/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Write a default config.toml for notes-seed.

The file goes to --config if given, otherwise to
$HOME/.config/notes-seed/config.toml. An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	created, err := config.WriteDefault(path)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	if !created {
		fmt.Fprintf(out, "Config already exists: %s\n", path)
		return nil
	}

	fmt.Fprintf(out, "✓ Created default config: %s\n", path)
	fmt.Fprintln(out, "  Start the server with: notes-seed serve")
	return nil
}
