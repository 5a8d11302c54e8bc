package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pders01/notes-seed/internal/config"
	"github.com/pders01/notes-seed/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "notes-seed",
	Short: "Deterministic seed data for codex notes end-to-end tests",
	Long: `notes-seed provides the fixtures an end-to-end run of the notes workflow needs:
  - serve: answer a fixed seed document over HTTP
  - seed: fetch that document and write it into <workspace>/.codex-notes
  - stats, list, index: inspect and repair a seeded store

Every seed run writes one JSON file per record plus an index.json summary,
so the application under test only has to read a file tree.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/notes-seed/config.toml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Dir(path))
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	config.ConfigureEnv(viper.GetViper())
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stdout returns where command output goes. Tests call run functions
// with a nil command.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd == nil || cmd.Context() == nil {
		return context.Background()
	}
	return cmd.Context()
}

// newLogger writes lifecycle logs to stderr so stdout stays parseable
func newLogger(cmd *cobra.Command) *slog.Logger {
	w := io.Writer(os.Stderr)
	if cmd != nil {
		w = cmd.ErrOrStderr()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: config.GetLogLevel()}))
}

// openStore resolves an existing store inside workspace
func openStore(workspace string) (*store.Store, error) {
	if workspace == "" {
		return nil, fmt.Errorf("workspace is required (use --workspace)")
	}

	abs, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	st := store.New(afero.NewOsFs(), abs)
	ok, err := st.Exists()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s (run: notes-seed seed --workspace %s)", store.ErrNotFound, st.Root(), workspace)
	}
	return st, nil
}
