package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pders01/notes-seed/internal/config"
	"github.com/pders01/notes-seed/internal/seed"
	"github.com/pders01/notes-seed/internal/seedserver"
)

var (
	serveHost     string
	servePort     int
	serveSeedFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the seed document over HTTP",
	Long: `Serve a fixed seed document until interrupted.

Routes:
  GET /health   {"ok": true}
  GET /seed     the seed document
  anything else 404 {"error": "not_found"}

Without --seed-file the built-in document is served. A seed file must hold
a JSON object; anything else aborts before the port is bound.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind host (default 127.0.0.1)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Bind port (default 8765)")
	serveCmd.Flags().StringVar(&serveSeedFile, "seed-file", "", "JSON seed file to serve instead of the built-in document")
}

func runServe(cmd *cobra.Command, args []string) error {
	host := serveHost
	if host == "" {
		host = config.GetHost()
	}
	port := servePort
	if port == 0 {
		port = config.GetPort()
	}
	seedFile := serveSeedFile
	if seedFile == "" {
		seedFile = config.GetSeedFile()
	}

	doc, err := seed.Load(seedFile)
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}

	srv, err := seedserver.New(seedserver.Options{
		Logger:   newLogger(cmd),
		Document: doc,
		Host:     host,
		Port:     port,
	})
	if err != nil {
		return err
	}

	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout(cmd), "seed server listening on http://%s\n", ln.Addr())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx, ln)
}
