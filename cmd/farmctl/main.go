// farmctl es el asistente agrícola de EcoVision en la terminal: chat por
// teclado o dictado, diagnóstico de fotos, clima e historial local.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ecovision/internal/app"
	"ecovision/internal/config"
)

const defaultClientID = "farmctl"

// cli guarda flags y dependencias compartidas por los subcomandos.
type cli struct {
	backend  string
	clientID string
	verbose  bool

	cfg    *config.Config
	logger *zap.Logger
	stores *app.Stores
	svcs   *app.Services
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:               "farmctl",
		Short:             "EcoVision smart farming assistant for the terminal",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "History backend: memory, sqlite, redis or postgres (default sqlite)")
	root.PersistentFlags().StringVar(&c.clientID, "client", defaultClientID, "Client identity for history and language preference")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		c.chatCmd(),
		c.languagesCmd(),
		c.translateCmd(),
		c.historyCmd(),
		c.analyzeCmd(),
		c.weatherCmd(),
		c.treatmentCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	switch {
	case c.backend != "":
		cfg.HistoryBackend = strings.ToLower(strings.TrimSpace(c.backend))
	case os.Getenv("HISTORY_BACKEND") == "":
		cfg.HistoryBackend = config.HistoryBackendSQLite
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	c.logger = zap.NewNop()
	if c.verbose {
		c.logger, _ = zap.NewDevelopment()
	}

	c.stores, err = app.OpenStores(cmd.Context(), cfg, c.logger)
	if err != nil {
		return err
	}
	c.svcs, err = app.NewServices(cfg, c.stores, c.logger)
	return err
}

func (c *cli) teardown() {
	if c.stores != nil {
		c.stores.Close()
		c.stores = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	c := &cli{}
	err := newRootCmd(c).ExecuteContext(ctx)
	c.teardown()
	stop()
	if err != nil {
		os.Exit(1)
	}
}
