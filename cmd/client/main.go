/*
Point d'entrée du client de la variante deux processus.

Le client télécharge une page rendue par le serveur, fusionne les entrées
embarquées dans son propre store, hydrate l'arbre de démonstration puis
affiche l'ensemble des entrées dans l'ordre de capture.
Construction: go build -o client ./cmd/client
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbruneau/hookorder/internal/bridge"
	"github.com/agbruneau/hookorder/internal/config"
	"github.com/agbruneau/hookorder/internal/console"
	"github.com/agbruneau/hookorder/internal/demo"
	"github.com/agbruneau/hookorder/internal/logstore"
	"github.com/agbruneau/hookorder/internal/report"
	"github.com/agbruneau/hookorder/pkg/models"
	"github.com/spf13/cobra"
)

var (
	configPath string
	pageURL    string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "client",
	Short: "Merge server-side console logs with the client-side lifecycle",
	Long: `Fetch a page rendered by the hookorder server, merge the console
entries it embeds, then mount the demo tree locally and print every
entry in capture order.

Examples:
  client --url http://127.0.0.1:8080/with-compiler
  client --config config.yaml --no-color`,
	SilenceUsage: true,
	RunE:         runClient,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.Flags().StringVar(&pageURL, "url", "", "Page to fetch (overrides client.page_url)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored levels")
}

func runClient(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if pageURL != "" {
		cfg.Client.PageURL = pageURL
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	original, closeOriginal, err := console.Open(cfg.Capture.Passthrough, logger)
	if err != nil {
		return err
	}
	defer closeOriginal()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := logstore.New(logstore.WithPaused(cfg.Capture.StartPaused))
	host := console.NewHost(original)
	host.Install(store, models.SourceClient)
	defer host.Uninstall()

	fetcher := &bridge.Fetcher{
		Client: &http.Client{Timeout: config.ClientRequestTimeout},
		Retry:  cfg.RetryPolicy(),
		Logger: logger,
	}
	var slot bridge.Slot
	merged, err := bridge.LoadServerLogs(ctx, fetcher, cfg.Client.PageURL, cfg.Server.PayloadVar, &slot, store)
	if err != nil {
		// The client still hydrates without server logs.
		logger.Error("server logs unavailable", "url", cfg.Client.PageURL, "error", err)
	} else {
		logger.Info("server logs merged", "url", cfg.Client.PageURL, "entries", merged)
	}

	demoCfg := demo.NewConfig(cfg)
	demoCfg.Interactions = 0
	demo.New(demoCfg, host).Mount()

	report.Entries(os.Stdout, store.Logs(), report.Options{Color: !noColor})
	fmt.Printf("\n📊 %d entries (%d from server)\n", store.Len(), merged)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
