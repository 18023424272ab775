/*
Point d'entrée du serveur de la variante deux processus.

Le serveur rend les pages de démonstration et y embarque les entrées console
capturées pendant le rendu.
Construction: go build -o server ./cmd/server
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbruneau/hookorder/internal/config"
	"github.com/agbruneau/hookorder/internal/console"
	"github.com/agbruneau/hookorder/internal/server"
	"github.com/spf13/cobra"
)

var (
	configPath string
	addr       string
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve demo pages with embedded server-side console logs",
	Long: `Serve server-rendered demo pages. Each request captures the console
calls made while rendering and embeds them in the page for the client.

Routes:
  /                   configured demo variant
  /with-compiler      memoized variant
  /without-compiler   plain variant
  /healthz            liveness probe`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
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

	fmt.Printf("🟢 Serving on http://%s (variant %s)\n", cfg.Server.Addr, cfg.Demo.Variant)
	return server.New(cfg, original, logger).Run(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
