/*
Point d'entrée du visualiseur TUI, variante mono-processus.

Le visualiseur capture la console de l'arbre de démonstration et affiche en
direct les compteurs par niveau et par hook ainsi que les entrées récentes.
Touches: p ou espace (pause), c (vider), q (quitter).
Construction: go build -o viewer ./cmd/viewer
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbruneau/hookorder/internal/config"
	"github.com/agbruneau/hookorder/internal/console"
	"github.com/agbruneau/hookorder/internal/demo"
	"github.com/agbruneau/hookorder/internal/logstore"
	"github.com/agbruneau/hookorder/internal/viewer"
	"github.com/agbruneau/hookorder/pkg/models"
	ui "github.com/gizak/termui/v3"
	"github.com/spf13/cobra"
)

var (
	configPath string
	variant    string
	watch      bool
)

var rootCmd = &cobra.Command{
	Use:   "viewer",
	Short: "Watch captured lifecycle logs in the terminal",
	Long: `Run the demo component tree in-process and display every captured
console call as it happens.

Keys:
  p, <Space>   pause or resume capture
  c            clear captured entries
  q, <C-c>     quit`,
	SilenceUsage: true,
	RunE:         runViewer,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.Flags().StringVar(&variant, "variant", "", "Demo variant (overrides demo.variant)")
	rootCmd.Flags().BoolVar(&watch, "watch", true, "Reload capture settings when the configuration file changes")
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if variant != "" {
		cfg.Demo.Variant = variant
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// The terminal belongs to termui: forwarded console output and
	// operational logs both go to the pass-through file.
	level, _ := cfg.SlogLevel()
	logFile, err := os.OpenFile(cfg.Viewer.PassthroughFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Viewer.PassthroughFile, err)
	}
	defer logFile.Close()
	original := console.NewWriterConsole(logFile, logFile, console.WithFallback(logFile))
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := logstore.New(logstore.WithPaused(cfg.Capture.StartPaused))
	host := console.NewHost(original)
	host.Install(store, models.SourceNone)
	defer host.Uninstall()

	v := viewer.New(store, cfg.Viewer)
	v.Attach()
	defer v.Detach()

	if err := ui.Init(); err != nil {
		return fmt.Errorf("initialisation de l'UI: %w", err)
	}
	defer ui.Close()

	go func() {
		sc := demo.New(demo.NewConfig(cfg), host)
		if err := sc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("demo stopped", "error", err)
		}
		logger.Info("demo finished", "session", sc.SessionID, "steps", sc.Steps())
	}()

	if watch {
		go func() {
			err := config.Watch(ctx, configPath, func(next *config.AppConfig, err error) {
				if err != nil {
					logger.Warn("config reload failed", "error", err)
					return
				}
				v.ApplyConfig(next)
				logger.Info("config reloaded",
					"paused", next.Capture.StartPaused,
					"max_recent_logs", next.Viewer.MaxRecentLogs,
					"max_row_length", next.Viewer.MaxRowLength)
			})
			if err != nil {
				logger.Warn("config watch disabled", "path", configPath, "error", err)
			}
		}()
	}

	w := viewer.CreateWidgets()
	w.Layout(ui.TerminalDimensions())
	v.UpdateUI(w)
	ui.Render(w.Drawables()...)

	uiEvents := ui.PollEvents()
	ticker := time.NewTicker(cfg.GetUIUpdateInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-uiEvents:
			switch e.Type {
			case ui.KeyboardEvent:
				if v.HandleKey(e.ID) == viewer.ActionQuit {
					return nil
				}
				v.UpdateUI(w)
				ui.Render(w.Drawables()...)
			case ui.ResizeEvent:
				payload := e.Payload.(ui.Resize)
				w.Layout(payload.Width, payload.Height)
				ui.Clear()
				ui.Render(w.Drawables()...)
			}
		case <-ticker.C:
			v.Sample()
			v.UpdateUI(w)
			ui.Render(w.Drawables()...)
		}
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
