/*
Package server serves the server-rendered pages of the two-process variant.

Each page request runs the render phase of the demo tree through the request's
intercepting console, then embeds the captured entries in the page so the
client can merge them.
*/
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"

	"github.com/agbruneau/hookorder/internal/bridge"
	"github.com/agbruneau/hookorder/internal/config"
	"github.com/agbruneau/hookorder/internal/console"
	"github.com/agbruneau/hookorder/internal/demo"
	"golang.org/x/sync/errgroup"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>hookorder: {{.Variant}}</title>
{{.Payload}}
</head>
<body data-request-id="{{.RequestID}}">
<h1>Hook order ({{.Variant}})</h1>
<p>{{.Count}} server entries captured.</p>
<div id="root"></div>
</body>
</html>
`))

type pageData struct {
	Variant   demo.Variant
	RequestID string
	Count     int
	Payload   template.HTML
}

// Server renders demo pages with request-scoped capture.
type Server struct {
	cfg    *config.AppConfig
	scopes *bridge.Scopes
	logger *slog.Logger
}

// New creates a server whose captured calls are also forwarded to original.
func New(cfg *config.AppConfig, original console.Console, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		scopes: bridge.NewScopes(original),
		logger: logger,
	}
}

// Handler returns the routes: "/", "/with-compiler", "/without-compiler"
// and "/healthz".
func (s *Server) Handler() http.Handler {
	pages := http.NewServeMux()
	pages.HandleFunc("GET /{$}", s.handlePage(demo.Variant(s.cfg.Demo.Variant)))
	pages.HandleFunc("GET /with-compiler", s.handlePage(demo.WithCompiler))
	pages.HandleFunc("GET /without-compiler", s.handlePage(demo.WithoutCompiler))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/", bridge.Middleware(s.scopes, pages))
	return mux
}

func (s *Server) handlePage(variant demo.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := bridge.FromContext(r.Context())
		if !ok {
			http.Error(w, "capture scope missing", http.StatusInternalServerError)
			return
		}

		sc := demo.New(&demo.Config{Variant: variant}, scope.Console())
		sc.Prerender()

		entries := scope.Store.Snapshot()
		var payload bytes.Buffer
		if err := bridge.RenderPayload(&payload, entries, s.cfg.Server.PayloadVar); err != nil {
			s.logger.Error("render payload", "request_id", scope.RequestID, "error", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := pageTmpl.Execute(w, pageData{
			Variant:   variant,
			RequestID: scope.RequestID,
			Count:     len(entries),
			Payload:   template.HTML(payload.String()),
		})
		if err != nil {
			s.logger.Error("write page", "request_id", scope.RequestID, "error", err)
			return
		}
		s.logger.Debug("page served", "variant", variant, "request_id", scope.RequestID, "entries", len(entries))
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: config.ServerReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}
