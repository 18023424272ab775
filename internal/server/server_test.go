package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agbruneau/hookorder/internal/bridge"
	"github.com/agbruneau/hookorder/internal/config"
	"github.com/agbruneau/hookorder/internal/console"
	"github.com/agbruneau/hookorder/internal/logstore"
	"github.com/agbruneau/hookorder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPageEmbedsServerLogs(t *testing.T) {
	var out bytes.Buffer
	s := New(config.DefaultConfig(), console.NewWriterConsole(&out, nil), quietLogger())

	rec := get(t, s.Handler(), "/with-compiler")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Len(t, rec.Header().Get(bridge.RequestIDHeader), 36)

	body := rec.Body.Bytes()
	payload, ok := bridge.ExtractPayload(body, config.ServerPayloadVar)
	require.True(t, ok, "payload missing from page")

	slot := &bridge.Slot{}
	slot.Fill(payload)
	store := logstore.New()
	n, err := bridge.MergeInto(store, slot)
	require.NoError(t, err)
	assert.Positive(t, n)

	logs := store.Logs()
	assert.Contains(t, logs[0].Formatted, "with-compiler")
	for _, e := range logs {
		assert.Equal(t, models.SourceServer, e.Source)
		assert.NotEqual(t, models.HookUseEffect, e.HookType)
	}
	assert.Contains(t, out.String(), "🟦 Parent (Compiler): render", "server console still receives output")
}

func TestEachRequestStartsEmpty(t *testing.T) {
	s := New(config.DefaultConfig(), console.Discard, quietLogger())
	h := s.Handler()

	count := func() int {
		payload, ok := bridge.ExtractPayload(get(t, h, "/without-compiler").Body.Bytes(), config.ServerPayloadVar)
		require.True(t, ok)
		slot := &bridge.Slot{}
		slot.Fill(payload)
		n, err := bridge.MergeInto(logstore.New(), slot)
		require.NoError(t, err)
		return n
	}
	first := count()
	assert.Equal(t, first, count(), "no entries leak between requests")
}

func TestRootUsesConfiguredVariant(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Demo.Variant = config.DemoVariantWithCompiler
	s := New(cfg, console.Discard, quietLogger())

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>hookorder: with-compiler</title>")
}

func TestHealthzAndUnknownRoute(t *testing.T) {
	s := New(config.DefaultConfig(), console.Discard, quietLogger())
	h := s.Handler()

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
	assert.Empty(t, rec.Header().Get(bridge.RequestIDHeader))

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.ShutdownTimeoutMs = 1000
	s := New(cfg, console.Discard, quietLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestPageIsValidHTMLShell(t *testing.T) {
	s := New(config.DefaultConfig(), console.Discard, quietLogger())
	body := get(t, s.Handler(), "/without-compiler").Body.String()
	head := body[:strings.Index(body, "</head>")]
	assert.Contains(t, head, `<script id="server-logs-injector">`, "payload precedes client code")
}
