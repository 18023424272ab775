package bridge

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agbruneau/hookorder/internal/console"
	"github.com/agbruneau/hookorder/internal/logstore"
	"github.com/agbruneau/hookorder/internal/retry"
	"github.com/agbruneau/hookorder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestBeginClearsAndTagsServer(t *testing.T) {
	var out bytes.Buffer
	scopes := NewScopes(console.NewWriterConsole(&out, nil))

	scope, ctx := scopes.Begin(context.Background())
	c := ConsoleFrom(ctx, nil)
	c.Log("🟦 Parent: render")
	scope.Store.Append(models.LevelLog, models.SourceServer, []any{"direct"})

	logs := scope.Store.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, models.SourceServer, logs[0].Source)
	assert.Equal(t, models.HookRender, logs[0].HookType)
	assert.Equal(t, "🟦 Parent: render\n", out.String())
	assert.NotEmpty(t, scope.RequestID)
	scope.End()
	assert.NotPanics(t, scope.End)

	// A reused store starts empty with its counter at zero.
	next, ctx2 := scopes.Begin(context.Background())
	defer next.End()
	assert.Zero(t, next.Store.Len())
	ConsoleFrom(ctx2, nil).Warn("fresh")
	assert.Equal(t, int64(0), next.Store.Logs()[0].ID)
	assert.NotEqual(t, scope.RequestID, next.RequestID)
}

func TestFromContextWithoutScope(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	var out bytes.Buffer
	fallback := console.NewWriterConsole(&out, nil)
	assert.Same(t, fallback, ConsoleFrom(context.Background(), fallback))
	assert.Equal(t, console.Discard, ConsoleFrom(context.Background(), nil))
}

func TestRenderPayloadEmptyWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPayload(&buf, nil, DefaultVar))
	assert.Zero(t, buf.Len())
}

func TestRenderPayloadFormat(t *testing.T) {
	var buf bytes.Buffer
	entries := []models.LogEntry{{ID: 0, Level: models.LevelLog, Formatted: "</script><b>x</b>", Args: []any{"</script>"}}}
	require.NoError(t, RenderPayload(&buf, entries, ""))

	s := buf.String()
	assert.True(t, strings.HasPrefix(s, `<script id="server-logs-injector">window.__SERVER_LOGS__ = [`))
	assert.True(t, strings.HasSuffix(s, `];</script>`))
	assert.Equal(t, 1, strings.Count(s, "</script>"), "payload must not close the element")
}

func TestRenderPayloadRejectsBadVariable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPayload(&buf, []models.LogEntry{{}}, "x;alert(1)")
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestExtractPayload(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
		ok   bool
	}{
		{"present", `<html><script id="server-logs-injector">window.__SERVER_LOGS__ = [1];</script></html>`, "[1]", true},
		{"absent", `<html><body>nothing</body></html>`, "", false},
		{"other variable", `<script id="server-logs-injector">window.OTHER = [1];</script>`, "", false},
		{"unterminated", `<script id="server-logs-injector">window.__SERVER_LOGS__ = [1`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPayload([]byte(tt.page), DefaultVar)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, string(got))
			}
		})
	}
}

func TestSlotConsumedOnce(t *testing.T) {
	var slot Slot
	assert.False(t, slot.Present())
	_, ok := slot.Take()
	assert.False(t, ok)

	slot.Fill([]byte("[]"))
	assert.True(t, slot.Present())
	data, ok := slot.Take()
	assert.True(t, ok)
	assert.Equal(t, "[]", string(data))

	_, ok = slot.Take()
	assert.False(t, ok)
	assert.False(t, slot.Present())
}

func TestMergeIntoAbsentPayload(t *testing.T) {
	store := logstore.New()
	n, err := MergeInto(store, &Slot{})
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, store.Len())
}

func TestMergeIntoMalformedPayload(t *testing.T) {
	store := logstore.New()
	slot := &Slot{}
	slot.Fill([]byte("{not json"))

	n, err := MergeInto(store, slot)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.False(t, slot.Present(), "malformed payload stays consumed")
	assert.Zero(t, store.Len())
}

func TestPayloadRoundTrip(t *testing.T) {
	server := logstore.New()
	server.Append(models.LevelLog, models.SourceServer, []any{"Parent: useState initializer ran"})
	server.Append(models.LevelWarn, models.SourceServer, []any{"Kid: render", map[string]int{"count": 0}})
	server.Append(models.LevelError, models.SourceServer, []any{"Grandkid: useContext ran"})

	var page bytes.Buffer
	page.WriteString("<html><head>")
	require.NoError(t, RenderPayload(&page, server.Snapshot(), DefaultVar))
	page.WriteString("</head></html>")

	payload, ok := ExtractPayload(page.Bytes(), DefaultVar)
	require.True(t, ok)
	slot := &Slot{}
	slot.Fill(payload)

	client := logstore.New()
	client.Append(models.LevelLog, models.SourceClient, []any{"client boot"})
	n, err := MergeInto(client, slot)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	logs := client.Logs()
	require.Len(t, logs, 4)
	want := server.Logs()
	for i, e := range logs[1:] {
		assert.Equal(t, want[i].Formatted, e.Formatted)
		assert.Equal(t, want[i].Level, e.Level)
		assert.Equal(t, want[i].HookType, e.HookType)
		assert.Equal(t, models.SourceServer, e.Source)
		assert.Equal(t, int64(i+1), e.ID)
	}
}

func TestPayloadDegradesUnencodableArgs(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	server := logstore.New()
	server.Append(models.LevelLog, models.SourceServer, []any{"Parent: render"})
	server.Append(models.LevelLog, models.SourceServer, []any{"value", math.NaN()})
	server.Append(models.LevelWarn, models.SourceServer, []any{"loop", cyclic})
	server.Append(models.LevelLog, models.SourceServer, []any{"handler", func() {}})
	server.Append(models.LevelLog, models.SourceServer, []any{"ch", make(chan int)})
	server.Append(models.LevelInfo, models.SourceServer, []any{"Kid: useMemo ran, count:", 1})

	var page bytes.Buffer
	require.NoError(t, RenderPayload(&page, server.Snapshot(), DefaultVar))
	payload, ok := ExtractPayload(page.Bytes(), DefaultVar)
	require.True(t, ok)

	slot := &Slot{}
	slot.Fill(payload)
	client := logstore.New()
	n, err := MergeInto(client, slot)
	require.NoError(t, err)
	require.Equal(t, 6, n)

	logs := client.Logs()
	want := server.Logs()
	for i, e := range logs {
		assert.Equal(t, want[i].Formatted, e.Formatted)
		assert.Equal(t, want[i].HookType, e.HookType)
	}
	assert.Equal(t, []any{"Parent: render"}, logs[0].Args)
	assert.Equal(t, []any{"value", "NaN"}, logs[1].Args)
	assert.Equal(t, []any{"loop", "[circular map[string]interface {}]"}, logs[2].Args)
	assert.Len(t, logs[3].Args, 2)
	assert.Equal(t, "handler", logs[3].Args[0])
	assert.Equal(t, []any{"Kid: useMemo ran, count:", float64(1)}, logs[5].Args)
}

func TestMiddlewareIsolatesConcurrentRequests(t *testing.T) {
	scopes := NewScopes(console.Discard)
	handler := Middleware(scopes, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := r.URL.Query().Get("tag")
		c := ConsoleFrom(r.Context(), nil)
		for i := range 20 {
			c.Log(tag, i)
			time.Sleep(100 * time.Microsecond)
		}
		scope, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "no scope", http.StatusInternalServerError)
			return
		}
		_ = RenderPayload(w, scope.Store.Snapshot(), DefaultVar)
	}))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	var wg sync.WaitGroup
	for i := range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tag := fmt.Sprintf("req-%d", i)
			page, err := FetchPage(context.Background(), srv.Client(), srv.URL+"/?tag="+tag, fastRetry())
			if !assert.NoError(t, err) {
				return
			}
			payload, ok := ExtractPayload(page, DefaultVar)
			if !assert.True(t, ok) {
				return
			}
			store := logstore.New()
			slot := &Slot{}
			slot.Fill(payload)
			n, err := MergeInto(store, slot)
			assert.NoError(t, err)
			assert.Equal(t, 20, n)
			for j, e := range store.Logs() {
				assert.Equal(t, fmt.Sprintf("%s %d", tag, j), e.Formatted)
			}
		}()
	}
	wg.Wait()
}

func TestMiddlewareSetsRequestID(t *testing.T) {
	handler := Middleware(NewScopes(nil), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	page, err := FetchPage(context.Background(), srv.Client(), srv.URL, fastRetry())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(page))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := FetchPage(context.Background(), srv.Client(), srv.URL, fastRetry())
	require.Error(t, err)
	assert.True(t, retry.IsPermanent(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoadServerLogs(t *testing.T) {
	scopes := NewScopes(console.Discard)
	srv := httptest.NewServer(Middleware(scopes, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ConsoleFrom(r.Context(), nil).Info("Kid: useMemo ran")
		scope, _ := FromContext(r.Context())
		fmt.Fprint(w, "<html>")
		_ = RenderPayload(w, scope.Store.Snapshot(), "LOGS")
		fmt.Fprint(w, "</html>")
	})))
	defer srv.Close()

	store := logstore.New()
	slot := &Slot{}
	f := &Fetcher{Client: srv.Client(), Retry: fastRetry()}
	n, err := LoadServerLogs(context.Background(), f, srv.URL, "LOGS", slot, store)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.HookUseMemo, store.Logs()[0].HookType)
	assert.False(t, slot.Present())
}
