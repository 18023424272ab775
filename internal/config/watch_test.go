package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "capture:\n  start_paused: false\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan *AppConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *AppConfig, err error) {
			if err == nil {
				updates <- cfg
			}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("capture:\n  start_paused: true\n"), 0644))

	select {
	case cfg := <-updates:
		assert.True(t, cfg.Capture.StartPaused)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	path := writeConfig(t, "app:\n  env: a\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 4)
	go func() {
		_ = Watch(ctx, path, func(*AppConfig, error) { calls <- struct{}{} })
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path+".bak", []byte("x"), 0644))
	select {
	case <-calls:
		t.Fatal("sibling file triggered a reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), "/does/not/exist/config.yaml", func(*AppConfig, error) {})
	assert.Error(t, err)
}
