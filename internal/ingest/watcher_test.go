package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	require.Error(t, err)
}

func TestWatcherEmitsNewFiles(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	path := filepath.Join(root, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("Glucose: 95 mg/dL"), 0o644))

	select {
	case got := <-evCh:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
}

func TestWatcherIgnoresUnsupportedFiles(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "data.csv"), []byte("a,b"), 0o644))

	select {
	case got := <-evCh:
		t.Fatalf("unexpected event for unsupported file: %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherInitialScanEmitsExistingFiles(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "old.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("pdfish"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true})
	require.NoError(t, err)

	select {
	case got := <-evCh:
		assert.Equal(t, existing, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial scan event")
	}
}

func TestWatcherClosesOnCancel(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}})
	require.NoError(t, err)

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-evCh:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel did not close after cancel")
		}
	}
}
