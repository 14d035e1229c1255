package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsDebouncedChanges(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "conv.jsonl")
	other := filepath.Join(dir, "other.jsonl")
	require.NoError(t, os.WriteFile(watched, []byte("{}\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("{}\n"), 0o644))

	w, err := New([]string{watched}, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(path string) {
			changes <- path
		})
	}()

	require.NoError(t, os.WriteFile(other, []byte("{}\n{}\n"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(watched, []byte("{\"turn_id\": 1}\n"), 0o644))
	}

	abs, err := filepath.Abs(watched)
	require.NoError(t, err)

	select {
	case got := <-changes:
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	// the burst of writes collapses into one notification
	select {
	case got := <-changes:
		t.Fatalf("unexpected second notification for %s", got)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewRequiresPaths(t *testing.T) {
	_, err := New(nil, 0)
	assert.Error(t, err)
}
