package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-go-golems/turncheck/pkg/validation"
)

func TestStoreRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "history.sqlite")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	invalid := validation.Validate([]any{
		map[string]any{"turn_id": 1, "speaker": "user", "message": "hi"},
		map[string]any{"turn_id": 3, "speaker": "assistant"},
	}, nil)
	older := NewRun("bad.json", invalid, time.Now().Add(-time.Minute))
	older.Format = "json_array"
	older.SettingsHash = HashSettings([]byte("max_turns: 100\n"))
	if err := store.Record(ctx, older); err != nil {
		t.Fatalf("Record older: %v", err)
	}

	valid := validation.Validate([]any{
		map[string]any{"turn_id": 1, "speaker": "user", "message": "hi"},
	}, nil)
	newer := NewRun("good.jsonl", valid, time.Now())
	if err := store.Record(ctx, newer); err != nil {
		t.Fatalf("Record newer: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].File != "good.jsonl" || !runs[0].Valid {
		t.Fatalf("expected newest valid run first, got %+v", runs[0])
	}
	if runs[1].File != "bad.json" || runs[1].Valid {
		t.Fatalf("expected older invalid run second, got %+v", runs[1])
	}
	if runs[1].ErrorCount != 2 || runs[1].TotalTurns != 2 {
		t.Fatalf("unexpected counts: %+v", runs[1])
	}
	if runs[1].KindCounts["sequence_error"] != 1 || runs[1].KindCounts["required_field_missing"] != 1 {
		t.Fatalf("unexpected kind counts: %+v", runs[1].KindCounts)
	}
	if runs[1].Format != "json_array" || runs[1].SettingsHash == "" {
		t.Fatalf("expected format and settings hash to round-trip: %+v", runs[1])
	}
	if runs[0].Format != "" {
		t.Fatalf("expected empty format, got %q", runs[0].Format)
	}

	summaries, err := store.KindSummaries(ctx, 10)
	if err != nil {
		t.Fatalf("KindSummaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 kind summaries, got %+v", summaries)
	}
	for _, s := range summaries {
		if s.RunCount != 1 || s.ErrorCount != 1 {
			t.Fatalf("unexpected summary: %+v", s)
		}
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestHashSettings(t *testing.T) {
	if HashSettings(nil) != "" {
		t.Fatalf("expected empty hash for empty input")
	}
	a := HashSettings([]byte("a"))
	b := HashSettings([]byte("b"))
	if a == b || len(a) != 64 {
		t.Fatalf("unexpected hashes %q %q", a, b)
	}
}
