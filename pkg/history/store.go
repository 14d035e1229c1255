package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/go-go-golems/turncheck/pkg/validation"
)

const (
	runsTable  = "turncheck_runs"
	kindsTable = "turncheck_run_kinds"
)

// Run is one recorded validation of one dataset.
type Run struct {
	RunID        string         `json:"run_id"`
	File         string         `json:"file"`
	Format       string         `json:"format,omitempty"`
	Valid        bool           `json:"valid"`
	TotalTurns   int            `json:"total_turns"`
	ErrorCount   int            `json:"error_count"`
	WarningCount int            `json:"warning_count"`
	KindCounts   map[string]int `json:"kind_counts,omitempty"`
	SettingsHash string         `json:"settings_hash,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	DurationMs   int64          `json:"duration_ms"`
}

// KindSummary aggregates one error kind over recent runs.
type KindSummary struct {
	Kind       string `json:"kind"`
	RunCount   int64  `json:"run_count"`
	ErrorCount int64  `json:"error_count"`
}

// NewRun builds a run record from a validation result.
func NewRun(file string, result *validation.Result, startedAt time.Time) Run {
	counts := map[string]int{}
	for k, n := range result.CountByKind() {
		counts[string(k)] = n
	}
	return Run{
		RunID:        uuid.NewString(),
		File:         file,
		Valid:        result.IsValid,
		TotalTurns:   result.TotalTurns,
		ErrorCount:   len(result.Errors),
		WarningCount: len(result.Warnings),
		KindCounts:   counts,
		StartedAt:    startedAt,
		DurationMs:   maxInt64(0, time.Since(startedAt).Milliseconds()),
	}
}

// HashSettings fingerprints an encoded settings document.
func HashSettings(encoded []byte) string {
	if len(encoded) == 0 {
		return ""
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

// Store records validation runs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history: db path is empty")
	}
	if err := ensureParentDir(path); err != nil {
		return nil, errors.Wrap(err, "history: could not create db directory")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "history: could not open %s", path)
	}
	if err := ensureTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a run and its per-kind counts in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "history: could not begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT OR REPLACE INTO turncheck_runs (
  run_id,
  file,
  format,
  valid,
  total_turns,
  error_count,
  warning_count,
  settings_hash,
  started_at_ms,
  duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.File,
		nullableString(run.Format),
		boolToInt(run.Valid),
		run.TotalTurns,
		run.ErrorCount,
		run.WarningCount,
		nullableString(run.SettingsHash),
		run.StartedAt.UnixMilli(),
		run.DurationMs,
	)
	if err != nil {
		return errors.Wrap(err, "history: could not insert run")
	}

	if len(run.KindCounts) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO turncheck_run_kinds (run_id, kind, count) VALUES (?, ?, ?)`)
		if err != nil {
			return errors.Wrap(err, "history: could not prepare kind insert")
		}
		defer func() {
			_ = stmt.Close()
		}()

		kinds := make([]string, 0, len(run.KindCounts))
		for k := range run.KindCounts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			if _, err := stmt.ExecContext(ctx, run.RunID, k, run.KindCounts[k]); err != nil {
				return errors.Wrapf(err, "history: could not insert kind %s", k)
			}
		}
	}

	return errors.Wrap(tx.Commit(), "history: could not commit run")
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT
  run_id,
  file,
  format,
  valid,
  total_turns,
  error_count,
  warning_count,
  settings_hash,
  started_at_ms,
  duration_ms
FROM turncheck_runs
ORDER BY started_at_ms DESC, run_id ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "history: could not query runs")
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		var format sql.NullString
		var settingsHash sql.NullString
		var valid int
		var startedAtMs int64
		if err := rows.Scan(
			&run.RunID,
			&run.File,
			&format,
			&valid,
			&run.TotalTurns,
			&run.ErrorCount,
			&run.WarningCount,
			&settingsHash,
			&startedAtMs,
			&run.DurationMs,
		); err != nil {
			return nil, errors.Wrap(err, "history: could not scan run")
		}
		run.Format = format.String
		run.SettingsHash = settingsHash.String
		run.Valid = valid != 0
		run.StartedAt = time.UnixMilli(startedAtMs)
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "history: could not read runs")
	}

	for i := range out {
		counts, err := s.kindCounts(ctx, out[i].RunID)
		if err != nil {
			return nil, err
		}
		out[i].KindCounts = counts
	}
	return out, nil
}

func (s *Store) kindCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, count FROM turncheck_run_kinds WHERE run_id = ?`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "history: could not query kinds")
	}
	defer func() {
		_ = rows.Close()
	}()

	ret := map[string]int{}
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, errors.Wrap(err, "history: could not scan kind")
		}
		ret[kind] = count
	}
	return ret, rows.Err()
}

// KindSummaries aggregates error kinds over the most recent runs.
func (s *Store) KindSummaries(ctx context.Context, limit int) ([]KindSummary, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT
  kind,
  COUNT(DISTINCT run_id) AS run_count,
  SUM(count) AS error_count
FROM turncheck_run_kinds
WHERE run_id IN (
  SELECT run_id
  FROM turncheck_runs
  ORDER BY started_at_ms DESC
  LIMIT ?
)
GROUP BY kind
ORDER BY error_count DESC, kind ASC`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "history: could not query kind summary")
	}
	defer func() {
		_ = rows.Close()
	}()

	out := []KindSummary{}
	for rows.Next() {
		var row KindSummary
		if err := rows.Scan(&row.Kind, &row.RunCount, &row.ErrorCount); err != nil {
			return nil, errors.Wrap(err, "history: could not scan kind summary")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func ensureTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + runsTable + ` (
  run_id TEXT PRIMARY KEY,
  file TEXT NOT NULL,
  format TEXT,
  valid INTEGER NOT NULL,
  total_turns INTEGER NOT NULL DEFAULT 0,
  error_count INTEGER NOT NULL DEFAULT 0,
  warning_count INTEGER NOT NULL DEFAULT 0,
  settings_hash TEXT,
  started_at_ms INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS ` + kindsTable + ` (
  run_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  count INTEGER NOT NULL,
  PRIMARY KEY (run_id, kind)
)`,
		`CREATE INDEX IF NOT EXISTS idx_turncheck_runs_started_at ON ` + runsTable + ` (started_at_ms DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_turncheck_runs_file ON ` + runsTable + ` (file, started_at_ms DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "history: could not create tables")
		}
	}
	return nil
}

func ensureParentDir(path string) error {
	parent := filepath.Dir(path)
	if parent == "" || parent == "." {
		return nil
	}
	return os.MkdirAll(parent, 0o755)
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
