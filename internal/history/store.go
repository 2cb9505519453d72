package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vidblur/internal/config"
)

// Store manages render history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// DefaultLimit bounds Recent when callers pass a non-positive limit.
const DefaultLimit = 20

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}

// Open initializes or connects to the history database under the state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts r and returns it with its assigned ID.
func (s *Store) Record(ctx context.Context, r Render) (Render, error) {
	if strings.TrimSpace(r.RunID) == "" {
		return Render{}, errors.New("record render: run id is required")
	}
	if r.Status == "" {
		r.Status = StatusCompleted
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = r.FinishedAt
	}

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO renders (
                run_id, kind, source_path, output_path, kernel_size, frame_count, fps,
                duration_seconds, audio_muxed, status, error_message, started_at, finished_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID,
			string(r.Kind),
			r.SourcePath,
			r.OutputPath,
			r.KernelSize,
			r.FrameCount,
			r.FPS,
			nullableFloat(r.DurationSeconds),
			boolToInt(r.AudioMuxed),
			string(r.Status),
			nullableString(r.ErrorMessage),
			formatTime(r.StartedAt),
			formatTime(r.FinishedAt),
		)
		return execErr
	})
	if err != nil {
		return Render{}, fmt.Errorf("insert render: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Render{}, fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	return r, nil
}

// Recent returns up to limit renders, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Render, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var renders []Render
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT id, run_id, kind, source_path, output_path, kernel_size, frame_count, fps,
                duration_seconds, audio_muxed, status, error_message, started_at, finished_at
            FROM renders ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		renders = renders[:0]
		for rows.Next() {
			r, err := scanRender(rows)
			if err != nil {
				return err
			}
			renders = append(renders, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	return renders, nil
}

func scanRender(scanner interface{ Scan(dest ...any) error }) (Render, error) {
	var (
		r          Render
		kind       string
		status     string
		duration   sql.NullFloat64
		audioMuxed int
		errMsg     sql.NullString
		started    string
		finished   string
	)
	if err := scanner.Scan(
		&r.ID, &r.RunID, &kind, &r.SourcePath, &r.OutputPath, &r.KernelSize, &r.FrameCount, &r.FPS,
		&duration, &audioMuxed, &status, &errMsg, &started, &finished,
	); err != nil {
		return Render{}, err
	}
	r.Kind = Kind(kind)
	r.Status = Status(status)
	r.AudioMuxed = audioMuxed != 0
	if duration.Valid {
		value := duration.Float64
		r.DurationSeconds = &value
	}
	r.ErrorMessage = errMsg.String
	var err error
	if r.StartedAt, err = parseTimeString(started); err != nil {
		return Render{}, fmt.Errorf("parse started_at: %w", err)
	}
	if r.FinishedAt, err = parseTimeString(finished); err != nil {
		return Render{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return r, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// timeLayout is fixed width so finished_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}
