package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .optsweep) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	var v int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the underlying database.
func (s *SqlStore) Close() error { return s.db.Close() }

// CreateRun inserts a run row. StartedAt defaults to now.
func (s *SqlStore) CreateRun(r *Run) (int64, error) {
	if r.StartedAt == "" {
		r.StartedAt = nowUTC()
	}
	res, err := s.db.Exec(
		"INSERT INTO runs(run_id, dir, config_path, started_at, jobs, failed) VALUES(?, ?, ?, ?, ?, ?)",
		r.RunID, r.Dir, r.ConfigPath, r.StartedAt, r.Jobs, r.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	r.ID = id
	return id, nil
}

// FinishRun records the completion time and totals of a run.
func (s *SqlStore) FinishRun(id int64, finishedAt string, jobs, failed int) error {
	if finishedAt == "" {
		finishedAt = nowUTC()
	}
	_, err := s.db.Exec(
		"UPDATE runs SET finished_at = ?, jobs = ?, failed = ? WHERE id = ?",
		finishedAt, jobs, failed, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

const runCols = "id, run_id, dir, config_path, started_at, finished_at, jobs, failed"

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	var cfg, fin sql.NullString
	err := row.Scan(&r.ID, &r.RunID, &r.Dir, &cfg, &r.StartedAt, &fin, &r.Jobs, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.ConfigPath = nullStr(cfg)
	r.FinishedAt = nullStr(fin)
	return &r, nil
}

// GetRun returns a run by store row id, or nil if absent.
func (s *SqlStore) GetRun(id int64) (*Run, error) {
	return scanRun(s.db.QueryRow("SELECT "+runCols+" FROM runs WHERE id = ?", id))
}

// GetRunByOrdinal returns the most recent run with the given zero-padded
// run identifier, or nil if absent.
func (s *SqlStore) GetRunByOrdinal(runID string) (*Run, error) {
	return scanRun(s.db.QueryRow(
		"SELECT "+runCols+" FROM runs WHERE run_id = ? ORDER BY id DESC LIMIT 1", runID))
}

// ListRuns returns all runs, most recent first.
func (s *SqlStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query("SELECT " + runCols + " FROM runs ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateJob inserts a job row.
func (s *SqlStore) CreateJob(j *Job) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO jobs(run_id, instance, name, selector, family, exit_code,
			duration_ms, output_path, log_path, status, error)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.RunID, j.Instance, j.Name, j.Selector, j.Family, j.ExitCode,
		j.DurationMS, j.OutputPath, j.LogPath, j.Status, j.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("job id: %w", err)
	}
	j.ID = id
	return id, nil
}

// ListJobsByRun returns a run's jobs in insertion (sweep) order.
func (s *SqlStore) ListJobsByRun(runID int64) ([]*Job, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, instance, name, selector, family, exit_code,
			duration_ms, output_path, log_path, status, error
		 FROM jobs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	var out []*Job
	for rows.Next() {
		var j Job
		var jerr sql.NullString
		if err := rows.Scan(&j.ID, &j.RunID, &j.Instance, &j.Name, &j.Selector,
			&j.Family, &j.ExitCode, &j.DurationMS, &j.OutputPath, &j.LogPath,
			&j.Status, &jerr); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.Error = nullStr(jerr)
		out = append(out, &j)
	}
	return out, rows.Err()
}
