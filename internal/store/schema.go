package store

// schemaVersion is the current schema version.
const schemaVersion = 1

var schema = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	dir         TEXT NOT NULL,
	config_path TEXT,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	jobs        INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS jobs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	instance    TEXT NOT NULL,
	name        TEXT NOT NULL,
	selector    TEXT NOT NULL,
	family      TEXT NOT NULL,
	exit_code   INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	output_path TEXT NOT NULL,
	log_path    TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT
);

CREATE INDEX IF NOT EXISTS idx_jobs_run ON jobs(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id);
`
