package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Table names.
const (
	tableResults       = "exam_results"
	tableSubjects      = "subject_results"
	tableAnswers       = "result_answers"
	tableSessionEvents = "session_events"
	tableLLMEvents     = "llm_request_events"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS exam_results (
		id              TEXT PRIMARY KEY,
		sequence        INTEGER NOT NULL UNIQUE,
		exam_id         TEXT NOT NULL,
		exam_name       TEXT NOT NULL,
		reason          TEXT NOT NULL,
		total_questions INTEGER NOT NULL,
		correct         INTEGER NOT NULL,
		wrong           INTEGER NOT NULL,
		unattempted     INTEGER NOT NULL,
		raw_score       REAL NOT NULL,
		score           REAL NOT NULL,
		max_score       REAL NOT NULL,
		percentage      REAL NOT NULL,
		elapsed_ms      INTEGER NOT NULL,
		completed_at    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS exam_results_exam_id ON exam_results (exam_id)`,
	`CREATE TABLE IF NOT EXISTS subject_results (
		result_id   TEXT NOT NULL REFERENCES exam_results (id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		subject     TEXT NOT NULL,
		quota       INTEGER NOT NULL,
		attempted   INTEGER NOT NULL,
		correct     INTEGER NOT NULL,
		wrong       INTEGER NOT NULL,
		unattempted INTEGER NOT NULL,
		raw_score   REAL NOT NULL,
		score       REAL NOT NULL,
		max_score   REAL NOT NULL,
		percentage  REAL NOT NULL,
		PRIMARY KEY (result_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS result_answers (
		result_id TEXT NOT NULL REFERENCES exam_results (id) ON DELETE CASCADE,
		ordinal   INTEGER NOT NULL,
		option    INTEGER NOT NULL,
		PRIMARY KEY (result_id, ordinal)
	)`,
	`CREATE TABLE IF NOT EXISTS session_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence   INTEGER NOT NULL UNIQUE,
		timestamp  INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		exam_id    TEXT NOT NULL,
		kind       TEXT NOT NULL,
		from_state TEXT NOT NULL,
		to_state   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS session_events_session_id ON session_events (session_id)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

// migrate creates every table the repositories need. Statements are
// idempotent so it is safe to run on every Open.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}
