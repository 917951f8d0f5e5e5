package submissions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink stores submissions in a local SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite sink needs a database path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		request_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		domain TEXT NOT NULL,
		process TEXT NOT NULL,
		focus TEXT NOT NULL DEFAULT '',
		industry TEXT NOT NULL DEFAULT '',
		maturity TEXT NOT NULL DEFAULT '',
		constraints TEXT NOT NULL DEFAULT '',
		custom_steps TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_process ON submissions(domain, process);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create submissions table: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Name() string { return KindSQLite }

func (s *SQLiteSink) Write(ctx context.Context, sub Submission) error {
	row := sub.row()
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v
	}
	query := fmt.Sprintf(
		"INSERT INTO submissions (%s) VALUES (?%s)",
		strings.Join(columns, ", "),
		strings.Repeat(", ?", len(columns)-1),
	)
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// CountByProcess returns how often each domain/process pair was requested.
func (s *SQLiteSink) CountByProcess(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain, process, COUNT(*) FROM submissions GROUP BY domain, process`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var domain, process string
		var n int
		if err := rows.Scan(&domain, &process, &n); err != nil {
			return nil, err
		}
		counts[domain+" / "+process] = n
	}
	return counts, rows.Err()
}

func (s *SQLiteSink) Close() error { return s.db.Close() }
