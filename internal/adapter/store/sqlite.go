package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/joern1811/chatstats/internal/domain"
	"github.com/joern1811/chatstats/internal/log"
)

var ErrRunNotFound = errors.New("run not found")

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS runs (
    run_id     TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    source     TEXT NOT NULL DEFAULT '',
    sender     TEXT NOT NULL,
    recipient  TEXT NOT NULL,
    messages   INTEGER NOT NULL DEFAULT 0,
    skipped    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    run_id   TEXT NOT NULL,
    seq      INTEGER NOT NULL,
    ts       TEXT NOT NULL,
    sender   TEXT NOT NULL,
    identity TEXT NOT NULL,
    content  TEXT NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS first_messages (
    run_id TEXT NOT NULL,
    month  TEXT NOT NULL,
    count  INTEGER NOT NULL,
    PRIMARY KEY (run_id, month)
);

CREATE TABLE IF NOT EXISTS replies (
    run_id        TEXT NOT NULL,
    month         TEXT NOT NULL,
    without_reply INTEGER NOT NULL,
    with_reply    INTEGER NOT NULL,
    PRIMARY KEY (run_id, month)
);
`

// Raw message timestamps use the export's own layout.
const messageTimeLayout = "02/01/2006, 15:04"

type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenDB opens (creating if needed) the SQLite file at dbPath.
func OpenDB(dbPath string, logger zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db: db, logger: logger.With().Str(log.FieldComponent, "store").Logger()}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Save writes the run, its raw messages and both tables in one transaction.
func (d *DB) Save(ctx context.Context, t *domain.Transcript, r *domain.Report) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, source, sender, recipient, messages, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.CreatedAt.UTC().Format(time.RFC3339), r.Source,
		r.Participants.Sender, r.Participants.Recipient, r.Messages, r.Skipped,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	msgStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (run_id, seq, ts, sender, identity, content) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare messages: %w", err)
	}
	defer msgStmt.Close()

	for i, m := range t.Messages {
		if _, err := msgStmt.ExecContext(ctx,
			r.RunID, i, m.Timestamp.Format(messageTimeLayout),
			r.Participants.Name(m.Identity), m.Identity.String(), m.Content,
		); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	for _, row := range r.FirstMessageRows() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO first_messages (run_id, month, count) VALUES (?, ?, ?)`,
			r.RunID, string(row.Month), row.Count,
		); err != nil {
			return fmt.Errorf("insert first_messages %s: %w", row.Month, err)
		}
	}

	for _, row := range r.ReplyRows() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO replies (run_id, month, without_reply, with_reply) VALUES (?, ?, ?, ?)`,
			r.RunID, string(row.Month), row.WithoutReply, row.WithReply,
		); err != nil {
			return fmt.Errorf("insert replies %s: %w", row.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	d.logger.Debug().
		Str(log.FieldRunID, r.RunID).
		Int("messages", len(t.Messages)).
		Msg("run saved")
	return nil
}

// RunInfo summarises one stored run.
type RunInfo struct {
	RunID     string
	CreatedAt time.Time
	Source    string
	Sender    string
	Recipient string
	Messages  int
	Skipped   int
}

// Runs lists the most recent runs, newest first.
func (d *DB) Runs(ctx context.Context, limit int) ([]RunInfo, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT run_id, created_at, source, sender, recipient, messages, skipped
		 FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			info    RunInfo
			created string
		)
		if err := rows.Scan(&info.RunID, &created, &info.Source, &info.Sender,
			&info.Recipient, &info.Messages, &info.Skipped); err != nil {
			return nil, err
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339, created)
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// LoadReport reads a stored run back into a Report.
func (d *DB) LoadReport(ctx context.Context, runID string) (*domain.Report, error) {
	var (
		r       = &domain.Report{RunID: runID}
		created string
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT created_at, source, sender, recipient, messages, skipped FROM runs WHERE run_id = ?`,
		runID,
	).Scan(&created, &r.Source, &r.Participants.Sender, &r.Participants.Recipient, &r.Messages, &r.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, created)

	r.FirstMessages = map[domain.MonthKey]int{}
	rows, err := d.db.QueryContext(ctx,
		`SELECT month, count FROM first_messages WHERE run_id = ? ORDER BY month`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			month string
			count int
		)
		if err := rows.Scan(&month, &count); err != nil {
			return nil, err
		}
		r.Months = append(r.Months, domain.MonthKey(month))
		r.FirstMessages[domain.MonthKey(month)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.Replies = map[domain.MonthKey]domain.ReplyCount{}
	replyRows, err := d.db.QueryContext(ctx,
		`SELECT month, without_reply, with_reply FROM replies WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer replyRows.Close()
	for replyRows.Next() {
		var (
			month string
			c     domain.ReplyCount
		)
		if err := replyRows.Scan(&month, &c.WithoutReply, &c.WithReply); err != nil {
			return nil, err
		}
		r.Replies[domain.MonthKey(month)] = c
	}
	return r, replyRows.Err()
}
