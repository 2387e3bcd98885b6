package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/globalyuen/achievepack-outreach/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS automation (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	is_running  INTEGER NOT NULL DEFAULT 0,
	last_run_at DATETIME
);

INSERT OR IGNORE INTO automation (id, is_running) VALUES (1, 0);

CREATE TABLE IF NOT EXISTS search_runs (
	id            TEXT PRIMARY KEY,
	query         TEXT NOT NULL,
	sender        TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'processing',
	total_results INTEGER NOT NULL DEFAULT 0,
	emails_found  INTEGER NOT NULL DEFAULT 0,
	emails_sent   INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS prospects (
	id                  TEXT PRIMARY KEY,
	search_run_id       TEXT NOT NULL REFERENCES search_runs(id),
	name                TEXT NOT NULL,
	clean_name          TEXT NOT NULL,
	website             TEXT NOT NULL,
	email               TEXT NOT NULL,
	business_type       TEXT NOT NULL,
	email_sent          INTEGER NOT NULL DEFAULT 0,
	email_sent_at       DATETIME,
	provider_message_id TEXT,
	rendered_message    TEXT,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS suppression (
	email      TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_search_runs_status ON search_runs(status);
CREATE INDEX IF NOT EXISTS idx_prospects_run_id ON prospects(search_run_id);
CREATE INDEX IF NOT EXISTS idx_prospects_email_sent ON prospects(email, email_sent);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetAutomationState(ctx context.Context) (*model.AutomationState, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT is_running, last_run_at FROM automation WHERE id = 1`,
	)

	var st model.AutomationState
	var lastRun sql.NullTime
	if err := row.Scan(&st.IsRunning, &lastRun); err != nil {
		return nil, eris.Wrap(err, "sqlite: get automation state")
	}
	if lastRun.Valid {
		t := lastRun.Time
		st.LastRunAt = &t
	}
	return &st, nil
}

func (s *SQLiteStore) SetAutomationRunning(ctx context.Context, running bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE automation SET is_running = ? WHERE id = 1`,
		running,
	)
	return eris.Wrap(err, "sqlite: set automation running")
}

func (s *SQLiteStore) SetLastRunAt(ctx context.Context, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE automation SET last_run_at = ? WHERE id = 1`,
		ts.UTC(),
	)
	return eris.Wrap(err, "sqlite: set last run at")
}

func (s *SQLiteStore) CreateSearchRun(ctx context.Context, query, sender string) (*model.SearchRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_runs (id, query, sender, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, query, sender, string(model.RunStatusProcessing), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert search run")
	}

	return &model.SearchRun{
		ID:        id,
		Query:     query,
		Sender:    sender,
		Status:    model.RunStatusProcessing,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteSearchRun(ctx context.Context, runID string, totals model.RunTotals) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE search_runs SET status = ?, total_results = ?, emails_found = ?, emails_sent = ? WHERE id = ?`,
		string(model.RunStatusCompleted), totals.TotalResults, totals.EmailsFound, totals.EmailsSent, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete search run %s", runID)
	}
	return checkRowsAffected(res, "search run", runID)
}

func (s *SQLiteStore) GetSearchRun(ctx context.Context, runID string) (*model.SearchRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, sender, status, total_results, emails_found, emails_sent, created_at
		 FROM search_runs WHERE id = ?`,
		runID,
	)
	return scanSearchRun(row)
}

func (s *SQLiteStore) ListSearchRuns(ctx context.Context, filter RunFilter) ([]model.SearchRun, error) {
	query := `SELECT id, query, sender, status, total_results, emails_found, emails_sent, created_at
	          FROM search_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list search runs")
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		r, err := scanSearchRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list search runs iterate")
}

func (s *SQLiteStore) CreateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error) {
	created := *p
	created.ID = uuid.New().String()
	created.CreatedAt = time.Now().UTC()
	created.Email = strings.ToLower(p.Email)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prospects (id, search_run_id, name, clean_name, website, email, business_type, email_sent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		created.ID, created.SearchRunID, created.Name, created.CleanName,
		created.Website, created.Email, created.BusinessType, created.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert prospect")
	}
	return &created, nil
}

func (s *SQLiteStore) MarkProspectSent(ctx context.Context, prospectID string, sentAt time.Time, messageID, rendered string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE prospects SET email_sent = 1, email_sent_at = ?, provider_message_id = ?, rendered_message = ? WHERE id = ?`,
		sentAt.UTC(), messageID, rendered, prospectID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark prospect sent %s", prospectID)
	}
	return checkRowsAffected(res, "prospect", prospectID)
}

func (s *SQLiteStore) ListProspects(ctx context.Context, runID string) ([]model.Prospect, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, search_run_id, name, clean_name, website, email, business_type,
		        email_sent, email_sent_at, provider_message_id, rendered_message, created_at
		 FROM prospects WHERE search_run_id = ? ORDER BY created_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list prospects")
	}
	defer rows.Close()

	var prospects []model.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, *p)
	}
	return prospects, eris.Wrap(rows.Err(), "sqlite: list prospects iterate")
}

func (s *SQLiteStore) IsSuppressed(ctx context.Context, email string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM suppression WHERE email = ?)`,
		strings.ToLower(email),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, eris.Wrap(err, "sqlite: check suppression")
	}
	return exists, nil
}

func (s *SQLiteStore) AddSuppression(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO suppression (email, created_at) VALUES (?, ?)`,
		strings.ToLower(email), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: add suppression")
}

func (s *SQLiteStore) WasContacted(ctx context.Context, email string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM prospects WHERE email = ? AND email_sent = 1)`,
		strings.ToLower(email),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, eris.Wrap(err, "sqlite: check contact history")
	}
	return exists, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSearchRun(row scannable) (*model.SearchRun, error) {
	var r model.SearchRun
	err := row.Scan(&r.ID, &r.Query, &r.Sender, &r.Status, &r.TotalResults, &r.EmailsFound, &r.EmailsSent, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("search run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan search run")
	}
	return &r, nil
}

func scanProspect(row scannable) (*model.Prospect, error) {
	var p model.Prospect
	var sentAt sql.NullTime
	var messageID, rendered sql.NullString

	err := row.Scan(&p.ID, &p.SearchRunID, &p.Name, &p.CleanName, &p.Website, &p.Email,
		&p.BusinessType, &p.EmailSent, &sentAt, &messageID, &rendered, &p.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan prospect")
	}

	if sentAt.Valid {
		t := sentAt.Time
		p.EmailSentAt = &t
	}
	p.ProviderMessageID = messageID.String
	p.RenderedMessage = rendered.String
	return &p, nil
}
