package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/globalyuen/achievepack-outreach/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock's PgxPoolIface
// satisfies it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 5
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS automation (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	is_running  BOOLEAN NOT NULL DEFAULT FALSE,
	last_run_at TIMESTAMPTZ
);

INSERT INTO automation (id, is_running) VALUES (1, FALSE) ON CONFLICT (id) DO NOTHING;

CREATE TABLE IF NOT EXISTS search_runs (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	query         TEXT NOT NULL,
	sender        TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'processing',
	total_results INTEGER NOT NULL DEFAULT 0,
	emails_found  INTEGER NOT NULL DEFAULT 0,
	emails_sent   INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS prospects (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	search_run_id       TEXT NOT NULL REFERENCES search_runs(id),
	name                TEXT NOT NULL,
	clean_name          TEXT NOT NULL,
	website             TEXT NOT NULL,
	email               TEXT NOT NULL,
	business_type       TEXT NOT NULL,
	email_sent          BOOLEAN NOT NULL DEFAULT FALSE,
	email_sent_at       TIMESTAMPTZ,
	provider_message_id TEXT,
	rendered_message    TEXT,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS suppression (
	email      TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_search_runs_status ON search_runs(status);
CREATE INDEX IF NOT EXISTS idx_prospects_run_id ON prospects(search_run_id);
CREATE INDEX IF NOT EXISTS idx_prospects_email_sent ON prospects(email, email_sent);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetAutomationState(ctx context.Context) (*model.AutomationState, error) {
	var st model.AutomationState
	var lastRun *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT is_running, last_run_at FROM automation WHERE id = 1`,
	).Scan(&st.IsRunning, &lastRun)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get automation state")
	}
	st.LastRunAt = lastRun
	return &st, nil
}

func (s *PostgresStore) SetAutomationRunning(ctx context.Context, running bool) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE automation SET is_running = $1 WHERE id = 1`,
		running,
	)
	return eris.Wrap(err, "postgres: set automation running")
}

func (s *PostgresStore) SetLastRunAt(ctx context.Context, ts time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE automation SET last_run_at = $1 WHERE id = 1`,
		ts.UTC(),
	)
	return eris.Wrap(err, "postgres: set last run at")
}

func (s *PostgresStore) CreateSearchRun(ctx context.Context, query, sender string) (*model.SearchRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_runs (id, query, sender, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, query, sender, string(model.RunStatusProcessing), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert search run")
	}

	return &model.SearchRun{
		ID:        id,
		Query:     query,
		Sender:    sender,
		Status:    model.RunStatusProcessing,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteSearchRun(ctx context.Context, runID string, totals model.RunTotals) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE search_runs SET status = $1, total_results = $2, emails_found = $3, emails_sent = $4 WHERE id = $5`,
		string(model.RunStatusCompleted), totals.TotalResults, totals.EmailsFound, totals.EmailsSent, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete search run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("search run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetSearchRun(ctx context.Context, runID string) (*model.SearchRun, error) {
	var r model.SearchRun
	err := s.pool.QueryRow(ctx,
		`SELECT id, query, sender, status, total_results, emails_found, emails_sent, created_at
		 FROM search_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Query, &r.Sender, &r.Status, &r.TotalResults, &r.EmailsFound, &r.EmailsSent, &r.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get search run %s", runID)
	}
	return &r, nil
}

func (s *PostgresStore) ListSearchRuns(ctx context.Context, filter RunFilter) ([]model.SearchRun, error) {
	query := `SELECT id, query, sender, status, total_results, emails_found, emails_sent, created_at
	          FROM search_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list search runs")
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		var r model.SearchRun
		if err := rows.Scan(&r.ID, &r.Query, &r.Sender, &r.Status, &r.TotalResults, &r.EmailsFound, &r.EmailsSent, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan search run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list search runs iterate")
}

func (s *PostgresStore) CreateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error) {
	created := *p
	created.ID = uuid.New().String()
	created.CreatedAt = time.Now().UTC()
	created.Email = strings.ToLower(p.Email)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO prospects (id, search_run_id, name, clean_name, website, email, business_type, email_sent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)`,
		created.ID, created.SearchRunID, created.Name, created.CleanName,
		created.Website, created.Email, created.BusinessType, created.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert prospect")
	}
	return &created, nil
}

func (s *PostgresStore) MarkProspectSent(ctx context.Context, prospectID string, sentAt time.Time, messageID, rendered string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE prospects SET email_sent = TRUE, email_sent_at = $1, provider_message_id = $2, rendered_message = $3 WHERE id = $4`,
		sentAt.UTC(), messageID, rendered, prospectID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark prospect sent %s", prospectID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("prospect not found: %s", prospectID)
	}
	return nil
}

func (s *PostgresStore) ListProspects(ctx context.Context, runID string) ([]model.Prospect, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, search_run_id, name, clean_name, website, email, business_type,
		        email_sent, email_sent_at, provider_message_id, rendered_message, created_at
		 FROM prospects WHERE search_run_id = $1 ORDER BY created_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list prospects")
	}
	defer rows.Close()

	var prospects []model.Prospect
	for rows.Next() {
		var p model.Prospect
		var messageID, rendered *string
		if err := rows.Scan(&p.ID, &p.SearchRunID, &p.Name, &p.CleanName, &p.Website, &p.Email,
			&p.BusinessType, &p.EmailSent, &p.EmailSentAt, &messageID, &rendered, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan prospect")
		}
		if messageID != nil {
			p.ProviderMessageID = *messageID
		}
		if rendered != nil {
			p.RenderedMessage = *rendered
		}
		prospects = append(prospects, p)
	}
	return prospects, eris.Wrap(rows.Err(), "postgres: list prospects iterate")
}

func (s *PostgresStore) IsSuppressed(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM suppression WHERE email = $1)`,
		strings.ToLower(email),
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrap(err, "postgres: check suppression")
	}
	return exists, nil
}

func (s *PostgresStore) AddSuppression(ctx context.Context, email string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO suppression (email, created_at) VALUES ($1, $2) ON CONFLICT (email) DO NOTHING`,
		strings.ToLower(email), time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: add suppression")
}

func (s *PostgresStore) WasContacted(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM prospects WHERE email = $1 AND email_sent)`,
		strings.ToLower(email),
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrap(err, "postgres: check contact history")
	}
	return exists, nil
}

