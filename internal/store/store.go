// Package store is the run ledger: the persistence boundary for the
// outreach pipeline. The pipeline core depends only on the Store interface,
// never on a specific storage engine.
package store

import (
	"context"
	"time"

	"github.com/globalyuen/achievepack-outreach/internal/model"
)

// RunFilter specifies criteria for listing search runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the outreach pipeline.
//
// The suppression/history checks and the later prospect writes are separate,
// non-atomic operations. Duplicate sends are prevented only under the
// scheduler's single-flight guarantee: concurrent invocations could both pass
// WasContacted before either commits a sent prospect.
type Store interface {
	// Automation toggle (singleton)
	GetAutomationState(ctx context.Context) (*model.AutomationState, error)
	SetAutomationRunning(ctx context.Context, running bool) error
	SetLastRunAt(ctx context.Context, ts time.Time) error

	// Search runs
	CreateSearchRun(ctx context.Context, query, sender string) (*model.SearchRun, error)
	CompleteSearchRun(ctx context.Context, runID string, totals model.RunTotals) error
	GetSearchRun(ctx context.Context, runID string) (*model.SearchRun, error)
	ListSearchRuns(ctx context.Context, filter RunFilter) ([]model.SearchRun, error)

	// Prospects
	CreateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error)
	MarkProspectSent(ctx context.Context, prospectID string, sentAt time.Time, messageID, rendered string) error
	ListProspects(ctx context.Context, runID string) ([]model.Prospect, error)

	// Filters
	IsSuppressed(ctx context.Context, email string) (bool, error)
	AddSuppression(ctx context.Context, email string) error
	WasContacted(ctx context.Context, email string) (bool, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
