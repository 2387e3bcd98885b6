package outreach

import (
	"context"

	"go.uber.org/zap"

	"github.com/globalyuen/achievepack-outreach/internal/model"
	"github.com/globalyuen/achievepack-outreach/pkg/serper"
)

// Discoverer turns raw web search results into candidate business records.
// A missing provider credential or any provider error degrades to an empty
// candidate list; discovery never fails a run.
type Discoverer struct {
	client serper.Client
}

// NewDiscoverer creates a discoverer. A nil client means no credential is
// configured; Discover then returns no candidates.
func NewDiscoverer(client serper.Client) *Discoverer {
	return &Discoverer{client: client}
}

// Discover searches for candidate businesses matching query, capped at limit.
func (d *Discoverer) Discover(ctx context.Context, query string, limit int) []model.Candidate {
	if d.client == nil {
		zap.L().Info("discovery skipped, no search credential configured")
		return nil
	}

	resp, err := d.client.Search(ctx, query, limit)
	if err != nil {
		zap.L().Warn("discovery failed, continuing with zero results",
			zap.String("query", query),
			zap.Error(err))
		return nil
	}

	candidates := make([]model.Candidate, 0, len(resp.Organic))
	for _, r := range resp.Organic {
		if r.Link == "" {
			continue
		}
		candidates = append(candidates, model.Candidate{
			Name:    r.Title,
			Website: r.Link,
			Snippet: r.Snippet,
		})
	}

	return candidates
}
