package outreach

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/globalyuen/achievepack-outreach/internal/model"
	"github.com/globalyuen/achievepack-outreach/internal/store"
)

// Pipeline orchestrates one bounded, sequential lead-generation run:
// query rotation, discovery, then per-candidate resolution, filtering,
// normalization, composition, and dispatch, with ledger updates throughout.
//
// Every external call is awaited to completion before the next step begins.
// The inter-candidate limiter exists to respect provider rate limits, so the
// loop is sequential by design. Duplicate-send protection relies on the
// scheduler invoking at most one run at a time; see store.Store.
type Pipeline struct {
	ledger     store.Store
	rotator    *Rotator
	discoverer *Discoverer
	resolver   *Resolver
	normalizer Normalizer
	classifier *Classifier
	composer   *Composer
	dispatcher *Dispatcher
	limiter    *rate.Limiter

	sender        string
	resultCap     int
	maxCandidates int
}

// PipelineParams collects the pipeline's collaborators and tuning knobs.
type PipelineParams struct {
	Ledger     store.Store
	Rotator    *Rotator
	Discoverer *Discoverer
	Resolver   *Resolver
	Normalizer Normalizer
	Classifier *Classifier
	Composer   *Composer
	Dispatcher *Dispatcher

	// Limiter throttles the gap between candidates. Tests pass a
	// rate.NewLimiter(rate.Inf, 1) to make the throttle free.
	Limiter *rate.Limiter

	Sender        string
	ResultCap     int
	MaxCandidates int
}

// NewPipeline creates the orchestrator.
func NewPipeline(p PipelineParams) *Pipeline {
	if p.Limiter == nil {
		p.Limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if p.ResultCap <= 0 {
		p.ResultCap = 10
	}
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = 5
	}
	return &Pipeline{
		ledger:        p.Ledger,
		rotator:       p.Rotator,
		discoverer:    p.Discoverer,
		resolver:      p.Resolver,
		normalizer:    p.Normalizer,
		classifier:    p.Classifier,
		composer:      p.Composer,
		dispatcher:    p.Dispatcher,
		limiter:       p.Limiter,
		sender:        p.Sender,
		resultCap:     p.ResultCap,
		maxCandidates: p.MaxCandidates,
	}
}

// Run executes one pipeline invocation. The caller always receives a
// structured summary, success or failure; Run never panics its way out.
func (p *Pipeline) Run(ctx context.Context) *model.RunSummary {
	summary, err := p.run(ctx)
	if err != nil {
		zap.L().Error("pipeline run failed", zap.Error(err))
		return &model.RunSummary{Success: false, Error: err.Error()}
	}
	return summary
}

func (p *Pipeline) run(ctx context.Context) (*model.RunSummary, error) {
	state, err := p.ledger.GetAutomationState(ctx)
	if err != nil {
		return nil, err
	}
	if !state.IsRunning {
		zap.L().Info("automation disabled, skipping run")
		return &model.RunSummary{Success: true, Skipped: true}, nil
	}

	query := p.rotator.Next()

	// Run creation failure is fatal to the whole invocation: there is no
	// run to attribute candidates to.
	run, err := p.ledger.CreateSearchRun(ctx, query, p.sender)
	if err != nil {
		return nil, err
	}

	zap.L().Info("search run started",
		zap.String("run_id", run.ID),
		zap.String("query", query),
		zap.String("sender", p.sender))

	candidates := p.discoverer.Discover(ctx, query, p.resultCap)
	totals := model.RunTotals{TotalResults: len(candidates)}

	bound := p.maxCandidates
	if len(candidates) < bound {
		bound = len(candidates)
	}

	category := p.classifier.Classify(query)

	// The limiter starts with a full burst token; drain it so the wait
	// after the first candidate already honors the configured delay.
	p.limiter.Allow()

	for i := 0; i < bound; i++ {
		p.processCandidate(ctx, run.ID, candidates[i], category, &totals)

		if err := p.limiter.Wait(ctx); err != nil {
			zap.L().Warn("run interrupted between candidates", zap.Error(err))
			break
		}
	}

	if err := p.ledger.CompleteSearchRun(ctx, run.ID, totals); err != nil {
		return nil, err
	}
	if err := p.ledger.SetLastRunAt(ctx, time.Now().UTC()); err != nil {
		zap.L().Warn("failed to record last run timestamp", zap.Error(err))
	}

	zap.L().Info("search run completed",
		zap.String("run_id", run.ID),
		zap.Int("total_results", totals.TotalResults),
		zap.Int("emails_found", totals.EmailsFound),
		zap.Int("emails_sent", totals.EmailsSent))

	return &model.RunSummary{
		Success:     true,
		Query:       query,
		Sender:      p.sender,
		Found:       totals.TotalResults,
		EmailsFound: totals.EmailsFound,
		EmailsSent:  totals.EmailsSent,
	}, nil
}

// processCandidate runs one candidate through resolution, filtering,
// normalization, persistence, and dispatch. Errors are contained here; a
// failed candidate never aborts the run.
func (p *Pipeline) processCandidate(ctx context.Context, runID string, cand model.Candidate, category string, totals *model.RunTotals) {
	log := zap.L().With(
		zap.String("run_id", runID),
		zap.String("website", cand.Website))

	domain := DeriveDomain(cand.Website)
	if domain == "" {
		log.Info("candidate skipped", zap.String("reason", "no-domain"))
		return
	}

	email, ok := p.resolver.Resolve(ctx, domain)
	if !ok {
		log.Info("candidate skipped", zap.String("reason", "no-email"))
		return
	}
	totals.EmailsFound++

	// Both filters must pass before any persistence for this candidate.
	suppressed, err := p.ledger.IsSuppressed(ctx, email)
	if err != nil {
		log.Warn("candidate skipped", zap.String("reason", "suppression-check-failed"), zap.Error(err))
		return
	}
	if suppressed {
		log.Info("candidate skipped", zap.String("reason", "suppressed"))
		return
	}

	contacted, err := p.ledger.WasContacted(ctx, email)
	if err != nil {
		log.Warn("candidate skipped", zap.String("reason", "history-check-failed"), zap.Error(err))
		return
	}
	if contacted {
		log.Info("candidate skipped", zap.String("reason", "already-contacted"))
		return
	}

	cleanName, err := p.normalizer.CleanName(ctx, cand.Name)
	if err != nil {
		// The two-tier normalizer is total; an error here means a
		// misconfigured normalizer, which should not sink the candidate.
		log.Warn("name normalization errored, using raw title", zap.Error(err))
		cleanName = cand.Name
	}

	prospect, err := p.ledger.CreateProspect(ctx, &model.Prospect{
		SearchRunID:  runID,
		Name:         cand.Name,
		CleanName:    cleanName,
		Website:      cand.Website,
		Email:        email,
		BusinessType: category,
	})
	if err != nil {
		log.Warn("candidate skipped", zap.String("reason", "persist-failed"), zap.Error(err))
		return
	}

	msg := p.composer.Compose(cleanName, p.sender, category, prospect.Email)
	persona := p.composer.catalog.PersonaByKey(p.sender)

	messageID, err := p.dispatcher.Send(ctx, persona, prospect.Email, msg)
	if err != nil {
		// Fatal to this candidate only; the prospect row stays unsent.
		log.Warn("candidate skipped",
			zap.String("reason", "dispatch-failed"),
			zap.String("prospect_id", prospect.ID),
			zap.Error(err))
		return
	}

	if err := p.ledger.MarkProspectSent(ctx, prospect.ID, time.Now().UTC(), messageID, msg.Body); err != nil {
		// The send succeeded but the sent flag did not persist. Logged
		// distinctly so the ledger can be reconciled out-of-band.
		log.Error("email sent but ledger update failed, manual reconciliation needed",
			zap.String("prospect_id", prospect.ID),
			zap.String("provider_message_id", messageID),
			zap.Error(err))
	}
	totals.EmailsSent++

	log.Info("email sent",
		zap.String("prospect_id", prospect.ID),
		zap.String("clean_name", cleanName),
		zap.String("provider_message_id", messageID))
}
