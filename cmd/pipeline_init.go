package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/globalyuen/achievepack-outreach/internal/outreach"
	"github.com/globalyuen/achievepack-outreach/internal/store"
	anthropicpkg "github.com/globalyuen/achievepack-outreach/pkg/anthropic"
	"github.com/globalyuen/achievepack-outreach/pkg/hunter"
	"github.com/globalyuen/achievepack-outreach/pkg/resend"
	"github.com/globalyuen/achievepack-outreach/pkg/serper"
)

// pipelineEnv holds the initialized store and pipeline needed by the
// run/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *outreach.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, the provider clients, the catalog, and the
// pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, sender string) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	catalog, err := outreach.LoadCatalog(cfg.Outreach.CatalogPath)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	// Search and lookup credentials are optional; without them the pipeline
	// degrades to zero discoveries / zero resolved emails.
	var searchClient serper.Client
	if cfg.Serper.Key != "" {
		searchClient = serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
	} else {
		zap.L().Debug("OUTREACH_SERPER_KEY not set, business discovery disabled")
	}

	var lookupClient hunter.Client
	if cfg.Hunter.Key != "" {
		lookupClient = hunter.NewClient(cfg.Hunter.Key, hunter.WithBaseURL(cfg.Hunter.BaseURL))
	} else {
		zap.L().Debug("OUTREACH_HUNTER_KEY not set, contact resolution disabled")
	}

	var aiNormalizer outreach.Normalizer
	if cfg.Anthropic.Key != "" {
		aiNormalizer = outreach.NewClaudeNormalizer(
			anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
	} else {
		zap.L().Debug("OUTREACH_ANTHROPIC_KEY not set, name normalization uses rule fallback only")
	}

	resendClient := resend.NewClient(cfg.Resend.Key, resend.WithBaseURL(cfg.Resend.BaseURL))

	if sender == "" {
		sender = catalog.DefaultPersona
	}

	limiter := rate.NewLimiter(rate.Every(cfg.Outreach.SendDelay), 1)

	p := outreach.NewPipeline(outreach.PipelineParams{
		Ledger:        st,
		Rotator:       outreach.NewRotator(catalog, nil),
		Discoverer:    outreach.NewDiscoverer(searchClient),
		Resolver:      outreach.NewResolver(lookupClient),
		Normalizer:    outreach.NewTwoTier(aiNormalizer, outreach.NewRuleNormalizer(catalog.Stoplist)),
		Classifier:    outreach.NewClassifier(catalog),
		Composer:      outreach.NewComposer(catalog, ""),
		Dispatcher:    outreach.NewDispatcher(resendClient),
		Limiter:       limiter,
		Sender:        sender,
		ResultCap:     cfg.Outreach.ResultCap,
		MaxCandidates: cfg.Outreach.MaxCandidates,
	})

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
