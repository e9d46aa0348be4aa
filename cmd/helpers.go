package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/enrich"
	"github.com/sells-group/leadgen-cli/internal/intent"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/source/sources"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// initStore opens the configured store with migrations applied.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// newOrchestrator assembles the pipeline with the built-in source registry,
// the optional enricher, and intent signals loaded from signalsPath.
func newOrchestrator(st store.Store, signalsPath string) (*pipeline.Orchestrator, error) {
	opts := []pipeline.Option{}

	if e := enrich.New(cfg); e != nil {
		opts = append(opts, pipeline.WithEnricher(e))
	}
	if signalsPath != "" {
		signals, err := intent.LoadSignals(signalsPath)
		if err != nil {
			return nil, eris.Wrapf(err, "load intent signals from %s", signalsPath)
		}
		opts = append(opts, pipeline.WithSignals(signals))
	}

	return pipeline.New(cfg, st, sources.NewRegistry(), opts...), nil
}
