// Package flakymonitor runs the analyze and reconcile pipeline for a
// project and persists the result.
package flakymonitor

import (
	"context"

	"github.com/flakewatch/flakewatch/config"
	"github.com/flakewatch/flakewatch/pkg/core"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"golang.org/x/sync/errgroup"
)

type flakyMonitor struct {
	cfg            *config.Config
	analyzer       core.FlakinessAnalyzer
	reconciler     core.FlakyReconciler
	flakyTestStore core.FlakyTestStore
	logger         lumber.Logger
}

// New returns a new FlakyMonitor.
func New(cfg *config.Config, analyzer core.FlakinessAnalyzer, reconciler core.FlakyReconciler,
	flakyTestStore core.FlakyTestStore, logger lumber.Logger) core.FlakyMonitor {
	return &flakyMonitor{
		cfg:            cfg,
		analyzer:       analyzer,
		reconciler:     reconciler,
		flakyTestStore: flakyTestStore,
		logger:         logger,
	}
}

func (f *flakyMonitor) RunAnalysis(ctx context.Context, projectID string) error {
	analyzerConfig := &core.AnalyzerConfig{
		WindowDays:     f.cfg.Flaky.WindowDays,
		FlakeThreshold: f.cfg.Flaky.Threshold,
		MinRuns:        f.cfg.Flaky.MinRuns,
	}
	g, errCtx := errgroup.WithContext(ctx)
	var analysis []*core.TestFlakiness
	g.Go(func() error {
		flakiness, aerr := f.analyzer.Analyze(errCtx, projectID, analyzerConfig)
		if aerr != nil {
			f.logger.Errorf("flakiness analysis failed for projectID %s, error: %v", projectID, aerr)
			return aerr
		}
		analysis = flakiness
		return nil
	})
	var existing []*core.FlakyTestRecord
	g.Go(func() error {
		records, ferr := f.flakyTestStore.FindByProject(errCtx, projectID)
		if ferr != nil {
			f.logger.Errorf("failed to fetch flaky test records for projectID %s, error: %v", projectID, ferr)
			return ferr
		}
		existing = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	result := f.reconciler.Reconcile(projectID, analysis, existing)
	if len(result.ToUpsert) > 0 {
		if err := f.flakyTestStore.Upsert(ctx, result.ToUpsert); err != nil {
			f.logger.Errorf("failed to upsert flaky test records for projectID %s, error: %v", projectID, err)
			return err
		}
	}
	if len(result.ToResolve) > 0 {
		testNames := make([]string, 0, len(result.ToResolve))
		for _, record := range result.ToResolve {
			testNames = append(testNames, record.TestName)
		}
		resolved, err := f.flakyTestStore.MarkResolved(ctx, projectID, testNames)
		if err != nil {
			f.logger.Errorf("failed to resolve flaky test records for projectID %s, error: %v", projectID, err)
			return err
		}
		f.logger.Debugf("resolved %d flaky test records for projectID %s", resolved, projectID)
	}
	f.logger.Infof("flakiness analysis finished for projectID %s, analyzed: %d, upserted: %d, resolved: %d",
		projectID, len(analysis), len(result.ToUpsert), len(result.ToResolve))
	return nil
}
