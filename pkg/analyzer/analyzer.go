// Package analyzer computes per-test flakiness aggregates over a trailing
// window of persisted outcomes.
package analyzer

import (
	"context"
	"sort"
	"time"

	"github.com/flakewatch/flakewatch/pkg/constants"
	"github.com/flakewatch/flakewatch/pkg/core"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/flakewatch/flakewatch/pkg/utils"
)

type analyzer struct {
	outcomeStore core.TestOutcomeStore
	logger       lumber.Logger
}

// New returns a new FlakinessAnalyzer.
func New(outcomeStore core.TestOutcomeStore, logger lumber.Logger) core.FlakinessAnalyzer {
	return &analyzer{outcomeStore: outcomeStore, logger: logger}
}

func (a *analyzer) Analyze(ctx context.Context, projectID string,
	cfg *core.AnalyzerConfig) ([]*core.TestFlakiness, error) {
	cutoff := time.Now().Add(-time.Duration(cfg.WindowDays) * 24 * time.Hour)
	outcomes, err := a.outcomeStore.FindInWindow(ctx, projectID, cutoff)
	if err != nil {
		a.logger.Errorf("failed to fetch outcomes in window for projectID %s, error: %v", projectID, err)
		return nil, err
	}

	grouped := make(map[string]*core.TestFlakiness)
	// file selection tracks its own timestamp, rows with an empty file
	// must not hold back LastSeen
	fileSeenAt := make(map[string]time.Time)
	for _, outcome := range outcomes {
		aggregate, ok := grouped[outcome.Name]
		if !ok {
			aggregate = &core.TestFlakiness{TestName: outcome.Name}
			grouped[outcome.Name] = aggregate
		}
		switch outcome.Status {
		case core.OutcomePassed:
			aggregate.PassedCount++
		case core.OutcomeFailed:
			aggregate.FailedCount++
		case core.OutcomeFlaky:
			aggregate.FlakyCount++
		case core.OutcomeSkipped:
			aggregate.SkippedCount++
		}
		if outcome.CreatedAt.After(aggregate.LastSeen) {
			aggregate.LastSeen = outcome.CreatedAt
		}
		if outcome.File != "" && outcome.CreatedAt.After(fileSeenAt[outcome.Name]) {
			aggregate.TestFile = outcome.File
			fileSeenAt[outcome.Name] = outcome.CreatedAt
		}
	}

	analysis := make([]*core.TestFlakiness, 0, len(grouped))
	for _, aggregate := range grouped {
		aggregate.TotalRuns = aggregate.PassedCount + aggregate.FailedCount + aggregate.FlakyCount
		// skips carry no signal, a group observed only as skipped has no rate
		if aggregate.TotalRuns == 0 || aggregate.TotalRuns < cfg.MinRuns {
			continue
		}
		rate := float64(aggregate.FailedCount+aggregate.FlakyCount) / float64(aggregate.TotalRuns)
		// the threshold compares against the exact rate, only the stored
		// value is rounded
		aggregate.IsFlaky = rate >= cfg.FlakeThreshold
		aggregate.FlakeRate = utils.RoundRate(rate, constants.FlakeRatePrecision)
		analysis = append(analysis, aggregate)
	}
	sort.Slice(analysis, func(i, j int) bool {
		if analysis[i].FlakeRate != analysis[j].FlakeRate {
			return analysis[i].FlakeRate > analysis[j].FlakeRate
		}
		return analysis[i].TestName < analysis[j].TestName
	})
	return analysis, nil
}
