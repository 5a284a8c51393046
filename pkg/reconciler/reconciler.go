// Package reconciler diffs a fresh analysis run against the stored flaky
// test records and emits the minimal persistence operations.
package reconciler

import (
	"github.com/flakewatch/flakewatch/pkg/core"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/flakewatch/flakewatch/pkg/utils"
)

type reconciler struct {
	logger lumber.Logger
}

// New returns a new FlakyReconciler.
func New(logger lumber.Logger) core.FlakyReconciler {
	return &reconciler{logger: logger}
}

func (r *reconciler) Reconcile(projectID string, analysis []*core.TestFlakiness,
	existing []*core.FlakyTestRecord) *core.ReconcileResult {
	existingByName := make(map[string]*core.FlakyTestRecord, len(existing))
	for _, record := range existing {
		existingByName[record.TestName] = record
	}
	flakyByName := make(map[string]struct{}, len(analysis))

	result := &core.ReconcileResult{
		ToUpsert:  make([]*core.FlakyTestRecord, 0),
		ToResolve: make([]*core.FlakyTestRecord, 0),
	}
	for _, aggregate := range analysis {
		if !aggregate.IsFlaky {
			continue
		}
		flakyByName[aggregate.TestName] = struct{}{}
		record, ok := existingByName[aggregate.TestName]
		if !ok {
			result.ToUpsert = append(result.ToUpsert, newRecord(projectID, aggregate))
			continue
		}
		// ignored records are pinned, the run never touches them
		if record.Status == core.FlakyStatusIgnored {
			continue
		}
		if record.Status == core.FlakyStatusActive && upToDate(record, aggregate) {
			continue
		}
		result.ToUpsert = append(result.ToUpsert, refreshedRecord(record, aggregate))
	}
	for _, record := range existing {
		if record.Status != core.FlakyStatusActive {
			continue
		}
		if _, stillFlaky := flakyByName[record.TestName]; !stillFlaky {
			result.ToResolve = append(result.ToResolve, record)
		}
	}
	return result
}

func newRecord(projectID string, aggregate *core.TestFlakiness) *core.FlakyTestRecord {
	return &core.FlakyTestRecord{
		ID:              utils.GenerateUUID(),
		ProjectID:       projectID,
		TestName:        aggregate.TestName,
		TestFile:        aggregate.TestFile,
		FirstDetectedAt: aggregate.LastSeen,
		LastSeenAt:      aggregate.LastSeen,
		FlakeCount:      aggregate.FailedCount + aggregate.FlakyCount,
		TotalRuns:       aggregate.TotalRuns,
		FlakeRate:       aggregate.FlakeRate,
		Status:          core.FlakyStatusActive,
	}
}

func refreshedRecord(record *core.FlakyTestRecord, aggregate *core.TestFlakiness) *core.FlakyTestRecord {
	refreshed := *record
	refreshed.TestFile = aggregate.TestFile
	refreshed.LastSeenAt = aggregate.LastSeen
	refreshed.FlakeCount = aggregate.FailedCount + aggregate.FlakyCount
	refreshed.TotalRuns = aggregate.TotalRuns
	refreshed.FlakeRate = aggregate.FlakeRate
	refreshed.Status = core.FlakyStatusActive
	return &refreshed
}

// upToDate reports whether an active record already reflects the aggregate,
// in which case re-upserting it would be a no-op.
func upToDate(record *core.FlakyTestRecord, aggregate *core.TestFlakiness) bool {
	return record.TestFile == aggregate.TestFile &&
		record.LastSeenAt.Equal(aggregate.LastSeen) &&
		record.FlakeCount == aggregate.FailedCount+aggregate.FlakyCount &&
		record.TotalRuns == aggregate.TotalRuns &&
		record.FlakeRate == aggregate.FlakeRate
}
