package reconciler

import (
	"testing"
	"time"

	"github.com/flakewatch/flakewatch/pkg/core"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/stretchr/testify/assert"
)

func testLogger(t *testing.T) lumber.Logger {
	logger, err := lumber.NewLogger(&lumber.LoggingConfig{EnableConsole: true, ConsoleLevel: lumber.DebugLevel},
		true, lumber.InstanceZapLogger)
	if err != nil {
		t.Fatalf("could not instantiate logger: %v", err)
	}
	return logger
}

func flakyAggregate(name string, seen time.Time) *core.TestFlakiness {
	return &core.TestFlakiness{
		TestName:    name,
		TestFile:    "e2e/" + name + ".spec.ts",
		PassedCount: 4,
		FlakyCount:  2,
		TotalRuns:   6,
		FlakeRate:   0.3333,
		IsFlaky:     true,
		LastSeen:    seen,
	}
}

func recordFor(aggregate *core.TestFlakiness, status core.FlakyTestStatus) *core.FlakyTestRecord {
	return &core.FlakyTestRecord{
		ID:              "existing-" + aggregate.TestName,
		ProjectID:       "proj-1",
		TestName:        aggregate.TestName,
		TestFile:        aggregate.TestFile,
		FirstDetectedAt: aggregate.LastSeen.Add(-48 * time.Hour),
		LastSeenAt:      aggregate.LastSeen,
		FlakeCount:      aggregate.FailedCount + aggregate.FlakyCount,
		TotalRuns:       aggregate.TotalRuns,
		FlakeRate:       aggregate.FlakeRate,
		Status:          status,
	}
}

func TestReconcileNewFlakyTest(t *testing.T) {
	seen := time.Now()
	aggregate := flakyAggregate("checkout", seen)

	result := New(testLogger(t)).Reconcile("proj-1", []*core.TestFlakiness{aggregate}, nil)

	if len(result.ToUpsert) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(result.ToUpsert))
	}
	assert.Empty(t, result.ToResolve)
	record := result.ToUpsert[0]
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "proj-1", record.ProjectID)
	assert.Equal(t, core.FlakyStatusActive, record.Status)
	assert.Equal(t, seen, record.FirstDetectedAt)
	assert.Equal(t, seen, record.LastSeenAt)
	assert.Equal(t, 2, record.FlakeCount)
}

func TestReconcileIdempotent(t *testing.T) {
	seen := time.Now()
	aggregate := flakyAggregate("checkout", seen)
	existing := recordFor(aggregate, core.FlakyStatusActive)

	result := New(testLogger(t)).Reconcile("proj-1",
		[]*core.TestFlakiness{aggregate}, []*core.FlakyTestRecord{existing})

	assert.Empty(t, result.ToUpsert)
	assert.Empty(t, result.ToResolve)
}

func TestReconcileRefreshesChangedActiveRecord(t *testing.T) {
	seen := time.Now()
	aggregate := flakyAggregate("checkout", seen)
	existing := recordFor(aggregate, core.FlakyStatusActive)
	existing.LastSeenAt = seen.Add(-24 * time.Hour)
	existing.TotalRuns = 4
	existing.FlakeRate = 0.5

	result := New(testLogger(t)).Reconcile("proj-1",
		[]*core.TestFlakiness{aggregate}, []*core.FlakyTestRecord{existing})

	if len(result.ToUpsert) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(result.ToUpsert))
	}
	refreshed := result.ToUpsert[0]
	assert.Equal(t, existing.ID, refreshed.ID)
	assert.Equal(t, existing.FirstDetectedAt, refreshed.FirstDetectedAt)
	assert.Equal(t, seen, refreshed.LastSeenAt)
	assert.Equal(t, 6, refreshed.TotalRuns)
	assert.Equal(t, 0.3333, refreshed.FlakeRate)
}

func TestReconcileReactivatesResolvedRecord(t *testing.T) {
	seen := time.Now()
	aggregate := flakyAggregate("checkout", seen)
	existing := recordFor(aggregate, core.FlakyStatusResolved)

	result := New(testLogger(t)).Reconcile("proj-1",
		[]*core.TestFlakiness{aggregate}, []*core.FlakyTestRecord{existing})

	if len(result.ToUpsert) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(result.ToUpsert))
	}
	assert.Equal(t, core.FlakyStatusActive, result.ToUpsert[0].Status)
	assert.Equal(t, existing.FirstDetectedAt, result.ToUpsert[0].FirstDetectedAt)
}

func TestReconcileResolvesNoLongerFlaky(t *testing.T) {
	seen := time.Now()
	stable := flakyAggregate("checkout", seen)
	stable.IsFlaky = false
	stable.FlakeRate = 0.01
	active := recordFor(stable, core.FlakyStatusActive)
	vanished := recordFor(flakyAggregate("deleted test", seen), core.FlakyStatusActive)

	result := New(testLogger(t)).Reconcile("proj-1",
		[]*core.TestFlakiness{stable}, []*core.FlakyTestRecord{active, vanished})

	assert.Empty(t, result.ToUpsert)
	if len(result.ToResolve) != 2 {
		t.Fatalf("expected 2 resolves, got %d", len(result.ToResolve))
	}
}

func TestReconcileRenamedTest(t *testing.T) {
	seen := time.Now()
	renamed := flakyAggregate("checkout with coupon", seen)
	oldRecord := recordFor(flakyAggregate("checkout", seen), core.FlakyStatusActive)

	result := New(testLogger(t)).Reconcile("proj-1",
		[]*core.TestFlakiness{renamed}, []*core.FlakyTestRecord{oldRecord})

	if len(result.ToUpsert) != 1 || len(result.ToResolve) != 1 {
		t.Fatalf("expected 1 upsert and 1 resolve, got %d and %d",
			len(result.ToUpsert), len(result.ToResolve))
	}
	assert.Equal(t, "checkout with coupon", result.ToUpsert[0].TestName)
	assert.Equal(t, "checkout", result.ToResolve[0].TestName)
}

func TestReconcileIgnoredRecordsPinned(t *testing.T) {
	seen := time.Now()
	stillFlaky := flakyAggregate("ignored but flaky", seen)
	ignoredFlaky := recordFor(stillFlaky, core.FlakyStatusIgnored)
	ignoredFlaky.FlakeRate = 0.9

	goneStable := flakyAggregate("ignored now stable", seen)
	goneStable.IsFlaky = false
	ignoredStable := recordFor(goneStable, core.FlakyStatusIgnored)

	result := New(testLogger(t)).Reconcile("proj-1",
		[]*core.TestFlakiness{stillFlaky, goneStable},
		[]*core.FlakyTestRecord{ignoredFlaky, ignoredStable})

	assert.Empty(t, result.ToUpsert)
	assert.Empty(t, result.ToResolve)
}

func TestReconcileResolvedStaysResolvedWhenStable(t *testing.T) {
	seen := time.Now()
	stable := flakyAggregate("checkout", seen)
	stable.IsFlaky = false
	resolved := recordFor(stable, core.FlakyStatusResolved)

	result := New(testLogger(t)).Reconcile("proj-1",
		[]*core.TestFlakiness{stable}, []*core.FlakyTestRecord{resolved})

	assert.Empty(t, result.ToUpsert)
	assert.Empty(t, result.ToResolve)
}
