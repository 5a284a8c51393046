package core

import (
	"context"
	"time"
)

// FlakyTestStatus is the lifecycle status of a flaky test record.
type FlakyTestStatus string

// All flaky test record statuses.
const (
	// FlakyStatusActive the test is currently classified flaky.
	FlakyStatusActive FlakyTestStatus = "active"
	// FlakyStatusResolved a later analysis window no longer classifies the
	// test as flaky, or the test disappeared from the window.
	FlakyStatusResolved FlakyTestStatus = "resolved"
	// FlakyStatusIgnored externally pinned, the reconciler never
	// transitions an ignored record in either direction.
	FlakyStatusIgnored FlakyTestStatus = "ignored"
)

// Valid reports whether the status is one of the known record statuses.
func (s FlakyTestStatus) Valid() bool {
	switch s {
	case FlakyStatusActive, FlakyStatusResolved, FlakyStatusIgnored:
		return true
	default:
		return false
	}
}

// FlakyTestRecord is the persisted flaky-state of one distinct test name in
// a project. At most one record exists per (project, test name).
type FlakyTestRecord struct {
	ID              string          `db:"id" json:"id"`
	ProjectID       string          `db:"project_id" json:"-"`
	TestName        string          `db:"test_name" json:"test_name"`
	TestFile        string          `db:"test_file" json:"test_file"`
	FirstDetectedAt time.Time       `db:"first_detected_at" json:"first_detected_at"`
	LastSeenAt      time.Time       `db:"last_seen_at" json:"last_seen_at"`
	FlakeCount      int             `db:"flake_count" json:"flake_count"`
	TotalRuns       int             `db:"total_runs" json:"total_runs"`
	FlakeRate       float64         `db:"flake_rate" json:"flake_rate"`
	Status          FlakyTestStatus `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"-"`
	UpdatedAt       time.Time       `db:"updated_at" json:"-"`
}

// AnalyzerConfig parameterizes one analysis run. It is always passed
// explicitly, the analyzer performs no ambient configuration lookup.
type AnalyzerConfig struct {
	// WindowDays trailing window in days considered by the run.
	WindowDays int
	// FlakeThreshold inclusive flake rate at or above which a test is flaky.
	FlakeThreshold float64
	// MinRuns groups with fewer in-window runs are excluded entirely.
	MinRuns int
}

// TestFlakiness is the per-test aggregate computed by one analysis run.
type TestFlakiness struct {
	TestName     string    `json:"test_name"`
	TestFile     string    `json:"test_file"`
	PassedCount  int       `json:"passed_count"`
	FailedCount  int       `json:"failed_count"`
	FlakyCount   int       `json:"flaky_count"`
	SkippedCount int       `json:"skipped_count"`
	// TotalRuns counts passed+failed+flaky, skips are evidence of neither
	// stability nor flakiness.
	TotalRuns int     `json:"total_runs"`
	FlakeRate float64 `json:"flake_rate"`
	IsFlaky   bool    `json:"is_flaky"`
	LastSeen  time.Time `json:"last_seen"`
}

// ReconcileResult is the minimal set of persistence operations that bring
// the stored flaky-state in agreement with an analysis run.
type ReconcileResult struct {
	ToUpsert  []*FlakyTestRecord
	ToResolve []*FlakyTestRecord
}

// FlakinessAnalyzer computes per-test flakiness over a trailing window.
type FlakinessAnalyzer interface {
	// Analyze returns per-test aggregates for the project ordered by flake
	// rate descending. Tests with fewer than cfg.MinRuns in-window runs are
	// silently excluded.
	Analyze(ctx context.Context, projectID string, cfg *AnalyzerConfig) ([]*TestFlakiness, error)
}

// FlakyReconciler diffs analyzer output against existing records.
type FlakyReconciler interface {
	// Reconcile is a pure function over the in-memory inputs; the caller
	// applies the returned operations. Calling it again with the inputs
	// reflecting the applied result yields no further operations.
	Reconcile(projectID string, analysis []*TestFlakiness, existing []*FlakyTestRecord) *ReconcileResult
}

// FlakyMonitor runs the analyze+reconcile pipeline for a project.
type FlakyMonitor interface {
	// RunAnalysis re-derives and persists the project's flaky-state. It is
	// idempotent; a failed or partial run is corrected by the next one.
	RunAnalysis(ctx context.Context, projectID string) error
}

// FlakyTestStore defines datastore operations for working with flaky test records
type FlakyTestStore interface {
	// FindByProject returns every record of the project, any status.
	FindByProject(ctx context.Context, projectID string) ([]*FlakyTestRecord, error)
	// List returns records ordered by flake rate descending, optionally
	// filtered by status.
	List(ctx context.Context, projectID, statusFilter string, offset, limit int) ([]*FlakyTestRecord, error)
	// FindByID returns a single record of the project.
	FindByID(ctx context.Context, projectID, recordID string) (*FlakyTestRecord, error)
	// Upsert inserts or refreshes records keyed on (project_id, test_name).
	// first_detected_at is never overwritten on refresh.
	Upsert(ctx context.Context, records []*FlakyTestRecord) error
	// MarkResolved transitions the named active records to resolved and
	// returns the number of rows changed.
	MarkResolved(ctx context.Context, projectID string, testNames []string) (int64, error)
	// UpdateStatus sets the lifecycle status of one record.
	UpdateStatus(ctx context.Context, projectID, recordID string, status FlakyTestStatus) error
}
