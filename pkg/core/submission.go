package core

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4/zero"
)

// TestOutcomeStatus is the resolved status of a test within one submission,
// after collapsing its retry attempts.
type TestOutcomeStatus string

// All resolved outcome statuses.
const (
	OutcomePassed  TestOutcomeStatus = "passed"
	OutcomeFailed  TestOutcomeStatus = "failed"
	OutcomeSkipped TestOutcomeStatus = "skipped"
	OutcomeFlaky   TestOutcomeStatus = "flaky"
)

// Valid reports whether the status is one of the known outcome statuses.
func (s TestOutcomeStatus) Valid() bool {
	switch s {
	case OutcomePassed, OutcomeFailed, OutcomeSkipped, OutcomeFlaky:
		return true
	default:
		return false
	}
}

// TestOutcome is one row per test per report submission. Rows are immutable,
// later submissions supersede them with rows of their own.
type TestOutcome struct {
	ID           string            `db:"id" json:"id"`
	SubmissionID string            `db:"submission_id" json:"submission_id"`
	ProjectID    string            `db:"project_id" json:"-"`
	Name         string            `db:"name" json:"name"`
	File         string            `db:"file" json:"file"`
	Status       TestOutcomeStatus `db:"status" json:"status"`
	// Duration is the total milliseconds spent across all attempts,
	// not just the final one.
	Duration     int64       `db:"duration" json:"duration"`
	RetryCount   int         `db:"retry_count" json:"retry_count"`
	ErrorMessage zero.String `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// ReportSubmission is one row per ingested report. Created atomically with
// its TestOutcome rows, immutable after creation, deleted only as part of
// whole-project deletion.
type ReportSubmission struct {
	ID         string      `db:"id" json:"id"`
	ProjectID  string      `db:"project_id" json:"-"`
	Branch     string      `db:"branch" json:"branch"`
	CommitSHA  string      `db:"commit_sha" json:"commit_sha"`
	PipelineID zero.String `db:"pipeline_id" json:"pipeline_id,omitempty"`
	Total      int         `db:"total_tests" json:"total"`
	Passed     int         `db:"passed_tests" json:"passed"`
	Failed     int         `db:"failed_tests" json:"failed"`
	Skipped    int         `db:"skipped_tests" json:"skipped"`
	Flaky      int         `db:"flaky_tests" json:"flaky"`
	// StartedAt/FinishedAt span the earliest attempt start to the latest
	// attempt end across all tests, not wall-clock ingestion time.
	StartedAt  zero.Time `db:"started_at" json:"started_at"`
	FinishedAt zero.Time `db:"finished_at" json:"finished_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SubmissionStore is a wrapper for executing all queries persisting a report
// submission and its outcomes in a transaction.
type SubmissionStore interface {
	// Create atomically persists the submission and its outcome rows.
	Create(ctx context.Context, submission *ReportSubmission, testOutcomes []*TestOutcome) error
	// FindByProject returns the project's submissions, newest first.
	FindByProject(ctx context.Context, projectID string, offset, limit int) ([]*ReportSubmission, error)
	// FindByID returns a single submission of the project.
	FindByID(ctx context.Context, projectID, submissionID string) (*ReportSubmission, error)
}

// TestOutcomeStore defines datastore operations for working with test outcomes
type TestOutcomeStore interface {
	// CreateInTx persists the outcome rows in the datastore.
	CreateInTx(ctx context.Context, tx *sqlx.Tx, testOutcomes []*TestOutcome) error
	// FindInWindow returns all outcomes of the project created at or after
	// the cutoff, projected to the fields the analyzer needs.
	FindInWindow(ctx context.Context, projectID string, cutoff time.Time) ([]*TestOutcome, error)
	// FindBySubmission returns the outcome rows of one submission.
	FindBySubmission(ctx context.Context, projectID, submissionID,
		statusFilter string, offset, limit int) ([]*TestOutcome, error)
}
