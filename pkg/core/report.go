package core

import (
	"gopkg.in/guregu/null.v4/zero"
)

// AttemptStatus is the status reported by the test framework for one
// execution attempt of a spec.
type AttemptStatus string

// All attempt statuses emitted by the test framework.
const (
	AttemptPassed      AttemptStatus = "passed"
	AttemptFailed      AttemptStatus = "failed"
	AttemptTimedOut    AttemptStatus = "timedOut"
	AttemptSkipped     AttemptStatus = "skipped"
	AttemptInterrupted AttemptStatus = "interrupted"
)

// Valid reports whether the status is one of the known attempt statuses.
func (s AttemptStatus) Valid() bool {
	switch s {
	case AttemptPassed, AttemptFailed, AttemptTimedOut, AttemptSkipped, AttemptInterrupted:
		return true
	default:
		return false
	}
}

// RawAttempt is one execution of a spec. A spec has multiple attempts when
// the framework retries failures.
type RawAttempt struct {
	Status    AttemptStatus `json:"status"`
	Duration  int64         `json:"duration"`
	StartedAt zero.Time     `json:"startTime"`
	Error     zero.String   `json:"error"`
}

// RawSpec is a single test case with its ordered attempts.
type RawSpec struct {
	Title    string        `json:"title"`
	File     zero.String   `json:"file"`
	Attempts []*RawAttempt `json:"attempts"`
}

// RawSuite is a node in the report tree. Suites nest arbitrarily and may
// exist only to carry a file association, in which case their title looks
// like a file path and is excluded from test names.
type RawSuite struct {
	Title  string      `json:"title"`
	File   zero.String `json:"file"`
	Suites []*RawSuite `json:"suites"`
	Specs  []*RawSpec  `json:"specs"`
}

// RawReport is the untrusted report tree submitted by a CI pipeline.
type RawReport struct {
	Suites []*RawSuite `json:"suites"`
}

// SubmissionSummary counts outcomes of one submission by resolved status.
type SubmissionSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Flaky   int `json:"flaky"`
}

// NormalizedReport is the flattened form of a raw report. Outcome rows carry
// name, file, resolved status, duration, retry count and error message; the
// ingestion boundary assigns ids and ownership before persisting.
type NormalizedReport struct {
	Outcomes   []*TestOutcome
	Summary    SubmissionSummary
	StartedAt  zero.Time
	FinishedAt zero.Time
}

// ReportNormalizer validates and flattens raw report trees.
type ReportNormalizer interface {
	// Normalize returns the flattened report, or a ReportValidationError
	// describing the first violation found. No partial result is returned
	// on failure.
	Normalize(report *RawReport) (*NormalizedReport, error)
}
