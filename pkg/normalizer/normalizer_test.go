package normalizer

import (
	"testing"
	"time"

	"github.com/flakewatch/flakewatch/pkg/core"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v4/zero"
)

func testLogger(t *testing.T) lumber.Logger {
	logger, err := lumber.NewLogger(&lumber.LoggingConfig{EnableConsole: true, ConsoleLevel: lumber.DebugLevel},
		true, lumber.InstanceZapLogger)
	if err != nil {
		t.Fatalf("could not instantiate logger: %v", err)
	}
	return logger
}

func attempt(status core.AttemptStatus) *core.RawAttempt {
	return &core.RawAttempt{Status: status}
}

func singleSpecReport(attempts ...*core.RawAttempt) *core.RawReport {
	return &core.RawReport{
		Suites: []*core.RawSuite{
			{
				Title: "suite",
				File:  zero.StringFrom("e2e/example.spec.ts"),
				Specs: []*core.RawSpec{{Title: "spec", Attempts: attempts}},
			},
		},
	}
}

func TestNormalizeStatusResolution(t *testing.T) {
	tests := []struct {
		name       string
		attempts   []*core.RawAttempt
		status     core.TestOutcomeStatus
		retryCount int
	}{
		{"failed then passed is flaky", []*core.RawAttempt{attempt(core.AttemptFailed), attempt(core.AttemptPassed)}, core.OutcomeFlaky, 1},
		{"passed then failed is flaky", []*core.RawAttempt{attempt(core.AttemptPassed), attempt(core.AttemptFailed)}, core.OutcomeFlaky, 1},
		{"passed then timed out is flaky", []*core.RawAttempt{attempt(core.AttemptPassed), attempt(core.AttemptTimedOut)}, core.OutcomeFlaky, 1},
		{"single pass is passed", []*core.RawAttempt{attempt(core.AttemptPassed)}, core.OutcomePassed, 0},
		{"every attempt failed is failed", []*core.RawAttempt{attempt(core.AttemptFailed), attempt(core.AttemptFailed)}, core.OutcomeFailed, 1},
		{"single skip is skipped", []*core.RawAttempt{attempt(core.AttemptSkipped)}, core.OutcomeSkipped, 0},
		{"all attempts skipped is skipped", []*core.RawAttempt{attempt(core.AttemptSkipped), attempt(core.AttemptSkipped)}, core.OutcomeSkipped, 1},
		{"timed out last is failed", []*core.RawAttempt{attempt(core.AttemptFailed), attempt(core.AttemptTimedOut)}, core.OutcomeFailed, 1},
		{"interrupted last is failed", []*core.RawAttempt{attempt(core.AttemptInterrupted)}, core.OutcomeFailed, 0},
	}
	n := New(testLogger(t))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			normalized, err := n.Normalize(singleSpecReport(tc.attempts...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(normalized.Outcomes) != 1 {
				t.Fatalf("expected 1 outcome, got %d", len(normalized.Outcomes))
			}
			assert.Equal(t, tc.status, normalized.Outcomes[0].Status)
			assert.Equal(t, tc.retryCount, normalized.Outcomes[0].RetryCount)
		})
	}
}

func TestNormalizeZeroAttemptSpecOmitted(t *testing.T) {
	report := &core.RawReport{
		Suites: []*core.RawSuite{
			{
				Title: "suite",
				Specs: []*core.RawSpec{
					{Title: "never ran"},
					{Title: "ran", Attempts: []*core.RawAttempt{attempt(core.AttemptPassed)}},
				},
			},
		},
	}
	normalized, err := New(testLogger(t)).Normalize(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(normalized.Outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(normalized.Outcomes))
	}
	assert.Equal(t, "suite › ran", normalized.Outcomes[0].Name)
}

func TestNormalizeDurationIsSumOfAttempts(t *testing.T) {
	report := singleSpecReport(
		&core.RawAttempt{Status: core.AttemptFailed, Duration: 2100},
		&core.RawAttempt{Status: core.AttemptPassed, Duration: 2400},
	)
	normalized, err := New(testLogger(t)).Normalize(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, int64(4500), normalized.Outcomes[0].Duration)
	assert.Equal(t, core.OutcomeFlaky, normalized.Outcomes[0].Status)
}

func TestNormalizeNamePathExcludesFileSuites(t *testing.T) {
	report := &core.RawReport{
		Suites: []*core.RawSuite{
			{
				Title: "e2e/auth.spec.ts",
				File:  zero.StringFrom("e2e/auth.spec.ts"),
				Suites: []*core.RawSuite{
					{
						Title: "Login flow",
						Specs: []*core.RawSpec{
							{Title: "should login", Attempts: []*core.RawAttempt{attempt(core.AttemptPassed)}},
						},
					},
				},
			},
		},
	}
	normalized, err := New(testLogger(t)).Normalize(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, "Login flow › should login", normalized.Outcomes[0].Name)
	assert.Equal(t, "e2e/auth.spec.ts", normalized.Outcomes[0].File)
}

func TestNormalizeFileInheritance(t *testing.T) {
	report := &core.RawReport{
		Suites: []*core.RawSuite{
			{
				Title: "outer",
				File:  zero.StringFrom("e2e/outer.spec.ts"),
				Suites: []*core.RawSuite{
					{
						Title: "inner",
						Specs: []*core.RawSpec{
							{Title: "inherits", Attempts: []*core.RawAttempt{attempt(core.AttemptPassed)}},
							{
								Title:    "overrides",
								File:     zero.StringFrom("e2e/other.spec.ts"),
								Attempts: []*core.RawAttempt{attempt(core.AttemptPassed)},
							},
						},
					},
				},
			},
		},
	}
	normalized, err := New(testLogger(t)).Normalize(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, "e2e/outer.spec.ts", normalized.Outcomes[0].File)
	assert.Equal(t, "e2e/other.spec.ts", normalized.Outcomes[1].File)
	assert.Equal(t, "outer › inner › overrides", normalized.Outcomes[1].Name)
}

func TestNormalizeFullReport(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &core.RawReport{
		Suites: []*core.RawSuite{
			{
				Title: "e2e/checkout.spec.ts",
				File:  zero.StringFrom("e2e/checkout.spec.ts"),
				Suites: []*core.RawSuite{
					{
						Title: "Checkout",
						Specs: []*core.RawSpec{
							{
								Title: "adds item to cart",
								Attempts: []*core.RawAttempt{
									{Status: core.AttemptPassed, Duration: 1200, StartedAt: zero.TimeFrom(base)},
								},
							},
							{
								Title: "shows payment form",
								Attempts: []*core.RawAttempt{
									{
										Status:    core.AttemptFailed,
										Duration:  5000,
										StartedAt: zero.TimeFrom(base.Add(2 * time.Second)),
										Error:     zero.StringFrom("expect(locator).toBeVisible() failed"),
									},
									{
										Status:    core.AttemptPassed,
										Duration:  4200,
										StartedAt: zero.TimeFrom(base.Add(8 * time.Second)),
									},
								},
							},
							{
								Title: "declines invalid card",
								Attempts: []*core.RawAttempt{
									{
										Status:    core.AttemptFailed,
										Duration:  3000,
										StartedAt: zero.TimeFrom(base.Add(13 * time.Second)),
										Error:     zero.StringFrom("expect(locator).toBeVisible() failed"),
									},
									{
										Status:    core.AttemptFailed,
										Duration:  3100,
										StartedAt: zero.TimeFrom(base.Add(17 * time.Second)),
									},
								},
							},
						},
					},
				},
			},
			{
				Title: "e2e/profile.spec.ts",
				File:  zero.StringFrom("e2e/profile.spec.ts"),
				Suites: []*core.RawSuite{
					{
						Title: "Profile",
						Specs: []*core.RawSpec{
							{
								Title: "renders avatar",
								Attempts: []*core.RawAttempt{
									{Status: core.AttemptPassed, Duration: 900, StartedAt: zero.TimeFrom(base.Add(21 * time.Second))},
								},
							},
							{
								Title:    "updates email",
								Attempts: []*core.RawAttempt{{Status: core.AttemptSkipped}},
							},
							{
								Title: "changes password",
								Attempts: []*core.RawAttempt{
									{Status: core.AttemptPassed, Duration: 1500, StartedAt: zero.TimeFrom(base.Add(23 * time.Second))},
								},
							},
						},
					},
				},
			},
		},
	}
	normalized, err := New(testLogger(t)).Normalize(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(normalized.Outcomes) != 6 {
		t.Fatalf("expected 6 outcomes, got %d", len(normalized.Outcomes))
	}
	assert.Equal(t, core.SubmissionSummary{Total: 6, Passed: 3, Failed: 1, Skipped: 1, Flaky: 1}, normalized.Summary)

	byName := map[string]*core.TestOutcome{}
	for _, outcome := range normalized.Outcomes {
		byName[outcome.Name] = outcome
	}
	flaky := byName["Checkout › shows payment form"]
	if flaky == nil {
		t.Fatal("missing flaky outcome")
	}
	assert.Equal(t, core.OutcomeFlaky, flaky.Status)
	assert.Equal(t, int64(9200), flaky.Duration)
	assert.Equal(t, 1, flaky.RetryCount)
	assert.Equal(t, "expect(locator).toBeVisible() failed", flaky.ErrorMessage.String)

	failed := byName["Checkout › declines invalid card"]
	if failed == nil {
		t.Fatal("missing failed outcome")
	}
	assert.Equal(t, core.OutcomeFailed, failed.Status)
	assert.Equal(t, "expect(locator).toBeVisible() failed", failed.ErrorMessage.String)

	// earliest attempt start, latest attempt start plus its duration
	assert.Equal(t, base, normalized.StartedAt.Time)
	assert.Equal(t, base.Add(23*time.Second).Add(1500*time.Millisecond), normalized.FinishedAt.Time)
}

func TestNormalizeValidation(t *testing.T) {
	n := New(testLogger(t))
	tests := []struct {
		name   string
		report *core.RawReport
	}{
		{"nil report", nil},
		{"missing suites", &core.RawReport{}},
		{"null suite node", &core.RawReport{Suites: []*core.RawSuite{nil}}},
		{
			"null spec node",
			&core.RawReport{Suites: []*core.RawSuite{{Title: "s", Specs: []*core.RawSpec{nil}}}},
		},
		{
			"unknown attempt status",
			singleSpecReport(&core.RawAttempt{Status: "exploded"}),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			normalized, err := n.Normalize(tc.report)
			assert.Nil(t, normalized)
			if !errs.IsReportValidationError(err) {
				t.Fatalf("expected report validation error, got %v", err)
			}
		})
	}
}
