// Package normalizer flattens nested, retry-bearing test reports into
// per-test outcome rows with a single resolved status.
package normalizer

import (
	"strings"
	"time"

	"github.com/flakewatch/flakewatch/pkg/constants"
	"github.com/flakewatch/flakewatch/pkg/core"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"gopkg.in/guregu/null.v4/zero"
)

// Suite titles ending in one of these extensions carry a file association
// only and are excluded from test names.
var sourceFileExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	".py", ".go", ".java", ".rb", ".cs", ".php",
}

type normalizer struct {
	logger lumber.Logger
}

// New returns a new ReportNormalizer.
func New(logger lumber.Logger) core.ReportNormalizer {
	return &normalizer{logger: logger}
}

func (n *normalizer) Normalize(report *core.RawReport) (*core.NormalizedReport, error) {
	if report == nil {
		return nil, errs.InvalidReportErr("missing report")
	}
	if report.Suites == nil {
		return nil, errs.InvalidReportErr("missing suites")
	}
	normalized := &core.NormalizedReport{Outcomes: make([]*core.TestOutcome, 0)}
	for _, suite := range report.Suites {
		if err := n.walkSuite(suite, nil, "", normalized); err != nil {
			return nil, err
		}
	}
	for _, outcome := range normalized.Outcomes {
		normalized.Summary.Total++
		switch outcome.Status {
		case core.OutcomePassed:
			normalized.Summary.Passed++
		case core.OutcomeFailed:
			normalized.Summary.Failed++
		case core.OutcomeSkipped:
			normalized.Summary.Skipped++
		case core.OutcomeFlaky:
			normalized.Summary.Flaky++
		}
	}
	return normalized, nil
}

// walkSuite traverses the tree depth first, threading the accumulated name
// path and the nearest ancestor file as immutable parameters.
func (n *normalizer) walkSuite(suite *core.RawSuite, path []string, inheritedFile string,
	normalized *core.NormalizedReport) error {
	if suite == nil {
		return errs.InvalidReportErr("null suite node")
	}
	file := inheritedFile
	if suite.File.Valid && suite.File.String != "" {
		file = suite.File.String
	}
	childPath := path
	if !looksLikeFileRef(suite.Title) {
		childPath = make([]string, 0, len(path)+1)
		childPath = append(childPath, path...)
		childPath = append(childPath, suite.Title)
	}
	for _, spec := range suite.Specs {
		if err := n.collectSpec(spec, childPath, file, normalized); err != nil {
			return err
		}
	}
	for _, child := range suite.Suites {
		if err := n.walkSuite(child, childPath, file, normalized); err != nil {
			return err
		}
	}
	return nil
}

func (n *normalizer) collectSpec(spec *core.RawSpec, path []string, inheritedFile string,
	normalized *core.NormalizedReport) error {
	if spec == nil {
		return errs.InvalidReportErr("null spec node")
	}
	// a spec with zero attempts contributes no outcome
	if len(spec.Attempts) == 0 {
		return nil
	}
	for _, attempt := range spec.Attempts {
		if attempt == nil {
			return errs.InvalidReportErr("null attempt in spec %q", spec.Title)
		}
		if !attempt.Status.Valid() {
			return errs.InvalidReportErr("unknown attempt status %q in spec %q", attempt.Status, spec.Title)
		}
	}

	file := inheritedFile
	if spec.File.Valid && spec.File.String != "" {
		file = spec.File.String
	}

	var totalDuration int64
	var errorMessage zero.String
	for _, attempt := range spec.Attempts {
		totalDuration += attempt.Duration
		if !errorMessage.Valid && attempt.Error.Valid && attempt.Error.String != "" {
			errorMessage = attempt.Error
		}
		if attempt.StartedAt.Valid {
			start := attempt.StartedAt.Time
			end := start.Add(time.Duration(attempt.Duration) * time.Millisecond)
			if !normalized.StartedAt.Valid || start.Before(normalized.StartedAt.Time) {
				normalized.StartedAt = zero.TimeFrom(start)
			}
			if !normalized.FinishedAt.Valid || end.After(normalized.FinishedAt.Time) {
				normalized.FinishedAt = zero.TimeFrom(end)
			}
		}
	}

	name := strings.Join(append(append(make([]string, 0, len(path)+1), path...), spec.Title),
		constants.TestNameSeparator)
	normalized.Outcomes = append(normalized.Outcomes, &core.TestOutcome{
		Name:         name,
		File:         file,
		Status:       resolveStatus(spec.Attempts),
		Duration:     totalDuration,
		RetryCount:   len(spec.Attempts) - 1,
		ErrorMessage: errorMessage,
	})
	return nil
}

// resolveStatus collapses the ordered attempts of one spec into a single
// outcome status. A pass and a fail among the attempts means flaky
// irrespective of their order; otherwise the last attempt decides.
func resolveStatus(attempts []*core.RawAttempt) core.TestOutcomeStatus {
	allSkipped := true
	anyPassed := false
	anyFailed := false
	for _, attempt := range attempts {
		switch attempt.Status {
		case core.AttemptPassed:
			anyPassed = true
			allSkipped = false
		case core.AttemptFailed, core.AttemptTimedOut:
			anyFailed = true
			allSkipped = false
		case core.AttemptSkipped:
		case core.AttemptInterrupted:
			allSkipped = false
		}
	}
	if allSkipped {
		return core.OutcomeSkipped
	}
	if anyPassed && anyFailed {
		return core.OutcomeFlaky
	}
	switch attempts[len(attempts)-1].Status {
	case core.AttemptPassed:
		return core.OutcomePassed
	case core.AttemptSkipped:
		return core.OutcomeSkipped
	case core.AttemptFailed, core.AttemptTimedOut, core.AttemptInterrupted:
		return core.OutcomeFailed
	default:
		return core.OutcomeFailed
	}
}

// looksLikeFileRef reports whether a suite title is a file reference rather
// than a semantic group name.
func looksLikeFileRef(title string) bool {
	if strings.ContainsAny(title, "/\\") {
		return true
	}
	lower := strings.ToLower(title)
	for _, ext := range sourceFileExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
