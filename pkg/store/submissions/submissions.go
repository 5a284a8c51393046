// Package submissions implements the report submission store. A submission
// and its outcome rows are persisted in one transaction.
package submissions

import (
	"context"
	"time"

	"github.com/flakewatch/flakewatch/pkg/core"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/jmoiron/sqlx"
)

const (
	maxRetries = 3
	delay      = 250 * time.Millisecond
	maxJitter  = 100 * time.Millisecond
	errMsg     = "failed to perform report submission transaction"
)

type submissionStore struct {
	db           core.DB
	outcomeStore core.TestOutcomeStore
	logger       lumber.Logger
}

// New returns a new SubmissionStore.
func New(db core.DB, outcomeStore core.TestOutcomeStore, logger lumber.Logger) core.SubmissionStore {
	return &submissionStore{db: db, outcomeStore: outcomeStore, logger: logger}
}

func (s *submissionStore) Create(ctx context.Context, submission *core.ReportSubmission,
	testOutcomes []*core.TestOutcome) error {
	return s.db.ExecuteTransactionWithRetry(ctx, maxRetries, delay, maxJitter, errMsg, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertQuery, submission); err != nil {
			return errs.SQLError(err)
		}
		if len(testOutcomes) == 0 {
			return nil
		}
		return s.outcomeStore.CreateInTx(ctx, tx, testOutcomes)
	})
}

func (s *submissionStore) FindByProject(ctx context.Context, projectID string,
	offset, limit int) ([]*core.ReportSubmission, error) {
	submissions := make([]*core.ReportSubmission, 0)
	return submissions, s.db.Execute(func(db *sqlx.DB) error {
		args := map[string]interface{}{
			"project_id": projectID,
			"offset":     offset,
			"limit":      limit,
		}
		rows, err := db.NamedQueryContext(ctx, findByProjectQuery, args)
		if err != nil {
			return errs.SQLError(err)
		}
		defer rows.Close()
		for rows.Next() {
			submission := new(core.ReportSubmission)
			if err := rows.StructScan(submission); err != nil {
				s.logger.Errorf("Error in scanning rows, error: %v", err)
				return errs.SQLError(err)
			}
			submissions = append(submissions, submission)
		}
		if len(submissions) == 0 {
			return errs.ErrRowsNotFound
		}
		return nil
	})
}

func (s *submissionStore) FindByID(ctx context.Context, projectID, submissionID string) (*core.ReportSubmission, error) {
	submission := new(core.ReportSubmission)
	return submission, s.db.Execute(func(db *sqlx.DB) error {
		rows := db.QueryRowxContext(ctx, findByIDQuery, projectID, submissionID)
		if err := rows.StructScan(submission); err != nil {
			return errs.SQLError(err)
		}
		return nil
	})
}

const insertQuery = `INSERT
INTO
report_submissions(id,
project_id,
branch,
commit_sha,
pipeline_id,
total_tests,
passed_tests,
failed_tests,
skipped_tests,
flaky_tests,
started_at,
finished_at)
VALUES (:id,
:project_id,
:branch,
:commit_sha,
:pipeline_id,
:total_tests,
:passed_tests,
:failed_tests,
:skipped_tests,
:flaky_tests,
:started_at,
:finished_at)`

const findByProjectQuery = `SELECT
	id,
	branch,
	commit_sha,
	pipeline_id,
	total_tests,
	passed_tests,
	failed_tests,
	skipped_tests,
	flaky_tests,
	started_at,
	finished_at,
	created_at
FROM
	report_submissions
WHERE
	project_id = :project_id
ORDER BY
	created_at DESC
LIMIT :limit OFFSET :offset`

const findByIDQuery = `SELECT
	id,
	branch,
	commit_sha,
	pipeline_id,
	total_tests,
	passed_tests,
	failed_tests,
	skipped_tests,
	flaky_tests,
	started_at,
	finished_at,
	created_at
FROM
	report_submissions
WHERE
	project_id = ?
	AND id = ?`
