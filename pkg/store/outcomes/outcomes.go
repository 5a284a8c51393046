// Package outcomes implements the test outcome store.
package outcomes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flakewatch/flakewatch/pkg/core"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/flakewatch/flakewatch/pkg/utils"
	"github.com/gocraft/dbr"
	"github.com/gocraft/dbr/dialect"
	"github.com/jmoiron/sqlx"
)

const insertQueryChunkSize = 1000

type testOutcomeStore struct {
	db     core.DB
	logger lumber.Logger
}

// New returns a new TestOutcomeStore.
func New(db core.DB, logger lumber.Logger) core.TestOutcomeStore {
	return &testOutcomeStore{db: db, logger: logger}
}

func (t *testOutcomeStore) CreateInTx(ctx context.Context, tx *sqlx.Tx, testOutcomes []*core.TestOutcome) error {
	return utils.Chunk(insertQueryChunkSize, len(testOutcomes), func(start, end int) error {
		args := []interface{}{}
		placeholderGrps := []string{}
		for _, outcome := range testOutcomes[start:end] {
			placeholderGrps = append(placeholderGrps, "(?,?,?,?,?,?,?,?,?)")
			args = append(args, outcome.ID, outcome.SubmissionID, outcome.ProjectID, outcome.Name,
				outcome.File, outcome.Status, outcome.Duration, outcome.RetryCount, outcome.ErrorMessage)
		}
		interpolatedQuery, errI := dbr.InterpolateForDialect(fmt.Sprintf(insertQuery,
			strings.Join(placeholderGrps, ",")), args, dialect.MySQL)
		if errI != nil {
			return errs.SQLError(errI)
		}
		if _, err := tx.ExecContext(ctx, interpolatedQuery); err != nil {
			return errs.SQLError(err)
		}
		return nil
	})
}

func (t *testOutcomeStore) FindInWindow(ctx context.Context, projectID string,
	cutoff time.Time) ([]*core.TestOutcome, error) {
	outcomes := make([]*core.TestOutcome, 0)
	return outcomes, t.db.Execute(func(db *sqlx.DB) error {
		rows, err := db.QueryxContext(ctx,
			"SELECT name, file, status, created_at FROM test_outcomes WHERE project_id=? AND created_at>=?",
			projectID, cutoff)
		if err != nil {
			return errs.SQLError(err)
		}
		defer rows.Close()
		for rows.Next() {
			outcome := new(core.TestOutcome)
			if err := rows.StructScan(outcome); err != nil {
				t.logger.Errorf("Error in scanning rows, error: %v", err)
				return errs.SQLError(err)
			}
			outcomes = append(outcomes, outcome)
		}
		return nil
	})
}

func (t *testOutcomeStore) FindBySubmission(ctx context.Context, projectID, submissionID,
	statusFilter string, offset, limit int) ([]*core.TestOutcome, error) {
	outcomes := make([]*core.TestOutcome, 0)
	return outcomes, t.db.Execute(func(db *sqlx.DB) error {
		args := map[string]interface{}{
			"project_id":    projectID,
			"submission_id": submissionID,
			"status":        statusFilter,
			"offset":        offset,
			"limit":         limit,
		}
		statusWhere := ""
		if statusFilter != "" {
			statusWhere = "AND status = :status"
		}
		query := fmt.Sprintf(findBySubmissionQuery, statusWhere)
		rows, err := db.NamedQueryContext(ctx, query, args)
		if err != nil {
			return errs.SQLError(err)
		}
		defer rows.Close()
		for rows.Next() {
			outcome := new(core.TestOutcome)
			if err := rows.StructScan(outcome); err != nil {
				t.logger.Errorf("Error in scanning rows, error: %v", err)
				return errs.SQLError(err)
			}
			outcomes = append(outcomes, outcome)
		}
		if len(outcomes) == 0 {
			return errs.ErrRowsNotFound
		}
		return nil
	})
}

const insertQuery = `INSERT
INTO
test_outcomes(id,
submission_id,
project_id,
name,
file,
status,
duration,
retry_count,
error_message)
VALUES %s`

const findBySubmissionQuery = `SELECT
	id,
	submission_id,
	name,
	file,
	status,
	duration,
	retry_count,
	error_message,
	created_at
FROM
	test_outcomes
WHERE
	project_id = :project_id
	AND submission_id = :submission_id
	%s
ORDER BY
	name
LIMIT :limit OFFSET :offset`
