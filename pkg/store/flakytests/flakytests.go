// Package flakytests implements the flaky test record store. Records are
// keyed on (project_id, test_name), one row per distinct test.
package flakytests

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

const (
	maxRetries           = 3
	delay                = 250 * time.Millisecond
	maxJitter            = 100 * time.Millisecond
	errMsg               = "failed to perform flaky test record transaction"
	upsertQueryChunkSize = 1000
)

type flakyTestStore struct {
	db     core.DB
	logger lumber.Logger
}

// New returns a new FlakyTestStore.
func New(db core.DB, logger lumber.Logger) core.FlakyTestStore {
	return &flakyTestStore{db: db, logger: logger}
}

func (f *flakyTestStore) FindByProject(ctx context.Context, projectID string) ([]*core.FlakyTestRecord, error) {
	records := make([]*core.FlakyTestRecord, 0)
	return records, f.db.Execute(func(db *sqlx.DB) error {
		rows, err := db.QueryxContext(ctx, findByProjectQuery, projectID)
		if err != nil {
			return errs.SQLError(err)
		}
		defer rows.Close()
		for rows.Next() {
			record := new(core.FlakyTestRecord)
			if err := rows.StructScan(record); err != nil {
				f.logger.Errorf("Error in scanning rows, error: %v", err)
				return errs.SQLError(err)
			}
			records = append(records, record)
		}
		return nil
	})
}

func (f *flakyTestStore) List(ctx context.Context, projectID, statusFilter string,
	offset, limit int) ([]*core.FlakyTestRecord, error) {
	records := make([]*core.FlakyTestRecord, 0)
	return records, f.db.Execute(func(db *sqlx.DB) error {
		args := map[string]interface{}{
			"project_id": projectID,
			"status":     statusFilter,
			"offset":     offset,
			"limit":      limit,
		}
		statusWhere := ""
		if statusFilter != "" {
			statusWhere = "AND status = :status"
		}
		query := fmt.Sprintf(listQuery, statusWhere)
		rows, err := db.NamedQueryContext(ctx, query, args)
		if err != nil {
			return errs.SQLError(err)
		}
		defer rows.Close()
		for rows.Next() {
			record := new(core.FlakyTestRecord)
			if err := rows.StructScan(record); err != nil {
				f.logger.Errorf("Error in scanning rows, error: %v", err)
				return errs.SQLError(err)
			}
			records = append(records, record)
		}
		if len(records) == 0 {
			return errs.ErrRowsNotFound
		}
		return nil
	})
}

func (f *flakyTestStore) FindByID(ctx context.Context, projectID, recordID string) (*core.FlakyTestRecord, error) {
	record := new(core.FlakyTestRecord)
	return record, f.db.Execute(func(db *sqlx.DB) error {
		rows := db.QueryRowxContext(ctx, findByIDQuery, projectID, recordID)
		if err := rows.StructScan(record); err != nil {
			return errs.SQLError(err)
		}
		return nil
	})
}

func (f *flakyTestStore) Upsert(ctx context.Context, records []*core.FlakyTestRecord) error {
	return f.db.ExecuteTransactionWithRetry(ctx, maxRetries, delay, maxJitter, errMsg, func(tx *sqlx.Tx) error {
		return utils.Chunk(upsertQueryChunkSize, len(records), func(start, end int) error {
			args := []interface{}{}
			placeholderGrps := []string{}
			for _, record := range records[start:end] {
				placeholderGrps = append(placeholderGrps, "(?,?,?,?,?,?,?,?,?,?)")
				args = append(args, record.ID, record.ProjectID, record.TestName, record.TestFile,
					record.FirstDetectedAt, record.LastSeenAt, record.FlakeCount, record.TotalRuns,
					record.FlakeRate, record.Status)
			}
			interpolatedQuery, errI := dbr.InterpolateForDialect(fmt.Sprintf(upsertQuery,
				strings.Join(placeholderGrps, ",")), args, dialect.MySQL)
			if errI != nil {
				return errs.SQLError(errI)
			}
			if _, err := tx.ExecContext(ctx, interpolatedQuery); err != nil {
				return errs.SQLError(err)
			}
			return nil
		})
	})
}

func (f *flakyTestStore) MarkResolved(ctx context.Context, projectID string, testNames []string) (int64, error) {
	var rowCount int64
	err := f.db.Execute(func(db *sqlx.DB) error {
		arg := map[string]interface{}{
			"project_id": projectID,
			"test_name":  testNames,
			"resolved":   core.FlakyStatusResolved,
			"active":     core.FlakyStatusActive,
		}
		query, args, err := sqlx.Named(markResolvedQuery, arg)
		if err != nil {
			f.logger.Errorf("failed to create named query, error %v", err)
			return errs.SQLError(err)
		}
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			f.logger.Errorf("failed to create IN query, error %v", err)
			return errs.SQLError(err)
		}
		query = db.Rebind(query)
		result, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return errs.SQLError(err)
		}
		rowCount, err = result.RowsAffected()
		if err != nil {
			return errs.SQLError(err)
		}
		return nil
	})
	return rowCount, err
}

func (f *flakyTestStore) UpdateStatus(ctx context.Context, projectID, recordID string,
	status core.FlakyTestStatus) error {
	return f.db.Execute(func(db *sqlx.DB) error {
		result, err := db.ExecContext(ctx,
			"UPDATE flaky_tests SET status=? WHERE project_id=? AND id=?", status, projectID, recordID)
		if err != nil {
			return errs.SQLError(err)
		}
		if rowCount, err := result.RowsAffected(); err != nil {
			return errs.SQLError(err)
		} else if rowCount == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

const findByProjectQuery = `SELECT
	id,
	project_id,
	test_name,
	test_file,
	first_detected_at,
	last_seen_at,
	flake_count,
	total_runs,
	flake_rate,
	status,
	created_at,
	updated_at
FROM
	flaky_tests
WHERE
	project_id = ?`

const listQuery = `SELECT
	id,
	project_id,
	test_name,
	test_file,
	first_detected_at,
	last_seen_at,
	flake_count,
	total_runs,
	flake_rate,
	status,
	created_at,
	updated_at
FROM
	flaky_tests
WHERE
	project_id = :project_id
	%s
ORDER BY
	flake_rate DESC
LIMIT :limit OFFSET :offset`

const findByIDQuery = `SELECT
	id,
	project_id,
	test_name,
	test_file,
	first_detected_at,
	last_seen_at,
	flake_count,
	total_runs,
	flake_rate,
	status,
	created_at,
	updated_at
FROM
	flaky_tests
WHERE
	project_id = ?
	AND id = ?`

// first_detected_at is intentionally absent from the update list
const upsertQuery = `INSERT
INTO
flaky_tests(id,
project_id,
test_name,
test_file,
first_detected_at,
last_seen_at,
flake_count,
total_runs,
flake_rate,
status)
VALUES %s ON
DUPLICATE KEY
UPDATE
test_file =
VALUES(test_file),
last_seen_at =
VALUES(last_seen_at),
flake_count =
VALUES(flake_count),
total_runs =
VALUES(total_runs),
flake_rate =
VALUES(flake_rate),
status =
VALUES(status)`

const markResolvedQuery = `UPDATE
	flaky_tests
SET
	status = :resolved
WHERE
	project_id = :project_id
	AND status = :active
	AND test_name IN (:test_name)`
