// Package projects implements the project store backed by mysql with a
// redis cache for token lookups on the hot ingestion path.
package projects

import (
	"context"
	"errors"
	"time"

	"github.com/flakewatch/flakewatch/pkg/core"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/flakewatch/flakewatch/pkg/utils"
	"github.com/jmoiron/sqlx"
)

const (
	maxRetries = 3
	delay      = 250 * time.Millisecond
	maxJitter  = 100 * time.Millisecond
	errMsg     = "failed to perform project transaction"
)

type projectStore struct {
	db      core.DB
	redisDB core.RedisDB
	logger  lumber.Logger
}

// New returns a new ProjectStore.
func New(db core.DB, redisDB core.RedisDB, logger lumber.Logger) core.ProjectStore {
	return &projectStore{db: db, redisDB: redisDB, logger: logger}
}

func (p *projectStore) Create(ctx context.Context, project *core.Project) error {
	return p.db.Execute(func(db *sqlx.DB) error {
		if _, err := db.NamedExecContext(ctx, insertQuery, project); err != nil {
			return errs.SQLError(err)
		}
		return nil
	})
}

func (p *projectStore) FindByToken(ctx context.Context, token string) (*core.Project, error) {
	cached, err := p.getProjectCache(ctx, token)
	if err != nil && !errors.Is(err, errs.ErrRedisKeyNotFound) {
		return nil, err
	}
	if cached != nil && cached.ID != "" {
		return &core.Project{ID: cached.ID, Name: cached.Name, APIToken: token}, nil
	}
	project := new(core.Project)
	err = p.db.Execute(func(db *sqlx.DB) error {
		rows := db.QueryRowxContext(ctx, "SELECT id, name, api_token, created_at, updated_at FROM projects WHERE api_token=?", token)
		return rows.StructScan(project)
	})
	if err != nil {
		return nil, errs.SQLError(err)
	}
	key := utils.GetProjectHashKey(token)
	if _, err := p.redisDB.Client().HSet(ctx, key, "id", project.ID, "name", project.Name).Result(); err != nil {
		p.logger.Errorf("failed to cache project %s, error: %v", project.ID, err)
	}
	return project, nil
}

func (p *projectStore) FindByID(ctx context.Context, projectID string) (*core.Project, error) {
	project := new(core.Project)
	return project, p.db.Execute(func(db *sqlx.DB) error {
		rows := db.QueryRowxContext(ctx, "SELECT id, name, api_token, created_at, updated_at FROM projects WHERE id=?", projectID)
		if err := rows.StructScan(project); err != nil {
			return errs.SQLError(err)
		}
		return nil
	})
}

func (p *projectStore) Delete(ctx context.Context, projectID string) error {
	project, err := p.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	err = p.db.ExecuteTransactionWithRetry(ctx, maxRetries, delay, maxJitter, errMsg, func(tx *sqlx.Tx) error {
		for _, query := range deleteQueries {
			if _, err := tx.ExecContext(ctx, query, projectID); err != nil {
				return errs.SQLError(err)
			}
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id=?", projectID)
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
	if err != nil {
		return err
	}
	key := utils.GetProjectHashKey(project.APIToken)
	if _, err := p.redisDB.Client().Del(ctx, key).Result(); err != nil {
		p.logger.Errorf("failed to evict cached project %s, error: %v", projectID, err)
	}
	return nil
}

func (p *projectStore) getProjectCache(ctx context.Context, token string) (*core.ProjectCache, error) {
	var project core.ProjectCache
	key := utils.GetProjectHashKey(token)
	exists, err := p.redisDB.Client().Exists(ctx, key).Result()
	if exists == 0 || err != nil {
		return nil, errs.ErrRedisKeyNotFound
	}
	cmd := p.redisDB.Client().HGetAll(ctx, key)
	if err := cmd.Scan(&project); err != nil {
		return nil, err
	}
	return &project, nil
}

const insertQuery = `INSERT
INTO
projects(id,
name,
api_token,
created_at,
updated_at)
VALUES (:id,
:name,
:api_token,
:created_at,
:updated_at)`

// child rows first, the project row last
var deleteQueries = []string{
	"DELETE FROM test_outcomes WHERE project_id=?",
	"DELETE FROM report_submissions WHERE project_id=?",
	"DELETE FROM flaky_tests WHERE project_id=?",
}
