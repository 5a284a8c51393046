package core

import (
	"context"
	"time"
)

// Project represents a CI project whose test reports are ingested.
type Project struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	APIToken  string    `db:"api_token" json:"api_token,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// ProjectCache stores project details in redis, keyed by API token.
type ProjectCache struct {
	ID   string `redis:"id"`
	Name string `redis:"name"`
}

// ProjectStore defines datastore operations for working with projects
type ProjectStore interface {
	// Create persists a new project in the datastore.
	Create(ctx context.Context, project *Project) error
	// FindByToken returns the project owning the given API token.
	FindByToken(ctx context.Context, token string) (*Project, error)
	// FindByID returns the project by its id.
	FindByID(ctx context.Context, projectID string) (*Project, error)
	// Delete removes the project and all of its submissions, outcomes and
	// flaky test records in a single transaction.
	Delete(ctx context.Context, projectID string) error
}
