// Package store provides a uniform persistence interface over two
// interchangeable backends: MongoDB and an ephemeral in-memory store.
// The backend is chosen once at startup; see FallbackStore for the
// runtime downgrade behavior.
package store

import (
	"context"
	"time"

	"seva-be/models"
)

// Filter narrows List and Count. Status and Category match exactly,
// Village matches as a case-insensitive substring. Zero-value fields
// match everything.
type Filter struct {
	Status   string
	Category string
	Village  string
}

// Store is the issue persistence contract. Implementations never drop a
// write silently: a failed insert or update surfaces as an error and
// leaves no partial state visible to the caller.
type Store interface {
	// Insert persists a new issue. The issueId must not already exist.
	Insert(ctx context.Context, issue *models.Issue) error

	// FindByID returns the issue with the given id, or
	// models.ErrIssueNotFound.
	FindByID(ctx context.Context, id string) (*models.Issue, error)

	// UpdateStatus sets the status and updatedAt of an existing issue and
	// returns the updated record, or models.ErrIssueNotFound.
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus, updatedAt time.Time) (*models.Issue, error)

	// List returns issues matching the filter, newest createdAt first.
	List(ctx context.Context, f Filter) ([]models.Issue, error)

	// Count returns the number of issues matching the filter.
	Count(ctx context.Context, f Filter) (int64, error)

	// CountByCategory returns issue counts grouped by category.
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// UserStore persists admin accounts. Email lookups are case-insensitive.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// Backend is the full capability set a storage backend provides.
type Backend interface {
	Store
	UserStore
}
