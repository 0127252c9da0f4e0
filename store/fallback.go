package store

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"seva-be/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// FallbackStore routes operations to a persistent primary backend until
// a connectivity failure, then permanently downgrades to an ephemeral
// in-memory backend. The downgrade is one-directional: retrying the
// persistent backend requires a process restart. The operation that
// observed the failure still fails — the write is never silently
// redirected, so callers see no partial success.
type FallbackStore struct {
	primary  Backend
	memory   *MemoryStore
	degraded atomic.Bool
}

// NewFallbackStore wraps primary with an in-memory fallback.
func NewFallbackStore(primary Backend, memory *MemoryStore) *FallbackStore {
	return &FallbackStore{primary: primary, memory: memory}
}

// Degraded reports whether the store has switched to the in-memory
// backend.
func (s *FallbackStore) Degraded() bool {
	return s.degraded.Load()
}

// observe downgrades on connectivity-class errors. Not-found and
// duplicate-key errors are backend answers, not backend failures.
func (s *FallbackStore) observe(err error) {
	if err == nil || !isConnectivityError(err) {
		return
	}
	if s.degraded.CompareAndSwap(false, true) {
		log.Printf("MongoDB connection error, switching to in-memory storage: %v", err)
	}
}

func isConnectivityError(err error) bool {
	if errors.Is(err, models.ErrIssueNotFound) || errors.Is(err, models.ErrUserNotFound) {
		return false
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (s *FallbackStore) Insert(ctx context.Context, issue *models.Issue) error {
	if s.degraded.Load() {
		return s.memory.Insert(ctx, issue)
	}
	err := s.primary.Insert(ctx, issue)
	s.observe(err)
	return err
}

func (s *FallbackStore) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	if s.degraded.Load() {
		return s.memory.FindByID(ctx, id)
	}
	issue, err := s.primary.FindByID(ctx, id)
	s.observe(err)
	return issue, err
}

func (s *FallbackStore) UpdateStatus(ctx context.Context, id string, status models.IssueStatus, updatedAt time.Time) (*models.Issue, error) {
	if s.degraded.Load() {
		return s.memory.UpdateStatus(ctx, id, status, updatedAt)
	}
	issue, err := s.primary.UpdateStatus(ctx, id, status, updatedAt)
	s.observe(err)
	return issue, err
}

func (s *FallbackStore) List(ctx context.Context, f Filter) ([]models.Issue, error) {
	if s.degraded.Load() {
		return s.memory.List(ctx, f)
	}
	issues, err := s.primary.List(ctx, f)
	s.observe(err)
	return issues, err
}

func (s *FallbackStore) Count(ctx context.Context, f Filter) (int64, error) {
	if s.degraded.Load() {
		return s.memory.Count(ctx, f)
	}
	count, err := s.primary.Count(ctx, f)
	s.observe(err)
	return count, err
}

func (s *FallbackStore) CountByCategory(ctx context.Context) (map[string]int64, error) {
	if s.degraded.Load() {
		return s.memory.CountByCategory(ctx)
	}
	counts, err := s.primary.CountByCategory(ctx)
	s.observe(err)
	return counts, err
}

func (s *FallbackStore) CreateUser(ctx context.Context, user *models.User) error {
	if s.degraded.Load() {
		return s.memory.CreateUser(ctx, user)
	}
	err := s.primary.CreateUser(ctx, user)
	s.observe(err)
	return err
}

func (s *FallbackStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.degraded.Load() {
		return s.memory.FindUserByEmail(ctx, email)
	}
	user, err := s.primary.FindUserByEmail(ctx, email)
	s.observe(err)
	return user, err
}

func (s *FallbackStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if s.degraded.Load() {
		return s.memory.FindUserByID(ctx, id)
	}
	user, err := s.primary.FindUserByID(ctx, id)
	s.observe(err)
	return user, err
}
