package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"seva-be/models"
)

// failingBackend returns the configured error from every operation.
type failingBackend struct {
	err error
}

func (f *failingBackend) Insert(context.Context, *models.Issue) error { return f.err }
func (f *failingBackend) FindByID(context.Context, string) (*models.Issue, error) {
	return nil, f.err
}
func (f *failingBackend) UpdateStatus(context.Context, string, models.IssueStatus, time.Time) (*models.Issue, error) {
	return nil, f.err
}
func (f *failingBackend) List(context.Context, Filter) ([]models.Issue, error) { return nil, f.err }
func (f *failingBackend) Count(context.Context, Filter) (int64, error)         { return 0, f.err }
func (f *failingBackend) CountByCategory(context.Context) (map[string]int64, error) {
	return nil, f.err
}
func (f *failingBackend) CreateUser(context.Context, *models.User) error { return f.err }
func (f *failingBackend) FindUserByEmail(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f *failingBackend) FindUserByID(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func TestFallbackStoreDowngradesOnConnectivityLoss(t *testing.T) {
	ctx := context.Background()
	primary := &failingBackend{err: &models.StorageError{Op: "insert", Err: context.DeadlineExceeded}}
	fb := NewFallbackStore(primary, NewMemoryStore())

	// The failing write itself must fail: no silent redirect.
	err := fb.Insert(ctx, testIssue("SEVA00000101", nil))
	if err == nil {
		t.Fatal("expected the failing insert to surface its error")
	}
	if !fb.Degraded() {
		t.Fatal("expected downgrade after connectivity failure")
	}

	// Subsequent operations run against the ephemeral store.
	if err := fb.Insert(ctx, testIssue("SEVA00000202", nil)); err != nil {
		t.Fatalf("Insert after downgrade: %v", err)
	}
	got, err := fb.FindByID(ctx, "SEVA00000202")
	if err != nil {
		t.Fatalf("FindByID after downgrade: %v", err)
	}
	if got.IssueID != "SEVA00000202" {
		t.Fatalf("IssueID = %q, want SEVA00000202", got.IssueID)
	}
}

func TestFallbackStoreIgnoresBackendAnswers(t *testing.T) {
	ctx := context.Background()
	primary := &failingBackend{err: models.ErrIssueNotFound}
	fb := NewFallbackStore(primary, NewMemoryStore())

	if _, err := fb.FindByID(ctx, "SEVA99999999"); !errors.Is(err, models.ErrIssueNotFound) {
		t.Fatalf("err = %v, want ErrIssueNotFound", err)
	}
	if fb.Degraded() {
		t.Fatal("not-found must not trigger a downgrade")
	}
}

func TestFallbackStoreIgnoresNonConnectivityFailures(t *testing.T) {
	ctx := context.Background()
	primary := &failingBackend{err: &models.StorageError{Op: "insert", Err: errors.New("duplicate key")}}
	fb := NewFallbackStore(primary, NewMemoryStore())

	if err := fb.Insert(ctx, testIssue("SEVA00000101", nil)); err == nil {
		t.Fatal("expected error")
	}
	if fb.Degraded() {
		t.Fatal("non-connectivity failure must not trigger a downgrade")
	}
}

func TestFallbackStoreHealthyPrimary(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStore()
	fb := NewFallbackStore(primary, NewMemoryStore())

	if err := fb.Insert(ctx, testIssue("SEVA00000101", nil)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if fb.Degraded() {
		t.Fatal("healthy primary must not be degraded")
	}

	// The write landed in the primary, not the fallback.
	if _, err := primary.FindByID(ctx, "SEVA00000101"); err != nil {
		t.Fatalf("primary FindByID: %v", err)
	}
}
