// Package services owns the issue lifecycle: validation, id assignment,
// state transitions, and event emission.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"seva-be/events"
	"seva-be/models"
	"seva-be/store"
	"seva-be/utils"
)

// maxIDAttempts bounds the collision retry loop for generated issue ids.
const maxIDAttempts = 5

// IssueService enforces the issue lifecycle rules. It is the only
// component that writes issues, always through the store, and it emits a
// broadcast event only after the write has succeeded.
type IssueService struct {
	store       store.Store
	broadcaster *events.Broadcaster
}

// NewIssueService wires the lifecycle manager to its store and event
// channel.
func NewIssueService(s store.Store, b *events.Broadcaster) *IssueService {
	return &IssueService{store: s, broadcaster: b}
}

// CreateIssueInput carries the intake fields. Name, Village, Category,
// and Description are required non-empty; the rest are optional.
type CreateIssueInput struct {
	Name        string
	Village     string
	Category    string
	Description string
	Location    *models.Location
	PhotoURL    *string
	Priority    string
}

// CreateIssue validates the input, assigns a fresh issue id, and
// persists the record with status Pending. Any status supplied by the
// caller is ignored. On success a newIssue event carrying the full
// record is published; on failure nothing is persisted and nothing is
// emitted.
func (s *IssueService) CreateIssue(ctx context.Context, in CreateIssueInput) (*models.Issue, error) {
	required := []struct {
		field, value string
	}{
		{"name", in.Name},
		{"village", in.Village},
		{"category", in.Category},
		{"description", in.Description},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, &models.ValidationError{Field: r.field, Message: "is required"}
		}
	}

	priority := models.Medium
	if in.Priority != "" {
		priority = models.IssuePriority(in.Priority)
		if !priority.Valid() {
			return nil, &models.ValidationError{Field: "priority", Message: "must be one of Low, Medium, High"}
		}
	}

	id, err := s.newIssueID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	issue := &models.Issue{
		IssueID:     id,
		Name:        in.Name,
		Village:     in.Village,
		Category:    in.Category,
		Description: in.Description,
		Location:    in.Location,
		PhotoURL:    in.PhotoURL,
		Status:      models.Pending,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Insert(ctx, issue); err != nil {
		return nil, err
	}

	s.broadcaster.Publish(events.Event{Name: events.EventNewIssue, Payload: *issue})
	return issue, nil
}

// newIssueID draws ids until one is free in the store. The underlying
// scheme is time-plus-random and can collide, so each candidate is
// checked before use.
func (s *IssueService) newIssueID(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := utils.GenerateIssueID()
		_, err := s.store.FindByID(ctx, id)
		if errors.Is(err, models.ErrIssueNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
		// id already taken, draw again
	}
	return "", &models.StorageError{Op: "generate issue id", Err: errors.New("exhausted id candidates")}
}

// UpdateStatus moves an issue to the given status. Any status may follow
// any other, including the same one; a no-op transition still refreshes
// updatedAt and still emits. The statusUpdate event carries only the id
// and the new status.
func (s *IssueService) UpdateStatus(ctx context.Context, issueID string, status models.IssueStatus) (*models.Issue, error) {
	if !status.Valid() {
		return nil, &models.ValidationError{Field: "status", Message: "must be one of Pending, In Progress, Resolved"}
	}

	issue, err := s.store.UpdateStatus(ctx, issueID, status, time.Now())
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(events.Event{
		Name:    events.EventStatusUpdate,
		Payload: models.StatusUpdate{IssueID: issue.IssueID, Status: issue.Status},
	})
	return issue, nil
}

// GetIssue fetches a single issue by id.
func (s *IssueService) GetIssue(ctx context.Context, issueID string) (*models.Issue, error) {
	return s.store.FindByID(ctx, issueID)
}

// ListIssues returns issues matching the filter, newest first.
func (s *IssueService) ListIssues(ctx context.Context, f store.Filter) ([]models.Issue, error) {
	return s.store.List(ctx, f)
}

// CategoryCount is one row of the per-category breakdown. The _id key
// mirrors the wire format the dashboard consumes.
type CategoryCount struct {
	Category string `json:"_id"`
	Count    int64  `json:"count"`
}

// Stats is the aggregate dashboard view.
type Stats struct {
	Total      int64
	Pending    int64
	InProgress int64
	Resolved   int64
	Categories []CategoryCount
}

// ComputeStats derives the dashboard counts fresh from the store on
// every call. No caching: issue volume is small and correctness wins.
func (s *IssueService) ComputeStats(ctx context.Context) (*Stats, error) {
	total, err := s.store.Count(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	pending, err := s.store.Count(ctx, store.Filter{Status: string(models.Pending)})
	if err != nil {
		return nil, err
	}
	inProgress, err := s.store.Count(ctx, store.Filter{Status: string(models.InProgress)})
	if err != nil {
		return nil, err
	}
	resolved, err := s.store.Count(ctx, store.Filter{Status: string(models.Resolved)})
	if err != nil {
		return nil, err
	}

	byCategory, err := s.store.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]CategoryCount, 0, len(byCategory))
	for category, count := range byCategory {
		categories = append(categories, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Category < categories[j].Category
	})

	return &Stats{
		Total:      total,
		Pending:    pending,
		InProgress: inProgress,
		Resolved:   resolved,
		Categories: categories,
	}, nil
}
