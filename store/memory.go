package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"seva-be/models"
)

// MemoryStore is the ephemeral backend: a mutex-guarded in-process map.
// Records live until process restart. Issues are copied on the way in
// and out so callers never alias stored state.
type MemoryStore struct {
	mu     sync.RWMutex
	issues map[string]*models.Issue
	order  []string // issueIds in insertion order

	users  map[string]*models.User
	emails map[string]string // lower(email) -> user id
}

// NewMemoryStore creates an empty in-memory backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		issues: make(map[string]*models.Issue),
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
	}
}

func (m *MemoryStore) Insert(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.issues[issue.IssueID]; exists {
		return &models.StorageError{Op: "insert", Err: fmt.Errorf("duplicate issueId %q", issue.IssueID)}
	}

	cp := *issue
	m.issues[issue.IssueID] = &cp
	m.order = append(m.order, issue.IssueID)
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (*models.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	issue, ok := m.issues[id]
	if !ok {
		return nil, models.ErrIssueNotFound
	}
	cp := *issue
	return &cp, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id string, status models.IssueStatus, updatedAt time.Time) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	issue, ok := m.issues[id]
	if !ok {
		return nil, models.ErrIssueNotFound
	}
	issue.Status = status
	issue.UpdatedAt = updatedAt

	cp := *issue
	return &cp, nil
}

func (m *MemoryStore) List(_ context.Context, f Filter) ([]models.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]models.Issue, 0, len(m.order))
	for _, id := range m.order {
		issue := m.issues[id]
		if matchesFilter(issue, f) {
			matched = append(matched, *issue)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (m *MemoryStore) Count(_ context.Context, f Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, issue := range m.issues {
		if matchesFilter(issue, f) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) CountByCategory(_ context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, issue := range m.issues {
		counts[issue.Category]++
	}
	return counts, nil
}

func matchesFilter(issue *models.Issue, f Filter) bool {
	if f.Status != "" && string(issue.Status) != f.Status {
		return false
	}
	if f.Category != "" && issue.Category != f.Category {
		return false
	}
	if f.Village != "" && !strings.Contains(strings.ToLower(issue.Village), strings.ToLower(f.Village)) {
		return false
	}
	return true
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := m.emails[key]; exists {
		return &models.StorageError{Op: "create user", Err: fmt.Errorf("duplicate email %q", user.Email)}
	}

	cp := *user
	m.users[user.ID] = &cp
	m.emails[key] = user.ID
	return nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}
