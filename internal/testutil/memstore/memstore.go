// Package memstore provides an in-memory store for handler and router tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/civicreport/civicreport/internal/model"
	"github.com/civicreport/civicreport/internal/repository"
)

// Store is an in-memory implementation of the user and issue persistence
// used by the services. It mirrors the repository's error values and ordering.
type Store struct {
	mu      sync.Mutex
	users   map[string]*model.User
	byEmail map[string]string
	issues  map[string]*model.Issue
	err     error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   map[string]*model.User{},
		byEmail: map[string]string{},
		issues:  map[string]*model.Issue{},
	}
}

func (m *Store) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrEmailExists
	}
	cp := *user
	m.users[user.ID] = &cp
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *Store) FindUserByEmail(_ context.Context, email string, includeSecret bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *m.users[id]
	if !includeSecret {
		cp.PasswordHash = ""
	}
	return &cp, nil
}

func (m *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

func (m *Store) CreateIssue(_ context.Context, issue *model.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *issue
	m.issues[issue.ID] = &cp
	return nil
}

func (m *Store) GetIssueByID(_ context.Context, id string) (*model.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	issue, ok := m.issues[id]
	if !ok {
		return nil, repository.ErrIssueNotFound
	}
	cp := *issue
	if u, ok := m.users[cp.UserID]; ok {
		cp.Reporter = &model.Reporter{ID: u.ID, Name: u.Name}
	}
	return &cp, nil
}

func (m *Store) ListIssues(context.Context) ([]*model.Issue, error) {
	return m.listIssues(func(*model.Issue) bool { return true })
}

func (m *Store) ListIssuesByUser(_ context.Context, userID string) ([]*model.Issue, error) {
	return m.listIssues(func(i *model.Issue) bool { return i.UserID == userID })
}

func (m *Store) listIssues(keep func(*model.Issue) bool) ([]*model.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*model.Issue, 0, len(m.issues))
	for _, i := range m.issues {
		if keep(i) {
			cp := *i
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

func (m *Store) GetIssueStats(_ context.Context, userID string) (*model.IssueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var s model.IssueStats
	for _, i := range m.issues {
		if i.UserID != userID {
			continue
		}
		s.Total++
		switch i.Status {
		case model.IssueStatusResolved:
			s.Resolved++
		case model.IssueStatusPending:
			s.Pending++
		}
	}
	return &s, nil
}

func (m *Store) UpdateIssueStatus(_ context.Context, id string, status model.IssueStatus) (*model.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	issue, ok := m.issues[id]
	if !ok {
		return nil, repository.ErrIssueNotFound
	}
	issue.Status = status
	cp := *issue
	return &cp, nil
}

// SeedIssue stores issue as-is.
func (m *Store) SeedIssue(issue *model.Issue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *issue
	m.issues[issue.ID] = &cp
}

// SeedUser stores user as-is.
func (m *Store) SeedUser(user *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	m.byEmail[user.Email] = user.ID
}

// Fail makes every subsequent call return err.
func (m *Store) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
