package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/civicreport/civicreport/internal/model"
	"github.com/civicreport/civicreport/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUserStore is an in-memory UserStore mirroring repository semantics.
type memUserStore struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]string
	err     error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byID: map[string]*model.User{}, byEmail: map[string]string{}}
}

func (m *memUserStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrEmailExists
	}
	cp := *user
	m.byID[user.ID] = &cp
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *memUserStore) FindUserByEmail(_ context.Context, email string, includeSecret bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *m.byID[id]
	if !includeSecret {
		cp.PasswordHash = ""
	}
	return &cp, nil
}

func (m *memUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

func (m *memUserStore) stored(email string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[m.byEmail[email]]
}

// memIssueStore is an in-memory IssueStore.
type memIssueStore struct {
	mu     sync.Mutex
	issues map[string]*model.Issue
	names  map[string]string
	err    error
}

func newMemIssueStore() *memIssueStore {
	return &memIssueStore{issues: map[string]*model.Issue{}, names: map[string]string{}}
}

func (m *memIssueStore) CreateIssue(_ context.Context, issue *model.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *issue
	m.issues[issue.ID] = &cp
	return nil
}

func (m *memIssueStore) GetIssueByID(_ context.Context, id string) (*model.Issue, error) {
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
	cp.Reporter = &model.Reporter{ID: cp.UserID, Name: m.names[cp.UserID]}
	return &cp, nil
}

func (m *memIssueStore) ListIssues(ctx context.Context) ([]*model.Issue, error) {
	return m.list(func(*model.Issue) bool { return true })
}

func (m *memIssueStore) ListIssuesByUser(_ context.Context, userID string) ([]*model.Issue, error) {
	return m.list(func(i *model.Issue) bool { return i.UserID == userID })
}

func (m *memIssueStore) list(keep func(*model.Issue) bool) ([]*model.Issue, error) {
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

func (m *memIssueStore) GetIssueStats(_ context.Context, userID string) (*model.IssueStats, error) {
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

func (m *memIssueStore) UpdateIssueStatus(_ context.Context, id string, status model.IssueStatus) (*model.Issue, error) {
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

var errStoreDown = errors.New("store unavailable")
