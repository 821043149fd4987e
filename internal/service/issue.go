package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/civicreport/civicreport/internal/metrics"
	"github.com/civicreport/civicreport/internal/model"
	"github.com/civicreport/civicreport/internal/repository"
	"github.com/oklog/ulid/v2"
)

// IssueStore is the persistence required by IssueService.
// *repository.Repository satisfies it.
type IssueStore interface {
	CreateIssue(ctx context.Context, issue *model.Issue) error
	GetIssueByID(ctx context.Context, id string) (*model.Issue, error)
	ListIssues(ctx context.Context) ([]*model.Issue, error)
	ListIssuesByUser(ctx context.Context, userID string) ([]*model.Issue, error)
	GetIssueStats(ctx context.Context, userID string) (*model.IssueStats, error)
	UpdateIssueStatus(ctx context.Context, id string, status model.IssueStatus) (*model.Issue, error)
}

// CreateIssueInput defines input for reporting an issue.
type CreateIssueInput struct {
	Title       string              `json:"title" validate:"required,max=50"`
	Description string              `json:"description" validate:"required,max=500"`
	Type        model.IssueType     `json:"type" validate:"required,issue_type"`
	Priority    model.IssuePriority `json:"priority" validate:"omitempty,issue_priority"`
	Image       string              `json:"image" validate:"omitempty,http_url,max=2048"`
	Location    model.Location      `json:"location"`
}

var issueMessages = map[string]string{
	"title.required":          "Please add a title for the issue",
	"title.max":               "Title cannot be more than 50 characters",
	"description.required":    "Please add a description",
	"description.max":         "Description cannot be more than 500 characters",
	"type.required":           "Please select an issue type",
	"type.issue_type":         "Please select a valid issue type",
	"priority.issue_priority": "Priority must be Low, Medium or High",
	"image.http_url":          "Image must be an http(s) URL",
	"image.max":               "Image URL is too long",
}

// IssueService handles issue business logic.
type IssueService struct {
	store     IssueStore
	logger    *slog.Logger
	metrics   metrics.Recorder
	validator *inputValidator
	now       func() time.Time
}

// NewIssueService creates a new IssueService.
func NewIssueService(store IssueStore, logger *slog.Logger, recorder metrics.Recorder) *IssueService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IssueService{
		store:     store,
		logger:    logger,
		metrics:   recorder,
		validator: newInputValidator(issueMessages),
		now:       time.Now,
	}
}

// CreateIssue records a new issue owned by the caller.
func (s *IssueService) CreateIssue(ctx context.Context, owner *model.Identity, input CreateIssueInput) (*model.Issue, error) {
	if owner == nil || owner.UserID == "" {
		return nil, ErrForbidden
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Location.Address = strings.TrimSpace(input.Location.Address)

	if err := s.validator.check(input); err != nil {
		return nil, err
	}
	if err := validateCoordinates(input.Location.Coordinates); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = model.IssuePriorityMedium
	}
	image := input.Image
	if image == "" {
		image = model.DefaultIssueImage
	}

	issue := &model.Issue{
		ID:          ulid.Make().String(),
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Status:      model.IssueStatusPending,
		Priority:    priority,
		Image:       image,
		Location:    input.Location,
		UserID:      owner.UserID,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.store.CreateIssue(ctx, issue); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	s.metrics.IncIssueCreated()
	s.logger.Info("issue created",
		slog.String("issue_id", issue.ID),
		slog.String("user_id", issue.UserID),
		slog.String("type", string(issue.Type)),
	)

	return issue, nil
}

// GetIssue returns one issue with its reporter populated.
func (s *IssueService) GetIssue(ctx context.Context, id string) (*model.Issue, error) {
	issue, err := s.store.GetIssueByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrIssueNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return issue, nil
}

// ListIssues returns every issue, newest first.
func (s *IssueService) ListIssues(ctx context.Context) ([]*model.Issue, error) {
	issues, err := s.store.ListIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, nil
}

// ListMyIssues returns the caller's issues, newest first.
func (s *IssueService) ListMyIssues(ctx context.Context, owner *model.Identity) ([]*model.Issue, error) {
	if owner == nil {
		return nil, ErrForbidden
	}
	issues, err := s.store.ListIssuesByUser(ctx, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user issues: %w", err)
	}
	return issues, nil
}

// Stats summarizes the caller's issues.
func (s *IssueService) Stats(ctx context.Context, owner *model.Identity) (*model.IssueStats, error) {
	if owner == nil {
		return nil, ErrForbidden
	}
	stats, err := s.store.GetIssueStats(ctx, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue stats: %w", err)
	}
	return stats, nil
}

// UpdateStatus moves an issue to a new triage status. Admin only.
func (s *IssueService) UpdateStatus(ctx context.Context, actor *model.Identity, id string, status model.IssueStatus) (*model.Issue, error) {
	if actor == nil || !actor.HasRole(model.RoleAdmin) {
		return nil, ErrForbidden
	}
	if !status.IsValid() {
		return nil, newValidationError("Status must be one of Pending, In Progress, Resolved, Rejected")
	}

	issue, err := s.store.UpdateIssueStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrIssueNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to update issue status: %w", err)
	}

	s.metrics.IncIssueStatusChanged()
	s.logger.Info("issue status changed",
		slog.String("issue_id", issue.ID),
		slog.String("status", string(issue.Status)),
		slog.String("actor_id", actor.UserID),
	)

	return issue, nil
}

func validateCoordinates(c *model.Coordinates) error {
	if c == nil {
		return nil
	}
	if c.Lat < -90 || c.Lat > 90 {
		return newValidationError("Latitude must be between -90 and 90")
	}
	if c.Lng < -180 || c.Lng > 180 {
		return newValidationError("Longitude must be between -180 and 180")
	}
	return nil
}
