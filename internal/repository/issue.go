package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicreport/civicreport/internal/model"
	"github.com/jackc/pgx/v5"
)

// ErrIssueNotFound is returned when an issue does not exist.
var ErrIssueNotFound = errors.New("issue not found")

const issueColumns = `
	i.id, i.title, i.description, i.type, i.status, i.priority, i.image,
	i.address, i.lat, i.lng, i.user_id, i.created_at
`

// CreateIssue inserts a new issue into the database.
func (r *Repository) CreateIssue(ctx context.Context, issue *model.Issue) error {
	query := `
		INSERT INTO issues (
			id, title, description, type, status, priority, image,
			address, lat, lng, user_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	address, lat, lng := flattenLocation(issue.Location)

	_, err := r.pool.Exec(ctx, query,
		issue.ID,
		issue.Title,
		issue.Description,
		string(issue.Type),
		string(issue.Status),
		string(issue.Priority),
		issue.Image,
		address,
		lat,
		lng,
		issue.UserID,
		issue.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	return nil
}

// GetIssueByID retrieves an issue with its reporter's name populated.
func (r *Repository) GetIssueByID(ctx context.Context, id string) (*model.Issue, error) {
	query := `
		SELECT ` + issueColumns + `, u.name
		FROM issues i
		JOIN users u ON u.id = i.user_id
		WHERE i.id = $1
	`

	issue, err := scanIssue(r.pool.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to get issue by ID: %w", err)
	}

	return issue, nil
}

// ListIssues returns all issues, newest first.
func (r *Repository) ListIssues(ctx context.Context) ([]*model.Issue, error) {
	query := `
		SELECT ` + issueColumns + `
		FROM issues i
		ORDER BY i.created_at DESC, i.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// ListIssuesByUser returns the issues reported by a user, newest first.
func (r *Repository) ListIssuesByUser(ctx context.Context, userID string) ([]*model.Issue, error) {
	query := `
		SELECT ` + issueColumns + `
		FROM issues i
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC, i.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues by user: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// GetIssueStats counts a user's issues by outcome.
func (r *Repository) GetIssueStats(ctx context.Context, userID string) (*model.IssueStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM issues
		WHERE user_id = $1
	`

	var stats model.IssueStats
	err := r.pool.QueryRow(ctx, query,
		userID,
		string(model.IssueStatusResolved),
		string(model.IssueStatusPending),
	).Scan(&stats.Total, &stats.Resolved, &stats.Pending)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue stats: %w", err)
	}

	return &stats, nil
}

// UpdateIssueStatus sets an issue's status and returns the updated row.
func (r *Repository) UpdateIssueStatus(ctx context.Context, id string, status model.IssueStatus) (*model.Issue, error) {
	query := `
		UPDATE issues i
		SET status = $2
		WHERE i.id = $1
		RETURNING ` + issueColumns

	issue, err := scanIssue(r.pool.QueryRow(ctx, query, id, string(status)), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to update issue status: %w", err)
	}

	return issue, nil
}

func collectIssues(rows pgx.Rows) ([]*model.Issue, error) {
	issues := make([]*model.Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issues: %w", err)
	}
	return issues, nil
}

func scanIssue(row pgx.Row, withReporter bool) (*model.Issue, error) {
	var (
		issue    model.Issue
		address  *string
		lat, lng *float64
		reporter string
	)

	dest := []any{
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Type,
		&issue.Status,
		&issue.Priority,
		&issue.Image,
		&address,
		&lat,
		&lng,
		&issue.UserID,
		&issue.CreatedAt,
	}
	if withReporter {
		dest = append(dest, &reporter)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	issue.Location = buildLocation(address, lat, lng)
	if withReporter {
		issue.Reporter = &model.Reporter{ID: issue.UserID, Name: reporter}
	}

	return &issue, nil
}

func flattenLocation(loc model.Location) (address *string, lat, lng *float64) {
	if loc.Address != "" {
		a := loc.Address
		address = &a
	}
	if loc.Coordinates != nil {
		la, ln := loc.Coordinates.Lat, loc.Coordinates.Lng
		lat, lng = &la, &ln
	}
	return address, lat, lng
}

func buildLocation(address *string, lat, lng *float64) model.Location {
	var loc model.Location
	if address != nil {
		loc.Address = *address
	}
	if lat != nil && lng != nil {
		loc.Coordinates = &model.Coordinates{Lat: *lat, Lng: *lng}
	}
	return loc
}
