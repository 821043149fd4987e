package dto

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/civicreport/civicreport/internal/model"
)

// ErrInvalidLocation is returned when location is neither an object nor a
// JSON-encoded object string.
var ErrInvalidLocation = errors.New("location must be an object")

// LocationField decodes a location sent either as an object or as a string
// holding JSON, which is how multipart form clients submit it.
type LocationField struct {
	model.Location
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LocationField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		l.Location = model.Location{}
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidLocation
		}
		if raw == "" {
			l.Location = model.Location{}
			return nil
		}
		data = []byte(raw)
	}

	var loc model.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return ErrInvalidLocation
	}
	l.Location = loc
	return nil
}

// CreateIssueRequest represents the request body for reporting an issue.
type CreateIssueRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        model.IssueType     `json:"type"`
	Priority    model.IssuePriority `json:"priority,omitempty"`
	Image       string              `json:"image,omitempty"`
	Location    LocationField       `json:"location"`
}

// UpdateIssueStatusRequest represents the request body for a status change.
type UpdateIssueStatusRequest struct {
	Status model.IssueStatus `json:"status"`
}

// IssueResponse wraps a single issue.
type IssueResponse struct {
	Success bool         `json:"success"`
	Data    *model.Issue `json:"data"`
}

// IssueListResponse wraps a list of issues with its length.
type IssueListResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Data    []*model.Issue `json:"data"`
}

// IssueStatsResponse wraps per-user issue counts.
type IssueStatsResponse struct {
	Success bool              `json:"success"`
	Data    *model.IssueStats `json:"data"`
}

// ToIssueListResponse builds a list response. A nil slice encodes as [].
func ToIssueListResponse(issues []*model.Issue) *IssueListResponse {
	if issues == nil {
		issues = []*model.Issue{}
	}
	return &IssueListResponse{
		Success: true,
		Count:   len(issues),
		Data:    issues,
	}
}
