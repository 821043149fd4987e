package model

import (
	"slices"
	"time"
)

// IssueType classifies what kind of civic problem was reported.
type IssueType string

const (
	IssueTypePothole     IssueType = "Pothole"
	IssueTypeStreetlight IssueType = "Streetlight"
	IssueTypeGarbage     IssueType = "Garbage"
	IssueTypeWater       IssueType = "Water"
	IssueTypeNoise       IssueType = "Noise"
	IssueTypeTraffic     IssueType = "Traffic"
	IssueTypeOther       IssueType = "Other"
)

// ValidIssueTypes contains all valid issue types.
var ValidIssueTypes = []IssueType{
	IssueTypePothole, IssueTypeStreetlight, IssueTypeGarbage, IssueTypeWater,
	IssueTypeNoise, IssueTypeTraffic, IssueTypeOther,
}

// IsValid reports whether t is one of ValidIssueTypes.
func (t IssueType) IsValid() bool {
	return slices.Contains(ValidIssueTypes, t)
}

// IssueStatus tracks an issue through triage.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "Pending"
	IssueStatusInProgress IssueStatus = "In Progress"
	IssueStatusResolved   IssueStatus = "Resolved"
	IssueStatusRejected   IssueStatus = "Rejected"
)

// ValidIssueStatuses contains all valid statuses.
var ValidIssueStatuses = []IssueStatus{
	IssueStatusPending, IssueStatusInProgress, IssueStatusResolved, IssueStatusRejected,
}

// IsValid reports whether s is one of ValidIssueStatuses.
func (s IssueStatus) IsValid() bool {
	return slices.Contains(ValidIssueStatuses, s)
}

// IssuePriority ranks urgency.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "Low"
	IssuePriorityMedium IssuePriority = "Medium"
	IssuePriorityHigh   IssuePriority = "High"
)

// ValidIssuePriorities contains all valid priorities.
var ValidIssuePriorities = []IssuePriority{IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh}

// IsValid reports whether p is one of ValidIssuePriorities.
func (p IssuePriority) IsValid() bool {
	return slices.Contains(ValidIssuePriorities, p)
}

// DefaultIssueImage is used when a report is submitted without a photo.
const DefaultIssueImage = "https://via.placeholder.com/300"

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location describes where an issue was observed.
type Location struct {
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Reporter is the subset of the owning user exposed on single-issue reads.
type Reporter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Issue represents a citizen-reported civic problem.
type Issue struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Type        IssueType     `json:"type"`
	Status      IssueStatus   `json:"status"`
	Priority    IssuePriority `json:"priority"`
	Image       string        `json:"image"`
	Location    Location      `json:"location"`
	UserID      string        `json:"user"`
	Reporter    *Reporter     `json:"reporter,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// IssueStats summarizes one user's reports.
type IssueStats struct {
	Total    int64 `json:"total"`
	Resolved int64 `json:"resolved"`
	Pending  int64 `json:"pending"`
}
