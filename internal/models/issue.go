package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// IssueStatus is the triage state of a reported issue.
type IssueStatus string

const (
	StatusReported             IssueStatus = "reported"
	StatusAssigned             IssueStatus = "assigned"
	StatusAssignedToContractor IssueStatus = "assigned_to_contractor"
	StatusInProgress           IssueStatus = "in_progress"
	StatusResolved             IssueStatus = "resolved"
	StatusClosed               IssueStatus = "closed"
)

// IssuePriority ranks how urgently an issue should be handled.
type IssuePriority string

const (
	PriorityLow      IssuePriority = "low"
	PriorityMedium   IssuePriority = "medium"
	PriorityHigh     IssuePriority = "high"
	PriorityCritical IssuePriority = "critical"
)

// Department is the municipal department an issue is routed to.
type Department string

const (
	DepartmentSanitation     Department = "sanitation"
	DepartmentPublicWorks    Department = "public_works"
	DepartmentUtilities      Department = "utilities"
	DepartmentTransportation Department = "transportation"
	DepartmentParks          Department = "parks"
	DepartmentOther          Department = "other"
)

// ErrIssueNotFound is returned when no issue has the requested id.
var ErrIssueNotFound = errors.New("issue not found")

// ContractorAssignee is written to AssignedTo when an issue is handed to a contractor.
const ContractorAssignee = "Contractor"

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusReported, StatusAssigned, StatusAssignedToContractor,
		StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Valid reports whether p is a known priority.
func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Valid reports whether d is a known department.
func (d Department) Valid() bool {
	switch d {
	case DepartmentSanitation, DepartmentPublicWorks, DepartmentUtilities,
		DepartmentTransportation, DepartmentParks, DepartmentOther:
		return true
	}
	return false
}

// ValidCoordinates reports whether lat/lng are finite and within WGS84 range.
func ValidCoordinates(lat, lng float64) bool {
	return inRange(lat, 90) && inRange(lng, 180)
}

func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -limit && v <= limit
}

// Issue is a civic problem reported by a citizen, with its photo and location.
type Issue struct {
	ID           uuid.UUID      `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Status       IssueStatus    `json:"status"`
	Priority     *IssuePriority `json:"priority,omitempty"`
	Department   *Department    `json:"department,omitempty"`
	AICategory   *string        `json:"ai_category"`
	AIConfidence *float64       `json:"ai_confidence"`
	ImageURL     *string        `json:"image_url"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	UserID       string         `json:"user_id"`
	AssignedTo   *string        `json:"assigned_to"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    *time.Time     `json:"updated_at,omitempty"`
	ResolvedAt   *time.Time     `json:"resolved_at"`
}

// IssueFilters narrows an issue listing. Empty slices match everything.
type IssueFilters struct {
	Status     []IssueStatus
	Department []Department
	Priority   []IssuePriority
	Search     string
}

// Validate rejects filters naming unknown enum values.
func (f IssueFilters) Validate() error {
	for _, s := range f.Status {
		if !s.Valid() {
			return fmt.Errorf("unknown status %q", s)
		}
	}
	for _, d := range f.Department {
		if !d.Valid() {
			return fmt.Errorf("unknown department %q", d)
		}
	}
	for _, p := range f.Priority {
		if !p.Valid() {
			return fmt.Errorf("unknown priority %q", p)
		}
	}
	return nil
}

// IssueUpdate lists the columns a triage action changes. Nil fields are left alone.
type IssueUpdate struct {
	Status     *IssueStatus
	Department *Department
	AssignedTo *string
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// IssueStats summarises the issue backlog for the admin dashboard.
type IssueStats struct {
	Total            int        `json:"total"`
	Resolved         int        `json:"resolved"`
	Open             int        `json:"open"`
	InProgress       int        `json:"in_progress"`
	ResolvedPct      int        `json:"resolved_pct"`
	OpenPct          int        `json:"open_pct"`
	InProgressPct    int        `json:"in_progress_pct"`
	Satisfaction     int        `json:"satisfaction"`
	AvgResponseHours float64    `json:"avg_response_hours"`
	Weekly           WeeklyStat `json:"weekly"`
}

// WeeklyStat counts reported and resolved issues per weekday, Monday first.
type WeeklyStat struct {
	Labels   [7]string `json:"labels"`
	Reported [7]int    `json:"reported"`
	Resolved [7]int    `json:"resolved"`
}
