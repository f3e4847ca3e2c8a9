package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"civic-issues-api/internal/models"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const statsCacheKey = "issues:stats"

// ErrInvalidIssue is wrapped by validation failures.
var ErrInvalidIssue = errors.New("invalid issue")

// IssueRepository interface for dependency injection
type IssueRepository interface {
	ListIssues(ctx context.Context, filters models.IssueFilters) ([]models.Issue, error)
	GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	CreateIssue(ctx context.Context, issue *models.Issue) error
	UpdateIssue(ctx context.Context, id uuid.UUID, update models.IssueUpdate) (*models.Issue, error)
}

// IssueService contains the triage logic staff apply to reported issues.
type IssueService struct {
	repo     IssueRepository
	stats    *cache.Cache
	statsTTL time.Duration
	now      func() time.Time

	// statsGen is bumped by every mutation; a stats read only caches its
	// result if no mutation happened while it was loading.
	statsMu  sync.Mutex
	statsGen uint64
}

// NewIssueService creates a new issue service. Stats are cached for statsTTL;
// a non-positive TTL disables the cache.
func NewIssueService(repo IssueRepository, statsTTL time.Duration) *IssueService {
	return &IssueService{
		repo:     repo,
		stats:    cache.New(statsTTL, 2*statsTTL),
		statsTTL: statsTTL,
		now:      time.Now,
	}
}

// ListIssues returns issues matching filters, newest first.
func (s *IssueService) ListIssues(ctx context.Context, filters models.IssueFilters) ([]models.Issue, error) {
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("service: %w: %v", ErrInvalidIssue, err)
	}
	filters.Search = strings.TrimSpace(filters.Search)

	issues, err := s.repo.ListIssues(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list issues: %w", err)
	}
	return issues, nil
}

// GetIssue returns one issue by id.
func (s *IssueService) GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	issue, err := s.repo.GetIssue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get issue: %w", err)
	}
	return issue, nil
}

// CreateIssue validates and stores a newly reported issue.
func (s *IssueService) CreateIssue(ctx context.Context, issue models.Issue) (*models.Issue, error) {
	issue.Title = strings.TrimSpace(issue.Title)
	if issue.Title == "" {
		return nil, fmt.Errorf("service: %w: title is required", ErrInvalidIssue)
	}
	if strings.TrimSpace(issue.UserID) == "" {
		return nil, fmt.Errorf("service: %w: user_id is required", ErrInvalidIssue)
	}
	if !models.ValidCoordinates(issue.Latitude, issue.Longitude) {
		return nil, fmt.Errorf("service: %w: invalid coordinates", ErrInvalidIssue)
	}
	if issue.Priority != nil && !issue.Priority.Valid() {
		return nil, fmt.Errorf("service: %w: unknown priority %q", ErrInvalidIssue, *issue.Priority)
	}
	if issue.Department != nil && !issue.Department.Valid() {
		return nil, fmt.Errorf("service: %w: unknown department %q", ErrInvalidIssue, *issue.Department)
	}

	issue.ID = uuid.New()
	issue.Status = models.StatusReported
	issue.CreatedAt = s.now().UTC()
	issue.UpdatedAt = nil
	issue.ResolvedAt = nil
	issue.AssignedTo = nil

	if err := s.repo.CreateIssue(ctx, &issue); err != nil {
		return nil, fmt.Errorf("service: failed to create issue: %w", err)
	}
	s.invalidateStats()

	return &issue, nil
}

// UpdateStatus moves an issue to status. Resolving stamps resolved_at.
func (s *IssueService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.IssueStatus) (*models.Issue, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("service: %w: unknown status %q", ErrInvalidIssue, status)
	}

	now := s.now().UTC()
	update := models.IssueUpdate{Status: &status, UpdatedAt: now}
	if status == models.StatusResolved {
		update.ResolvedAt = &now
	}
	return s.update(ctx, id, update)
}

// UpdateDepartment routes an issue to department.
func (s *IssueService) UpdateDepartment(ctx context.Context, id uuid.UUID, department models.Department) (*models.Issue, error) {
	if !department.Valid() {
		return nil, fmt.Errorf("service: %w: unknown department %q", ErrInvalidIssue, department)
	}
	return s.update(ctx, id, models.IssueUpdate{Department: &department, UpdatedAt: s.now().UTC()})
}

// AssignToContractor hands an issue to an external contractor.
func (s *IssueService) AssignToContractor(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	status := models.StatusAssignedToContractor
	assignee := models.ContractorAssignee
	return s.update(ctx, id, models.IssueUpdate{
		Status:     &status,
		AssignedTo: &assignee,
		UpdatedAt:  s.now().UTC(),
	})
}

func (s *IssueService) update(ctx context.Context, id uuid.UUID, update models.IssueUpdate) (*models.Issue, error) {
	issue, err := s.repo.UpdateIssue(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("service: failed to update issue: %w", err)
	}
	s.invalidateStats()
	return issue, nil
}

// Stats returns dashboard figures over every issue, cached for the configured TTL.
func (s *IssueService) Stats(ctx context.Context) (*models.IssueStats, error) {
	if cached, ok := s.stats.Get(statsCacheKey); ok {
		return cached.(*models.IssueStats), nil
	}

	s.statsMu.Lock()
	gen := s.statsGen
	s.statsMu.Unlock()

	issues, err := s.repo.ListIssues(ctx, models.IssueFilters{})
	if err != nil {
		return nil, fmt.Errorf("service: failed to load issues for stats: %w", err)
	}

	stats := ComputeIssueStats(issues)
	if s.statsTTL > 0 {
		s.statsMu.Lock()
		if gen == s.statsGen {
			s.stats.Set(statsCacheKey, stats, s.statsTTL)
		}
		s.statsMu.Unlock()
	}
	return stats, nil
}

func (s *IssueService) invalidateStats() {
	s.statsMu.Lock()
	s.statsGen++
	s.stats.Flush()
	s.statsMu.Unlock()
}

// ComputeIssueStats derives the admin dashboard figures from issues.
// Weekdays are bucketed in UTC, Monday first.
func ComputeIssueStats(issues []models.Issue) *models.IssueStats {
	stats := &models.IssueStats{
		Total: len(issues),
		Weekly: models.WeeklyStat{
			Labels: [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		},
	}

	var responseHours float64
	var responded int

	for _, issue := range issues {
		switch issue.Status {
		case models.StatusResolved:
			stats.Resolved++
		case models.StatusReported:
			stats.Open++
		case models.StatusAssigned, models.StatusAssignedToContractor, models.StatusInProgress:
			stats.InProgress++
		}

		if !issue.CreatedAt.IsZero() {
			stats.Weekly.Reported[weekdayIndex(issue.CreatedAt)]++
		}

		if issue.Status != models.StatusResolved {
			continue
		}

		closed := issue.CreatedAt
		if issue.UpdatedAt != nil {
			closed = *issue.UpdatedAt
			if !issue.CreatedAt.IsZero() {
				responseHours += closed.Sub(issue.CreatedAt).Hours()
			}
			responded++
		}
		if !closed.IsZero() {
			stats.Weekly.Resolved[weekdayIndex(closed)]++
		}
	}

	if responded > 0 {
		stats.AvgResponseHours = responseHours / float64(responded)
	}

	if stats.Total > 0 {
		stats.ResolvedPct = percent(stats.Resolved, stats.Total)
		stats.OpenPct = percent(stats.Open, stats.Total)
		stats.InProgressPct = percent(stats.InProgress, stats.Total)
		stats.Satisfaction = min(99, stats.ResolvedPct+12)
	}

	return stats
}

func weekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}

func percent(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}
