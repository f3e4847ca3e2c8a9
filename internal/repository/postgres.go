package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"civic-issues-api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the issues table and its indexes.
const Schema = `
	CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'reported',
		priority TEXT,
		department TEXT,
		ai_category TEXT,
		ai_confidence DOUBLE PRECISION,
		image_url TEXT,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		user_id TEXT NOT NULL,
		assigned_to TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ,
		resolved_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS issues_created_at_idx ON issues (created_at DESC);
	CREATE INDEX IF NOT EXISTS issues_status_idx ON issues (status);
`

// Execer is satisfied by *pgx.Conn and *pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

const issueColumns = `
	id,
	title,
	description,
	status,
	priority,
	department,
	ai_category,
	ai_confidence,
	image_url,
	latitude,
	longitude,
	user_id,
	assigned_to,
	created_at,
	updated_at,
	resolved_at`

// Repository implements the issue repository for PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListIssues returns issues matching filters, newest first
func (r *Repository) ListIssues(ctx context.Context, filters models.IssueFilters) ([]models.Issue, error) {
	var (
		where []string
		args  []any
	)
	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filters.Status) > 0 {
		where = append(where, "status = ANY("+addArg(toStrings(filters.Status))+"::text[])")
	}
	if len(filters.Department) > 0 {
		where = append(where, "department = ANY("+addArg(toStrings(filters.Department))+"::text[])")
	}
	if len(filters.Priority) > 0 {
		where = append(where, "priority = ANY("+addArg(toStrings(filters.Priority))+"::text[])")
	}
	if filters.Search != "" {
		p := addArg("%" + escapeLike(filters.Search) + "%")
		where = append(where, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}

	sql := "SELECT" + issueColumns + "\n\tFROM issues"
	if len(where) > 0 {
		sql += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	sql += "\n\tORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute list query: %w", err)
	}
	defer rows.Close()

	issues := []models.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan issue: %w", err)
		}
		issues = append(issues, *issue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return issues, nil
}

// GetIssue fetches a single issue by id
func (r *Repository) GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	sql := "SELECT" + issueColumns + "\n\tFROM issues\n\tWHERE id = $1"

	issue, err := scanIssue(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrIssueNotFound
		}
		return nil, fmt.Errorf("repository: failed to get issue: %w", err)
	}

	return issue, nil
}

// CreateIssue inserts issue as given, including its id and timestamps
func (r *Repository) CreateIssue(ctx context.Context, issue *models.Issue) error {
	sql := `
		INSERT INTO issues (` + issueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(ctx, sql, IssueValues(issue)...)
	if err != nil {
		return fmt.Errorf("repository: failed to insert issue: %w", err)
	}

	return nil
}

// UpdateIssue applies the non-nil fields of update and returns the stored issue
func (r *Repository) UpdateIssue(ctx context.Context, id uuid.UUID, update models.IssueUpdate) (*models.Issue, error) {
	sql := `
		UPDATE issues SET
			status = COALESCE($2::text, status),
			department = COALESCE($3::text, department),
			assigned_to = COALESCE($4::text, assigned_to),
			updated_at = $5,
			resolved_at = COALESCE($6::timestamptz, resolved_at)
		WHERE id = $1
		RETURNING` + issueColumns

	issue, err := scanIssue(r.db.QueryRow(ctx, sql,
		id,
		stringPtr(update.Status),
		stringPtr(update.Department),
		update.AssignedTo,
		update.UpdatedAt,
		update.ResolvedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrIssueNotFound
		}
		return nil, fmt.Errorf("repository: failed to update issue: %w", err)
	}

	return issue, nil
}

// IssueValues returns issue's column values in issueColumns order.
func IssueValues(issue *models.Issue) []any {
	return []any{
		issue.ID,
		issue.Title,
		issue.Description,
		string(issue.Status),
		stringPtr(issue.Priority),
		stringPtr(issue.Department),
		issue.AICategory,
		issue.AIConfidence,
		issue.ImageURL,
		issue.Latitude,
		issue.Longitude,
		issue.UserID,
		issue.AssignedTo,
		issue.CreatedAt,
		issue.UpdatedAt,
		issue.ResolvedAt,
	}
}

// IssueColumnNames lists the issues table columns in insert order.
func IssueColumnNames() []string {
	var names []string
	for _, name := range strings.Split(issueColumns, ",") {
		names = append(names, strings.TrimSpace(name))
	}
	return names
}

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var (
		issue                models.Issue
		status               string
		priority, department *string
	)
	err := row.Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&status,
		&priority,
		&department,
		&issue.AICategory,
		&issue.AIConfidence,
		&issue.ImageURL,
		&issue.Latitude,
		&issue.Longitude,
		&issue.UserID,
		&issue.AssignedTo,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	issue.Status = models.IssueStatus(status)
	if priority != nil {
		p := models.IssuePriority(*priority)
		issue.Priority = &p
	}
	if department != nil {
		d := models.Department(*department)
		issue.Department = &d
	}

	return &issue, nil
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func stringPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
