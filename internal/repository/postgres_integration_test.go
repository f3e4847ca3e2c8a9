//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"civic-issues-api/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()

	// Start PostgreSQL container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		postgresC.Terminate(ctx)
	})

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)

	port, err := postgresC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	// Connect to database
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	require.NoError(t, EnsureSchema(ctx, pool))

	return pool
}

func seedIssues(t *testing.T, repo *Repository) []models.Issue {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	sanitation := models.DepartmentSanitation
	high := models.PriorityHigh
	category := "garbage"
	confidence := 0.87

	issues := []models.Issue{
		{
			ID: uuid.New(), Title: "Pothole on Main St", Description: "Deep pothole near the school",
			Status: models.StatusReported, Latitude: 39.78, Longitude: -89.65, UserID: "u1",
			CreatedAt: base,
		},
		{
			ID: uuid.New(), Title: "Overflowing bin", Description: "Garbage 100% over the rim",
			Status: models.StatusInProgress, Department: &sanitation, Priority: &high,
			AICategory: &category, AIConfidence: &confidence,
			Latitude: 39.79, Longitude: -89.64, UserID: "u2",
			CreatedAt: base.Add(time.Hour),
		},
		{
			ID: uuid.New(), Title: "Broken streetlight", Description: "Dark corner",
			Status: models.StatusResolved, Latitude: 39.80, Longitude: -89.63, UserID: "u1",
			CreatedAt: base.Add(2 * time.Hour),
		},
	}

	for i := range issues {
		require.NoError(t, repo.CreateIssue(context.Background(), &issues[i]))
	}
	return issues
}

func TestPostgresRepository_ListIssues(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewRepository(pool)
	seeded := seedIssues(t, repo)
	ctx := context.Background()

	tests := []struct {
		name     string
		filters  models.IssueFilters
		expected []string
	}{
		{
			name:     "no filters newest first",
			filters:  models.IssueFilters{},
			expected: []string{"Broken streetlight", "Overflowing bin", "Pothole on Main St"},
		},
		{
			name:     "by status",
			filters:  models.IssueFilters{Status: []models.IssueStatus{models.StatusReported, models.StatusResolved}},
			expected: []string{"Broken streetlight", "Pothole on Main St"},
		},
		{
			name:     "by department",
			filters:  models.IssueFilters{Department: []models.Department{models.DepartmentSanitation}},
			expected: []string{"Overflowing bin"},
		},
		{
			name:     "search is case insensitive",
			filters:  models.IssueFilters{Search: "POTHOLE"},
			expected: []string{"Pothole on Main St"},
		},
		{
			name:     "search treats percent literally",
			filters:  models.IssueFilters{Search: "100%"},
			expected: []string{"Overflowing bin"},
		},
		{
			name:     "search with no results",
			filters:  models.IssueFilters{Search: "nonexistent"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues, err := repo.ListIssues(ctx, tt.filters)
			require.NoError(t, err)

			titles := []string{}
			for _, issue := range issues {
				titles = append(titles, issue.Title)
			}
			assert.Equal(t, tt.expected, titles)
		})
	}

	got, err := repo.GetIssue(ctx, seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DepartmentSanitation, *got.Department)
	assert.Equal(t, models.PriorityHigh, *got.Priority)
	assert.InDelta(t, 0.87, *got.AIConfidence, 1e-9)
}

func TestPostgresRepository_UpdateIssue(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewRepository(pool)
	seeded := seedIssues(t, repo)
	ctx := context.Background()

	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	status := models.StatusResolved
	updated, err := repo.UpdateIssue(ctx, seeded[0].ID, models.IssueUpdate{
		Status:     &status,
		UpdatedAt:  now,
		ResolvedAt: &now,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.True(t, updated.ResolvedAt.Equal(now))
	assert.Nil(t, updated.Department)

	_, err = repo.UpdateIssue(ctx, uuid.New(), models.IssueUpdate{Status: &status, UpdatedAt: now})
	assert.ErrorIs(t, err, models.ErrIssueNotFound)

	_, err = repo.GetIssue(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrIssueNotFound)
}
