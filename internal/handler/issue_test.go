package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"civic-issues-api/internal/models"
	"civic-issues-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIssueService is a mock implementation of the IssueService interface
type MockIssueService struct {
	mock.Mock
}

func (m *MockIssueService) ListIssues(ctx context.Context, filters models.IssueFilters) ([]models.Issue, error) {
	args := m.Called(ctx, filters)
	issues, _ := args.Get(0).([]models.Issue)
	return issues, args.Error(1)
}

func (m *MockIssueService) GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	args := m.Called(ctx, id)
	issue, _ := args.Get(0).(*models.Issue)
	return issue, args.Error(1)
}

func (m *MockIssueService) CreateIssue(ctx context.Context, issue models.Issue) (*models.Issue, error) {
	args := m.Called(ctx, issue)
	created, _ := args.Get(0).(*models.Issue)
	return created, args.Error(1)
}

func (m *MockIssueService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.IssueStatus) (*models.Issue, error) {
	args := m.Called(ctx, id, status)
	issue, _ := args.Get(0).(*models.Issue)
	return issue, args.Error(1)
}

func (m *MockIssueService) UpdateDepartment(ctx context.Context, id uuid.UUID, department models.Department) (*models.Issue, error) {
	args := m.Called(ctx, id, department)
	issue, _ := args.Get(0).(*models.Issue)
	return issue, args.Error(1)
}

func (m *MockIssueService) AssignToContractor(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	args := m.Called(ctx, id)
	issue, _ := args.Get(0).(*models.Issue)
	return issue, args.Error(1)
}

func (m *MockIssueService) Stats(ctx context.Context) (*models.IssueStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*models.IssueStats)
	return stats, args.Error(1)
}

func newIssueRouter(svc IssueService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewIssueHandler(svc).Register(r.Group("/api"))
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueHandler_List(t *testing.T) {
	mockSvc := new(MockIssueService)
	r := newIssueRouter(mockSvc)

	filters := models.IssueFilters{
		Status:     []models.IssueStatus{models.StatusReported, models.StatusInProgress},
		Department: []models.Department{models.DepartmentParks},
		Search:     "bench",
	}
	mockSvc.On("ListIssues", mock.Anything, filters).Return([]models.Issue{{Title: "Broken bench"}}, nil)

	w := serve(r, http.MethodGet, "/api/issues?status=reported,%20in_progress&department=parks&search=bench", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var issues []models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	assert.Equal(t, "Broken bench", issues[0].Title)
	mockSvc.AssertExpectations(t)
}

func TestIssueHandler_ListInvalidFilter(t *testing.T) {
	mockSvc := new(MockIssueService)
	r := newIssueRouter(mockSvc)

	mockSvc.On("ListIssues", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("service: %w: unknown status \"lost\"", service.ErrInvalidIssue))

	w := serve(r, http.MethodGet, "/api/issues?status=lost", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid issue: unknown status \"lost\""}`, w.Body.String())
}

func TestIssueHandler_Get(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		path           string
		mockIssue      *models.Issue
		mockError      error
		expectCall     bool
		expectedStatus int
	}{
		{
			name:           "found",
			path:           "/api/issues/" + id.String(),
			mockIssue:      &models.Issue{ID: id, Title: "Pothole"},
			expectCall:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			path:           "/api/issues/" + id.String(),
			mockError:      fmt.Errorf("service: failed to get issue: %w", models.ErrIssueNotFound),
			expectCall:     true,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed id",
			path:           "/api/issues/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "service error",
			path:           "/api/issues/" + id.String(),
			mockError:      assert.AnError,
			expectCall:     true,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockIssueService)
			r := newIssueRouter(mockSvc)
			if tt.expectCall {
				mockSvc.On("GetIssue", mock.Anything, id).Return(tt.mockIssue, tt.mockError)
			}

			w := serve(r, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestIssueHandler_Create(t *testing.T) {
	mockSvc := new(MockIssueService)
	r := newIssueRouter(mockSvc)

	category := "pothole"
	confidence := 0.91
	mockSvc.On("CreateIssue", mock.Anything, models.Issue{
		Title:        "Pothole",
		Description:  "Deep one",
		AICategory:   &category,
		AIConfidence: &confidence,
		Latitude:     40.7128,
		Longitude:    -74.006,
		UserID:       "user-1",
	}).Return(&models.Issue{ID: uuid.New(), Title: "Pothole", Status: models.StatusReported}, nil)

	w := serve(r, http.MethodPost, "/api/issues", `{
		"title": "Pothole", "description": "Deep one",
		"ai_category": "pothole", "ai_confidence": 0.91,
		"latitude": 40.7128, "longitude": -74.006, "user_id": "user-1"
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)

	w = serve(r, http.MethodPost, "/api/issues", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueHandler_Triage(t *testing.T) {
	id := uuid.New()
	mockSvc := new(MockIssueService)
	r := newIssueRouter(mockSvc)

	mockSvc.On("UpdateStatus", mock.Anything, id, models.StatusInProgress).
		Return(&models.Issue{ID: id, Status: models.StatusInProgress}, nil)
	mockSvc.On("UpdateDepartment", mock.Anything, id, models.DepartmentUtilities).
		Return(&models.Issue{ID: id}, nil)
	mockSvc.On("AssignToContractor", mock.Anything, id).
		Return(&models.Issue{ID: id, Status: models.StatusAssignedToContractor}, nil)

	w := serve(r, http.MethodPatch, "/api/issues/"+id.String()+"/status", `{"status":"in_progress"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPatch, "/api/issues/"+id.String()+"/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPatch, "/api/issues/"+id.String()+"/department", `{"department":"utilities"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/api/issues/"+id.String()+"/assign-contractor", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"assigned_to_contractor"`)

	mockSvc.AssertExpectations(t)
}

func TestIssueHandler_Stats(t *testing.T) {
	mockSvc := new(MockIssueService)
	r := newIssueRouter(mockSvc)
	mockSvc.On("Stats", mock.Anything).Return(&models.IssueStats{Total: 4, Resolved: 1, Satisfaction: 37}, nil)

	w := serve(r, http.MethodGet, "/api/issues/stats", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var stats models.IssueStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 37, stats.Satisfaction)
	mockSvc.AssertExpectations(t)
}
