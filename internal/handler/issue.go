package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"civic-issues-api/internal/models"
	"civic-issues-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// IssueService interface for dependency injection
type IssueService interface {
	ListIssues(context.Context, models.IssueFilters) ([]models.Issue, error)
	GetIssue(context.Context, uuid.UUID) (*models.Issue, error)
	CreateIssue(context.Context, models.Issue) (*models.Issue, error)
	UpdateStatus(context.Context, uuid.UUID, models.IssueStatus) (*models.Issue, error)
	UpdateDepartment(context.Context, uuid.UUID, models.Department) (*models.Issue, error)
	AssignToContractor(context.Context, uuid.UUID) (*models.Issue, error)
	Stats(context.Context) (*models.IssueStats, error)
}

// IssueHandler handles issue reporting and triage requests
type IssueHandler struct {
	service IssueService
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(svc IssueService) *IssueHandler {
	return &IssueHandler{service: svc}
}

// Register mounts the issue routes on rg.
func (h *IssueHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/issues", h.List)
	rg.GET("/issues/stats", h.Stats)
	rg.GET("/issues/:id", h.Get)
	rg.POST("/issues", h.Create)
	rg.PATCH("/issues/:id/status", h.UpdateStatus)
	rg.PATCH("/issues/:id/department", h.UpdateDepartment)
	rg.POST("/issues/:id/assign-contractor", h.AssignToContractor)
}

// List handles GET /api/issues
//
//	@Summary	List issues, newest first
//	@Produce	json
//	@Param		status		query		string	false	"comma separated statuses"
//	@Param		department	query		string	false	"comma separated departments"
//	@Param		priority	query		string	false	"comma separated priorities"
//	@Param		search		query		string	false	"title or description substring"
//	@Success	200			{array}		models.Issue
//	@Failure	400			{object}	ErrorResponse
//	@Router		/api/issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	filters := models.IssueFilters{
		Status:     splitList[models.IssueStatus](c.Query("status")),
		Department: splitList[models.Department](c.Query("department")),
		Priority:   splitList[models.IssuePriority](c.Query("priority")),
		Search:     c.Query("search"),
	}

	issues, err := h.service.ListIssues(c.Request.Context(), filters)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

// Get handles GET /api/issues/:id
//
//	@Summary	Get one issue
//	@Produce	json
//	@Param		id	path		string	true	"issue id"
//	@Success	200	{object}	models.Issue
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/issues/{id} [get]
func (h *IssueHandler) Get(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	issue, err := h.service.GetIssue(c.Request.Context(), id)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

type createIssueRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Priority     *models.IssuePriority `json:"priority"`
	Department   *models.Department    `json:"department"`
	AICategory   *string               `json:"ai_category"`
	AIConfidence *float64              `json:"ai_confidence"`
	ImageURL     *string               `json:"image_url"`
	Latitude     float64               `json:"latitude"`
	Longitude    float64               `json:"longitude"`
	UserID       string                `json:"user_id"`
}

// Create handles POST /api/issues
//
//	@Summary	Report a new issue
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	models.Issue
//	@Failure	400	{object}	ErrorResponse
//	@Router		/api/issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	issue, err := h.service.CreateIssue(c.Request.Context(), models.Issue{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Department:   req.Department,
		AICategory:   req.AICategory,
		AIConfidence: req.AIConfidence,
		ImageURL:     req.ImageURL,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		UserID:       req.UserID,
	})
	if err != nil {
		writeIssueError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// UpdateStatus handles PATCH /api/issues/:id/status
//
//	@Summary	Change an issue's status
//	@Accept		json
//	@Produce	json
//	@Param		id	path		string	true	"issue id"
//	@Success	200	{object}	models.Issue
//	@Router		/api/issues/{id}/status [patch]
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	var req struct {
		Status models.IssueStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'status'"})
		return
	}

	issue, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// UpdateDepartment handles PATCH /api/issues/:id/department
//
//	@Summary	Route an issue to a department
//	@Accept		json
//	@Produce	json
//	@Param		id	path		string	true	"issue id"
//	@Success	200	{object}	models.Issue
//	@Router		/api/issues/{id}/department [patch]
func (h *IssueHandler) UpdateDepartment(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	var req struct {
		Department models.Department `json:"department" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'department'"})
		return
	}

	issue, err := h.service.UpdateDepartment(c.Request.Context(), id, req.Department)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// AssignToContractor handles POST /api/issues/:id/assign-contractor
//
//	@Summary	Hand an issue to a contractor
//	@Produce	json
//	@Param		id	path		string	true	"issue id"
//	@Success	200	{object}	models.Issue
//	@Router		/api/issues/{id}/assign-contractor [post]
func (h *IssueHandler) AssignToContractor(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	issue, err := h.service.AssignToContractor(c.Request.Context(), id)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// Stats handles GET /api/issues/stats
//
//	@Summary	Dashboard statistics
//	@Produce	json
//	@Success	200	{object}	models.IssueStats
//	@Router		/api/issues/stats [get]
func (h *IssueHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func issueID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeIssueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidIssue):
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.TrimPrefix(err.Error(), "service: ")})
	case errors.Is(err, models.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "issue not found"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("issue request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func splitList[T ~string](raw string) []T {
	var out []T
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, T(part))
		}
	}
	return out
}
