package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"civic-issues-api/internal/models"
	"civic-issues-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ClassifyHandler handles issue photo classification requests
type ClassifyHandler struct {
	service        ClassifyService
	maxUploadBytes int64
}

// ClassifyService interface for dependency injection
type ClassifyService interface {
	CheckConfig() error
	Classify(context.Context, models.UploadedImage) (json.RawMessage, error)
}

// NewClassifyHandler creates a new classify handler. Uploads larger than
// maxUploadBytes are rejected; zero or less means no limit.
func NewClassifyHandler(svc ClassifyService, maxUploadBytes int64) *ClassifyHandler {
	return &ClassifyHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// Classify handles POST /api/classify-issue requests
//
//	@Summary	Classify an issue photo
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file	formData	file	true	"issue photo"
//	@Success	200		{object}	object	"classifier result, relayed verbatim"
//	@Failure	400		{object}	ErrorResponse
//	@Failure	500		{object}	ErrorResponse
//	@Failure	502		{object}	ErrorResponse
//	@Failure	503		{object}	ErrorResponse
//	@Router		/api/classify-issue [post]
func (h *ClassifyHandler) Classify(c *gin.Context) {
	if err := h.service.CheckConfig(); err != nil {
		h.writeError(c, err)
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("cannot open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Msg("cannot read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	result, err := h.service.Classify(c.Request.Context(), models.UploadedImage{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

func (h *ClassifyHandler) writeError(c *gin.Context, err error) {
	var details string
	var classifyErr *service.ClassifyError
	if errors.As(err, &classifyErr) {
		details = classifyErr.Details()
	}

	kind := service.ClassifyErrorKindOf(err)
	log.Warn().Err(err).Str("kind", kind.String()).Msg("classification failed")

	switch kind {
	case service.KindConfigMissing:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ML_API_URL is not configured."})
	case service.KindUnavailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ML API unavailable.", "details": details})
	case service.KindUpstreamStatus:
		c.JSON(http.StatusBadGateway, gin.H{"error": "ML API error.", "details": details})
	case service.KindInvalidPayload:
		c.JSON(http.StatusBadGateway, gin.H{"error": "ML API returned invalid JSON."})
	default: // KindInternal
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
