package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"civic-issues-api/internal/models"

	"github.com/gin-gonic/gin"
)

// ReverseGeocodeHandler handles reverse geocoding requests
type ReverseGeocodeHandler struct {
	service GeoCodingService
}

// Service interface for dependency injection
type GeoCodingService interface {
	ReverseGeocode(context.Context, float64, float64) string
}

// NewReverseGeocodeHandler creates a new reverse geocode handler
func NewReverseGeocodeHandler(svc GeoCodingService) *ReverseGeocodeHandler {
	return &ReverseGeocodeHandler{service: svc}
}

// ReverseGeocode handles GET /api/reverse-geocode requests
//
//	@Summary	Readable address for a coordinate pair
//	@Produce	json
//	@Param		lat	query		number	true	"latitude"
//	@Param		lng	query		number	true	"longitude"
//	@Success	200	{object}	models.ReadableAddress
//	@Failure	400	{object}	ErrorResponse
//	@Router		/api/reverse-geocode [get]
func (h *ReverseGeocodeHandler) ReverseGeocode(c *gin.Context) {
	lat, errLat := parseFiniteFloat(c.Query("lat"))
	lng, errLng := parseFiniteFloat(c.Query("lng"))
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lat/lng query params."})
		return
	}

	readable := h.service.ReverseGeocode(c.Request.Context(), lat, lng)

	c.JSON(http.StatusOK, models.ReadableAddress{Readable: readable})
}

var errNotFinite = errors.New("not a finite number")

func parseFiniteFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errNotFinite
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}
