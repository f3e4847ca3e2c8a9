package service

import (
	"context"
	"fmt"
	"time"

	"civic-issues-api/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultGeocodeTimeout bounds a reverse geocoding lookup.
const DefaultGeocodeTimeout = 10 * time.Second

// ReverseGeocoder interface for dependency injection
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*models.ReverseGeocodeResult, error)
}

// ReverseGeoCodeService turns coordinates into a readable address.
// Lookup failures never reach the caller; the coordinates themselves are returned instead.
type ReverseGeoCodeService struct {
	geocoder ReverseGeocoder
	timeout  time.Duration
}

// NewReverseGeoCodeService creates a new reverse geo code service
func NewReverseGeoCodeService(geocoder ReverseGeocoder, timeout time.Duration) *ReverseGeoCodeService {
	if timeout <= 0 {
		timeout = DefaultGeocodeTimeout
	}
	return &ReverseGeoCodeService{geocoder: geocoder, timeout: timeout}
}

// ReverseGeocode returns a readable address for lat/lng. It always succeeds.
// The lookup is detached from ctx cancellation and bounded by the service timeout.
func (s *ReverseGeoCodeService) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	fallback := FormatCoordinates(lat, lng)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	result, err := s.lookup(ctx, lat, lng)
	if err != nil {
		log.Warn().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("reverse geocoding failed, using coordinates")
		return fallback
	}

	return FormatReadableAddress(result, fallback)
}

func (s *ReverseGeoCodeService) lookup(ctx context.Context, lat, lng float64) (result *models.ReverseGeocodeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("service: geocoder panic: %v", r)
		}
	}()
	return s.geocoder.Reverse(ctx, lat, lng)
}
