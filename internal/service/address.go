package service

import (
	"fmt"
	"strings"

	"civic-issues-api/internal/models"
)

// FormatCoordinates renders lat/lng with five decimals, e.g. "40.71280, -74.00600".
// Negative zero renders unsigned.
func FormatCoordinates(lat, lng float64) string {
	if lat == 0 {
		lat = 0
	}
	if lng == 0 {
		lng = 0
	}
	return fmt.Sprintf("%.5f, %.5f", lat, lng)
}

// FormatReadableAddress builds "street, locality, region, postal, country" from result,
// skipping blank parts. It falls back to the display name and then to fallback.
//
// Suburb is a street fallback and also the first choice for locality.
func FormatReadableAddress(result *models.ReverseGeocodeResult, fallback string) string {
	if result == nil {
		return fallback
	}

	addr := result.Address
	if addr == nil {
		return firstNonEmpty(result.DisplayName, fallback)
	}

	house := strings.TrimSpace(joinNonEmpty(" ", addr.HouseNumber, addr.Road))
	street := firstNonEmpty(house, addr.Neighbourhood, addr.Suburb)
	locality := firstNonEmpty(addr.Suburb, addr.CityDistrict, addr.City, addr.Town, addr.Village, addr.County)

	var parts []string
	for _, part := range []string{street, locality, addr.State, addr.Postcode, addr.Country} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}

	return firstNonEmpty(strings.Join(parts, ", "), result.DisplayName, fallback)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	var kept []string
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}
