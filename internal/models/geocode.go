package models

// AddressRecord holds the named locality fields of a reverse geocoding result.
// Any subset may be empty.
type AddressRecord struct {
	HouseNumber   string `json:"house_number,omitempty"`
	Road          string `json:"road,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	Suburb        string `json:"suburb,omitempty"`
	CityDistrict  string `json:"city_district,omitempty"`
	City          string `json:"city,omitempty"`
	Town          string `json:"town,omitempty"`
	Village       string `json:"village,omitempty"`
	County        string `json:"county,omitempty"`
	State         string `json:"state,omitempty"`
	Postcode      string `json:"postcode,omitempty"`
	Country       string `json:"country,omitempty"`
}

// ReverseGeocodeResult is the subset of a provider response the normalizer reads.
// Address is nil when the provider returned no address object.
type ReverseGeocodeResult struct {
	DisplayName string         `json:"display_name,omitempty"`
	Address     *AddressRecord `json:"address,omitempty"`
}

// ReadableAddress is the body returned by GET /api/reverse-geocode.
type ReadableAddress struct {
	Readable string `json:"readable"`
}
