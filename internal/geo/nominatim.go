package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smokyabdulrahman/athan/internal/method"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	userAgent           = "athan/1.0 (+https://github.com/smokyabdulrahman/athan)"
)

// Nominatim reverse-geocodes through an OpenStreetMap Nominatim server.
type Nominatim struct {
	// BaseURL is exported for testing with httptest.
	BaseURL    string
	httpClient *http.Client
}

var _ method.Geocoder = (*Nominatim)(nil)

// NewNominatim creates a client for the public Nominatim server.
func NewNominatim() *Nominatim {
	return &Nominatim{
		BaseURL:    defaultNominatimURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResponse struct {
	Error   string `json:"error"`
	Address struct {
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// CountryCode returns the upper-case ISO code of the country containing the
// point. Points in open sea come back as an empty code.
func (n *Nominatim) CountryCode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("zoom", "3")
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build reverse geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocoding returned status %d", resp.StatusCode)
	}

	var result nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocoding response: %w", err)
	}
	if result.Error != "" {
		return "", nil
	}
	return strings.ToUpper(result.Address.CountryCode), nil
}
