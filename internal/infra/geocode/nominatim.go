// Package geocode implements the location lookup contract against a
// Nominatim-compatible search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"parishfinder/config"
	"parishfinder/internal/domain/entity"
	"parishfinder/internal/domain/repository"
	"parishfinder/internal/infra/geo"
)

// nominatimPlace is one search hit. Coordinates arrive as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Client resolves free-text locations to coordinates.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a geocoder client from configuration.
func NewClient(cfg *config.GeocoderConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Geocode implements repository.Geocoder. A query the service cannot
// resolve returns (nil, nil); callers map that to their own not-found
// handling so it is never retried.
func (c *Client) Geocode(ctx context.Context, query string) (*entity.GeocodingResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, repository.WrapSourceError(err, "build geocoding request")
	}

	// The lookup service rejects anonymous clients.
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, repository.WrapSourceError(err, "call geocoding service")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, repository.WrapSourceError(err, "read geocoding response")
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("geocoding error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

		return nil, repository.NewSourceError(resp.StatusCode, message)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, repository.WrapSourceError(err, "decode geocoding response")
	}

	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, repository.WrapSourceError(err, "parse geocoded latitude")
	}

	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, repository.WrapSourceError(err, "parse geocoded longitude")
	}

	if err := geo.ValidateCoordinates(lat, lng); err != nil {
		return nil, repository.WrapSourceError(err, "geocoded coordinates out of range")
	}

	return &entity.GeocodingResult{
		Lat:         lat,
		Lng:         lng,
		DisplayName: places[0].DisplayName,
	}, nil
}
