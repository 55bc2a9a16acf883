// Package overpass implements the parish source backed by the public
// OpenStreetMap query interpreter. Coverage is community-maintained, so
// any schedule tags it returns are surfaced as low-confidence hints.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"parishfinder/config"
	"parishfinder/internal/domain/entity"
	"parishfinder/internal/domain/repository"
	"parishfinder/internal/infra/geo"
)

// provenanceNote marks schedule hints that came from map tags rather
// than a parish-maintained feed.
const provenanceNote = "From OpenStreetMap - verify with parish"

type osmCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// osmElement is a node, way or relation from the interpreter. Ways and
// relations carry their coordinate under center.
type osmElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *osmCenter        `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type osmResponse struct {
	Elements []osmElement `json:"elements"`
}

// Client queries the map interpreter for Catholic places of worship.
type Client struct {
	endpoint     string
	radiusMeters int
	httpClient   *http.Client
}

// NewClient creates an interpreter client from configuration.
func NewClient(cfg *config.OverpassConfig) *Client {
	return &Client{
		endpoint:     cfg.Endpoint,
		radiusMeters: cfg.RadiusMeters,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Search implements repository.ParishSource. The interpreter query uses
// the configured metric radius; radiusMiles is ignored.
func (c *Client) Search(ctx context.Context, lat, lng, _ float64) ([]*entity.Parish, error) {
	query := buildQuery(lat, lng, c.radiusMeters)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, repository.WrapSourceError(err, "build map query request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, repository.WrapSourceError(err, "call map query interpreter")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, repository.WrapSourceError(err, "read map query response")
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("map query error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

		return nil, repository.NewSourceError(resp.StatusCode, message)
	}

	var payload osmResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, repository.WrapSourceError(err, "decode map query response")
	}

	parishes := make([]*entity.Parish, 0, len(payload.Elements))
	for _, element := range payload.Elements {
		parish, ok := toParish(element, lat, lng)
		if !ok {
			continue
		}

		parishes = append(parishes, parish)
	}

	sort.Slice(parishes, func(i, j int) bool {
		return *parishes[i].Distance < *parishes[j].Distance
	})

	return parishes, nil
}

func buildQuery(lat, lng float64, radiusMeters int) string {
	var b strings.Builder

	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b,
			"  %s[\"amenity\"=\"place_of_worship\"][\"religion\"=\"christian\"][\"denomination\"=\"catholic\"](around:%d,%v,%v);\n",
			kind, radiusMeters, lat, lng)
	}
	b.WriteString(");\nout center;")

	return b.String()
}

// toParish converts a map element, dropping it when it lacks a name or a
// usable coordinate.
func toParish(element osmElement, queryLat, queryLng float64) (*entity.Parish, bool) {
	name := element.Tags["name"]
	if name == "" {
		return nil, false
	}

	lat, lng := element.Lat, element.Lon
	if lat == 0 && lng == 0 {
		if element.Center == nil {
			return nil, false
		}

		lat, lng = element.Center.Lat, element.Center.Lon
		if lat == 0 && lng == 0 {
			return nil, false
		}
	}

	distance := geo.Distance(queryLat, queryLng, lat, lng)

	parish := &entity.Parish{
		ID:        int(element.ID),
		Name:      name,
		Address:   buildAddress(element.Tags),
		City:      element.Tags["addr:city"],
		State:     element.Tags["addr:state"],
		Zip:       element.Tags["addr:postcode"],
		Country:   element.Tags["addr:country"],
		Phone:     firstTag(element.Tags, "phone", "contact:phone"),
		URL:       firstTag(element.Tags, "website", "contact:website"),
		Latitude:  lat,
		Longitude: lng,
		Distance:  &distance,
		Times:     scheduleHints(element.Tags),
	}

	return parish, true
}

func buildAddress(tags map[string]string) string {
	number := tags["addr:housenumber"]
	street := tags["addr:street"]

	switch {
	case number != "" && street != "":
		return number + " " + street
	case street != "":
		return street
	default:
		return ""
	}
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if value := tags[key]; value != "" {
			return value
		}
	}

	return ""
}

// scheduleHints converts service tags into low-confidence worship times.
// The tag values are free-form opening-hours syntax, so the raw value is
// passed through for the reader to interpret.
func scheduleHints(tags map[string]string) []entity.WorshipTime {
	times := make([]entity.WorshipTime, 0, 2)

	if value := tags["mass_times"]; value != "" {
		times = append(times, entity.WorshipTime{
			Day:  "Unknown",
			Time: value,
			Type: entity.ServiceMass,
			Note: provenanceNote,
		})
	}
	if value := tags["service_times"]; value != "" {
		times = append(times, entity.WorshipTime{
			Day:  "Unknown",
			Time: value,
			Type: "Service",
			Note: provenanceNote,
		})
	}

	return times
}
