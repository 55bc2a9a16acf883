// Package masstimes implements the parish source backed by the external
// worship-schedule provider. The provider key never leaves the server;
// clients go through the validating relay at /api/masstimes.
package masstimes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"parishfinder/config"
	"parishfinder/internal/domain/entity"
	"parishfinder/internal/domain/repository"

	"github.com/pkg/errors"
)

// apiWorshipTime mirrors the provider's PascalCase schedule shape.
type apiWorshipTime struct {
	Day      string `json:"Day"`
	Time     string `json:"Time"`
	Type     string `json:"Type"`
	Language string `json:"Language"`
	Note     string `json:"Note"`
}

// apiChurch mirrors the provider's church record. Every field is optional
// upstream; parsing substitutes defaults so one sparse record never fails
// the whole batch.
type apiChurch struct {
	ChurchID  int              `json:"ChurchId"`
	Name      string           `json:"Name"`
	Address   string           `json:"Address"`
	City      string           `json:"City"`
	State     string           `json:"State"`
	Zip       string           `json:"Zip"`
	Country   string           `json:"Country"`
	Phone     string           `json:"Phone"`
	URL       string           `json:"Url"`
	Latitude  float64          `json:"Latitude"`
	Longitude float64          `json:"Longitude"`
	Distance  *float64         `json:"Distance"`
	Times     []apiWorshipTime `json:"WorshipTimes"`
}

// envelope covers the provider's two response shapes: a bare array or the
// records nested under Churches/churches.
type envelope struct {
	Churches      []apiChurch `json:"Churches"`
	ChurchesLower []apiChurch `json:"churches"`
}

// Client calls the schedule provider directly with the configured key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a schedule API client from configuration.
func NewClient(cfg *config.MassTimesConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Search implements repository.ParishSource. The provider applies its own
// search radius, so radiusMiles is ignored.
func (c *Client) Search(ctx context.Context, lat, lng, _ float64) ([]*entity.Parish, error) {
	if c.apiKey == "" {
		return nil, repository.NewSourceError(http.StatusInternalServerError, "schedule API key not configured")
	}

	body, err := c.fetch(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	churches, err := parseEnvelope(body)
	if err != nil {
		return nil, repository.WrapSourceError(err, "decode schedule response")
	}

	parishes := make([]*entity.Parish, 0, len(churches))
	for _, raw := range churches {
		parishes = append(parishes, toParish(raw))
	}

	return parishes, nil
}

// Fetch returns the provider's raw JSON body for the relay endpoint,
// which must pass it through verbatim.
func (c *Client) Fetch(ctx context.Context, lat, lng float64) ([]byte, error) {
	if c.apiKey == "" {
		return nil, repository.NewSourceError(http.StatusInternalServerError, "schedule API key not configured")
	}

	return c.fetch(ctx, lat, lng)
}

func (c *Client) fetch(ctx context.Context, lat, lng float64) ([]byte, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%v", lat))
	query.Set("long", fmt.Sprintf("%v", lng))
	query.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/Churchs/?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, repository.WrapSourceError(err, "build schedule request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, repository.WrapSourceError(err, "call schedule API")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, repository.WrapSourceError(err, "read schedule response")
	}

	if resp.StatusCode != http.StatusOK {
		message := upstreamMessage(body)
		if message == "" {
			message = fmt.Sprintf("schedule API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}

		return nil, repository.NewSourceError(resp.StatusCode, message)
	}

	return body, nil
}

// upstreamMessage pulls error/message fields out of an error body, if any.
func upstreamMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}

	return payload.Message
}

func parseEnvelope(body []byte) ([]apiChurch, error) {
	// Bare array first.
	var churches []apiChurch
	if err := json.Unmarshal(body, &churches); err == nil {
		return churches, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "unexpected schedule payload")
	}
	if env.Churches != nil {
		return env.Churches, nil
	}

	return env.ChurchesLower, nil
}

func toParish(raw apiChurch) *entity.Parish {
	name := raw.Name
	if name == "" {
		name = "Unknown Parish"
	}

	times := make([]entity.WorshipTime, 0, len(raw.Times))
	for _, wt := range raw.Times {
		times = append(times, entity.WorshipTime{
			Day:      wt.Day,
			Time:     wt.Time,
			Type:     wt.Type,
			Language: wt.Language,
			Note:     wt.Note,
		})
	}

	return &entity.Parish{
		ID:        raw.ChurchID,
		Name:      name,
		Address:   raw.Address,
		City:      raw.City,
		State:     raw.State,
		Zip:       raw.Zip,
		Country:   raw.Country,
		Phone:     raw.Phone,
		URL:       raw.URL,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Distance:  raw.Distance,
		Times:     times,
	}
}
