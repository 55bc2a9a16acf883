// Package local implements the parish source backed by a static,
// pre-geocoded JSON dataset bundled with the deployment.
package local

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"parishfinder/config"
	"parishfinder/internal/domain/entity"
	"parishfinder/internal/domain/repository"
	"parishfinder/internal/infra/geo"

	"github.com/pkg/errors"
)

// datasetParish is the raw record shape of the dataset file.
type datasetParish struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Diocese   string   `json:"diocese"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Zip       string   `json:"zip"`
	Country   string   `json:"country"`
	Phone     string   `json:"phone"`
	Website   string   `json:"website"`
	Email     string   `json:"email"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Store searches the local dataset in-process. The dataset is loaded
// lazily exactly once per process and never reloaded mid-session.
type Store struct {
	path       string
	radius     float64
	maxResults int

	loadOnce sync.Once
	loadErr  error
	parishes []datasetParish
}

// NewStore creates a Store from configuration.
func NewStore(cfg *config.LocalSourceConfig) *Store {
	return &Store{
		path:       cfg.Path,
		radius:     cfg.RadiusMiles,
		maxResults: cfg.MaxResults,
	}
}

// Search implements repository.ParishSource: distance-filtered,
// ascending-sorted, capped results. The dataset carries no schedule data,
// so worship times are always empty.
func (s *Store) Search(_ context.Context, lat, lng, radiusMiles float64) ([]*entity.Parish, error) {
	if err := s.load(); err != nil {
		return nil, repository.WrapSourceError(err, "load parish dataset")
	}

	if radiusMiles <= 0 {
		radiusMiles = s.radius
	}

	results := make([]*entity.Parish, 0, s.maxResults)
	for _, raw := range s.parishes {
		// Records without coordinates cannot be ranked.
		if raw.Latitude == nil || raw.Longitude == nil {
			continue
		}

		distance := geo.Distance(lat, lng, *raw.Latitude, *raw.Longitude)
		if distance > radiusMiles {
			continue
		}

		results = append(results, toParish(raw, distance))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].Distance < *results[j].Distance
	})

	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}

	return results, nil
}

func (s *Store) load() error {
	s.loadOnce.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			s.loadErr = errors.Wrapf(err, "read dataset %s", s.path)

			return
		}

		if err := json.Unmarshal(data, &s.parishes); err != nil {
			s.loadErr = errors.Wrapf(err, "parse dataset %s", s.path)
		}
	})

	return s.loadErr
}

func toParish(raw datasetParish, distance float64) *entity.Parish {
	return &entity.Parish{
		ID:        raw.ID,
		Name:      raw.Name,
		Address:   raw.Address,
		City:      raw.City,
		State:     raw.State,
		Zip:       raw.Zip,
		Country:   raw.Country,
		Phone:     raw.Phone,
		URL:       raw.Website,
		Latitude:  *raw.Latitude,
		Longitude: *raw.Longitude,
		Distance:  &distance,
		Times:     []entity.WorshipTime{},
	}
}
