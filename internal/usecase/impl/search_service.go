package impl

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"parishfinder/config"
	deliverycontext "parishfinder/internal/delivery/context"
	"parishfinder/internal/domain/entity"
	domainerrors "parishfinder/internal/domain/errors"
	"parishfinder/internal/domain/repository"
	"parishfinder/internal/domain/schedule"
	"parishfinder/internal/errors"
	"parishfinder/internal/infra/cache"
	"parishfinder/internal/infra/geo"
	"parishfinder/internal/infra/retry"
	"parishfinder/internal/usecase"

	"go.uber.org/fx"
)

const (
	maxQueryLength = 200

	// Upstream client-error messages longer than this are assumed to be
	// HTML error pages or stack traces, not something to show a user.
	maxUpstreamMessageLength = 120
)

var (
	// Characters with no place in a location query. Their presence
	// suggests a probing payload, so the whole query is rejected.
	invalidQueryChars = regexp.MustCompile(`[{}\[\]\\]`)

	// Fragments stripped from queries before they reach any upstream.
	scriptFragments = regexp.MustCompile(`(?i)javascript:|on\w+=`)
	markupChars     = regexp.MustCompile("[<>'\"`]")
)

// cachedGeocode wraps a geocoding result so "no match" is cacheable too;
// repeating a hopeless query should not re-hit the lookup service.
type cachedGeocode struct {
	Found  bool                    `json:"found"`
	Result *entity.GeocodingResult `json:"result,omitempty"`
}

type searchService struct {
	geocoder      repository.Geocoder
	source        repository.ParishSource
	cache         *cache.Store
	retrier       *retry.Controller
	logger        *slog.Logger
	geocodePolicy retry.Policy
	parishPolicy  retry.Policy
	radiusMiles   float64
	geocodeTTL    time.Duration
	parishTTL     time.Duration
	now           func() time.Time
}

// SearchServiceParams defines the required parameters
type SearchServiceParams struct {
	fx.In

	Config   *config.Config
	Logger   *slog.Logger
	Geocoder repository.Geocoder
	Source   repository.ParishSource
	Cache    *cache.Store
	Retrier  *retry.Controller
}

// NewSearchService creates the parish search pipeline.
func NewSearchService(params SearchServiceParams) usecase.SearchUsecase {
	return &searchService{
		geocoder: params.Geocoder,
		source:   params.Source,
		cache:    params.Cache,
		retrier:  params.Retrier,
		logger:   params.Logger,
		geocodePolicy: retry.Policy{
			MaxRetries:   params.Config.Geocoder.MaxRetries,
			InitialDelay: params.Config.Geocoder.InitialDelay,
		},
		parishPolicy: retry.Policy{
			MaxRetries:   params.Config.Sources.MaxRetries,
			InitialDelay: params.Config.Sources.InitialDelay,
		},
		radiusMiles: params.Config.Sources.Local.RadiusMiles,
		geocodeTTL:  params.Config.Cache.GeocodeTTL,
		parishTTL:   params.Config.Cache.ParishTTL,
		now:         time.Now,
	}
}

// Search implements usecase.SearchUsecase.
func (s *searchService) Search(ctx context.Context, input *usecase.SearchInput) (*usecase.SearchOutput, error) {
	var location *entity.GeocodingResult
	if input.Lat != nil && input.Lng != nil {
		if err := geo.ValidateCoordinates(*input.Lat, *input.Lng); err != nil {
			return nil, err
		}

		location = &entity.GeocodingResult{Lat: *input.Lat, Lng: *input.Lng}
	} else {
		query, err := cleanQuery(input.Query)
		if err != nil {
			return nil, err
		}

		location, err = s.resolveLocation(ctx, query)
		if err != nil {
			return nil, s.mapSourceError(ctx, err, "geocoding failed", query)
		}
		if location == nil {
			return nil, domainerrors.ErrLocationNotFound
		}
	}

	radius := s.radiusMiles
	if input.RadiusMiles > 0 {
		radius = input.RadiusMiles
	}

	parishes, err := s.findParishes(ctx, location.Lat, location.Lng, radius)
	if err != nil {
		return nil, s.mapSourceError(ctx, err, "parish lookup failed", input.Query)
	}

	parishes = schedule.Filter(parishes, input.Day, input.Service)
	parishes = schedule.Sort(parishes, schedule.ParseSortOption(input.Sort), s.now())

	return &usecase.SearchOutput{
		Location: location,
		Parishes: parishes,
	}, nil
}

// cleanQuery validates the raw query, then strips markup fragments
// before the text reaches any upstream service.
func cleanQuery(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		return "", domainerrors.ErrEmptyQuery
	case utf8.RuneCountInString(trimmed) < 2:
		return "", domainerrors.ErrQueryTooShort
	case utf8.RuneCountInString(trimmed) > maxQueryLength:
		return "", domainerrors.ErrQueryTooLong
	case invalidQueryChars.MatchString(trimmed):
		return "", domainerrors.ErrQueryInvalidChars
	}

	cleaned := scriptFragments.ReplaceAllString(trimmed, "")
	cleaned = markupChars.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", domainerrors.ErrQueryInvalidChars
	}

	return cleaned, nil
}

func (s *searchService) resolveLocation(ctx context.Context, query string) (*entity.GeocodingResult, error) {
	key := cache.GeocodeKey(query)

	var cached cachedGeocode
	if s.cache.Get(key, &cached) {
		if !cached.Found {
			return nil, nil
		}

		return cached.Result, nil
	}

	result, err := retry.Do(ctx, s.retrier, s.geocodePolicy, func(ctx context.Context) (*entity.GeocodingResult, error) {
		return s.geocoder.Geocode(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, cachedGeocode{Found: result != nil, Result: result}, s.geocodeTTL)

	return result, nil
}

func (s *searchService) findParishes(ctx context.Context, lat, lng, radiusMiles float64) ([]*entity.Parish, error) {
	key := cache.ParishKey(lat, lng)

	var cached []*entity.Parish
	if s.cache.Get(key, &cached) {
		return cached, nil
	}

	parishes, err := retry.Do(ctx, s.retrier, s.parishPolicy, func(ctx context.Context) ([]*entity.Parish, error) {
		return s.source.Search(ctx, lat, lng, radiusMiles)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, parishes, s.parishTTL)

	return parishes, nil
}

// mapSourceError converts adapter failures into the user-facing
// taxonomy. Client errors with a short upstream message surface the
// message verbatim; everything else collapses to a generic error.
func (s *searchService) mapSourceError(ctx context.Context, err error, logMessage, query string) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)
	logger.Warn(logMessage,
		slog.String("query", query),
		slog.Any("error", err),
	)

	var srcErr *repository.SourceError
	if errors.As(err, &srcErr) {
		status := srcErr.StatusCode()
		if status >= 400 && status < 500 {
			if msg := srcErr.Message; msg != "" && len(msg) < maxUpstreamMessageLength {
				return domainerrors.ErrInvalidRequest.WithMessage(msg)
			}

			return domainerrors.ErrInvalidRequest
		}

		return domainerrors.ErrServiceUnavailable
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domainerrors.ErrServiceUnavailable
	}

	return domainerrors.ErrInternalError
}
