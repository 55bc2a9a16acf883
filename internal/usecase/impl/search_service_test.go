package impl

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"parishfinder/config"
	"parishfinder/internal/domain/entity"
	domainerrors "parishfinder/internal/domain/errors"
	"parishfinder/internal/domain/repository"
	"parishfinder/internal/infra/cache"
	"parishfinder/internal/infra/retry"
	"parishfinder/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	calls   int
	queries []string
	result  *entity.GeocodingResult
	err     error
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (*entity.GeocodingResult, error) {
	f.calls++
	f.queries = append(f.queries, query)

	return f.result, f.err
}

type fakeSource struct {
	calls    int
	parishes []*entity.Parish
	err      error
	onSearch func()
}

func (f *fakeSource) Search(_ context.Context, _, _, _ float64) ([]*entity.Parish, error) {
	f.calls++
	if f.onSearch != nil {
		f.onSearch()
	}

	return f.parishes, f.err
}

func miles(v float64) *float64 { return &v }

func nycResult() *entity.GeocodingResult {
	return &entity.GeocodingResult{Lat: 40.7128, Lng: -74.006, DisplayName: "New York"}
}

func newTestService(geocoder repository.Geocoder, source repository.ParishSource) usecase.SearchUsecase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	retrier := retry.New(logger,
		retry.WithSleep(func(context.Context, time.Duration) error { return nil }),
	)

	cfg := &config.Config{
		Geocoder: &config.GeocoderConfig{MaxRetries: 2, InitialDelay: time.Millisecond},
		Sources: &config.SourcesConfig{
			MaxRetries:   3,
			InitialDelay: time.Millisecond,
			Local:        &config.LocalSourceConfig{RadiusMiles: 50},
		},
		Cache: &config.CacheConfig{ParishTTL: 15 * time.Minute, GeocodeTTL: 24 * time.Hour},
	}

	return NewSearchService(SearchServiceParams{
		Config:   cfg,
		Logger:   logger,
		Geocoder: geocoder,
		Source:   source,
		Cache:    cache.New(),
		Retrier:  retrier,
	})
}

func TestSearchValidatesQuery(t *testing.T) {
	geocoder := &fakeGeocoder{}
	service := newTestService(geocoder, &fakeSource{})

	cases := map[string]struct {
		query string
		want  error
	}{
		"empty":       {"", domainerrors.ErrEmptyQuery},
		"whitespace":  {"   ", domainerrors.ErrEmptyQuery},
		"too short":   {"a", domainerrors.ErrQueryTooShort},
		"too long":    {string(make([]byte, 201)), domainerrors.ErrQueryTooLong},
		"braces":      {"10001{", domainerrors.ErrQueryInvalidChars},
		"brackets":    {"[10001]", domainerrors.ErrQueryInvalidChars},
		"backslash":   {`10001\`, domainerrors.ErrQueryInvalidChars},
		"only markup": {"<><>", domainerrors.ErrQueryInvalidChars},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.Search(context.Background(), &usecase.SearchInput{Query: tc.query})
			require.ErrorIs(t, err, tc.want)
		})
	}

	assert.Zero(t, geocoder.calls, "invalid queries must not reach the geocoder")
}

func TestSearchStripsScriptFragments(t *testing.T) {
	geocoder := &fakeGeocoder{result: nycResult()}
	service := newTestService(geocoder, &fakeSource{})

	_, err := service.Search(context.Background(), &usecase.SearchInput{
		Query: `<b>new york</b> javascript:alert onload=x`,
	})
	require.NoError(t, err)

	require.Len(t, geocoder.queries, 1)
	assert.NotContains(t, geocoder.queries[0], "<")
	assert.NotContains(t, geocoder.queries[0], "javascript:")
	assert.NotContains(t, geocoder.queries[0], "onload=")
	assert.Contains(t, geocoder.queries[0], "new york")
}

func TestSearchReturnsFilteredSortedParishes(t *testing.T) {
	source := &fakeSource{parishes: []*entity.Parish{
		{Name: "Far Parish", Distance: miles(5), Times: []entity.WorshipTime{
			{Day: "Sunday", Time: "9:00 AM", Type: "Mass"},
		}},
		{Name: "Near Parish", Distance: miles(1), Times: []entity.WorshipTime{
			{Day: "Sunday", Time: "11:00 AM", Type: "Mass"},
		}},
		{Name: "Weekday Only", Distance: miles(2), Times: []entity.WorshipTime{
			{Day: "Tuesday", Time: "7:00 AM", Type: "Mass"},
		}},
	}}
	service := newTestService(&fakeGeocoder{result: nycResult()}, source)

	output, err := service.Search(context.Background(), &usecase.SearchInput{
		Query: "10001",
		Day:   "Sunday",
		Sort:  "distance",
	})
	require.NoError(t, err)
	require.NotNil(t, output.Location)
	assert.Equal(t, "New York", output.Location.DisplayName)

	require.Len(t, output.Parishes, 2)
	assert.Equal(t, "Near Parish", output.Parishes[0].Name)
	assert.Equal(t, "Far Parish", output.Parishes[1].Name)
}

func TestSearchLocationNotFound(t *testing.T) {
	geocoder := &fakeGeocoder{}
	source := &fakeSource{}
	service := newTestService(geocoder, source)

	_, err := service.Search(context.Background(), &usecase.SearchInput{Query: "nowhere"})
	require.ErrorIs(t, err, domainerrors.ErrLocationNotFound)
	assert.Zero(t, source.calls)

	// The miss is cached; repeating the query must not re-geocode.
	_, err = service.Search(context.Background(), &usecase.SearchInput{Query: "nowhere"})
	require.ErrorIs(t, err, domainerrors.ErrLocationNotFound)
	assert.Equal(t, 1, geocoder.calls)
}

func TestSearchCachesParishResults(t *testing.T) {
	geocoder := &fakeGeocoder{result: nycResult()}
	source := &fakeSource{parishes: []*entity.Parish{{Name: "St. Agnes", Distance: miles(1)}}}
	service := newTestService(geocoder, source)

	for range 3 {
		output, err := service.Search(context.Background(), &usecase.SearchInput{Query: "10001"})
		require.NoError(t, err)
		require.Len(t, output.Parishes, 1)
	}

	assert.Equal(t, 1, geocoder.calls)
	assert.Equal(t, 1, source.calls)
}

func TestSearchClientErrorSurfacesShortUpstreamMessage(t *testing.T) {
	source := &fakeSource{err: repository.NewSourceError(http.StatusBadRequest, "invalid coordinates supplied")}
	service := newTestService(&fakeGeocoder{result: nycResult()}, source)

	_, err := service.Search(context.Background(), &usecase.SearchInput{Query: "10001"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode())
	assert.Equal(t, "invalid coordinates supplied", appErr.Message())

	// Terminal client errors are not retried.
	assert.Equal(t, 1, source.calls)
}

func TestSearchServerErrorMapsToServiceUnavailable(t *testing.T) {
	source := &fakeSource{err: repository.NewSourceError(http.StatusBadGateway, "upstream down")}
	service := newTestService(&fakeGeocoder{result: nycResult()}, source)

	_, err := service.Search(context.Background(), &usecase.SearchInput{Query: "10001"})
	require.ErrorIs(t, err, domainerrors.ErrServiceUnavailable)

	// Default budget: initial attempt plus three retries.
	assert.Equal(t, 4, source.calls)
}

func TestSearchCoordinatePathSkipsGeocoding(t *testing.T) {
	geocoder := &fakeGeocoder{}
	source := &fakeSource{parishes: []*entity.Parish{{Name: "St. Agnes", Distance: miles(1)}}}
	service := newTestService(geocoder, source)

	lat, lng := 40.7128, -74.006
	output, err := service.Search(context.Background(), &usecase.SearchInput{Lat: &lat, Lng: &lng})
	require.NoError(t, err)

	assert.Zero(t, geocoder.calls)
	assert.Equal(t, 1, source.calls)
	require.NotNil(t, output.Location)
	assert.InDelta(t, lat, output.Location.Lat, 1e-9)
}

func TestSearchCoordinatePathValidatesRanges(t *testing.T) {
	source := &fakeSource{}
	service := newTestService(&fakeGeocoder{}, source)

	lat, lng := 95.0, -74.006
	_, err := service.Search(context.Background(), &usecase.SearchInput{Lat: &lat, Lng: &lng})
	require.ErrorIs(t, err, domainerrors.ErrLatitudeRange)
	assert.Zero(t, source.calls)
}

func TestSearchRadiusOverride(t *testing.T) {
	var gotRadius float64
	service := newTestService(&fakeGeocoder{result: nycResult()}, sourceFunc(
		func(_ context.Context, _, _, radius float64) ([]*entity.Parish, error) {
			gotRadius = radius

			return nil, nil
		}))

	_, err := service.Search(context.Background(), &usecase.SearchInput{Query: "10001", RadiusMiles: 10})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, gotRadius, 1e-9)
}

type sourceFunc func(ctx context.Context, lat, lng, radiusMiles float64) ([]*entity.Parish, error)

func (f sourceFunc) Search(ctx context.Context, lat, lng, radiusMiles float64) ([]*entity.Parish, error) {
	return f(ctx, lat, lng, radiusMiles)
}

func TestSearchOverlappingSearchesAreIndependent(t *testing.T) {
	geocoder := &fakeGeocoder{result: nycResult()}

	// One service instance serves every client, so a search arriving
	// while another is still in flight must not disturb the first.
	var service usecase.SearchUsecase
	source := &fakeSource{parishes: []*entity.Parish{{Name: "St. Agnes", Distance: miles(1)}}}
	source.onSearch = func() {
		if source.calls > 1 {
			return
		}

		_, err := service.Search(context.Background(), &usecase.SearchInput{Query: "90210"})
		require.NoError(t, err)
	}
	service = newTestService(geocoder, source)

	output, err := service.Search(context.Background(), &usecase.SearchInput{Query: "10001"})
	require.NoError(t, err)
	require.Len(t, output.Parishes, 1)
	assert.Equal(t, "St. Agnes", output.Parishes[0].Name)
}

func TestSearchQueryLengthCountsRunes(t *testing.T) {
	geocoder := &fakeGeocoder{result: nycResult()}
	service := newTestService(geocoder, &fakeSource{})

	// A single multi-byte rune is still one character.
	_, err := service.Search(context.Background(), &usecase.SearchInput{Query: "서"})
	require.ErrorIs(t, err, domainerrors.ErrQueryTooShort)

	// 150 Hangul runes are 450 bytes but well under the 200-char limit.
	_, err = service.Search(context.Background(), &usecase.SearchInput{Query: strings.Repeat("서", 150)})
	require.NoError(t, err)
	assert.Equal(t, 1, geocoder.calls)
}
