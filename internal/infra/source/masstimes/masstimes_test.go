package masstimes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parishfinder/config"
	"parishfinder/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&config.MassTimesConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestSearchBareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Churchs/", r.URL.Path)
		assert.Equal(t, "40.7128", r.URL.Query().Get("lat"))
		assert.Equal(t, "-74.006", r.URL.Query().Get("long"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"ChurchId": 7, "Name": "St. Monica", "City": "New York",
			 "Latitude": 40.76, "Longitude": -73.96,
			 "WorshipTimes": [{"Day": "Sunday", "Time": "9:00 AM", "Type": "Mass"}]}
		]`))
	})

	parishes, err := client.Search(context.Background(), 40.7128, -74.006, 25)
	require.NoError(t, err)
	require.Len(t, parishes, 1)

	assert.Equal(t, 7, parishes[0].ID)
	assert.Equal(t, "St. Monica", parishes[0].Name)
	require.Len(t, parishes[0].Times, 1)
	assert.Equal(t, "Sunday", parishes[0].Times[0].Day)
}

func TestSearchWrappedEnvelopes(t *testing.T) {
	cases := map[string]string{
		"pascal case": `{"Churches": [{"Name": "Holy Name"}]}`,
		"lower case":  `{"churches": [{"Name": "Holy Name"}]}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			parishes, err := client.Search(context.Background(), 40.7, -74.0, 25)
			require.NoError(t, err)
			require.Len(t, parishes, 1)
			assert.Equal(t, "Holy Name", parishes[0].Name)
		})
	}
}

func TestSearchSparseRecordGetsDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{}]`))
	})

	parishes, err := client.Search(context.Background(), 40.7, -74.0, 25)
	require.NoError(t, err)
	require.Len(t, parishes, 1)

	assert.Equal(t, "Unknown Parish", parishes[0].Name)
	assert.Equal(t, 0, parishes[0].ID)
	assert.NotNil(t, parishes[0].Times)
	assert.Empty(t, parishes[0].Times)
}

func TestSearchUpstreamErrorCarriesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	})

	_, err := client.Search(context.Background(), 40.7, -74.0, 25)
	require.Error(t, err)

	var srcErr *repository.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, http.StatusForbidden, srcErr.StatusCode())
	assert.Contains(t, srcErr.Error(), "invalid api key")
}

func TestSearchServerErrorWithoutBodyMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := client.Search(context.Background(), 40.7, -74.0, 25)
	require.Error(t, err)

	var srcErr *repository.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, http.StatusBadGateway, srcErr.StatusCode())
}

func TestSearchMissingKey(t *testing.T) {
	client := NewClient(&config.MassTimesConfig{
		BaseURL: "http://unused.invalid",
		Timeout: time.Second,
	})

	_, err := client.Search(context.Background(), 40.7, -74.0, 25)
	require.Error(t, err)

	var srcErr *repository.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, http.StatusInternalServerError, srcErr.StatusCode())
}

func TestFetchReturnsVerbatimBody(t *testing.T) {
	payload := `{"Churches": [{"Name": "St. Ambrose", "Custom": "field"}]}`
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	})

	body, err := client.Fetch(context.Background(), 40.7, -74.0)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(body))
}
