package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parishfinder/config"
	"parishfinder/internal/infra/source/masstimes"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelayHandler(t *testing.T, apiKey string, upstream http.HandlerFunc) *MassTimesHandler {
	t.Helper()

	baseURL := "http://unused.invalid"
	if upstream != nil {
		server := httptest.NewServer(upstream)
		t.Cleanup(server.Close)
		baseURL = server.URL
	}

	mtCfg := &config.MassTimesConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 5 * time.Second,
	}
	cfg := &config.Config{Sources: &config.SourcesConfig{MassTimes: mtCfg}}

	return &MassTimesHandler{
		cfg:    cfg,
		client: masstimes.NewClient(mtCfg),
		logger: discardLogger(),
	}
}

func newRelayContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func decodeRelayError(t *testing.T, rec *httptest.ResponseRecorder) relayError {
	t.Helper()

	var body relayError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestRelayRejectsNonGet(t *testing.T) {
	handler := newRelayHandler(t, "key", nil)

	c, rec := newRelayContext(http.MethodPost, "/api/masstimes?lat=40.7&long=-74.0")
	require.NoError(t, handler.Relay(c))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", decodeRelayError(t, rec).Error)
}

func TestRelayRequiresAPIKey(t *testing.T) {
	handler := newRelayHandler(t, "", nil)

	c, rec := newRelayContext(http.MethodGet, "/api/masstimes?lat=40.7&long=-74.0")
	require.NoError(t, handler.Relay(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API key not configured", decodeRelayError(t, rec).Error)
}

func TestRelayValidatesCoordinates(t *testing.T) {
	handler := newRelayHandler(t, "key", nil)

	cases := map[string]string{
		"missing lat":      "/api/masstimes?long=-74.0",
		"malformed lat":    "/api/masstimes?lat=abc&long=-74.0",
		"missing long":     "/api/masstimes?lat=40.7",
		"lat out of range": "/api/masstimes?lat=95&long=-74.0",
		"lng out of range": "/api/masstimes?lat=40.7&long=181",
	}

	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newRelayContext(http.MethodGet, target)
			require.NoError(t, handler.Relay(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRelayPassesUpstreamBodyVerbatim(t *testing.T) {
	payload := `{"Churches":[{"Name":"St. Monica","ExtraField":42}]}`
	handler := newRelayHandler(t, "key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	})

	c, rec := newRelayContext(http.MethodGet, "/api/masstimes?lat=40.7&long=-74.0")
	require.NoError(t, handler.Relay(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, payload, rec.Body.String())
}

func TestRelayReportsUpstreamFailure(t *testing.T) {
	handler := newRelayHandler(t, "key", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	c, rec := newRelayContext(http.MethodGet, "/api/masstimes?lat=40.7&long=-74.0")
	require.NoError(t, handler.Relay(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeRelayError(t, rec)
	assert.Equal(t, "Failed to fetch parish data", body.Error)
	assert.NotEmpty(t, body.Message)
}
