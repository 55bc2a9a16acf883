package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"parishfinder/internal/delivery/http/response"
	"parishfinder/internal/delivery/http/validator"
	"parishfinder/internal/domain/entity"
	domainerrors "parishfinder/internal/domain/errors"
	"parishfinder/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearchUsecase struct {
	gotInput *usecase.SearchInput
	output   *usecase.SearchOutput
	err      error
}

func (s *stubSearchUsecase) Search(_ context.Context, input *usecase.SearchInput) (*usecase.SearchOutput, error) {
	s.gotInput = input

	return s.output, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSearchContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validator.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestSearchHandlerPassesQueryParams(t *testing.T) {
	distance := 1.2
	stub := &stubSearchUsecase{output: &usecase.SearchOutput{
		Location: &entity.GeocodingResult{Lat: 40.7, Lng: -74.0, DisplayName: "New York"},
		Parishes: []*entity.Parish{{Name: "St. Agnes", Distance: &distance}},
	}}
	handler := &SearchHandler{searchUC: stub, logger: discardLogger()}

	c, rec := newSearchContext("/api/search?location=10001&day=Sunday&service=Mass&sort=nextMass")
	require.NoError(t, handler.Search(c))

	require.NotNil(t, stub.gotInput)
	assert.Equal(t, "10001", stub.gotInput.Query)
	assert.Equal(t, "Sunday", stub.gotInput.Day)
	assert.Equal(t, "Mass", stub.gotInput.Service)
	assert.Equal(t, "nextMass", stub.gotInput.Sort)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotNil(t, body.Data)
}

func TestSearchHandlerRejectsMalformedParams(t *testing.T) {
	cases := map[string]string{
		"non-numeric lat":    "/api/search?lat=abc&lng=-74.0",
		"non-numeric lng":    "/api/search?lat=40.7&lng=west",
		"lat without lng":    "/api/search?lat=40.7",
		"non-numeric radius": "/api/search?location=10001&radius=ten",
	}

	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &stubSearchUsecase{}
			handler := &SearchHandler{searchUC: stub, logger: discardLogger()}

			c, rec := newSearchContext(target)
			require.NoError(t, handler.Search(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)

			assert.Nil(t, stub.gotInput, "malformed params must not reach the pipeline")
		})
	}
}

func TestSearchHandlerPropagatesAppError(t *testing.T) {
	stub := &stubSearchUsecase{err: domainerrors.ErrLocationNotFound}
	handler := &SearchHandler{searchUC: stub, logger: discardLogger()}

	c, _ := newSearchContext("/api/search?location=nowhere")
	err := handler.Search(c)

	// The error reaches the central error handler untouched.
	require.ErrorIs(t, err, domainerrors.ErrLocationNotFound)
}
