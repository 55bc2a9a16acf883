package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"parishfinder/internal/delivery/http/response"
	"parishfinder/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// SearchHandlerParams holds dependencies for SearchHandler, injected by Fx.
type SearchHandlerParams struct {
	fx.In

	SearchUC usecase.SearchUsecase
	Logger   *slog.Logger
}

// SearchHandler serves the parish search endpoint.
type SearchHandler struct {
	searchUC usecase.SearchUsecase
	logger   *slog.Logger
}

// NewSearchHandler is the constructor for SearchHandler
func NewSearchHandler(params SearchHandlerParams) *SearchHandler {
	return &SearchHandler{
		searchUC: params.SearchUC,
		logger:   params.Logger,
	}
}

// SearchRequest represents the query parameters for a parish search.
// Either a free-text query or a lat/lng pair selects the location.
type SearchRequest struct {
	Query    string `query:"query"`
	Location string `query:"location"`
	Lat      string `query:"lat" validate:"omitempty,numeric,required_with=Lng"`
	Lng      string `query:"lng" validate:"omitempty,numeric,required_with=Lat"`
	Radius   string `query:"radius" validate:"omitempty,numeric"`
	Day      string `query:"day"`
	Service  string `query:"service"`
	Sort     string `query:"sort"`
}

// Search handles GET /api/search. Free-text validation happens in the
// pipeline so its error messages reach the client unchanged.
func (h *SearchHandler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid search input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	query := req.Query
	if query == "" {
		query = req.Location
	}

	input := &usecase.SearchInput{
		Query:   query,
		Day:     req.Day,
		Service: req.Service,
		Sort:    req.Sort,
	}

	if req.Lat != "" || req.Lng != "" {
		lat, err := strconv.ParseFloat(req.Lat, 64)
		if err != nil {
			return response.BadRequest(c, "INVALID_COORDINATES", "Invalid latitude parameter")
		}

		lng, err := strconv.ParseFloat(req.Lng, 64)
		if err != nil {
			return response.BadRequest(c, "INVALID_COORDINATES", "Invalid longitude parameter")
		}

		input.Lat, input.Lng = &lat, &lng
	}

	if req.Radius != "" {
		radius, err := strconv.ParseFloat(req.Radius, 64)
		if err != nil || radius <= 0 {
			return response.BadRequest(c, "INVALID_RADIUS", "Radius must be a positive number of miles")
		}

		input.RadiusMiles = radius
	}

	output, err := h.searchUC.Search(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, output, "Search completed")
}
