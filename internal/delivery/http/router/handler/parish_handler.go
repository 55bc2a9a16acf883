package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"parishfinder/internal/delivery/http/response"
	"parishfinder/internal/domain/repository"
	"parishfinder/internal/infra/geo"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const defaultDirectoryRadiusMiles = 50

// ParishHandlerParams holds dependencies for ParishHandler, injected by Fx.
type ParishHandlerParams struct {
	fx.In

	Source repository.ParishSource
	Logger *slog.Logger
}

// ParishHandler serves coordinate-based directory lookups against the
// configured parish source, bypassing geocoding.
type ParishHandler struct {
	source repository.ParishSource
	logger *slog.Logger
}

// NewParishHandler is the constructor for ParishHandler
func NewParishHandler(params ParishHandlerParams) *ParishHandler {
	return &ParishHandler{
		source: params.Source,
		logger: params.Logger,
	}
}

// Nearby handles GET /api/parishes.
func (h *ParishHandler) Nearby(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return response.BadRequest(c, "INVALID_COORDINATES", "Invalid latitude parameter")
	}

	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil {
		return response.BadRequest(c, "INVALID_COORDINATES", "Invalid longitude parameter")
	}

	if err := geo.ValidateCoordinates(lat, lng); err != nil {
		return err
	}

	radius := float64(defaultDirectoryRadiusMiles)
	if raw := c.QueryParam("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return response.BadRequest(c, "INVALID_RADIUS", "Radius must be a positive number of miles")
		}
	}

	parishes, err := h.source.Search(c.Request().Context(), lat, lng, radius)
	if err != nil {
		h.logger.Warn("Directory lookup failed",
			slog.Float64("lat", lat),
			slog.Float64("lng", lng),
			slog.Any("error", err),
		)

		return response.ServiceUnavailable(c, "SERVICE_UNAVAILABLE", "Parish directory is temporarily unavailable")
	}

	return response.Success(c, http.StatusOK, parishes, "Parishes retrieved")
}
