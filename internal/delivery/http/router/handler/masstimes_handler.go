package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"parishfinder/config"
	"parishfinder/internal/infra/geo"
	"parishfinder/internal/infra/source/masstimes"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// relayError is the error body shape browser clients of the relay expect.
type relayError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MassTimesHandlerParams holds dependencies for MassTimesHandler, injected by Fx.
type MassTimesHandlerParams struct {
	fx.In

	Config *config.Config
	Client *masstimes.Client
	Logger *slog.Logger
}

// MassTimesHandler relays schedule lookups to the external provider so
// the API key stays on the server.
type MassTimesHandler struct {
	cfg    *config.Config
	client *masstimes.Client
	logger *slog.Logger
}

// NewMassTimesHandler is the constructor for MassTimesHandler
func NewMassTimesHandler(params MassTimesHandlerParams) *MassTimesHandler {
	return &MassTimesHandler{
		cfg:    params.Config,
		client: params.Client,
		logger: params.Logger,
	}
}

// Relay handles /api/masstimes. The upstream body passes through
// verbatim; only validation and key handling happen here.
func (h *MassTimesHandler) Relay(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodGet:
	case http.MethodOptions:
		// Preflight; CORS headers come from the CORS middleware.
		return c.NoContent(http.StatusNoContent)
	default:
		return c.JSON(http.StatusMethodNotAllowed, relayError{Error: "Method not allowed"})
	}

	if h.cfg.Sources.MassTimes.APIKey == "" {
		return c.JSON(http.StatusInternalServerError, relayError{Error: "API key not configured"})
	}

	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, relayError{Error: "Invalid latitude parameter"})
	}

	rawLng := c.QueryParam("long")
	if rawLng == "" {
		rawLng = c.QueryParam("lng")
	}

	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, relayError{Error: "Invalid longitude parameter"})
	}

	if err := geo.ValidateCoordinates(lat, lng); err != nil {
		return c.JSON(http.StatusBadRequest, relayError{Error: "Coordinates out of range"})
	}

	body, err := h.client.Fetch(c.Request().Context(), lat, lng)
	if err != nil {
		h.logger.Warn("Schedule relay failed",
			slog.Float64("lat", lat),
			slog.Float64("long", lng),
			slog.Any("error", err),
		)

		return c.JSON(http.StatusInternalServerError, relayError{
			Error:   "Failed to fetch parish data",
			Message: err.Error(),
		})
	}

	return c.JSONBlob(http.StatusOK, body)
}
