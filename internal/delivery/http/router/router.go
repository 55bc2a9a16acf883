// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"parishfinder/internal/delivery/http/middleware"
	"parishfinder/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	SearchHandler    *handler.SearchHandler
	MassTimesHandler *handler.MassTimesHandler
	ParishHandler    *handler.ParishHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	searchHandler    *handler.SearchHandler
	massTimesHandler *handler.MassTimesHandler
	parishHandler    *handler.ParishHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		searchHandler:    params.SearchHandler,
		massTimesHandler: params.MassTimesHandler,
		parishHandler:    params.ParishHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", middleware.MetricsHandler())

	apiGroup := e.Group("/api")
	{
		apiGroup.GET("/search", r.searchHandler.Search)
		apiGroup.GET("/parishes", r.parishHandler.Nearby)

		// The relay answers every method itself so non-GET requests get
		// the error body its browser clients expect.
		apiGroup.Any("/masstimes", r.massTimesHandler.Relay)
	}
}
