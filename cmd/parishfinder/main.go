package main

import (
	"context"
	"log/slog"
	"os"

	"parishfinder/config"
	"parishfinder/internal/delivery"
	"parishfinder/internal/delivery/http"
	"parishfinder/internal/delivery/http/middleware"
	"parishfinder/internal/delivery/http/router/handler"
	"parishfinder/internal/domain/repository"
	"parishfinder/internal/infra/cache"
	"parishfinder/internal/infra/geocode"
	logs "parishfinder/internal/infra/log"
	"parishfinder/internal/infra/retry"
	"parishfinder/internal/infra/source"
	"parishfinder/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectSource(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		cache.New,
		newRetryController,
		newGeocoder,
	)
}

// newGeocoder creates the location resolver from the top-level config
func newGeocoder(cfg *config.Config) repository.Geocoder {
	return geocode.NewClient(cfg.Geocoder)
}

// newRetryController creates the shared retry controller
func newRetryController(logger *slog.Logger) *retry.Controller {
	return retry.New(logger)
}

func injectSource() fx.Option {
	return fx.Options(
		fx.Provide(
			source.NewMassTimesClient,
			source.NewParishSource,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSearchService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewSearchHandler,
			handler.NewMassTimesHandler,
			handler.NewParishHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
