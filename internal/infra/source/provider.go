// Package source wires the configured parish data source into the
// application. All adapters implement the same repository.ParishSource
// contract, so the search pipeline does not know which one is active.
package source

import (
	"log/slog"

	"parishfinder/config"
	"parishfinder/internal/domain/repository"
	"parishfinder/internal/errors"
	"parishfinder/internal/infra/persistence/postgres"
	"parishfinder/internal/infra/source/local"
	"parishfinder/internal/infra/source/masstimes"
	"parishfinder/internal/infra/source/overpass"

	"go.uber.org/fx"
)

// Supported provider names.
const (
	ProviderLocal     = "local"
	ProviderMassTimes = "masstimes"
	ProviderOverpass  = "overpass"
	ProviderPostgres  = "postgres"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config          *config.Config
	Logger          *slog.Logger
	MassTimesClient *masstimes.Client
}

// NewParishSource selects the parish source named by the configuration.
// The database client is only created when the postgres provider is in
// use; every other provider runs without one.
func NewParishSource(params Params) (repository.ParishSource, error) {
	provider := params.Config.Sources.Provider

	switch provider {
	case ProviderLocal:
		return local.NewStore(params.Config.Sources.Local), nil
	case ProviderMassTimes:
		return params.MassTimesClient, nil
	case ProviderOverpass:
		return overpass.NewClient(params.Config.Sources.Overpass), nil
	case ProviderPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}

		return postgres.NewParishRepository(db), nil
	default:
		return nil, errors.Errorf("unknown parish source provider: %q", provider)
	}
}

// NewMassTimesClient creates the schedule provider client. It is provided
// independently of the source selection because the relay endpoint uses
// it regardless of which source serves search.
func NewMassTimesClient(cfg *config.Config) *masstimes.Client {
	return masstimes.NewClient(cfg.Sources.MassTimes)
}
