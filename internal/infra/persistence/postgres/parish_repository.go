package postgres

import (
	"context"

	"parishfinder/internal/domain/entity"
	"parishfinder/internal/domain/repository"
	"parishfinder/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// maxDirectoryResults caps one directory lookup regardless of radius.
const maxDirectoryResults = 100

// parishRow is one haversine-scored directory row.
type parishRow struct {
	model.ParishModel
	Distance float64
}

// parishRepository serves the database-backed parish directory. It
// implements repository.ParishSource like the remote adapters so the
// search pipeline can use it interchangeably.
type parishRepository struct {
	db *gorm.DB
}

// NewParishRepository is the constructor for parishRepository.
func NewParishRepository(db *gorm.DB) repository.ParishSource {
	return &parishRepository{db: db}
}

// Search scores every parish by great-circle distance in SQL and returns
// the ones inside the radius, closest first. The distance expression uses
// the spherical law of cosines with the Earth radius in statute miles so
// results agree with the in-process scorer.
func (repo *parishRepository) Search(ctx context.Context, lat, lng, radiusMiles float64) ([]*entity.Parish, error) {
	const query = `
		SELECT * FROM (
			SELECT p.*,
			       (3959 * acos(
			           cos(radians(?)) * cos(radians(p.latitude)) *
			           cos(radians(p.longitude) - radians(?)) +
			           sin(radians(?)) * sin(radians(p.latitude))
			       )) AS distance
			FROM parishes p
		) scored
		WHERE scored.distance < ?
		ORDER BY scored.distance
		LIMIT ?`

	var rows []parishRow
	if err := repo.db.WithContext(ctx).
		Raw(query, lat, lng, lat, radiusMiles, maxDirectoryResults).
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query parish directory")
	}

	parishes := make([]*entity.Parish, 0, len(rows))
	for i := range rows {
		parish, err := repo.withTimes(ctx, &rows[i])
		if err != nil {
			return nil, err
		}

		parishes = append(parishes, parish)
	}

	return parishes, nil
}

func (repo *parishRepository) withTimes(ctx context.Context, row *parishRow) (*entity.Parish, error) {
	var timeModels []model.WorshipTimeModel
	if err := repo.db.WithContext(ctx).
		Where("parish_id = ?", row.ID).
		Order("id").
		Find(&timeModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load worship times")
	}

	times := make([]entity.WorshipTime, 0, len(timeModels))
	for _, tm := range timeModels {
		times = append(times, entity.WorshipTime{
			Day:      tm.Day,
			Time:     tm.Time,
			Type:     tm.Type,
			Language: tm.Language,
			Note:     tm.Note,
		})
	}

	distance := row.Distance

	return &entity.Parish{
		ID:        row.ID,
		Name:      row.Name,
		Address:   row.Address,
		City:      row.City,
		State:     row.State,
		Zip:       row.Zip,
		Country:   row.Country,
		Phone:     row.Phone,
		URL:       row.URL,
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
		Distance:  &distance,
		Times:     times,
	}, nil
}
