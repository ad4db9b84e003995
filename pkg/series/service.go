package series

import (
	"context"
	"database/sql"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveSeriesOptions struct {
	ID   *int
	Name *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveSeries(ctx context.Context, opts RetrieveSeriesOptions) (*models.Series, error) {
	series := &models.Series{}

	q := svc.db.
		NewSelect().
		Model(series)

	if opts.ID != nil {
		q = q.Where("sr.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("sr.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Series")
		}
		return nil, errors.WithStack(err)
	}

	return series, nil
}

func (svc *Service) ListSeries(ctx context.Context) ([]*models.Series, error) {
	series := []*models.Series{}

	err := svc.db.
		NewSelect().
		Model(&series).
		ColumnExpr("sr.*").
		ColumnExpr("(SELECT COUNT(*) FROM stories s WHERE s.series_id = sr.id) AS story_count").
		Order("sr.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return series, nil
}

func (svc *Service) FindOrCreateSeries(ctx context.Context, name string) (*models.Series, error) {
	series, err := svc.RetrieveSeries(ctx, RetrieveSeriesOptions{Name: &name})
	if err == nil {
		return series, nil
	}
	if !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	series = &models.Series{Name: name, CreatedAt: now, UpdatedAt: now}
	_, err = svc.db.
		NewInsert().
		Model(series).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return series, nil
}

// StoryCount returns how many stories reference the series.
func (svc *Service) StoryCount(ctx context.Context, id int) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Story)(nil)).
		Where("s.series_id = ?", id).
		Count(ctx)
	return count, errors.WithStack(err)
}

func (svc *Service) DeleteSeries(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Series)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}
