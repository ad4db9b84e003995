package formats

import (
	"context"
	"database/sql"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveFormatOptions struct {
	ID   *int
	Name *string
}

type UpdateFormatOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateFormat(ctx context.Context, format *models.Format) error {
	now := time.Now()
	if format.CreatedAt.IsZero() {
		format.CreatedAt = now
	}
	format.UpdatedAt = format.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(format).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveFormat(ctx context.Context, opts RetrieveFormatOptions) (*models.Format, error) {
	format := &models.Format{}

	q := svc.db.
		NewSelect().
		Model(format)

	if opts.ID != nil {
		q = q.Where("fmt.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("fmt.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Format")
		}
		return nil, errors.WithStack(err)
	}

	return format, nil
}

func (svc *Service) ListFormats(ctx context.Context) ([]*models.Format, error) {
	formats := []*models.Format{}

	err := svc.db.
		NewSelect().
		Model(&formats).
		Order("fmt.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return formats, nil
}

// FindOrCreateFormat returns the format with the given canonical name,
// creating it first if it doesn't exist yet. The command only seeds a new
// row; an existing format's configured command is never overwritten here.
func (svc *Service) FindOrCreateFormat(ctx context.Context, name string, command *string) (*models.Format, error) {
	format, err := svc.RetrieveFormat(ctx, RetrieveFormatOptions{Name: &name})
	if err == nil {
		return format, nil
	}
	if !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return nil, errors.WithStack(err)
	}

	format = &models.Format{Name: name, Command: command}
	if err := svc.CreateFormat(ctx, format); err != nil {
		return nil, errors.WithStack(err)
	}

	return format, nil
}

func (svc *Service) UpdateFormat(ctx context.Context, format *models.Format, opts UpdateFormatOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	format.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(format).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Format")
		}
		return errors.WithStack(err)
	}

	return nil
}
