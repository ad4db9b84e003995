package groups

import (
	"context"
	"database/sql"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveGroupOptions struct {
	ID   *int
	Name *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveGroup(ctx context.Context, opts RetrieveGroupOptions) (*models.Group, error) {
	group := &models.Group{}

	q := svc.db.
		NewSelect().
		Model(group)

	if opts.ID != nil {
		q = q.Where("grp.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("grp.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Group")
		}
		return nil, errors.WithStack(err)
	}

	return group, nil
}

func (svc *Service) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups := []*models.Group{}

	err := svc.db.
		NewSelect().
		Model(&groups).
		ColumnExpr("grp.*").
		ColumnExpr("(SELECT COUNT(*) FROM stories s WHERE s.group_id = grp.id) AS story_count").
		Order("grp.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return groups, nil
}

func (svc *Service) FindOrCreateGroup(ctx context.Context, name string) (*models.Group, error) {
	group, err := svc.RetrieveGroup(ctx, RetrieveGroupOptions{Name: &name})
	if err == nil {
		return group, nil
	}
	if !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	group = &models.Group{Name: name, CreatedAt: now, UpdatedAt: now}
	_, err = svc.db.
		NewInsert().
		Model(group).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return group, nil
}

// StoryCount returns how many stories reference the group.
func (svc *Service) StoryCount(ctx context.Context, id int) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Story)(nil)).
		Where("s.group_id = ?", id).
		Count(ctx)
	return count, errors.WithStack(err)
}

func (svc *Service) DeleteGroup(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Group)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}
