package releases

import (
	"context"
	"database/sql"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveReleaseOptions struct {
	IFID *string
	URI  *string
}

type ListReleasesOptions struct {
	StoryID *int
}

type UpdateReleaseOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateRelease(ctx context.Context, release *models.Release) error {
	now := time.Now()
	if release.CreatedAt.IsZero() {
		release.CreatedAt = now
	}
	release.UpdatedAt = release.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(release).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveRelease(ctx context.Context, opts RetrieveReleaseOptions) (*models.Release, error) {
	release := &models.Release{}

	q := svc.db.
		NewSelect().
		Model(release).
		Relation("Format")

	if opts.IFID != nil {
		q = q.Where("r.ifid = ?", *opts.IFID)
	}
	if opts.URI != nil {
		q = q.Where("r.uri = ?", *opts.URI)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Release")
		}
		return nil, errors.WithStack(err)
	}

	return release, nil
}

func (svc *Service) ListReleases(ctx context.Context, opts ListReleasesOptions) ([]*models.Release, error) {
	releases := []*models.Release{}

	q := svc.db.
		NewSelect().
		Model(&releases).
		Relation("Format").
		Order("r.created_at ASC", "r.ifid ASC")

	if opts.StoryID != nil {
		q = q.Where("r.story_id = ?", *opts.StoryID)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return releases, nil
}

func (svc *Service) UpdateRelease(ctx context.Context, release *models.Release, opts UpdateReleaseOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	release.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(release).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Release")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) DeleteRelease(ctx context.Context, ifid string) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Release)(nil)).
		Where("ifid = ?", ifid).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) DeleteReleasesForStory(ctx context.Context, storyID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Release)(nil)).
		Where("story_id = ?", storyID).
		Exec(ctx)
	return errors.WithStack(err)
}

// ReassignReleases moves every release from one story to another. Used by
// merge; the source story is removed afterwards.
func (svc *Service) ReassignReleases(ctx context.Context, fromStoryID, toStoryID int) error {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Release)(nil)).
		Set("story_id = ?", toStoryID).
		Set("updated_at = ?", time.Now()).
		Where("story_id = ?", fromStoryID).
		Exec(ctx)
	return errors.WithStack(err)
}
