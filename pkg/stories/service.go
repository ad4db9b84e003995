package stories

import (
	"context"
	"database/sql"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveStoryOptions struct {
	ID *int
	// Title matches exactly, case-sensitively. Two stories differing only in
	// case are distinct works.
	Title *string
	// TitleNoCase matches the title case-insensitively.
	TitleNoCase *string
}

type ListStoriesOptions struct {
	Limit  *int
	Offset *int
	// Search matches against the title, case-insensitively.
	Search   *string
	GenreID  *int
	TagID    *int
	SeriesID *int
	GroupID  *int

	includeTotal bool
}

type UpdateStoryOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateStory(ctx context.Context, story *models.Story) error {
	now := time.Now()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = now
	}
	story.UpdatedAt = story.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(story).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveStory(ctx context.Context, opts RetrieveStoryOptions) (*models.Story, error) {
	story := &models.Story{}

	q := svc.db.
		NewSelect().
		Model(story).
		Relation("Series").
		Relation("Group").
		Relation("Forgiveness").
		Relation("Releases", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("r.created_at ASC", "r.ifid ASC")
		}).
		Relation("Releases.Format")

	if opts.ID != nil {
		q = q.Where("s.id = ?", *opts.ID)
	}
	if opts.Title != nil {
		q = q.Where("s.title = ?", *opts.Title)
	}
	if opts.TitleNoCase != nil {
		q = q.Where("s.title = ? COLLATE NOCASE", *opts.TitleNoCase)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Story")
		}
		return nil, errors.WithStack(err)
	}

	return story, nil
}

func (svc *Service) ListStories(ctx context.Context, opts ListStoriesOptions) ([]*models.Story, error) {
	s, _, err := svc.listStoriesWithTotal(ctx, opts)
	return s, errors.WithStack(err)
}

func (svc *Service) ListStoriesWithTotal(ctx context.Context, opts ListStoriesOptions) ([]*models.Story, int, error) {
	opts.includeTotal = true
	return svc.listStoriesWithTotal(ctx, opts)
}

func (svc *Service) listStoriesWithTotal(ctx context.Context, opts ListStoriesOptions) ([]*models.Story, int, error) {
	stories := []*models.Story{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&stories).
		Relation("Series").
		Relation("Group").
		Relation("Forgiveness").
		Relation("Releases", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("r.created_at ASC", "r.ifid ASC")
		}).
		Order("s.title ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.Search != nil {
		q = q.Where("s.title LIKE ?", "%"+*opts.Search+"%")
	}
	if opts.GenreID != nil {
		q = q.Where("s.id IN (SELECT story_id FROM story_genres WHERE genre_id = ?)", *opts.GenreID)
	}
	if opts.TagID != nil {
		q = q.Where("s.id IN (SELECT story_id FROM story_tags WHERE tag_id = ?)", *opts.TagID)
	}
	if opts.SeriesID != nil {
		q = q.Where("s.series_id = ?", *opts.SeriesID)
	}
	if opts.GroupID != nil {
		q = q.Where("s.group_id = ?", *opts.GroupID)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return stories, total, nil
}

func (svc *Service) UpdateStory(ctx context.Context, story *models.Story, opts UpdateStoryOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	story.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(story).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Story")
		}
		return errors.WithStack(err)
	}

	return nil
}

// DeleteStory removes the story row only. Dependent rows are the cataloging
// engine's responsibility; it runs the full cascade before calling this.
func (svc *Service) DeleteStory(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Story)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}
