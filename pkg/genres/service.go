package genres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveGenreOptions struct {
	ID   *int
	Name *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveGenre(ctx context.Context, opts RetrieveGenreOptions) (*models.Genre, error) {
	genre := &models.Genre{}

	q := svc.db.
		NewSelect().
		Model(genre)

	if opts.ID != nil {
		q = q.Where("g.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("g.name = ?", strings.ToLower(*opts.Name))
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Genre")
		}
		return nil, errors.WithStack(err)
	}

	return genre, nil
}

// ListGenres returns all genres with their story counts, ordered by name.
func (svc *Service) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	genres := []*models.Genre{}

	err := svc.db.
		NewSelect().
		Model(&genres).
		ColumnExpr("g.*").
		ColumnExpr("(SELECT COUNT(*) FROM story_genres sg WHERE sg.genre_id = g.id) AS story_count").
		Order("g.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return genres, nil
}

// ListGenresForStory returns a story's genres ordered by name.
func (svc *Service) ListGenresForStory(ctx context.Context, storyID int) ([]*models.Genre, error) {
	genres := []*models.Genre{}

	err := svc.db.
		NewSelect().
		Model(&genres).
		Join("JOIN story_genres sg ON sg.genre_id = g.id").
		Where("sg.story_id = ?", storyID).
		Order("g.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return genres, nil
}

// SetStoryGenres replaces a story's genre links with the given names. Names
// are lower-cased; genres orphaned by the replacement are deleted.
func (svc *Service) SetStoryGenres(ctx context.Context, storyID int, names []string) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := unlinkStory(ctx, tx, storyID); err != nil {
			return err
		}

		for _, name := range names {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}

			genre := &models.Genre{}
			err := tx.
				NewSelect().
				Model(genre).
				Where("g.name = ?", name).
				Scan(ctx)
			if errors.Is(err, sql.ErrNoRows) {
				now := time.Now()
				genre = &models.Genre{Name: name, CreatedAt: now, UpdatedAt: now}
				_, err = tx.NewInsert().Model(genre).Returning("*").Exec(ctx)
			}
			if err != nil {
				return errors.WithStack(err)
			}

			link := &models.StoryGenre{StoryID: storyID, GenreID: genre.ID}
			_, err = tx.NewInsert().Model(link).Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	return errors.WithStack(err)
}

// RemoveStoryLinks deletes a story's genre links, then any genres left with
// no stories at all.
func (svc *Service) RemoveStoryLinks(ctx context.Context, storyID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return unlinkStory(ctx, tx, storyID)
	})
	return errors.WithStack(err)
}

func unlinkStory(ctx context.Context, tx bun.Tx, storyID int) error {
	_, err := tx.
		NewDelete().
		Model((*models.StoryGenre)(nil)).
		Where("story_id = ?", storyID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = tx.
		NewDelete().
		Model((*models.Genre)(nil)).
		Where("id NOT IN (SELECT genre_id FROM story_genres)").
		Exec(ctx)
	return errors.WithStack(err)
}
