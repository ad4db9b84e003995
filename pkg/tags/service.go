package tags

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

type RetrieveTagOptions struct {
	ID   *int
	Name *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveTag(ctx context.Context, opts RetrieveTagOptions) (*models.Tag, error) {
	tag := &models.Tag{}

	q := svc.db.
		NewSelect().
		Model(tag)

	if opts.ID != nil {
		q = q.Where("t.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("t.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Tag")
		}
		return nil, errors.WithStack(err)
	}

	return tag, nil
}

// ListTags returns all tags with their story counts, ordered by name.
func (svc *Service) ListTags(ctx context.Context) ([]*models.Tag, error) {
	tags := []*models.Tag{}

	err := svc.db.
		NewSelect().
		Model(&tags).
		ColumnExpr("t.*").
		ColumnExpr("(SELECT COUNT(*) FROM story_tags st WHERE st.tag_id = t.id) AS story_count").
		Order("t.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return tags, nil
}

// ListTagsForStory returns a story's tags ordered by name.
func (svc *Service) ListTagsForStory(ctx context.Context, storyID int) ([]*models.Tag, error) {
	tags := []*models.Tag{}

	err := svc.db.
		NewSelect().
		Model(&tags).
		Join("JOIN story_tags st ON st.tag_id = t.id").
		Where("st.story_id = ?", storyID).
		Order("t.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return tags, nil
}

// SetStoryTags replaces a story's tag links with the given names. Tags
// orphaned by the replacement are deleted.
func (svc *Service) SetStoryTags(ctx context.Context, storyID int, names []string) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := unlinkStory(ctx, tx, storyID); err != nil {
			return err
		}

		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			tag := &models.Tag{}
			err := tx.
				NewSelect().
				Model(tag).
				Where("t.name = ?", name).
				Scan(ctx)
			if errors.Is(err, sql.ErrNoRows) {
				now := time.Now()
				tag = &models.Tag{Name: name, CreatedAt: now, UpdatedAt: now}
				_, err = tx.NewInsert().Model(tag).Returning("*").Exec(ctx)
			}
			if err != nil {
				return errors.WithStack(err)
			}

			link := &models.StoryTag{StoryID: storyID, TagID: tag.ID}
			_, err = tx.NewInsert().Model(link).Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	return errors.WithStack(err)
}

// RemoveStoryLinks deletes a story's tag links, then any tags left with no
// stories at all.
func (svc *Service) RemoveStoryLinks(ctx context.Context, storyID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return unlinkStory(ctx, tx, storyID)
	})
	return errors.WithStack(err)
}

func unlinkStory(ctx context.Context, tx bun.Tx, storyID int) error {
	_, err := tx.
		NewDelete().
		Model((*models.StoryTag)(nil)).
		Where("story_id = ?", storyID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = tx.
		NewDelete().
		Model((*models.Tag)(nil)).
		Where("id NOT IN (SELECT tag_id FROM story_tags)").
		Exec(ctx)
	return errors.WithStack(err)
}
