package authors

import (
	"context"
	"database/sql"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveAuthorOptions struct {
	ID   *int
	Name *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveAuthor(ctx context.Context, opts RetrieveAuthorOptions) (*models.Author, error) {
	author := &models.Author{}

	q := svc.db.
		NewSelect().
		Model(author)

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("a.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

func (svc *Service) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	authors := []*models.Author{}

	err := svc.db.
		NewSelect().
		Model(&authors).
		Order("a.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return authors, nil
}

// ListAuthorsForStory returns a story's authors in link insertion order,
// which preserves the order they appeared in the source document.
func (svc *Service) ListAuthorsForStory(ctx context.Context, storyID int) ([]*models.Author, error) {
	links := []*models.StoryAuthor{}

	err := svc.db.
		NewSelect().
		Model(&links).
		Relation("Author").
		Where("sa.story_id = ?", storyID).
		Order("sa.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	authors := make([]*models.Author, 0, len(links))
	for _, link := range links {
		authors = append(authors, link.Author)
	}

	return authors, nil
}

// FindOrCreateAuthor matches by exact name. "John Smith" and "john smith"
// are distinct authors.
func (svc *Service) FindOrCreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	author, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{Name: &name})
	if err == nil {
		return author, nil
	}
	if !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	author = &models.Author{Name: name, CreatedAt: now, UpdatedAt: now}
	_, err = svc.db.
		NewInsert().
		Model(author).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return author, nil
}

// SetStoryAuthors replaces a story's author links with the given names, in
// order, creating author rows as needed. Authors orphaned by the
// replacement are deleted.
func (svc *Service) SetStoryAuthors(ctx context.Context, storyID int, names []string) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := unlinkStory(ctx, tx, storyID); err != nil {
			return err
		}

		for _, name := range names {
			author := &models.Author{}
			err := tx.
				NewSelect().
				Model(author).
				Where("a.name = ?", name).
				Scan(ctx)
			if errors.Is(err, sql.ErrNoRows) {
				now := time.Now()
				author = &models.Author{Name: name, CreatedAt: now, UpdatedAt: now}
				_, err = tx.NewInsert().Model(author).Returning("*").Exec(ctx)
			}
			if err != nil {
				return errors.WithStack(err)
			}

			link := &models.StoryAuthor{StoryID: storyID, AuthorID: author.ID}
			_, err = tx.NewInsert().Model(link).Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	return errors.WithStack(err)
}

// RemoveStoryLinks deletes a story's author links, then any authors left
// with no stories at all.
func (svc *Service) RemoveStoryLinks(ctx context.Context, storyID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return unlinkStory(ctx, tx, storyID)
	})
	return errors.WithStack(err)
}

func unlinkStory(ctx context.Context, tx bun.Tx, storyID int) error {
	_, err := tx.
		NewDelete().
		Model((*models.StoryAuthor)(nil)).
		Where("story_id = ?", storyID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = tx.
		NewDelete().
		Model((*models.Author)(nil)).
		Where("id NOT IN (SELECT author_id FROM story_authors)").
		Exec(ctx)
	return errors.WithStack(err)
}
