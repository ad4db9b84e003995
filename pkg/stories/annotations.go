package stories

import (
	"context"
	"database/sql"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
)

// Cover, annotation, and resource operations. Each story has at most one
// cover, one local annotation, and one ifdb annotation, plus any number of
// resources.

func (svc *Service) RetrieveCover(ctx context.Context, storyID int) (*models.Cover, error) {
	cover := &models.Cover{}

	err := svc.db.
		NewSelect().
		Model(cover).
		Where("c.story_id = ?", storyID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Cover")
		}
		return nil, errors.WithStack(err)
	}

	return cover, nil
}

// UpsertCover inserts or replaces the story's cover in place, keeping the
// existing row's identity when there is one.
func (svc *Service) UpsertCover(ctx context.Context, cover *models.Cover) error {
	existing, err := svc.RetrieveCover(ctx, cover.StoryID)
	if err != nil && !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return errors.WithStack(err)
	}

	now := time.Now()
	if existing != nil {
		cover.ID = existing.ID
		cover.CreatedAt = existing.CreatedAt
		cover.UpdatedAt = now

		_, err = svc.db.
			NewUpdate().
			Model(cover).
			Column("format", "height", "width", "description", "data", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	}

	cover.CreatedAt = now
	cover.UpdatedAt = now
	_, err = svc.db.
		NewInsert().
		Model(cover).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) DeleteCover(ctx context.Context, storyID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Cover)(nil)).
		Where("story_id = ?", storyID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveAnnotation(ctx context.Context, storyID int) (*models.Annotation, error) {
	annotation := &models.Annotation{}

	err := svc.db.
		NewSelect().
		Model(annotation).
		Where("an.story_id = ?", storyID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Annotation")
		}
		return nil, errors.WithStack(err)
	}

	return annotation, nil
}

func (svc *Service) UpsertAnnotation(ctx context.Context, annotation *models.Annotation) error {
	existing, err := svc.RetrieveAnnotation(ctx, annotation.StoryID)
	if err != nil && !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return errors.WithStack(err)
	}

	now := time.Now()
	if existing != nil {
		annotation.ID = existing.ID
		annotation.CreatedAt = existing.CreatedAt
		annotation.UpdatedAt = now

		_, err = svc.db.
			NewUpdate().
			Model(annotation).
			Column("rating", "rating_txt", "notes", "played", "imported", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	}

	annotation.CreatedAt = now
	annotation.UpdatedAt = now
	_, err = svc.db.
		NewInsert().
		Model(annotation).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) DeleteAnnotation(ctx context.Context, storyID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Annotation)(nil)).
		Where("story_id = ?", storyID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveIfdbAnnotation(ctx context.Context, storyID int) (*models.IfdbAnnotation, error) {
	annotation := &models.IfdbAnnotation{}

	err := svc.db.
		NewSelect().
		Model(annotation).
		Where("ia.story_id = ?", storyID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("IfdbAnnotation")
		}
		return nil, errors.WithStack(err)
	}

	return annotation, nil
}

func (svc *Service) UpsertIfdbAnnotation(ctx context.Context, annotation *models.IfdbAnnotation) error {
	existing, err := svc.RetrieveIfdbAnnotation(ctx, annotation.StoryID)
	if err != nil && !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return errors.WithStack(err)
	}

	now := time.Now()
	if existing != nil {
		annotation.ID = existing.ID
		annotation.CreatedAt = existing.CreatedAt
		annotation.UpdatedAt = now

		_, err = svc.db.
			NewUpdate().
			Model(annotation).
			Column("tuid", "url", "cover_url", "avg_rating", "star_rating",
				"star_rating_txt", "rating_count_avg", "rating_count_tot",
				"updated", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	}

	annotation.CreatedAt = now
	annotation.UpdatedAt = now
	_, err = svc.db.
		NewInsert().
		Model(annotation).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) DeleteIfdbAnnotation(ctx context.Context, storyID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.IfdbAnnotation)(nil)).
		Where("story_id = ?", storyID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) CreateResource(ctx context.Context, resource *models.Resource) error {
	now := time.Now()
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = now
	}
	resource.UpdatedAt = resource.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(resource).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveResource(ctx context.Context, id int) (*models.Resource, error) {
	resource := &models.Resource{}

	err := svc.db.
		NewSelect().
		Model(resource).
		Where("rs.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Resource")
		}
		return nil, errors.WithStack(err)
	}

	return resource, nil
}

func (svc *Service) ListResources(ctx context.Context, storyID int) ([]*models.Resource, error) {
	resources := []*models.Resource{}

	err := svc.db.
		NewSelect().
		Model(&resources).
		Where("rs.story_id = ?", storyID).
		Order("rs.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return resources, nil
}

func (svc *Service) DeleteResource(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Resource)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) DeleteResourcesForStory(ctx context.Context, storyID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Resource)(nil)).
		Where("story_id = ?", storyID).
		Exec(ctx)
	return errors.WithStack(err)
}

// ReassignResources moves a story's resources to another story during a
// merge.
func (svc *Service) ReassignResources(ctx context.Context, fromStoryID, toStoryID int) error {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Resource)(nil)).
		Set("story_id = ?", toStoryID).
		Set("updated_at = ?", time.Now()).
		Where("story_id = ?", fromStoryID).
		Exec(ctx)
	return errors.WithStack(err)
}
