package catalog

import (
	"context"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/stories"
	"github.com/pkg/errors"
)

// RemoveStory cascades cleanup of everything hanging off a story, then the
// story row itself. Order matters: the group/series member counts are
// checked while the story row still exists, so "count == 1" means this
// story is the last member. A missing story is a no-op, not an error.
func (e *Engine) RemoveStory(ctx context.Context, storyID int) error {
	story, err := e.stories.RetrieveStory(ctx, stories.RetrieveStoryOptions{ID: &storyID})
	if errcodes.HasCode(err, errcodes.CodeNotFound) {
		return nil
	}
	if err != nil {
		return errors.WithStack(err)
	}

	if err := e.authors.RemoveStoryLinks(ctx, storyID); err != nil {
		return errors.WithStack(err)
	}
	if err := e.genres.RemoveStoryLinks(ctx, storyID); err != nil {
		return errors.WithStack(err)
	}
	if err := e.tags.RemoveStoryLinks(ctx, storyID); err != nil {
		return errors.WithStack(err)
	}

	if story.GroupID != nil {
		count, err := e.groups.StoryCount(ctx, *story.GroupID)
		if err != nil {
			return errors.WithStack(err)
		}
		if count == 1 {
			if err := e.groups.DeleteGroup(ctx, *story.GroupID); err != nil {
				return errors.WithStack(err)
			}
		}
	}
	if story.SeriesID != nil {
		count, err := e.series.StoryCount(ctx, *story.SeriesID)
		if err != nil {
			return errors.WithStack(err)
		}
		if count == 1 {
			if err := e.series.DeleteSeries(ctx, *story.SeriesID); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	if err := e.stories.DeleteAnnotation(ctx, storyID); err != nil {
		return errors.WithStack(err)
	}
	if err := e.stories.DeleteIfdbAnnotation(ctx, storyID); err != nil {
		return errors.WithStack(err)
	}
	if err := e.releases.DeleteReleasesForStory(ctx, storyID); err != nil {
		return errors.WithStack(err)
	}
	if err := e.stories.DeleteCover(ctx, storyID); err != nil {
		return errors.WithStack(err)
	}
	if err := e.stories.DeleteResourcesForStory(ctx, storyID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(e.stories.DeleteStory(ctx, storyID))
}

// MergeStory folds the source story into the target: releases and
// resources move over, then the source is removed with the full cascade
// (which by then only covers the source's own annotations, cover, and
// author/genre links). The caller is responsible for re-pointing the
// target's default release afterwards.
func (e *Engine) MergeStory(ctx context.Context, sourceID, targetID int) error {
	if _, err := e.stories.RetrieveStory(ctx, stories.RetrieveStoryOptions{ID: &targetID}); err != nil {
		return errors.WithStack(err)
	}

	if err := e.releases.ReassignReleases(ctx, sourceID, targetID); err != nil {
		return errors.WithStack(err)
	}
	if err := e.stories.ReassignResources(ctx, sourceID, targetID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(e.RemoveStory(ctx, sourceID))
}
