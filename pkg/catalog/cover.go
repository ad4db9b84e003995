package catalog

import (
	"context"
	"strings"

	"github.com/grotesquebooks/grotesque/pkg/babel"
	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/ifdb"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// resolveCover runs the ordered fallback chain for a story's cover art:
// remote fetch, then extraction from the file, then a byteless stub from
// the document's cover section. The first step that produces something
// usable wins; total failure leaves any existing cover untouched. Returns
// whether a cover was stored.
func (e *Engine) resolveCover(ctx context.Context, storyID int, doc *ifiction.StoryNode, path string, fetchRemote bool) (bool, error) {
	existing, err := e.stories.RetrieveCover(ctx, storyID)
	if err != nil && !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return false, errors.WithStack(err)
	}

	if fetchRemote {
		stored, err := e.fetchRemoteCover(ctx, storyID, doc)
		if err != nil {
			return false, errors.WithStack(err)
		}
		if stored {
			return true, nil
		}
	}

	if path != "" {
		stored, err := e.extractCover(ctx, storyID, path)
		if err != nil {
			return false, errors.WithStack(err)
		}
		if stored {
			return true, nil
		}
	}

	return e.stubCover(ctx, storyID, doc, existing)
}

// fetchRemoteCover pulls cover art bytes from the remote source when the
// document's annotation names a cover URL or remote id. Bytes that aren't
// jpeg, png, or gif count as a fetch failure.
func (e *Engine) fetchRemoteCover(ctx context.Context, storyID int, doc *ifiction.StoryNode) (bool, error) {
	if doc == nil || doc.Annotation == nil || doc.Annotation.IFDB == nil {
		return false, nil
	}
	block := doc.Annotation.IFDB

	opts := ifdb.CoverOptions{}
	switch {
	case strings.TrimSpace(block.CoverURL()) != "":
		opts.URL = strings.TrimSpace(block.CoverURL())
	case strings.TrimSpace(block.TUID) != "":
		opts.TUID = strings.TrimSpace(block.TUID)
	default:
		return false, nil
	}

	data, err := e.remote.FetchCover(ctx, opts)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if data == nil {
		return false, nil
	}

	info, err := babel.SniffImage(data)
	if err != nil {
		e.log.Err(err).Warn("unsupported remote cover image", logger.Data{"story_id": storyID})
		return false, nil
	}

	err = e.stories.UpsertCover(ctx, &models.Cover{
		StoryID: storyID,
		Format:  info.Format,
		Width:   info.Width,
		Height:  info.Height,
		Data:    data,
	})
	if err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}

func (e *Engine) extractCover(ctx context.Context, storyID int, path string) (bool, error) {
	cover, err := e.classifier.Cover(path)
	if err != nil || cover == nil {
		return false, nil
	}

	err = e.stories.UpsertCover(ctx, &models.Cover{
		StoryID:     storyID,
		Format:      cover.Format,
		Width:       cover.Width,
		Height:      cover.Height,
		Description: cover.Description,
		Data:        cover.Data,
	})
	if err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}

// stubCover records descriptive cover metadata with no bytes. It never
// replaces a cover that already holds real image data.
func (e *Engine) stubCover(ctx context.Context, storyID int, doc *ifiction.StoryNode, existing *models.Cover) (bool, error) {
	if doc == nil || doc.Cover == nil {
		return false, nil
	}
	if existing != nil && len(existing.Data) > 0 {
		e.log.Warn("refusing to replace existing cover data with stub metadata", logger.Data{"story_id": storyID})
		return false, nil
	}

	format := strings.TrimSpace(doc.Cover.Format)
	if format == "jpg" {
		format = "jpeg"
	}
	err := e.stories.UpsertCover(ctx, &models.Cover{
		StoryID:     storyID,
		Format:      format,
		Width:       doc.Cover.Width,
		Height:      doc.Cover.Height,
		Description: trimmed(doc.Cover.Description),
	})
	if err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}
