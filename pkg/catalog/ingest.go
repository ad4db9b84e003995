package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/grotesquebooks/grotesque/pkg/releases"
	"github.com/grotesquebooks/grotesque/pkg/stars"
	"github.com/grotesquebooks/grotesque/pkg/stories"
	"github.com/pkg/errors"
)

// ingestDocument creates a story from an interchange document, reconciling
// authors, genres, group, series, and annotations against the store.
// Title-based deduplication is the primary merge mechanism: when a story
// with the exact same title already exists, its id is returned and nothing
// is ingested. fileIFID is the IFID of the file currently being processed;
// every other IFID the document claims becomes a bare release.
func (e *Engine) ingestDocument(ctx context.Context, fileIFID string, doc *ifiction.StoryNode, source string) (int, error) {
	title := doc.Title()
	if title == "" {
		return 0, errcodes.ValidationError("Story has no title.")
	}

	existing, err := e.stories.RetrieveStory(ctx, stories.RetrieveStoryOptions{Title: &title})
	if err == nil {
		return existing.ID, nil
	}
	if !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return 0, errors.WithStack(err)
	}

	story, err := e.buildStory(ctx, title, doc, source)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if err := e.stories.CreateStory(ctx, story); err != nil {
		return 0, errors.WithStack(err)
	}

	bib := doc.Bibliographic
	if bib.Author != "" {
		err = e.authors.SetStoryAuthors(ctx, story.ID, ifiction.ParseAuthors(bib.Author))
		if err != nil {
			return 0, errors.WithStack(err)
		}
	}
	if bib.Genre != "" {
		err = e.genres.SetStoryGenres(ctx, story.ID, ifiction.ParseGenres(bib.Genre))
		if err != nil {
			return 0, errors.WithStack(err)
		}
	}

	// Other releases of this work the document knows about but the current
	// scan hasn't located a file for.
	if doc.Identification != nil {
		for _, ifid := range doc.Identification.IFIDs {
			if ifid == fileIFID {
				continue
			}
			_, err := e.releases.RetrieveRelease(ctx, releases.RetrieveReleaseOptions{IFID: &ifid})
			if err == nil {
				continue
			}
			if !errcodes.HasCode(err, errcodes.CodeNotFound) {
				return 0, errors.WithStack(err)
			}
			err = e.releases.CreateRelease(ctx, &models.Release{IFID: ifid, StoryID: story.ID})
			if err != nil {
				return 0, errors.WithStack(err)
			}
		}
	}

	if doc.Annotation != nil {
		if err := e.ingestAnnotation(ctx, story.ID, doc.Annotation.Grotesque); err != nil {
			return 0, errors.WithStack(err)
		}
		if doc.Annotation.IFDB != nil {
			if err := e.ingestIfdbAnnotation(ctx, story.ID, doc.Annotation.IFDB); err != nil {
				return 0, errors.WithStack(err)
			}
		}
	}

	return story.ID, nil
}

func (e *Engine) buildStory(ctx context.Context, title string, doc *ifiction.StoryNode, source string) (*models.Story, error) {
	bib := doc.Bibliographic
	story := &models.Story{
		Title:        title,
		Language:     trimmed(bib.Language),
		Headline:     trimmed(bib.Headline),
		Description:  trimmed(bib.Description),
		SeriesNumber: trimmed(bib.SeriesNumber),
	}

	// A date that won't normalize is stored empty rather than failing the
	// whole ingest.
	if date, err := ifiction.NormalizeDate(bib.FirstPublished); err == nil && date != "" {
		story.FirstPublished = &date
	}

	forgiveness := models.ForgivenessUnknown
	for id, description := range models.ForgivenessDescriptions {
		if description == strings.TrimSpace(bib.Forgiveness) {
			forgiveness = id + 1
			break
		}
	}
	story.ForgivenessID = &forgiveness

	if name := strings.TrimSpace(bib.Group); name != "" {
		group, err := e.groups.FindOrCreateGroup(ctx, name)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		story.GroupID = &group.ID
	}
	if name := strings.TrimSpace(bib.Series); name != "" {
		sr, err := e.series.FindOrCreateSeries(ctx, name)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		story.SeriesID = &sr.ID
	}

	// Only remote documents carry a usable story URL in their contact
	// block; file-embedded contact data is author contact.
	if source == ifiction.SourceIFDB && len(doc.Contacts) > 0 {
		if url := strings.TrimSpace(doc.Contacts[0].URL); url != "" {
			story.URL = &url
		}
	}

	if doc.Identification != nil {
		story.Bafn = trimmed(doc.Identification.Bafn)
	}

	return story, nil
}

// ingestAnnotation records the local annotation. Every field defaults:
// rating to 0, played to false, import date to today. A nil block still
// produces the default annotation.
func (e *Engine) ingestAnnotation(ctx context.Context, storyID int, block *ifiction.GrotesqueAnnotation) error {
	rating := 0.0
	notes := ""
	played := false
	if block != nil {
		if r, err := strconv.ParseFloat(strings.TrimSpace(block.Rating), 64); err == nil {
			rating = r
		}
		notes = strings.TrimSpace(block.Notes)
		played = strings.EqualFold(strings.TrimSpace(block.Played), "true")
	}

	glyph, err := stars.Render(rating)
	if err != nil {
		// Out-of-range ratings degrade to unrated instead of aborting.
		rating = 0
		glyph = ""
	}

	imported := time.Now().Format("2006-01-02")
	return errors.WithStack(e.stories.UpsertAnnotation(ctx, &models.Annotation{
		StoryID:   storyID,
		Rating:    rating,
		RatingTxt: glyph,
		Notes:     notes,
		Played:    played,
		Imported:  &imported,
	}))
}

// ingestIfdbAnnotation records the remote-source annotation. Every numeric
// field is independently optional, defaulting to zero.
func (e *Engine) ingestIfdbAnnotation(ctx context.Context, storyID int, block *ifiction.IFDBAnnotation) error {
	annotation := &models.IfdbAnnotation{
		StoryID: storyID,
		TUID:    trimmed(block.TUID),
	}
	if url := strings.TrimSpace(block.StoryURL()); url != "" {
		annotation.URL = &url
	}
	if coverURL := strings.TrimSpace(block.CoverURL()); coverURL != "" {
		annotation.CoverURL = &coverURL
	}
	if avg, err := strconv.ParseFloat(strings.TrimSpace(block.AverageRatingValue()), 64); err == nil {
		annotation.AvgRating = avg
	}
	if star, err := strconv.ParseFloat(strings.TrimSpace(block.StarRating), 64); err == nil {
		annotation.StarRating = star
	}
	if glyph, err := stars.Render(annotation.StarRating); err == nil {
		annotation.StarRatingTxt = glyph
	}
	if count, err := strconv.Atoi(strings.TrimSpace(block.RatingCountAvg)); err == nil {
		annotation.RatingCountAvg = count
	}
	if count, err := strconv.Atoi(strings.TrimSpace(block.RatingCountTot)); err == nil {
		annotation.RatingCountTot = count
	}
	updated := time.Now().Format("2006-01-02")
	annotation.Updated = &updated

	return errors.WithStack(e.stories.UpsertIfdbAnnotation(ctx, annotation))
}

func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
