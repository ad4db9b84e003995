package catalog

import (
	"context"
	"strconv"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/grotesquebooks/grotesque/pkg/stories"
	"github.com/grotesquebooks/grotesque/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ExportIfiction builds one interchange document for a set of stories. A
// story whose export fails is skipped with a warning and the export
// continues; partial success is the designed behavior.
func (e *Engine) ExportIfiction(ctx context.Context, storyIDs []int) (*ifiction.Document, error) {
	doc := ifiction.NewDocument()

	for _, storyID := range storyIDs {
		node, err := e.exportStory(ctx, storyID)
		if err != nil {
			e.log.Err(err).Warn("skipping story in export", logger.Data{"story_id": storyID})
			continue
		}
		doc.Stories = append(doc.Stories, node)
	}

	return doc, nil
}

func (e *Engine) exportStory(ctx context.Context, storyID int) (*ifiction.StoryNode, error) {
	story, err := e.stories.RetrieveStory(ctx, stories.RetrieveStoryOptions{ID: &storyID})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	node := &ifiction.StoryNode{}
	node.Identification = e.exportIdentification(story)

	bib, err := e.exportBibliographic(ctx, story)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	node.Bibliographic = bib

	resources, err := e.stories.ListResources(ctx, storyID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, resource := range resources {
		node.Resources = append(node.Resources, ifiction.Auxiliary{
			LeafName:    resource.URI,
			Description: deref(resource.Description),
		})
	}

	storyAuthors, err := e.authors.ListAuthorsForStory(ctx, storyID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, author := range storyAuthors {
		if author.URL == nil && author.Email == nil {
			continue
		}
		node.Contacts = append(node.Contacts, ifiction.Contact{
			URL:         deref(author.URL),
			AuthorEmail: deref(author.Email),
		})
	}

	cover, err := e.stories.RetrieveCover(ctx, storyID)
	if err != nil && !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return nil, errors.WithStack(err)
	}
	if cover != nil {
		format := cover.Format
		if format == "jpeg" {
			format = "jpg"
		}
		node.Cover = &ifiction.Cover{
			Format:      format,
			Height:      cover.Height,
			Width:       cover.Width,
			Description: deref(cover.Description),
		}
	}

	// Releases without a known release date stay out of the releases block
	// but still appear in the identification IFID list.
	for _, release := range story.Releases {
		if release.ReleaseDate == nil {
			continue
		}
		node.Releases = append(node.Releases, ifiction.Release{
			ReleaseDate:     *release.ReleaseDate,
			Version:         deref(release.Version),
			Compiler:        deref(release.Compiler),
			CompilerVersion: deref(release.CompilerVersion),
		})
	}

	annotation, err := e.exportAnnotation(ctx, story)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	node.Annotation = annotation

	node.Colophon = &ifiction.Colophon{
		Generator:        "Grotesque",
		GeneratorVersion: version.Version,
		Originated:       time.Now().Format("2006-01-02"),
	}

	return node, nil
}

// exportIdentification lists every release IFID, the default release's
// first, with that release's unwrapped format name.
func (e *Engine) exportIdentification(story *models.Story) *ifiction.Identification {
	ident := &ifiction.Identification{Bafn: deref(story.Bafn)}

	if story.DefaultRelease != nil {
		ident.IFIDs = append(ident.IFIDs, *story.DefaultRelease)
	}
	for _, release := range story.Releases {
		if story.DefaultRelease != nil && release.IFID == *story.DefaultRelease {
			if release.Format != nil {
				ident.Format = models.UnwrapFormatName(release.Format.Name)
			}
			continue
		}
		ident.IFIDs = append(ident.IFIDs, release.IFID)
	}
	if ident.Format == "" && len(story.Releases) > 0 && story.Releases[0].Format != nil {
		ident.Format = models.UnwrapFormatName(story.Releases[0].Format.Name)
	}

	return ident
}

func (e *Engine) exportBibliographic(ctx context.Context, story *models.Story) (*ifiction.Bibliographic, error) {
	bib := &ifiction.Bibliographic{
		Title:          story.Title,
		Language:       deref(story.Language),
		Headline:       deref(story.Headline),
		FirstPublished: deref(story.FirstPublished),
		Description:    deref(story.Description),
		SeriesNumber:   deref(story.SeriesNumber),
	}

	if story.Group != nil {
		bib.Group = story.Group.Name
	}
	if story.Series != nil {
		bib.Series = story.Series.Name
	}
	if story.Forgiveness != nil {
		bib.Forgiveness = story.Forgiveness.Description
	}

	storyAuthors, err := e.authors.ListAuthorsForStory(ctx, story.ID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	names := make([]string, 0, len(storyAuthors))
	for _, author := range storyAuthors {
		names = append(names, author.Name)
	}
	bib.Author = ifiction.JoinAuthors(names)

	storyGenres, err := e.genres.ListGenresForStory(ctx, story.ID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	genreNames := make([]string, 0, len(storyGenres))
	for _, genre := range storyGenres {
		genreNames = append(genreNames, genre.Name)
	}
	bib.Genre = ifiction.JoinGenres(genreNames)

	return bib, nil
}

func (e *Engine) exportAnnotation(ctx context.Context, story *models.Story) (*ifiction.Annotation, error) {
	annotation := &ifiction.Annotation{}

	local, err := e.stories.RetrieveAnnotation(ctx, story.ID)
	if err != nil && !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return nil, errors.WithStack(err)
	}

	grotesque := &ifiction.GrotesqueAnnotation{}
	if local != nil {
		grotesque.Rating = strconv.FormatFloat(local.Rating, 'g', -1, 64)
		grotesque.Notes = local.Notes
		grotesque.Played = strconv.FormatBool(local.Played)
		grotesque.Imported = deref(local.Imported)
	}
	for _, release := range story.Releases {
		if release.URI == nil {
			continue
		}
		grotesque.StoryFiles = append(grotesque.StoryFiles, ifiction.StoryFile{
			IFID: release.IFID,
			URI:  *release.URI,
		})
	}
	annotation.Grotesque = grotesque

	remote, err := e.stories.RetrieveIfdbAnnotation(ctx, story.ID)
	if err != nil && !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return nil, errors.WithStack(err)
	}
	if remote != nil {
		annotation.IFDB = &ifiction.IFDBAnnotation{
			TUID:           deref(remote.TUID),
			Link:           deref(remote.URL),
			CoverURLField:  deref(remote.CoverURL),
			AvgRating:      strconv.FormatFloat(remote.AvgRating, 'g', -1, 64),
			StarRating:     strconv.FormatFloat(remote.StarRating, 'g', -1, 64),
			RatingCountAvg: strconv.Itoa(remote.RatingCountAvg),
			RatingCountTot: strconv.Itoa(remote.RatingCountTot),
			Updated:        deref(remote.Updated),
		}
	}

	return annotation, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
