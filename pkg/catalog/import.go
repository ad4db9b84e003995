package catalog

import (
	"context"
	"strings"

	"github.com/grotesquebooks/grotesque/pkg/babel"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/grotesquebooks/grotesque/pkg/stories"
	"github.com/pkg/errors"
)

type ImportOptions struct {
	FetchCoverArt bool
}

// ImportStory ingests one story node from an interchange document. When the
// node's annotation names associated story files, each becomes a located
// release whose format is resolved from the declared format string (the
// file may not be locally reachable, so the classifier is never consulted);
// a declared format that won't resolve is a hard error for this story only.
// A node with no file association at all still creates the story,
// metadata-only, flagged for review.
func (e *Engine) ImportStory(ctx context.Context, node *ifiction.StoryNode, opts ImportOptions) (*AddResult, error) {
	storyID, err := e.ingestDocument(ctx, "", node, ifiction.SourceImport)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var storyFiles []ifiction.StoryFile
	if node.Annotation != nil && node.Annotation.Grotesque != nil {
		storyFiles = node.Annotation.Grotesque.StoryFiles
	}
	if len(storyFiles) == 0 {
		e.log.Warn("no story files in document; importing metadata only")
		return &AddResult{StoryID: storyID, Created: true, NeedsReview: true}, nil
	}

	declaredFormat := ""
	if node.Identification != nil {
		declaredFormat = node.Identification.Format
	}
	launchName, err := babel.ResolveDeclared(declaredFormat)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	format, err := e.findOrCreateFormat(ctx, strings.TrimSpace(declaredFormat), launchName)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	gotCover := false
	for _, storyFile := range storyFiles {
		if !gotCover {
			stored, err := e.resolveCover(ctx, storyID, node, storyFile.URI, opts.FetchCoverArt)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			gotCover = stored
		}

		uri := resolveRealPath(storyFile.URI)
		err = e.upsertRelease(ctx, storyID, storyFile.IFID, &format.ID, &uri)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	story := &models.Story{ID: storyID, DefaultRelease: &storyFiles[0].IFID}
	err = e.stories.UpdateStory(ctx, story, stories.UpdateStoryOptions{Columns: []string{"default_release"}})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &AddResult{StoryID: storyID, Created: true}, nil
}

// ImportIfiction imports every story in a document, isolating per-story
// failures. The error list is index-aligned with the returned results; a
// failed story has a nil result and a non-nil error.
func (e *Engine) ImportIfiction(ctx context.Context, doc *ifiction.Document, opts ImportOptions) ([]*AddResult, []error) {
	results := make([]*AddResult, len(doc.Stories))
	errs := make([]error, len(doc.Stories))

	for i, node := range doc.Stories {
		result, err := e.ImportStory(ctx, node, opts)
		if err != nil {
			e.log.Err(err).Warn("skipping story in import")
			errs[i] = err
			continue
		}
		results[i] = result
	}

	return results, errs
}
