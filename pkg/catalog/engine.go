// Package catalog is the cataloging engine: the add/merge/remove/import/
// export lifecycle operations that keep the library's relational data
// consistent. It consumes the format resolver and the per-entity store
// services and owns all cross-entity policy (deduplication, cascades,
// cover resolution order).
package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/authors"
	"github.com/grotesquebooks/grotesque/pkg/babel"
	"github.com/grotesquebooks/grotesque/pkg/config"
	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/formats"
	"github.com/grotesquebooks/grotesque/pkg/genres"
	"github.com/grotesquebooks/grotesque/pkg/groups"
	"github.com/grotesquebooks/grotesque/pkg/ifdb"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/grotesquebooks/grotesque/pkg/releases"
	"github.com/grotesquebooks/grotesque/pkg/series"
	"github.com/grotesquebooks/grotesque/pkg/stars"
	"github.com/grotesquebooks/grotesque/pkg/stories"
	"github.com/grotesquebooks/grotesque/pkg/tags"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// Remote is the remote metadata source boundary. Both methods return nil
// results for "not found" and for network failure; the engine does not
// distinguish them.
type Remote interface {
	FetchMetadata(ctx context.Context, opts ifdb.FetchOptions) (*ifiction.StoryNode, error)
	FetchCover(ctx context.Context, opts ifdb.CoverOptions) ([]byte, error)
}

type Engine struct {
	cfg        *config.Config
	classifier babel.Classifier
	remote     Remote
	stories    *stories.Service
	releases   *releases.Service
	formats    *formats.Service
	authors    *authors.Service
	genres     *genres.Service
	groups     *groups.Service
	series     *series.Service
	tags       *tags.Service
	log        logger.Logger
}

func New(db *bun.DB, cfg *config.Config, classifier babel.Classifier, remote Remote) *Engine {
	return &Engine{
		cfg:        cfg,
		classifier: classifier,
		remote:     remote,
		stories:    stories.NewService(db),
		releases:   releases.NewService(db),
		formats:    formats.NewService(db),
		authors:    authors.NewService(db),
		genres:     genres.NewService(db),
		groups:     groups.NewService(db),
		series:     series.NewService(db),
		tags:       tags.NewService(db),
		log:        logger.New(),
	}
}

type AddOptions struct {
	FetchMetadata bool
	FetchCoverArt bool
}

type AddResult struct {
	StoryID int `json:"story_id"`
	// Created is false when the add was a no-op (file already cataloged, or
	// every IFID already known and located).
	Created bool `json:"created"`
	// NeedsReview marks the stub-creation path: no metadata could be
	// obtained and the story holds only the file's base name.
	NeedsReview bool `json:"needs_review"`
}

// AddStoryFromFile catalogs one story file. Depending on what is already
// known it creates a new story with releases, attaches new releases to an
// existing story, or does nothing at all.
func (e *Engine) AddStoryFromFile(ctx context.Context, path string, opts AddOptions) (*AddResult, error) {
	realPath := resolveRealPath(path)

	// Already cataloged under this path: nothing to do.
	existing, err := e.releases.RetrieveRelease(ctx, releases.RetrieveReleaseOptions{URI: &realPath})
	if err == nil {
		return &AddResult{StoryID: existing.StoryID}, nil
	}
	if !errcodes.HasCode(err, errcodes.CodeNotFound) {
		return nil, errors.WithStack(err)
	}

	// Classification failure aborts the whole operation; the caller decides
	// whether to skip the file or stop the batch.
	res, err := babel.Resolve(e.classifier, path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	format, err := e.findOrCreateFormat(ctx, res.RecordName(), res.Format)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	storyID, newIFIDs, err := e.partitionIFIDs(ctx, res.IFIDs, realPath, format.ID, path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(newIFIDs) == 0 {
		// Every IFID is already known and correctly located.
		return &AddResult{StoryID: storyID}, nil
	}

	needsReview := false
	if storyID == 0 {
		// An entirely new work: find a metadata document, or fall back to a
		// stub the user has to fill in by hand.
		doc, source, usedIFID := e.findMetadata(ctx, path, res.IFIDs, opts.FetchMetadata)
		if doc == nil {
			storyID, err = e.createStub(ctx, path)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			needsReview = true
		} else {
			storyID, err = e.ingestDocument(ctx, usedIFID, doc, source)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			if _, err := e.resolveCover(ctx, storyID, doc, path, opts.FetchCoverArt); err != nil {
				return nil, errors.WithStack(err)
			}
		}
	}

	for _, ifid := range newIFIDs {
		err = e.upsertRelease(ctx, storyID, ifid, &format.ID, &realPath)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	// The most recently added release wins as default.
	story := &models.Story{ID: storyID, DefaultRelease: &newIFIDs[0]}
	err = e.stories.UpdateStory(ctx, story, stories.UpdateStoryOptions{Columns: []string{"default_release"}})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &AddResult{StoryID: storyID, Created: true, NeedsReview: needsReview}, nil
}

// partitionIFIDs splits a file's IFIDs into already-known and new, updating
// known releases whose stored location differs from the file being scanned.
// The returned story id is 0 when no IFID belongs to an existing story.
func (e *Engine) partitionIFIDs(ctx context.Context, ifids []string, realPath string, formatID int, path string) (int, []string, error) {
	newIFIDs := []string{}
	storyIDs := map[int]struct{}{}
	storyID := 0

	for _, ifid := range ifids {
		release, err := e.releases.RetrieveRelease(ctx, releases.RetrieveReleaseOptions{IFID: &ifid})
		if errcodes.HasCode(err, errcodes.CodeNotFound) {
			newIFIDs = append(newIFIDs, ifid)
			continue
		}
		if err != nil {
			return 0, nil, errors.WithStack(err)
		}

		storyIDs[release.StoryID] = struct{}{}
		storyID = release.StoryID

		// The most recently scanned file is authoritative for location.
		if release.URI == nil || *release.URI != realPath {
			release.URI = &realPath
			release.FormatID = &formatID
			err = e.releases.UpdateRelease(ctx, release, releases.UpdateReleaseOptions{Columns: []string{"uri", "format_id"}})
			if err != nil {
				return 0, nil, errors.WithStack(err)
			}
		}
	}

	if len(storyIDs) > 1 {
		return 0, nil, errcodes.MultiStoryIFIDConflict(path)
	}

	return storyID, newIFIDs, nil
}

// findMetadata walks the acquisition ladder: the remote source per IFID
// when enabled, then metadata embedded in the file itself. A nil document
// means the stub path.
func (e *Engine) findMetadata(ctx context.Context, path string, ifids []string, fetchRemote bool) (*ifiction.StoryNode, string, string) {
	if fetchRemote {
		for _, ifid := range ifids {
			story, err := e.remote.FetchMetadata(ctx, ifdb.FetchOptions{IFID: ifid})
			if err != nil {
				e.log.Err(err).Warn("remote metadata fetch failed")
				break
			}
			if story != nil {
				return story, ifiction.SourceIFDB, ifid
			}
		}
	}

	usedIFID := ""
	if len(ifids) > 0 {
		usedIFID = ifids[0]
	}

	data, err := e.classifier.Metadata(path)
	if err != nil || len(data) == 0 {
		return nil, "", usedIFID
	}
	doc, err := ifiction.Parse(data)
	if err != nil {
		e.log.Err(err).Warn("malformed embedded metadata")
		return nil, "", usedIFID
	}
	if len(doc.Stories) == 0 {
		return nil, "", usedIFID
	}

	return doc.Stories[0], ifiction.SourceExtract, usedIFID
}

// createStub records a story with only the file's base name as its title,
// plus a default annotation.
func (e *Engine) createStub(ctx context.Context, path string) (int, error) {
	story := &models.Story{Title: filepath.Base(path)}
	if err := e.stories.CreateStory(ctx, story); err != nil {
		return 0, errors.WithStack(err)
	}
	if err := e.createDefaultAnnotation(ctx, story.ID); err != nil {
		return 0, errors.WithStack(err)
	}
	return story.ID, nil
}

func (e *Engine) createDefaultAnnotation(ctx context.Context, storyID int) error {
	glyph, err := stars.Render(0)
	if err != nil {
		return errors.WithStack(err)
	}
	imported := time.Now().Format("2006-01-02")
	return errors.WithStack(e.stories.UpsertAnnotation(ctx, &models.Annotation{
		StoryID:   storyID,
		RatingTxt: glyph,
		Imported:  &imported,
	}))
}

// findOrCreateFormat records a format under its full name (wrapper
// designation included) while seeding the launch command from the
// canonical name.
func (e *Engine) findOrCreateFormat(ctx context.Context, name, launchName string) (*models.Format, error) {
	var command *string
	if c := e.cfg.User.Launcher(launchName); c != "" {
		command = &c
	}
	format, err := e.formats.FindOrCreateFormat(ctx, name, command)
	return format, errors.WithStack(err)
}

// upsertRelease creates the release, or repoints an existing one at the
// given location and format.
func (e *Engine) upsertRelease(ctx context.Context, storyID int, ifid string, formatID *int, uri *string) error {
	release, err := e.releases.RetrieveRelease(ctx, releases.RetrieveReleaseOptions{IFID: &ifid})
	if errcodes.HasCode(err, errcodes.CodeNotFound) {
		return errors.WithStack(e.releases.CreateRelease(ctx, &models.Release{
			IFID:     ifid,
			StoryID:  storyID,
			URI:      uri,
			FormatID: formatID,
		}))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	columns := []string{"uri"}
	release.URI = uri
	if formatID != nil {
		release.FormatID = formatID
		columns = append(columns, "format_id")
	}
	return errors.WithStack(e.releases.UpdateRelease(ctx, release, releases.UpdateReleaseOptions{Columns: columns}))
}

// resolveRealPath resolves symlinks so that the same file always catalogs
// under one canonical location. A file that can't be resolved (not yet
// existing, dangling link) keeps its cleaned path.
func resolveRealPath(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return resolved
}
