package catalog

import (
	"context"
	"testing"

	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importNode(title string, storyFiles ...ifiction.StoryFile) *ifiction.StoryNode {
	node := bibNode(title, "Graham Nelson", "CURSES-IFID")
	node.Identification.Format = "blorbed zcode"
	if len(storyFiles) > 0 {
		node.Annotation = &ifiction.Annotation{
			Grotesque: &ifiction.GrotesqueAnnotation{StoryFiles: storyFiles},
		}
	}
	return node
}

func TestImportStoryWithStoryFiles(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	path := writeStoryFile(t, t.TempDir(), "curses.zblorb")
	node := importNode("Curses",
		ifiction.StoryFile{IFID: "CURSES-IFID", URI: path},
		ifiction.StoryFile{IFID: "CURSES-ALT-IFID", URI: path},
	)

	result, err := te.ImportStory(ctx, node, ImportOptions{})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.False(t, result.NeedsReview)

	story := &models.Story{}
	require.NoError(t, te.db.NewSelect().Model(story).Where("s.id = ?", result.StoryID).Scan(ctx))
	assert.Equal(t, "Curses", story.Title)
	// The first story file's IFID becomes the default release.
	require.NotNil(t, story.DefaultRelease)
	assert.Equal(t, "CURSES-IFID", *story.DefaultRelease)

	assert.Equal(t, 2, countRows(t, te, (*models.Release)(nil)))

	release := &models.Release{}
	require.NoError(t, te.db.NewSelect().Model(release).Where("r.ifid = ?", "CURSES-IFID").Scan(ctx))
	require.NotNil(t, release.URI)
	assert.Equal(t, resolveRealPath(path), *release.URI)

	// The declared format is recorded as-is, wrapper included, without
	// touching the classifier.
	format := &models.Format{}
	require.NoError(t, te.db.NewSelect().Model(format).Where("fmt.id = ?", *release.FormatID).Scan(ctx))
	assert.Equal(t, "blorbed zcode", format.Name)

	author := &models.Author{}
	require.NoError(t, te.db.NewSelect().Model(author).Where("a.name = ?", "Graham Nelson").Scan(ctx))
}

func TestImportStoryMetadataOnly(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	result, err := te.ImportStory(ctx, importNode("Curses"), ImportOptions{})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.True(t, result.NeedsReview)

	// The document's own IFID still gets a bare release.
	release := &models.Release{}
	require.NoError(t, te.db.NewSelect().Model(release).Where("r.ifid = ?", "CURSES-IFID").Scan(ctx))
	assert.Nil(t, release.URI)
}

func TestImportStoryMissingTitleFails(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)

	node := importNode("Curses")
	node.Bibliographic = nil

	_, err := te.ImportStory(context.Background(), node, ImportOptions{})
	require.Error(t, err)
	assert.Zero(t, countRows(t, te, (*models.Story)(nil)))
}

func TestImportStoryUndeclaredFormatFails(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)

	path := writeStoryFile(t, t.TempDir(), "curses.zblorb")
	node := importNode("Curses", ifiction.StoryFile{IFID: "CURSES-IFID", URI: path})
	node.Identification.Format = ""

	_, err := te.ImportStory(context.Background(), node, ImportOptions{})
	require.Error(t, err)
}

func TestImportIfictionIsolatesFailures(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	broken := importNode("broken")
	broken.Bibliographic = nil

	doc := ifiction.NewDocument()
	doc.Stories = []*ifiction.StoryNode{broken, importNode("Curses")}

	results, errs := te.ImportIfiction(ctx, doc, ImportOptions{})
	require.Len(t, results, 2)
	require.Len(t, errs, 2)

	assert.Nil(t, results[0])
	assert.Error(t, errs[0])

	require.NotNil(t, results[1])
	assert.NoError(t, errs[1])
	assert.Equal(t, 1, countRows(t, te, (*models.Story)(nil)))
}

func TestImportStoryDeduplicatesByTitle(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	first, err := te.ImportStory(ctx, importNode("Curses"), ImportOptions{})
	require.NoError(t, err)

	second, err := te.ImportStory(ctx, importNode("Curses"), ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.StoryID, second.StoryID)
	assert.Equal(t, 1, countRows(t, te, (*models.Story)(nil)))
}
