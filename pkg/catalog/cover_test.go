package catalog

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/grotesquebooks/grotesque/pkg/babel"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func coverNode() *ifiction.StoryNode {
	return &ifiction.StoryNode{
		Annotation: &ifiction.Annotation{
			IFDB: &ifiction.IFDBAnnotation{
				TUID:          "tuid-1",
				CoverURLField: "http://ifdb.example/cover.png",
			},
		},
	}
}

func TestResolveCoverFetchesRemote(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	story := seedStory(t, te, "Curses")
	data := pngBytes(t, 2, 3)
	te.remote.covers["http://ifdb.example/cover.png"] = data

	stored, err := te.resolveCover(ctx, story.ID, coverNode(), "", true)
	require.NoError(t, err)
	assert.True(t, stored)

	cover, err := te.Engine.stories.RetrieveCover(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, "png", cover.Format)
	assert.Equal(t, 2, cover.Width)
	assert.Equal(t, 3, cover.Height)
	assert.Equal(t, data, cover.Data)
}

func TestResolveCoverFallsBackToEmbedded(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	story := seedStory(t, te, "Curses")
	data := pngBytes(t, 4, 4)
	te.classifier.covers["/library/curses.blb"] = &babel.CoverImage{
		Data:   data,
		Width:  4,
		Height: 4,
		Format: "png",
	}

	// Remote fetching is on but the remote has nothing.
	stored, err := te.resolveCover(ctx, story.ID, coverNode(), "/library/curses.blb", true)
	require.NoError(t, err)
	assert.True(t, stored)

	cover, err := te.Engine.stories.RetrieveCover(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, "png", cover.Format)
	assert.Equal(t, data, cover.Data)
}

func TestResolveCoverStubFromDocument(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	story := seedStory(t, te, "Curses")
	node := &ifiction.StoryNode{
		Cover: &ifiction.Cover{Format: "jpg", Width: 120, Height: 160, Description: "box art"},
	}

	stored, err := te.resolveCover(ctx, story.ID, node, "", false)
	require.NoError(t, err)
	assert.True(t, stored)

	cover, err := te.Engine.stories.RetrieveCover(ctx, story.ID)
	require.NoError(t, err)
	// The legacy "jpg" spelling normalizes on the way in.
	assert.Equal(t, "jpeg", cover.Format)
	assert.Equal(t, 120, cover.Width)
	assert.Empty(t, cover.Data)
	require.NotNil(t, cover.Description)
	assert.Equal(t, "box art", *cover.Description)
}

func TestResolveCoverStubNeverReplacesRealData(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	story := seedStory(t, te, "Curses")
	data := pngBytes(t, 2, 2)
	require.NoError(t, te.Engine.stories.UpsertCover(ctx, &models.Cover{
		StoryID: story.ID,
		Format:  "png",
		Width:   2,
		Height:  2,
		Data:    data,
	}))

	node := &ifiction.StoryNode{
		Cover: &ifiction.Cover{Format: "jpg", Width: 120, Height: 160},
	}
	stored, err := te.resolveCover(ctx, story.ID, node, "", false)
	require.NoError(t, err)
	assert.False(t, stored)

	cover, err := te.Engine.stories.RetrieveCover(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, "png", cover.Format)
	assert.Equal(t, data, cover.Data)
}

func TestResolveCoverNothingAvailable(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	story := seedStory(t, te, "Curses")

	stored, err := te.resolveCover(ctx, story.ID, &ifiction.StoryNode{}, "", true)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Zero(t, countRows(t, te, (*models.Cover)(nil)))
}

func TestResolveCoverRejectsNonImageBytes(t *testing.T) {
	t.Parallel()
	te := setupEngine(t)
	ctx := context.Background()

	story := seedStory(t, te, "Curses")
	te.remote.covers["http://ifdb.example/cover.png"] = []byte("<html>not an image</html>")

	stored, err := te.resolveCover(ctx, story.ID, coverNode(), "", true)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Zero(t, countRows(t, te, (*models.Cover)(nil)))
}
