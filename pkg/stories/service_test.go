package stories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/migrations"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestCreateAndRetrieveStory(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	story := &models.Story{
		Title:    "Curses",
		Headline: pointerutil.String("An Interactive Diversion"),
	}
	require.NoError(t, svc.CreateStory(ctx, story))
	require.NotZero(t, story.ID)

	got, err := svc.RetrieveStory(ctx, RetrieveStoryOptions{ID: &story.ID})
	require.NoError(t, err)
	assert.Equal(t, "Curses", got.Title)
	require.NotNil(t, got.Headline)
	assert.Equal(t, "An Interactive Diversion", *got.Headline)
}

func TestRetrieveStoryByTitleIsCaseSensitive(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	require.NoError(t, svc.CreateStory(ctx, &models.Story{Title: "Curses"}))

	_, err := svc.RetrieveStory(ctx, RetrieveStoryOptions{Title: pointerutil.String("Curses")})
	require.NoError(t, err)

	_, err = svc.RetrieveStory(ctx, RetrieveStoryOptions{Title: pointerutil.String("curses")})
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))
}

func TestRetrieveStoryByTitleNoCase(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	require.NoError(t, svc.CreateStory(ctx, &models.Story{Title: "Curses"}))

	got, err := svc.RetrieveStory(ctx, RetrieveStoryOptions{TitleNoCase: pointerutil.String("CURSES")})
	require.NoError(t, err)
	assert.Equal(t, "Curses", got.Title)

	// Substrings don't match; this is a full-title lookup.
	_, err = svc.RetrieveStory(ctx, RetrieveStoryOptions{TitleNoCase: pointerutil.String("curse")})
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))
}

func TestUpdateStoryPartialColumns(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	story := &models.Story{Title: "Anchorhead", Headline: pointerutil.String("old")}
	require.NoError(t, svc.CreateStory(ctx, story))

	story.Headline = pointerutil.String("A Lovecraftian Tale")
	story.Title = "should not be written"
	require.NoError(t, svc.UpdateStory(ctx, story, UpdateStoryOptions{Columns: []string{"headline"}}))

	got, err := svc.RetrieveStory(ctx, RetrieveStoryOptions{ID: &story.ID})
	require.NoError(t, err)
	assert.Equal(t, "Anchorhead", got.Title)
	assert.Equal(t, "A Lovecraftian Tale", *got.Headline)
}

func TestListStoriesFilters(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	require.NoError(t, svc.CreateStory(ctx, &models.Story{Title: "Zork I"}))
	require.NoError(t, svc.CreateStory(ctx, &models.Story{Title: "Zork II"}))
	require.NoError(t, svc.CreateStory(ctx, &models.Story{Title: "Trinity"}))

	all, total, err := svc.ListStoriesWithTotal(ctx, ListStoriesOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 3, total)

	matched, err := svc.ListStories(ctx, ListStoriesOptions{Search: pointerutil.String("zork")})
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}

func TestUpsertCover(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	story := &models.Story{Title: "Photopia"}
	require.NoError(t, svc.CreateStory(ctx, story))

	cover := &models.Cover{StoryID: story.ID, Format: "png", Width: 10, Height: 20, Data: []byte{1, 2}}
	require.NoError(t, svc.UpsertCover(ctx, cover))
	firstID := cover.ID
	require.NotZero(t, firstID)

	replacement := &models.Cover{StoryID: story.ID, Format: "jpeg", Width: 30, Height: 40, Data: []byte{3}}
	require.NoError(t, svc.UpsertCover(ctx, replacement))
	assert.Equal(t, firstID, replacement.ID)

	got, err := svc.RetrieveCover(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", got.Format)
	assert.Equal(t, []byte{3}, got.Data)
}

func TestUpsertAnnotation(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	story := &models.Story{Title: "Spider and Web"}
	require.NoError(t, svc.CreateStory(ctx, story))

	_, err := svc.RetrieveAnnotation(ctx, story.ID)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))

	require.NoError(t, svc.UpsertAnnotation(ctx, &models.Annotation{
		StoryID: story.ID, Rating: 4.5, RatingTxt: "★★★★½", Played: true,
	}))
	require.NoError(t, svc.UpsertAnnotation(ctx, &models.Annotation{
		StoryID: story.ID, Rating: 3, RatingTxt: "★★★", Notes: "replay soon",
	}))

	got, err := svc.RetrieveAnnotation(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Rating)
	assert.Equal(t, "replay soon", got.Notes)
	assert.False(t, got.Played)
}

func TestResources(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	story := &models.Story{Title: "Jigsaw"}
	require.NoError(t, svc.CreateStory(ctx, story))
	other := &models.Story{Title: "Jigsaw (remaster)"}
	require.NoError(t, svc.CreateStory(ctx, other))

	require.NoError(t, svc.CreateResource(ctx, &models.Resource{
		StoryID: story.ID, URI: "/library/jigsaw-hints.txt", Description: pointerutil.String("Hints"),
	}))
	require.NoError(t, svc.CreateResource(ctx, &models.Resource{
		StoryID: story.ID, URI: "/library/jigsaw-map.png",
	}))

	resources, err := svc.ListResources(ctx, story.ID)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "/library/jigsaw-hints.txt", resources[0].URI)

	require.NoError(t, svc.ReassignResources(ctx, story.ID, other.ID))
	resources, err = svc.ListResources(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, resources, 2)

	require.NoError(t, svc.DeleteResourcesForStory(ctx, other.ID))
	resources, err = svc.ListResources(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, resources)
}
