package releases

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

func createStory(t *testing.T, db *bun.DB, title string) *models.Story {
	t.Helper()
	story := &models.Story{Title: title}
	_, err := db.NewInsert().Model(story).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return story
}

func TestCreateAndRetrieveRelease(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	story := createStory(t, db, "Zork I")
	release := &models.Release{
		IFID:    "ZCODE-88-840726-A129",
		StoryID: story.ID,
		URI:     pointerutil.String("/library/zork1.z5"),
	}
	require.NoError(t, svc.CreateRelease(ctx, release))

	got, err := svc.RetrieveRelease(ctx, RetrieveReleaseOptions{IFID: pointerutil.String("ZCODE-88-840726-A129")})
	require.NoError(t, err)
	assert.Equal(t, story.ID, got.StoryID)

	got, err = svc.RetrieveRelease(ctx, RetrieveReleaseOptions{URI: pointerutil.String("/library/zork1.z5")})
	require.NoError(t, err)
	assert.Equal(t, "ZCODE-88-840726-A129", got.IFID)

	_, err = svc.RetrieveRelease(ctx, RetrieveReleaseOptions{IFID: pointerutil.String("MISSING")})
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))
}

func TestUpdateReleaseURI(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	story := createStory(t, db, "Zork I")
	release := &models.Release{IFID: "IFID-1", StoryID: story.ID, URI: pointerutil.String("/old/path.z5")}
	require.NoError(t, svc.CreateRelease(ctx, release))

	release.URI = pointerutil.String("/new/path.z5")
	require.NoError(t, svc.UpdateRelease(ctx, release, UpdateReleaseOptions{Columns: []string{"uri"}}))

	got, err := svc.RetrieveRelease(ctx, RetrieveReleaseOptions{IFID: pointerutil.String("IFID-1")})
	require.NoError(t, err)
	assert.Equal(t, "/new/path.z5", *got.URI)
}

func TestReassignReleases(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	from := createStory(t, db, "Zork")
	to := createStory(t, db, "Zork I")
	require.NoError(t, svc.CreateRelease(ctx, &models.Release{IFID: "IFID-1", StoryID: from.ID}))
	require.NoError(t, svc.CreateRelease(ctx, &models.Release{IFID: "IFID-2", StoryID: from.ID}))
	require.NoError(t, svc.CreateRelease(ctx, &models.Release{IFID: "IFID-3", StoryID: to.ID}))

	require.NoError(t, svc.ReassignReleases(ctx, from.ID, to.ID))

	moved, err := svc.ListReleases(ctx, ListReleasesOptions{StoryID: &to.ID})
	require.NoError(t, err)
	assert.Len(t, moved, 3)

	left, err := svc.ListReleases(ctx, ListReleasesOptions{StoryID: &from.ID})
	require.NoError(t, err)
	assert.Empty(t, left)
}
