package authors

import (
	"context"
	"database/sql"
	"testing"

	"github.com/grotesquebooks/grotesque/pkg/migrations"
	"github.com/grotesquebooks/grotesque/pkg/models"
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

func TestFindOrCreateAuthorIsCaseSensitive(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	first, err := svc.FindOrCreateAuthor(ctx, "Graham Nelson")
	require.NoError(t, err)
	again, err := svc.FindOrCreateAuthor(ctx, "Graham Nelson")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	other, err := svc.FindOrCreateAuthor(ctx, "graham nelson")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestSetStoryAuthorsPreservesOrder(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	story := createStory(t, db, "Zork I")
	require.NoError(t, svc.SetStoryAuthors(ctx, story.ID, []string{"Marc Blank", "Dave Lebling"}))

	got, err := svc.ListAuthorsForStory(ctx, story.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Marc Blank", got[0].Name)
	assert.Equal(t, "Dave Lebling", got[1].Name)
}

func TestRemoveStoryLinksPrunesOrphans(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	zork := createStory(t, db, "Zork I")
	enchanter := createStory(t, db, "Enchanter")
	require.NoError(t, svc.SetStoryAuthors(ctx, zork.ID, []string{"Marc Blank", "Dave Lebling"}))
	require.NoError(t, svc.SetStoryAuthors(ctx, enchanter.ID, []string{"Marc Blank"}))

	require.NoError(t, svc.RemoveStoryLinks(ctx, zork.ID))

	// Shared author survives; the one only Zork used is gone.
	remaining, err := svc.ListAuthors(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Marc Blank", remaining[0].Name)
}
