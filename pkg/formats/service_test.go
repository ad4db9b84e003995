package formats

import (
	"context"
	"database/sql"
	"testing"

	"github.com/grotesquebooks/grotesque/pkg/migrations"
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

func TestFindOrCreateFormat(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	created, err := svc.FindOrCreateFormat(ctx, "zcode", pointerutil.String("frotz"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.NotNil(t, created.Command)
	assert.Equal(t, "frotz", *created.Command)

	// An existing format's command is never overwritten by find-or-create.
	again, err := svc.FindOrCreateFormat(ctx, "zcode", pointerutil.String("bocfel"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "frotz", *again.Command)
}

func TestUpdateFormatCommand(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	format, err := svc.FindOrCreateFormat(ctx, "glulx", nil)
	require.NoError(t, err)

	format.Command = pointerutil.String("glulxe")
	require.NoError(t, svc.UpdateFormat(ctx, format, UpdateFormatOptions{Columns: []string{"command"}}))

	got, err := svc.RetrieveFormat(ctx, RetrieveFormatOptions{ID: &format.ID})
	require.NoError(t, err)
	require.NotNil(t, got.Command)
	assert.Equal(t, "glulxe", *got.Command)
}

func TestListFormatsOrderedByName(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.FindOrCreateFormat(ctx, "zcode", nil)
	require.NoError(t, err)
	_, err = svc.FindOrCreateFormat(ctx, "adrift", nil)
	require.NoError(t, err)

	got, err := svc.ListFormats(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "adrift", got[0].Name)
	assert.Equal(t, "zcode", got[1].Name)
}
