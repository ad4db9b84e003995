package launch

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/grotesquebooks/grotesque/pkg/config"
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

type spawnRecorder struct {
	command string
	args    []string
	calls   int
}

func (r *spawnRecorder) spawn(command string, args ...string) error {
	r.command = command
	r.args = args
	r.calls++
	return nil
}

type launchFixture struct {
	svc     *Service
	db      *bun.DB
	spawned *spawnRecorder
}

func setupService(t *testing.T) *launchFixture {
	t.Helper()

	db := setupTestDB(t)
	cfg := &config.Config{
		User: &config.UserConfig{
			Launchers:      map[string]string{"glulx": "glulxe"},
			ResourceOpener: "xdg-open",
		},
	}
	recorder := &spawnRecorder{}
	return &launchFixture{
		svc:     NewService(db, cfg).WithSpawn(recorder.spawn),
		db:      db,
		spawned: recorder,
	}
}

func (f *launchFixture) seedRelease(t *testing.T, ifid string, uri *string, formatName string, command *string) int {
	t.Helper()
	ctx := context.Background()

	story := &models.Story{Title: "Test Story " + ifid}
	_, err := f.db.NewInsert().Model(story).Returning("*").Exec(ctx)
	require.NoError(t, err)

	release := &models.Release{IFID: ifid, StoryID: story.ID, URI: uri}
	if formatName != "" {
		format := &models.Format{Name: formatName, Command: command}
		_, err = f.db.NewInsert().Model(format).Returning("*").Exec(ctx)
		require.NoError(t, err)
		release.FormatID = &format.ID
	}
	_, err = f.db.NewInsert().Model(release).Returning("*").Exec(ctx)
	require.NoError(t, err)

	story.DefaultRelease = &release.IFID
	_, err = f.db.NewUpdate().Model(story).Column("default_release").WherePK().Exec(ctx)
	require.NoError(t, err)

	return story.ID
}

func storyFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "story.ulx")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	return path
}

func TestLaunchReleaseUsesFormatCommand(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	path := storyFile(t)
	f.seedRelease(t, "IFID-1", &path, "zcode", pointerutil.String("frotz"))

	require.NoError(t, f.svc.LaunchRelease(context.Background(), "IFID-1"))
	assert.Equal(t, "frotz", f.spawned.command)
	assert.Equal(t, []string{path}, f.spawned.args)
}

func TestLaunchReleaseFallsBackToConfiguredLauncher(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	path := storyFile(t)
	// The blorb wrapper doesn't matter for launching.
	f.seedRelease(t, "IFID-1", &path, "blorbed glulx", nil)

	require.NoError(t, f.svc.LaunchRelease(context.Background(), "IFID-1"))
	assert.Equal(t, "glulxe", f.spawned.command)
}

func TestLaunchReleaseNoLauncherConfigured(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	path := storyFile(t)
	f.seedRelease(t, "IFID-1", &path, "tads3", nil)

	err := f.svc.LaunchRelease(context.Background(), "IFID-1")
	require.Error(t, err)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNoLauncherConfigured))
	assert.Zero(t, f.spawned.calls)
}

func TestLaunchReleaseMissingFile(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	missing := filepath.Join(t.TempDir(), "gone.z5")
	f.seedRelease(t, "IFID-1", &missing, "zcode", pointerutil.String("frotz"))

	err := f.svc.LaunchRelease(context.Background(), "IFID-1")
	require.Error(t, err)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeStoryFileNotFound))
}

func TestLaunchReleaseBareRelease(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	f.seedRelease(t, "IFID-1", nil, "zcode", pointerutil.String("frotz"))

	err := f.svc.LaunchRelease(context.Background(), "IFID-1")
	require.Error(t, err)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeStoryFileNotFound))
}

func TestLaunchStoryUsesDefaultRelease(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	path := storyFile(t)
	storyID := f.seedRelease(t, "IFID-1", &path, "zcode", pointerutil.String("frotz"))

	require.NoError(t, f.svc.LaunchStory(context.Background(), storyID))
	assert.Equal(t, 1, f.spawned.calls)
}

func TestLaunchStoryNoReleases(t *testing.T) {
	t.Parallel()
	f := setupService(t)
	ctx := context.Background()

	story := &models.Story{Title: "Unreleased"}
	_, err := f.db.NewInsert().Model(story).Returning("*").Exec(ctx)
	require.NoError(t, err)

	err = f.svc.LaunchStory(ctx, story.ID)
	require.Error(t, err)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNoReleasesFound))
}

func TestOpenResource(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	require.NoError(t, f.svc.OpenResource("/library/map.pdf"))
	assert.Equal(t, "xdg-open", f.spawned.command)
	assert.Equal(t, []string{"/library/map.pdf"}, f.spawned.args)
}

func TestOpenResourceNoOpener(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{User: &config.UserConfig{}})

	err := svc.OpenResource("/library/map.pdf")
	require.Error(t, err)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNoLauncherConfigured))
}
