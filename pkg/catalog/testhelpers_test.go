package catalog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/grotesquebooks/grotesque/pkg/babel"
	"github.com/grotesquebooks/grotesque/pkg/config"
	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/ifdb"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/migrations"
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

// fakeClassifier returns canned answers keyed by path, so each test can
// script exactly what the resolver reports for each file.
type fakeClassifier struct {
	formats  map[string]string
	ifids    map[string][]string
	metadata map[string][]byte
	covers   map[string]*babel.CoverImage
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{
		formats:  map[string]string{},
		ifids:    map[string][]string{},
		metadata: map[string][]byte{},
		covers:   map[string]*babel.CoverImage{},
	}
}

func (f *fakeClassifier) DeduceFormat(path string) (string, error) {
	format, ok := f.formats[path]
	if !ok {
		return "", errcodes.UnknownFormat(path)
	}
	return format, nil
}

func (f *fakeClassifier) IFIDs(path string) ([]string, error) {
	return f.ifids[path], nil
}

func (f *fakeClassifier) Metadata(path string) ([]byte, error) {
	return f.metadata[path], nil
}

func (f *fakeClassifier) Cover(path string) (*babel.CoverImage, error) {
	return f.covers[path], nil
}

// fakeRemote serves canned metadata and cover art by IFID/TUID/URL.
type fakeRemote struct {
	metadata map[string]*ifiction.StoryNode
	covers   map[string][]byte
	fetches  int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		metadata: map[string]*ifiction.StoryNode{},
		covers:   map[string][]byte{},
	}
}

func (f *fakeRemote) FetchMetadata(_ context.Context, opts ifdb.FetchOptions) (*ifiction.StoryNode, error) {
	f.fetches++
	if opts.IFID != "" {
		return f.metadata[opts.IFID], nil
	}
	return f.metadata[opts.TUID], nil
}

func (f *fakeRemote) FetchCover(_ context.Context, opts ifdb.CoverOptions) ([]byte, error) {
	f.fetches++
	switch {
	case opts.URL != "":
		return f.covers[opts.URL], nil
	case opts.TUID != "":
		return f.covers[opts.TUID], nil
	default:
		return f.covers[opts.IFID], nil
	}
}

type testEngine struct {
	*Engine
	db         *bun.DB
	classifier *fakeClassifier
	remote     *fakeRemote
	cfg        *config.Config
}

func setupEngine(t *testing.T) *testEngine {
	t.Helper()

	db := setupTestDB(t)
	classifier := newFakeClassifier()
	remote := newFakeRemote()
	cfg := &config.Config{
		User: &config.UserConfig{
			Launchers: map[string]string{"zcode": "frotz"},
		},
	}

	return &testEngine{
		Engine:     New(db, cfg, classifier, remote),
		db:         db,
		classifier: classifier,
		remote:     remote,
		cfg:        cfg,
	}
}

// bibNode builds a minimal story node for ingest tests.
func bibNode(title, author string, ifids ...string) *ifiction.StoryNode {
	return &ifiction.StoryNode{
		Identification: &ifiction.Identification{IFIDs: ifids, Format: "zcode"},
		Bibliographic:  &ifiction.Bibliographic{Title: title, Author: author},
	}
}
