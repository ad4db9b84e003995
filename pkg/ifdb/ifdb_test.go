package ifdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grotesquebooks/grotesque/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ifindex version="1.0">
	<story>
		<identification>
			<ifid>ZCODE-88-840726-A129</ifid>
			<format>zcode</format>
		</identification>
		<bibliographic>
			<title>Zork I</title>
			<author>Marc Blank and Dave Lebling</author>
		</bibliographic>
		<ifdb>
			<tuid>0dbnusxunq7fw5ro</tuid>
			<link>https://ifdb.tads.org/viewgame?id=0dbnusxunq7fw5ro</link>
			<coverart><url>https://ifdb.tads.org/viewgame?id=0dbnusxunq7fw5ro&amp;coverart</url></coverart>
			<averagerating>4.0</averagerating>
			<starrating>4</starrating>
		</ifdb>
	</story>
</ifindex>`

func testClient(baseURL string) *Client {
	return New(config.IFDB{BaseURL: baseURL, RequestsPerMinute: 0})
}

func TestFetchMetadata(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(sampleResponse)) //nolint:errcheck
	}))
	defer srv.Close()

	story, err := testClient(srv.URL).FetchMetadata(context.Background(), FetchOptions{IFID: "ZCODE-88-840726-A129"})
	require.NoError(t, err)
	require.NotNil(t, story)
	assert.Equal(t, "Zork I", story.Title())
	assert.Contains(t, gotQuery, "ifiction")
	assert.Contains(t, gotQuery, "ifid=ZCODE-88-840726-A129")

	// The top-level ifdb block is folded into the annotation section.
	require.NotNil(t, story.Annotation)
	require.NotNil(t, story.Annotation.IFDB)
	assert.Equal(t, "0dbnusxunq7fw5ro", story.Annotation.IFDB.TUID)
	assert.Nil(t, story.ExtraIFDB)
}

func TestFetchMetadataByTUID(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(sampleResponse)) //nolint:errcheck
	}))
	defer srv.Close()

	story, err := testClient(srv.URL).FetchMetadata(context.Background(), FetchOptions{TUID: "0dbnusxunq7fw5ro"})
	require.NoError(t, err)
	require.NotNil(t, story)
	assert.Contains(t, gotQuery, "id=0dbnusxunq7fw5ro")
}

func TestFetchMetadataNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("No game was found matching the requested IFID.")) //nolint:errcheck
	}))
	defer srv.Close()

	story, err := testClient(srv.URL).FetchMetadata(context.Background(), FetchOptions{IFID: "NOPE"})
	require.NoError(t, err)
	assert.Nil(t, story)
}

func TestFetchMetadataServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	story, err := testClient(srv.URL).FetchMetadata(context.Background(), FetchOptions{IFID: "ZORK"})
	require.NoError(t, err)
	assert.Nil(t, story)
}

func TestFetchMetadataUnreachable(t *testing.T) {
	t.Parallel()

	story, err := testClient("http://127.0.0.1:1").FetchMetadata(context.Background(), FetchOptions{IFID: "ZORK"})
	require.NoError(t, err)
	assert.Nil(t, story)
}

func TestFetchMetadataRequiresIdentifier(t *testing.T) {
	t.Parallel()

	_, err := testClient("http://example.invalid").FetchMetadata(context.Background(), FetchOptions{})
	assert.Error(t, err)
}

func TestFetchCover(t *testing.T) {
	t.Parallel()

	art := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write(art) //nolint:errcheck
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).FetchCover(context.Background(), CoverOptions{TUID: "0dbnusxunq7fw5ro"})
	require.NoError(t, err)
	assert.Equal(t, art, data)
	assert.Contains(t, gotQuery, "coverart")

	data, err = testClient(srv.URL).FetchCover(context.Background(), CoverOptions{URL: srv.URL + "/art.png"})
	require.NoError(t, err)
	assert.Equal(t, art, data)
}

func TestFetchCoverNoImage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("No image is available")) //nolint:errcheck
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).FetchCover(context.Background(), CoverOptions{IFID: "ZORK"})
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFetchCoverNoLocator(t *testing.T) {
	t.Parallel()

	data, err := testClient("http://example.invalid").FetchCover(context.Background(), CoverOptions{})
	require.NoError(t, err)
	assert.Nil(t, data)
}
