package ifiction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<ifindex version="1.0">
	<story>
		<identification>
			<ifid>ZCODE-1-840726</ifid>
			<ifid>ZCODE-2-840730</ifid>
			<format>zcode</format>
			<bafn>42</bafn>
		</identification>
		<bibliographic>
			<title>The Lurking Dark</title>
			<author>Jane Doe and John Roe</author>
			<language>en</language>
			<headline>An interactive nightmare</headline>
			<firstpublished>1984-06</firstpublished>
			<genre>Horror/Puzzle</genre>
			<series>Darkness</series>
			<seriesnumber>2</seriesnumber>
			<forgiveness>Cruel</forgiveness>
			<description>It is pitch black.</description>
		</bibliographic>
		<contact>
			<url>https://example.com/lurking</url>
		</contact>
		<cover>
			<format>jpg</format>
			<height>400</height>
			<width>300</width>
		</cover>
		<annotation>
			<grotesque>
				<rating>4.5</rating>
				<played>True</played>
				<storyfile>
					<ifid>ZCODE-1-840726</ifid>
					<uri>/games/lurking.z5</uri>
				</storyfile>
			</grotesque>
			<ifdb>
				<tuid>abc123</tuid>
				<link>https://ifdb.example/viewgame?id=abc123</link>
				<coverart>
					<url>https://ifdb.example/cover.jpg</url>
				</coverart>
				<averagerating>4.2</averagerating>
				<starrating>4.0</starrating>
				<ratingcountavg>17</ratingcountavg>
				<ratingcounttot>20</ratingcounttot>
			</ifdb>
		</annotation>
	</story>
</ifindex>
`

func TestParse(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	require.Len(t, doc.Stories, 1)

	story := doc.Stories[0]
	require.NotNil(t, story.Identification)
	assert.Equal(t, []string{"ZCODE-1-840726", "ZCODE-2-840730"}, story.Identification.IFIDs)
	assert.Equal(t, "zcode", story.Identification.Format)
	assert.Equal(t, "42", story.Identification.Bafn)

	assert.Equal(t, "The Lurking Dark", story.Title())
	require.NotNil(t, story.Bibliographic)
	assert.Equal(t, "1984-06", story.Bibliographic.FirstPublished)

	require.NotNil(t, story.Annotation)
	require.NotNil(t, story.Annotation.Grotesque)
	assert.Equal(t, "4.5", story.Annotation.Grotesque.Rating)
	require.Len(t, story.Annotation.Grotesque.StoryFiles, 1)
	assert.Equal(t, "/games/lurking.z5", story.Annotation.Grotesque.StoryFiles[0].URI)

	require.NotNil(t, story.Annotation.IFDB)
	assert.Equal(t, "https://ifdb.example/viewgame?id=abc123", story.Annotation.IFDB.StoryURL())
	assert.Equal(t, "https://ifdb.example/cover.jpg", story.Annotation.IFDB.CoverURL())
	assert.Equal(t, "4.2", story.Annotation.IFDB.AverageRatingValue())
}

func TestRenderRoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	data, err := doc.Render()
	require.NoError(t, err)

	doc2, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, doc2.Stories, 1)
	assert.Equal(t, doc.Stories[0].Identification, doc2.Stories[0].Identification)
	assert.Equal(t, doc.Stories[0].Bibliographic, doc2.Stories[0].Bibliographic)
	assert.Equal(t, doc.Stories[0].Annotation, doc2.Stories[0].Annotation)
}

func TestIFDBAnnotationAlternateSpellings(t *testing.T) {
	t.Parallel()

	a := &IFDBAnnotation{URL: "u", CoverURLField: "c", AvgRating: "3.5"}
	assert.Equal(t, "u", a.StoryURL())
	assert.Equal(t, "c", a.CoverURL())
	assert.Equal(t, "3.5", a.AverageRatingValue())
}
