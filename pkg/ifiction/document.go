// Package ifiction models the IF bibliographic interchange format: a tree
// of story nodes with named, optionally-absent sections. Every field access
// is explicit; there are no ad hoc key lookups with silent defaults.
package ifiction

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/html/charset"
)

const (
	// SourceIFDB marks a document fetched from the remote metadata source.
	// Only ifdb-sourced documents carry a usable story URL in their contact
	// block; file-embedded contact data is author contact instead.
	SourceIFDB = "ifdb"
	// SourceExtract marks a document extracted from a story file itself.
	SourceExtract = "extract"
	// SourceImport marks a document supplied by a user-initiated import.
	SourceImport = "import"
)

type Document struct {
	XMLName xml.Name     `xml:"ifindex"`
	Version string       `xml:"version,attr"`
	Stories []*StoryNode `xml:"story"`
}

type StoryNode struct {
	Identification *Identification `xml:"identification"`
	Bibliographic  *Bibliographic  `xml:"bibliographic"`
	Resources      []Auxiliary     `xml:"resources>auxiliary"`
	Contacts       []Contact       `xml:"contact"`
	Cover          *Cover          `xml:"cover"`
	Releases       []Release       `xml:"releases>release"`
	Annotation     *Annotation     `xml:"annotation"`
	Colophon       *Colophon       `xml:"colophon"`
	// ExtraIFDB catches the top-level <ifdb> block some IFDB responses
	// carry outside the annotation section; MergeExtraAnnotations folds it
	// into Annotation.IFDB.
	ExtraIFDB *IFDBAnnotation `xml:"ifdb"`
}

// MergeExtraAnnotations moves a top-level ifdb block into the annotation
// section, where the rest of the system expects it.
func (s *StoryNode) MergeExtraAnnotations() {
	if s.ExtraIFDB == nil {
		return
	}
	if s.Annotation == nil {
		s.Annotation = &Annotation{}
	}
	if s.Annotation.IFDB == nil {
		s.Annotation.IFDB = s.ExtraIFDB
	}
	s.ExtraIFDB = nil
}

type Identification struct {
	IFIDs  []string `xml:"ifid"`
	Format string   `xml:"format"`
	Bafn   string   `xml:"bafn"`
}

type Bibliographic struct {
	Title          string `xml:"title"`
	Author         string `xml:"author"`
	Language       string `xml:"language"`
	Headline       string `xml:"headline"`
	FirstPublished string `xml:"firstpublished"`
	Genre          string `xml:"genre"`
	Group          string `xml:"group"`
	Series         string `xml:"series"`
	SeriesNumber   string `xml:"seriesnumber"`
	Forgiveness    string `xml:"forgiveness"`
	Description    string `xml:"description"`
}

type Auxiliary struct {
	LeafName    string `xml:"leafname"`
	Description string `xml:"description"`
}

type Contact struct {
	URL         string `xml:"url"`
	AuthorEmail string `xml:"authoremail"`
}

type Cover struct {
	Format      string `xml:"format"`
	Height      int    `xml:"height"`
	Width       int    `xml:"width"`
	Description string `xml:"description"`
}

type Release struct {
	ReleaseDate     string `xml:"releasedate"`
	Version         string `xml:"version"`
	Compiler        string `xml:"compiler"`
	CompilerVersion string `xml:"compilerversion"`
}

// Annotation holds one sub-block per namespace. "grotesque" is our own
// namespace; "ifdb" carries remote-source data.
type Annotation struct {
	Grotesque *GrotesqueAnnotation `xml:"grotesque"`
	IFDB      *IFDBAnnotation      `xml:"ifdb"`
}

type GrotesqueAnnotation struct {
	Rating     string      `xml:"rating"`
	Notes      string      `xml:"notes"`
	Played     string      `xml:"played"`
	Imported   string      `xml:"imported"`
	StoryFiles []StoryFile `xml:"storyfile"`
}

type StoryFile struct {
	IFID string `xml:"ifid"`
	URI  string `xml:"uri"`
}

// IFDBAnnotation carries the fields IFDB attaches to its ifiction records.
// IFDB has emitted several spellings over the years (link vs url, coverart
// vs coverurl, averagerating vs avgrating); the accessors below resolve
// them.
type IFDBAnnotation struct {
	TUID           string    `xml:"tuid"`
	Link           string    `xml:"link"`
	URL            string    `xml:"url"`
	CoverArt       *CoverArt `xml:"coverart"`
	CoverURLField  string    `xml:"coverurl"`
	AverageRating  string    `xml:"averagerating"`
	AvgRating      string    `xml:"avgrating"`
	StarRating     string    `xml:"starrating"`
	RatingCountAvg string    `xml:"ratingcountavg"`
	RatingCountTot string    `xml:"ratingcounttot"`
	Updated        string    `xml:"updated"`
}

type CoverArt struct {
	URL string `xml:"url"`
}

type Colophon struct {
	Generator        string `xml:"generator"`
	GeneratorVersion string `xml:"generatorversion"`
	Originated       string `xml:"originated"`
}

// StoryURL returns the story link, preferring the older "link" spelling.
func (a *IFDBAnnotation) StoryURL() string {
	if a.Link != "" {
		return a.Link
	}
	return a.URL
}

// CoverURL returns the cover art URL regardless of which spelling the
// document used.
func (a *IFDBAnnotation) CoverURL() string {
	if a.CoverArt != nil && a.CoverArt.URL != "" {
		return a.CoverArt.URL
	}
	return a.CoverURLField
}

// AverageRatingValue prefers "averagerating" over "avgrating".
func (a *IFDBAnnotation) AverageRatingValue() string {
	if a.AverageRating != "" {
		return a.AverageRating
	}
	return a.AvgRating
}

// NewDocument returns an empty interchange document.
func NewDocument() *Document {
	return &Document{Version: "1.0"}
}

// Parse decodes an interchange document. It tolerates the legacy charset
// declarations IFDB emits.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(doc); err != nil {
		return nil, errors.WithStack(err)
	}
	return doc, nil
}

// Render encodes the document with an XML header, indented.
func (d *Document) Render() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "\t")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// String renders a story node as JSON for log output.
func (s *StoryNode) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return "<unrenderable story node>"
	}
	return string(data)
}

// Title returns the story's title, trimmed, or the empty string when the
// bibliographic section is absent.
func (s *StoryNode) Title() string {
	if s.Bibliographic == nil {
		return ""
	}
	return strings.TrimSpace(s.Bibliographic.Title)
}
