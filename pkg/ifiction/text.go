package ifiction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
)

var (
	listLinkerRE  = regexp.MustCompile(`\s+and\s+|\s*&\s*|\s*/\s*`)
	pseudonymRE   = regexp.MustCompile(`\s*\(.*\)\s*$`)
	dateSegmentRE = regexp.MustCompile(`[-/]`)
)

// ParseNameList splits author or genre list strings on commas and on the
// linking words/characters "and", "&" and "/". Blank entries are dropped.
func ParseNameList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	names := make([]string, 0, 2)
	for _, part := range strings.Split(s, ",") {
		for _, name := range listLinkerRE.Split(part, -1) {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			names = append(names, name)
		}
	}
	return names
}

// ParseAuthors splits an author field into individual names. Pseudonyms in
// trailing parentheses are stripped so that only the real name is matched
// and stored ("Jane Doe (J. Smith)" becomes "Jane Doe").
func ParseAuthors(field string) []string {
	parsed := ParseNameList(field)
	authors := make([]string, 0, len(parsed))
	for _, name := range parsed {
		name = strings.TrimSpace(pseudonymRE.ReplaceAllString(name, ""))
		if name == "" {
			continue
		}
		authors = append(authors, name)
	}
	return authors
}

// ParseGenres splits a genre field into individual names, lower-cased.
// Genre names are case-normalized; author names are not.
func ParseGenres(field string) []string {
	parsed := ParseNameList(field)
	genres := make([]string, 0, len(parsed))
	for _, name := range parsed {
		genres = append(genres, strings.ToLower(name))
	}
	return genres
}

// JoinAuthors renders an author list for the bibliographic section: names
// joined with ", ", with "and" before the final name when there are three
// or more.
func JoinAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	case 2:
		return strings.Join(authors, ", ")
	default:
		return strings.Join(authors[:len(authors)-1], ", ") + " and " + authors[len(authors)-1]
	}
}

// JoinGenres renders a genre list for the bibliographic section.
func JoinGenres(genres []string) string {
	return strings.Join(genres, "/")
}

// NormalizeDate expands a partial first-published date (year, year-month,
// or full date, separated by "-" or "/") to a full YYYY-MM-DD string,
// defaulting missing month and day to 01. Non-numeric segments fail with an
// invalid_date error. An empty input normalizes to the empty string.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	segments := dateSegmentRE.Split(s, -1)
	if len(segments) > 3 {
		return "", errcodes.InvalidDate(s)
	}
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err != nil {
			return "", errcodes.InvalidDate(s)
		}
	}
	for len(segments) < 3 {
		segments = append(segments, "01")
	}
	return strings.Join(segments, "-"), nil
}
