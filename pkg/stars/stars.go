// Package stars renders 0–5 half-step ratings as star glyphs and parses
// them back.
package stars

import (
	"github.com/pkg/errors"
)

var glyphs = []string{
	"", "½", "★", "★½", "★★", "★★½", "★★★", "★★★½", "★★★★", "★★★★½", "★★★★★",
}

var values = []float64{0.0, 0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0}

// Render returns the star representation of a rating on a scale of 0 to 5.
// Ratings between half steps round down to the nearest half step.
func Render(rating float64) (string, error) {
	if rating < 0.0 || rating > 5.0 {
		return "", errors.New("rating must be between 0.0 and 5.0")
	}
	return glyphs[int(rating*2)], nil
}

// ToFloat returns the rating value for a star glyph string.
func ToFloat(txt string) (float64, error) {
	for i, g := range glyphs {
		if g == txt {
			return values[i], nil
		}
	}
	return 0, errors.Errorf("not a star rating: %q", txt)
}
