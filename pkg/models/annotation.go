package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Annotation is the local per-story annotation, at most one per story.
type Annotation struct {
	bun.BaseModel `bun:"table:annotations,alias:an"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	StoryID   int       `bun:",nullzero" json:"story_id"`
	Rating    float64   `json:"rating"`
	RatingTxt string    `json:"rating_txt"` // star glyphs rendered from Rating
	Notes     string    `json:"notes"`
	Played    bool      `json:"played"`
	Imported  *string   `json:"imported"` // YYYY-MM-DD
}

// IfdbAnnotation mirrors the community-sourced data IFDB attaches to a
// story, at most one per story.
type IfdbAnnotation struct {
	bun.BaseModel `bun:"table:ifdb_annotations,alias:ia"`

	ID             int       `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	StoryID        int       `bun:",nullzero" json:"story_id"`
	TUID           *string   `bun:"tuid" json:"tuid"`
	URL            *string   `json:"url"`
	CoverURL       *string   `json:"cover_url"`
	AvgRating      float64   `json:"avg_rating"`
	StarRating     float64   `json:"star_rating"`
	StarRatingTxt  string    `json:"star_rating_txt"`
	RatingCountAvg int       `json:"rating_count_avg"`
	RatingCountTot int       `json:"rating_count_tot"`
	Updated        *string   `json:"updated"` // YYYY-MM-DD
}
