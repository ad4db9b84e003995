package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Genre names are stored lower-cased; reconciliation is case-normalized,
// unlike authors.
type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `bun:",nullzero" json:"name"`
	StoryCount int       `bun:",scanonly" json:"story_count"`
}

type StoryGenre struct {
	bun.BaseModel `bun:"table:story_genres,alias:sg"`

	ID      int    `bun:",pk,nullzero" json:"id"`
	StoryID int    `bun:",nullzero" json:"story_id"`
	GenreID int    `bun:",nullzero" json:"genre_id"`
	Genre   *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"genre,omitempty"`
}
