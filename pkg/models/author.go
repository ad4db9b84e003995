package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	Email     *string   `json:"email"`
	URL       *string   `json:"url"`
}

type StoryAuthor struct {
	bun.BaseModel `bun:"table:story_authors,alias:sa"`

	ID       int     `bun:",pk,nullzero" json:"id"`
	StoryID  int     `bun:",nullzero" json:"story_id"`
	AuthorID int     `bun:",nullzero" json:"author_id"`
	Author   *Author `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}
