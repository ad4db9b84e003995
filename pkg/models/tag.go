package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `bun:",nullzero" json:"name"`
	StoryCount int       `bun:",scanonly" json:"story_count"`
}

type StoryTag struct {
	bun.BaseModel `bun:"table:story_tags,alias:st"`

	ID      int  `bun:",pk,nullzero" json:"id"`
	StoryID int  `bun:",nullzero" json:"story_id"`
	TagID   int  `bun:",nullzero" json:"tag_id"`
	Tag     *Tag `bun:"rel:belongs-to,join:tag_id=id" json:"tag,omitempty"`
}
