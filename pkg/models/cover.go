package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Cover is a story's cover art, at most one per story. Data may be empty: a
// stub cover holds only descriptive metadata, which is distinct from having
// no cover at all.
type Cover struct {
	bun.BaseModel `bun:"table:covers,alias:c"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	StoryID     int       `bun:",nullzero" json:"story_id"`
	Format      string    `bun:",nullzero" json:"format"` // jpeg, png, or gif
	Height      int       `json:"height"`
	Width       int       `json:"width"`
	Description *string   `json:"description"`
	Data        []byte    `json:"-"`
}
