package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Resource is an auxiliary file associated with a story (hint map, notes,
// ...), not a launchable game file. A story can have many.
type Resource struct {
	bun.BaseModel `bun:"table:resources,alias:rs"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	StoryID     int       `bun:",nullzero" json:"story_id"`
	URI         string    `bun:",nullzero" json:"uri"`
	Description *string   `json:"description"`
}
