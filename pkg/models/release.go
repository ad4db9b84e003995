package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Release is one specific file/version of a Story. The IFID is the natural
// primary key; no two releases share one. A release may be known only by
// IFID, with no located file (URI is nil).
type Release struct {
	bun.BaseModel `bun:"table:releases,alias:r"`

	IFID            string    `bun:"ifid,pk" json:"ifid"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	StoryID         int       `bun:",nullzero" json:"story_id"`
	Story           *Story    `bun:"rel:belongs-to,join:story_id=id" json:"story,omitempty"`
	URI             *string   `json:"uri"`
	Version         *string   `json:"version"`
	ReleaseDate     *string   `json:"release_date"`
	Compiler        *string   `json:"compiler"`
	CompilerVersion *string   `json:"compiler_version"`
	Comment         *string   `json:"comment"`
	FormatID        *int      `json:"format_id,omitempty"`
	Format          *Format   `bun:"rel:belongs-to,join:format_id=id" json:"format,omitempty"`
}
