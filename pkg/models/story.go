package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Story is one work of interactive fiction, independent of its specific
// file/version. Releases hang off it keyed by IFID.
type Story struct {
	bun.BaseModel `bun:"table:stories,alias:s"`

	ID            int          `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Title         string       `bun:",nullzero" json:"title"`
	Language      *string      `json:"language"`
	Headline      *string      `json:"headline"`
	FirstPublished *string     `json:"first_published"` // normalized YYYY-MM-DD
	Description   *string      `json:"description"`
	SeriesID      *int         `json:"series_id,omitempty"`
	Series        *Series      `bun:"rel:belongs-to,join:series_id=id" json:"series,omitempty"`
	SeriesNumber  *string      `json:"series_number,omitempty"`
	GroupID       *int         `json:"group_id,omitempty"`
	Group         *Group       `bun:"rel:belongs-to,join:group_id=id" json:"group,omitempty"`
	ForgivenessID *int         `json:"forgiveness_id,omitempty"`
	Forgiveness   *Forgiveness `bun:"rel:belongs-to,join:forgiveness_id=id" json:"forgiveness,omitempty"`
	URL           *string      `json:"url"`
	Bafn          *string      `json:"bafn"`
	// DefaultRelease is the IFID launched when no release is specified.
	DefaultRelease *string    `json:"default_release"`
	Releases       []*Release `bun:"rel:has-many,join:id=story_id" json:"releases,omitempty"`
}
