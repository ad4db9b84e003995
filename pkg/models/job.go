package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Type      string    `bun:",nullzero" json:"type"`
	Status    string    `bun:",nullzero" json:"status"`
	Data      string    `bun:",nullzero" json:"-"`
	// DataParsed is the typed view of Data; the jobs service fills it in on
	// reads and serializes it on writes.
	DataParsed interface{} `bun:"-" json:"data"`
	Progress   int         `json:"progress"`
	Total      int         `json:"total"`
	ProcessID  *string     `json:"process_id,omitempty"`
}
