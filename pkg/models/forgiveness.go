package models

import (
	"github.com/uptrace/bun"
)

// Forgiveness IDs. The table is seeded once at migration time and never
// user-created; Unknown is the default for stories that don't declare one.
const (
	ForgivenessUnknown  = 1
	ForgivenessMerciful = 2
	ForgivenessPolite   = 3
	ForgivenessTough    = 4
	ForgivenessNasty    = 5
	ForgivenessCruel    = 6
)

// ForgivenessDescriptions is ordered by ID.
var ForgivenessDescriptions = []string{
	"Unknown", "Merciful", "Polite", "Tough", "Nasty", "Cruel",
}

type Forgiveness struct {
	bun.BaseModel `bun:"table:forgiveness,alias:fg"`

	ID          int    `bun:",pk,nullzero" json:"id"`
	Description string `bun:",nullzero" json:"description"`
}
