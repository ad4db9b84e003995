package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Format is a story file format (e.g. "zcode", "glulx") with its associated
// interpreter launch command.
type Format struct {
	bun.BaseModel `bun:"table:formats,alias:fmt"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	Command   *string   `json:"command"`
}

// UnwrapFormatName reduces a "blorbed X" format name to X. The wrapper
// designation only matters when first recording the format; matching and
// launching always use the inner format.
func UnwrapFormatName(name string) string {
	if strings.Contains(name, "blorbed") {
		return strings.TrimSpace(strings.ReplaceAll(name, "blorbed ", ""))
	}
	return strings.TrimSpace(name)
}
