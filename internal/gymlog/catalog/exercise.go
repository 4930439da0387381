package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Exercise is a named exercise definition owned by one user.
type Exercise struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NameKey is the form exercise names are deduplicated by:
// trimmed and Unicode case-folded, so "Bench Press" and "bench press " match.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
