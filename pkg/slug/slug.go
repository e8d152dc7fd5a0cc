// Package slug derives unique, URL-safe identifiers for files and projects.
package slug

import (
	"fmt"
	"strings"

	gosimple "github.com/gosimple/slug"
	"github.com/google/uuid"
)

// ForEntity builds the canonical slug for an entity: the slugified name plus
// the first eight hex characters of the entity id. The id suffix keeps slugs
// for identically named entities distinct.
func ForEntity(name string, id uuid.UUID) string {
	return gosimple.Make(name) + "-" + shortID(id)
}

// WithToken appends an extra entropy token to a slug. Bulk project creation
// uses this so that rows generated from the same base name in one batch stay
// unique even before their ids are known to the caller.
func WithToken(name string, id uuid.UUID) string {
	return fmt.Sprintf("%s-%s-%s", gosimple.Make(name), shortID(id), Token())
}

// Token returns a fresh random 8-hex-character token.
func Token() string {
	return shortID(uuid.New())
}

func shortID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
