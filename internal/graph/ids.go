package graph

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// maxNaturalKeyLen bounds how long a content-derived id may be before
// falling back to a hash when the natural key is too long.
const maxNaturalKeyLen = 200

// StableID returns id unchanged when short enough to remain a useful,
// human-readable key; otherwise it folds id down to a fixed-width hash
// prefixed by label so collisions across label spaces stay distinguishable.
func StableID(label, id string) string {
	if len(id) <= maxNaturalKeyLen {
		return id
	}
	sum := xxhash.Sum64String(id)
	return fmt.Sprintf("%s:h%016x", label, sum)
}
