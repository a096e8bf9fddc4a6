package ids

import (
	"github.com/google/uuid"
)

// New returns a random UUID string.
func New() string {
	return uuid.NewString()
}

// NewUnique returns a random ID for which taken reports false.
// taken is consulted so uniqueness is enforced by the caller's collection
// rather than assumed from the generator.
func NewUnique(taken func(string) bool) string {
	for {
		id := New()
		if taken == nil || !taken(id) {
			return id
		}
	}
}
