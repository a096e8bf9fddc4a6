package ids

import (
	"errors"
	"strings"
)

var (
	// ErrNoMatch is returned when no ID starts with the given prefix.
	ErrNoMatch = errors.New("no matching id")

	// ErrAmbiguousPrefix is returned when several IDs share the given prefix.
	ErrAmbiguousPrefix = errors.New("ambiguous id prefix")
)

// MatchPrefix returns the single ID in ids that equals or starts with prefix.
// Matching is case-insensitive; an exact match wins over longer candidates.
func MatchPrefix(ids []string, prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", ErrNoMatch
	}

	match := ""
	count := 0
	for _, id := range ids {
		lower := strings.ToLower(id)
		if lower == prefix {
			return id, nil
		}
		if strings.HasPrefix(lower, prefix) {
			match = id
			count++
		}
	}

	switch count {
	case 0:
		return "", ErrNoMatch
	case 1:
		return match, nil
	default:
		return "", ErrAmbiguousPrefix
	}
}

// UniquePrefixLengths returns the shortest unique prefix length for each ID.
// Keys are lowercased.
func UniquePrefixLengths(ids []string) map[string]int {
	uniqueIDs := make([]string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		idLower := strings.ToLower(id)
		if idLower == "" || seen[idLower] {
			continue
		}
		seen[idLower] = true
		uniqueIDs = append(uniqueIDs, idLower)
	}

	lengths := make(map[string]int, len(uniqueIDs))
	for _, id := range uniqueIDs {
		lengths[id] = uniquePrefixLength(id, uniqueIDs)
	}

	return lengths
}

func uniquePrefixLength(id string, ids []string) int {
	for length := 1; length <= len(id); length++ {
		prefix := id[:length]
		unique := true
		for _, other := range ids {
			if other != id && strings.HasPrefix(other, prefix) {
				unique = false
				break
			}
		}
		if unique {
			return length
		}
	}

	return len(id)
}
