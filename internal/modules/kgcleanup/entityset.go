package kgcleanup

import (
	"sort"
	"strings"
)

// EntitySet is a finite, deduplicated set of entity IDs touched by one batch.
// The zero value is an empty set ready for use.
type EntitySet struct {
	ids map[string]struct{}
}

// Add inserts ids, ignoring blanks.
func (s *EntitySet) Add(ids ...string) {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if s.ids == nil {
			s.ids = make(map[string]struct{}, len(ids))
		}
		s.ids[id] = struct{}{}
	}
}

func (s EntitySet) Len() int { return len(s.ids) }

// Sorted returns the members in ascending order.
func (s EntitySet) Sorted() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
