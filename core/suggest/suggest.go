// Package suggest ranks likely intended commands for a name that failed to
// resolve.
package suggest

import (
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/gosh-shell/gosh/core/alias"
	"github.com/gosh-shell/gosh/core/lookup"
)

// DefaultThreshold is the maximum edit distance considered "similar".
const DefaultThreshold = 3

// DefaultLimit caps how many suggestions are reported to the user.
const DefaultLimit = 5

type scored struct {
	name     string
	distance int
}

// Commands returns up to limit command and alias names similar to name,
// ranked by edit distance. Either source may be nil.
func Commands(name string, limit int, cache *lookup.Cache, aliases *alias.Registry) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var candidates []string
	if aliases != nil {
		candidates = append(candidates, aliases.Names()...)
	}
	if cache != nil {
		candidates = append(candidates, cache.Commands()...)
	}

	seen := make(map[string]bool)
	var ranked []scored
	for _, candidate := range candidates {
		if candidate == name || seen[candidate] {
			continue
		}
		seen[candidate] = true
		d := levenshtein.ComputeDistance(name, candidate)
		if d <= DefaultThreshold {
			ranked = append(ranked, scored{candidate, d})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].distance != ranked[j].distance {
			return ranked[i].distance < ranked[j].distance
		}
		return ranked[i].name < ranked[j].name
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.name)
	}
	return out
}
