package validate

import (
	"sort"

	"github.com/agext/levenshtein"

	"soarmap/internal/datamap"
)

// maxSuggestionDistance is the edit-distance cutoff for fuzzy suggestions.
const maxSuggestionDistance = 3

// Suggestions returns up to limit edge names from the graph that are within
// edit distance 3 of the query, closest first; ties break alphabetically.
func Suggestions(g *datamap.Graph, query string, limit int) []string {
	seen := make(map[string]bool)
	type candidate struct {
		name string
		dist int
	}
	var candidates []candidate

	for _, v := range g.Vertices {
		for _, e := range v.Edges {
			if seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			if e.Name == query {
				continue
			}
			dist := levenshtein.Distance(query, e.Name, nil)
			if dist <= maxSuggestionDistance {
				candidates = append(candidates, candidate{e.Name, dist})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}
