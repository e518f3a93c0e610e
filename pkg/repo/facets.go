package repo

import "sort"

// LanguageFacet is a distinct language together with its occurrence count.
type LanguageFacet struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LanguageFacets counts the distinct primary languages in repos.
// Facets are ordered by descending count; ties keep first-occurrence order.
// Repositories without a language contribute nothing.
func LanguageFacets(repos []Repository) []LanguageFacet {
	index := make(map[string]int)
	var facets []LanguageFacet
	for _, r := range repos {
		name := r.LanguageName()
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			facets[i].Count++
			continue
		}
		index[name] = len(facets)
		facets = append(facets, LanguageFacet{Name: name, Count: 1})
	}
	sort.SliceStable(facets, func(i, j int) bool {
		return facets[i].Count > facets[j].Count
	})
	return facets
}

// ExtractLanguages returns the distinct language names of repos, most
// frequent first. See [LanguageFacets] for the ordering rules.
func ExtractLanguages(repos []Repository) []string {
	facets := LanguageFacets(repos)
	names := make([]string, len(facets))
	for i, f := range facets {
		names[i] = f.Name
	}
	return names
}
