package repo

import "strings"

// AllLanguages is the language selector that matches every repository.
const AllLanguages = "all"

// FilterState holds the client-side filter choices.
// The zero value is not the default; use [DefaultFilter].
type FilterState struct {
	NameSubstring    string `json:"nameSubstring"`
	LanguageSelector string `json:"languageSelector"`
}

// DefaultFilter returns the filter state applied after every new search.
func DefaultFilter() FilterState {
	return FilterState{LanguageSelector: AllLanguages}
}

// IsDefault reports whether f places no constraint on a result set.
func (f FilterState) IsDefault() bool {
	return f.NameSubstring == "" && f.LanguageSelector == AllLanguages
}

// Matches reports whether r passes both the name and the language filter.
func Matches(r Repository, f FilterState) bool {
	return matchesName(r, f.NameSubstring) && matchesLanguage(r, f.LanguageSelector)
}

func matchesName(r Repository, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), strings.ToLower(sub))
}

// An empty selector is treated like AllLanguages so that a zero FilterState
// never hides everything.
func matchesLanguage(r Repository, sel string) bool {
	if sel == AllLanguages || sel == "" {
		return true
	}
	if r.PrimaryLanguage == nil {
		return false
	}
	return strings.EqualFold(r.PrimaryLanguage.Name, sel)
}

// Filter returns the repositories that match f, preserving input order.
// The result never aliases repos.
func Filter(repos []Repository, f FilterState) []Repository {
	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		if Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}
