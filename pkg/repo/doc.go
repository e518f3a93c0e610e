// Package repo defines the canonical repository record and the pure
// computations performed on a result set.
//
// # Overview
//
// A [Repository] is produced once per remote node by the GitHub normalizer
// and never mutated afterwards. Everything in this package is synchronous
// and free of I/O:
//
//   - [Matches] and [Filter]: the name-substring and language predicate
//   - [ExtractLanguages]: distinct language facets ordered by frequency
//   - [FormatUpdated], [FormatCount], [LanguageColor]: display helpers
//
// # Filtering
//
// A [FilterState] combines a case-insensitive name substring with a
// language selector. The selector [AllLanguages] disables the language
// constraint:
//
//	visible := repo.Filter(repos, repo.FilterState{
//	    NameSubstring:    "api",
//	    LanguageSelector: "TypeScript",
//	})
//
// # Facets
//
// [ExtractLanguages] returns each present language once, most frequent
// first. Ties keep the order in which languages first appear in the result
// set, so the option list is stable for a given response.
package repo
