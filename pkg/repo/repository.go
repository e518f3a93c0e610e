package repo

import "time"

// Repository is the normalized record every renderer consumes.
type Repository struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"` // nil when the remote has none
	URL             string    `json:"url"`
	PrimaryLanguage *Language `json:"primaryLanguage"` // nil when no language was detected
	StargazerCount  int       `json:"stargazerCount"`
	ForkCount       int       `json:"forkCount"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Language is the detected primary language of a repository.
type Language struct {
	Name string `json:"name"`
}

// LanguageName returns the primary language name, or "" when absent.
func (r Repository) LanguageName() string {
	if r.PrimaryLanguage == nil {
		return ""
	}
	return r.PrimaryLanguage.Name
}

// DescriptionText returns the description, or fallback when absent or empty.
func (r Repository) DescriptionText(fallback string) string {
	if r.Description == nil || *r.Description == "" {
		return fallback
	}
	return *r.Description
}

// StargazersURL links to the repository's stargazer list.
func (r Repository) StargazersURL() string { return r.URL + "/stargazers" }

// ForksURL links to the repository's fork list.
func (r Repository) ForksURL() string { return r.URL + "/forks" }
