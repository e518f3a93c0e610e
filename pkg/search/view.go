package search

import (
	"github.com/matzehuels/repoexplorer/pkg/integrations/github"
	"github.com/matzehuels/repoexplorer/pkg/repo"
)

// Phase is the controller's position in the search lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseFetching   Phase = "fetching"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// ErrorKind classifies the error shown in a View.
type ErrorKind string

const (
	KindNone         ErrorKind = ""
	KindValidation   ErrorKind = "validation"
	KindTransport    ErrorKind = ErrorKind(github.KindTransport)
	KindRemoteStatus ErrorKind = ErrorKind(github.KindRemoteStatus)
	KindRemoteError  ErrorKind = ErrorKind(github.KindRemoteError)
	KindNotFound     ErrorKind = ErrorKind(github.KindNotFound)
)

// Placeholder texts for the repository list.
const (
	PromptMessage    = "Search for a GitHub user to see their repositories"
	NoMatchesMessage = "No repositories match your filters"
)

// View is an immutable snapshot of the controller state.
type View struct {
	SearchID     string            `json:"searchId,omitempty"`
	Username     string            `json:"username,omitempty"`
	Phase        Phase             `json:"phase"`
	Loading      bool              `json:"loading"`
	Repositories []repo.Repository `json:"repositories"`
	Visible      []repo.Repository `json:"visible"`
	Languages    []string          `json:"languages"`
	Filter       repo.FilterState  `json:"filter"`
	Error        string            `json:"error,omitempty"`
	ErrorKind    ErrorKind         `json:"errorKind,omitempty"`
	Notice       string            `json:"notice,omitempty"`

	// Searched is set once any search has passed validation.
	Searched bool `json:"searched"`
}

// Placeholder returns the text to show instead of the repository list, or
// "" when the list (or a loading indicator or error) should be shown.
func (v View) Placeholder() string {
	switch {
	case v.Loading || v.Error != "":
		return ""
	case !v.Searched:
		return PromptMessage
	case len(v.Repositories) == 0:
		return v.Notice
	case len(v.Visible) == 0:
		return NoMatchesMessage
	default:
		return ""
	}
}

// Failed reports whether the view carries an error.
func (v View) Failed() bool { return v.Error != "" }
