package github

import (
	"github.com/matzehuels/repoexplorer/pkg/errors"
)

// Kind classifies a [Client.FetchRepositories] failure.
type Kind string

const (
	KindNone         Kind = ""
	KindTransport    Kind = "transport"     // unreachable, timed out, or unreadable reply
	KindRemoteStatus Kind = "remote_status" // non-2xx HTTP status
	KindRemoteError  Kind = "remote_error"  // GraphQL errors payload
	KindNotFound     Kind = "not_found"     // no such user
)

// KindOf maps err to its fetch error kind. Errors without a recognised
// code count as transport failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeRemoteStatus:
		return KindRemoteStatus
	case errors.ErrCodeRemoteError:
		return KindRemoteError
	case errors.ErrCodeNotFound:
		return KindNotFound
	default:
		return KindTransport
	}
}

// StatusCode returns the HTTP status of a KindRemoteStatus error, or 0.
func StatusCode(err error) int {
	return errors.StatusCode(err)
}

// IsTimeout reports whether err is a transport failure caused by the
// request deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, errors.ErrCodeTimeout)
}
