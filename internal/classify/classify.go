// Package classify decides whether a session token names a local session or
// a cloud-hosted one.
//
// The check is purely lexical: a token addresses a remote session if and only
// if it has the canonical 36-character UUID layout (8-4-4-4-12 hex groups).
// No I/O and no existence validation happen here; a well-formed remote id
// that does not exist is only discovered when the control plane rejects it.
package classify

import "github.com/google/uuid"

// Kind is the classification of a session token.
type Kind int

const (
	// Local names a local session reached over a unix socket.
	Local Kind = iota

	// Remote addresses a cloud-hosted session by its identifier.
	Remote
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	if k == Remote {
		return "remote"
	}
	return "local"
}

// Token classifies a session token.
//
// uuid.Parse accepts several layouts (urn prefix, braces, 32 chars without
// hyphens); the length guard pins it to the canonical hyphenated form, which
// is the only shape reserved for remote identifiers.
func Token(token string) Kind {
	if len(token) != 36 {
		return Local
	}
	if _, err := uuid.Parse(token); err != nil {
		return Local
	}
	return Remote
}

// IsRemote reports whether the token addresses a cloud-hosted session.
func IsRemote(token string) bool {
	return Token(token) == Remote
}
