// Package identity models who the current user is, as reported by the authentication subsystem.
package identity

import "fmt"

// Kind enumerates the resolution states of an Identity.
type Kind int

const (
	// KindUnknown means the identity has not been resolved yet.
	KindUnknown Kind = iota
	// KindNone means the user is confirmed logged out.
	KindNone
	// KindPresent means a user is logged in.
	KindPresent
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindNone:
		return "none"
	case KindPresent:
		return "present"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Identity is the tri-state current user. The zero value is Unknown.
// Identities are comparable with ==.
type Identity struct {
	kind   Kind
	userID string
}

// Unknown returns an unresolved identity.
func Unknown() Identity { return Identity{kind: KindUnknown} }

// None returns a logged-out identity.
func None() Identity { return Identity{kind: KindNone} }

// Present returns the identity of userID. An empty userID yields None.
func Present(userID string) Identity {
	if userID == "" {
		return None()
	}
	return Identity{kind: KindPresent, userID: userID}
}

// Kind returns the resolution state.
func (i Identity) Kind() Kind { return i.kind }

// UserID returns the user identifier and whether one is present.
func (i Identity) UserID() (string, bool) {
	return i.userID, i.kind == KindPresent
}

// IsPresent reports whether a user is logged in.
func (i Identity) IsPresent() bool { return i.kind == KindPresent }

func (i Identity) String() string {
	if i.kind == KindPresent {
		return "present(" + i.userID + ")"
	}
	return i.kind.String()
}
