package domain

import "github.com/google/uuid"

// IdentitySource tags how an identity was resolved. Verified identities come
// from a session token checked against the session store. Unsigned identities
// come from the admin panel's base64 cookie, which carries no signature and is
// trusted on parse alone; callers that care about the difference must check
// the tag.
type IdentitySource int

const (
	IdentityVerified IdentitySource = iota
	IdentityUnsigned
)

// Identity is the resolved caller of a request.
type Identity struct {
	ID      uuid.UUID
	Email   string
	Name    string
	IsAdmin bool
	Source  IdentitySource
}
