package domain

// IdentityKind distinguishes anonymous visitors from registered users.
type IdentityKind string

const (
	KindGuest   IdentityKind = "guest"
	KindRegular IdentityKind = "regular"
)

// DefaultRole is applied when the provider profile carries no tag.
const DefaultRole = "user"

// Identity is the external representation of a person or anonymous
// visitor, re-derived on every successful authentication and immutable
// for the lifetime of a session.
type Identity struct {
	// SubjectID is the stable external identifier. For registered users
	// it has the form "org/username"; for guests it is a random UUID.
	SubjectID     string
	DisplayName   string
	Email         string
	EmailVerified bool
	AvatarURL     string
	Role          string
	Kind          IdentityKind
}

// IsGuest reports whether the identity was provisioned anonymously.
func (i Identity) IsGuest() bool { return i.Kind == KindGuest }
