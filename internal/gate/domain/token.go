package domain

// GrantKind is the OAuth2 acquisition mode a bearer token came from.
type GrantKind string

const (
	GrantPassword          GrantKind = "password"
	GrantClientCredentials GrantKind = "client_credentials"
	GrantAuthorizationCode GrantKind = "authorization_code"
)

// BearerToken is an opaque access token obtained from the identity
// provider. It is owned by the authentication call that produced it
// until embedded into a session, and is never logged or written to the
// local store.
//
// Tokens from the client_credentials grant are app-scoped: they
// authorize profile lookups but must never be treated as a user's
// personal access token.
type BearerToken struct {
	Token string
	Grant GrantKind
	Scope string
}

// IsZero reports whether no token is present. The browser OAuth flow's
// public-client variant produces sessions without one.
func (t BearerToken) IsZero() bool { return t.Token == "" }

// AppScoped reports whether the token authorizes the application rather
// than an end user.
func (t BearerToken) AppScoped() bool { return t.Grant == GrantClientCredentials }
