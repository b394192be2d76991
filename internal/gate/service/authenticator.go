package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/idp"
)

// phonePattern matches the login names that double as phone numbers;
// the provider wants those passed as a phone hint on profile lookup.
var phonePattern = regexp.MustCompile(`^\d{11}$`)

// Authenticator executes the provider-specific login protocols and
// produces a verified identity plus, for credentialed flows, a bearer
// token. One pass per call, no persisted state.
type Authenticator struct {
	IdP *idp.Client
}

// Authenticate dispatches on the credential variant. It is total: it
// returns exactly one of (identity, token) or an error, and any step's
// failure short-circuits the whole call - no partial identity is ever
// returned.
func (a *Authenticator) Authenticate(
	ctx context.Context,
	cred domain.Credential,
) (domain.Identity, domain.BearerToken, error) {
	switch c := cred.(type) {
	case domain.GuestCredential:
		return a.authenticateGuest(), domain.BearerToken{}, nil
	case domain.PasswordCredential:
		return a.authenticatePassword(ctx, c)
	case domain.CodeCredential:
		return a.authenticateCode(ctx, c)
	default:
		return domain.Identity{}, domain.BearerToken{}, fmt.Errorf("unsupported credential type %T", cred)
	}
}

// authenticateGuest mints a fresh anonymous identity. No network call,
// no bearer token; the random subject id makes collisions negligible.
func (a *Authenticator) authenticateGuest() domain.Identity {
	return domain.Identity{
		SubjectID:   uuid.NewString(),
		DisplayName: "Guest",
		Role:        domain.DefaultRole,
		Kind:        domain.KindGuest,
	}
}

func (a *Authenticator) authenticatePassword(
	ctx context.Context,
	c domain.PasswordCredential,
) (domain.Identity, domain.BearerToken, error) {
	token, err := a.IdP.ExchangePassword(ctx, c.Username, c.Password, "")
	if err != nil {
		return domain.Identity{}, domain.BearerToken{}, err
	}

	identity, err := a.IdP.FetchProfile(ctx, a.IdP.SubjectID(c.Username), token, phoneHint(c.Username))
	if err != nil {
		return domain.Identity{}, domain.BearerToken{}, err
	}

	return identity, token, nil
}

// authenticateCode runs the deliberate two-token flow: the verification
// code proves the user's identity but yields no token, so an app-scoped
// client_credentials token authorizes the profile lookup. That app
// token must never be used as the user's personal access token for
// anything beyond lookup.
func (a *Authenticator) authenticateCode(
	ctx context.Context,
	c domain.CodeCredential,
) (domain.Identity, domain.BearerToken, error) {
	subjectID, err := a.IdP.VerifySigninCode(ctx, c.Phone, c.Code)
	if err != nil {
		return domain.Identity{}, domain.BearerToken{}, err
	}

	appToken, err := a.IdP.ExchangeClientCredentials(ctx, "")
	if err != nil {
		return domain.Identity{}, domain.BearerToken{}, err
	}

	identity, err := a.IdP.FetchProfile(ctx, subjectID, appToken, c.Phone)
	if err != nil {
		return domain.Identity{}, domain.BearerToken{}, err
	}

	return identity, appToken, nil
}

func phoneHint(username string) string {
	if phonePattern.MatchString(username) {
		return username
	}
	return ""
}
