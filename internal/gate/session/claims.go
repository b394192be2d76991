package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/pkg/idx"
)

// Claims is the signed session token payload. The subject is the
// identity's subject id; the bearer token rides along only when the
// authenticator produced one, so downstream collaborators can act on
// the user's behalf against the provider.
type Claims struct {
	jwt.RegisteredClaims

	Kind   string `json:"kind"`
	Role   string `json:"role,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`

	// AccessToken is the provider bearer token ("act" to keep the
	// encoded session compact). Never exposed through Project.
	AccessToken string `json:"act,omitempty"`
	Grant       string `json:"grant,omitempty"`
}

// Session is a validated session as seen by in-process consumers.
type Session struct {
	Identity  domain.Identity
	Bearer    domain.BearerToken
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PublicSessionView is the session projection safe to hand to any
// consumer that is not making an authenticated upstream call. It never
// carries the raw bearer token.
type PublicSessionView struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Role      string    `json:"role,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// deriveClaims maps an authenticated identity (and optional bearer
// token) into session claims. Pure function; Issue signs the result.
func deriveClaims(
	identity domain.Identity,
	bearer domain.BearerToken,
	issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   identity.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
		Kind:   string(identity.Kind),
		Role:   identity.Role,
		Name:   identity.DisplayName,
		Email:  identity.Email,
		Avatar: identity.AvatarURL,
	}
	if !bearer.IsZero() {
		c.AccessToken = bearer.Token
		c.Grant = string(bearer.Grant)
	}
	return c
}

// session reverses deriveClaims for a verified token.
func (c Claims) session() Session {
	s := Session{
		Identity: domain.Identity{
			SubjectID:   c.Subject,
			DisplayName: c.Name,
			Email:       c.Email,
			AvatarURL:   c.Avatar,
			Role:        c.Role,
			Kind:        domain.IdentityKind(c.Kind),
		},
	}
	if c.AccessToken != "" {
		s.Bearer = domain.BearerToken{
			Token: c.AccessToken,
			Grant: domain.GrantKind(c.Grant),
		}
	}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

// Project strips everything a UI-facing consumer must not see.
func Project(s Session) PublicSessionView {
	return PublicSessionView{
		ID:        s.Identity.SubjectID,
		Kind:      string(s.Identity.Kind),
		Role:      s.Identity.Role,
		Name:      s.Identity.DisplayName,
		Email:     s.Identity.Email,
		Avatar:    s.Identity.AvatarURL,
		ExpiresAt: s.ExpiresAt,
	}
}
