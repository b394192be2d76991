package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/harborchat/harbor/internal/gate/domain"
)

const (
	// DefaultTTL is the session lifetime when none is configured.
	// Independent of the provider bearer token's lifetime: the gateway
	// never refreshes the bearer, so session expiry forces a full
	// re-authentication.
	DefaultTTL = 7 * 24 * time.Hour

	signingKeySize = 32
	keyDerivation  = "harbor/session-signing/v1"
)

var (
	ErrExpired = errors.New("session: token expired")
	ErrInvalid = errors.New("session: token invalid")
)

// Issuer mints and validates signed session tokens. Sessions are
// stateless: validity is entirely signature plus expiry, so there is no
// revocation - short TTLs and re-authentication cover that.
type Issuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewIssuer derives the HS256 signing key from the configured secret.
// The secret never signs directly; HKDF keeps the signing key
// domain-separated from any other use of the same secret.
func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret unset")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	key := make([]byte, signingKeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyDerivation))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("session: deriving signing key: %w", err)
	}

	return &Issuer{key: key, issuer: issuer, ttl: ttl}, nil
}

// TTL returns the configured session lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue encodes identity and optional bearer token into a signed,
// expiring session token.
func (i *Issuer) Issue(identity domain.Identity, bearer domain.BearerToken) (string, error) {
	claims := deriveClaims(identity, bearer, i.issuer, i.ttl, time.Now().UTC())

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("session: signing token: %w", err)
	}
	return signed, nil
}

// Validate checks signature and expiry and returns the decoded session.
// An expired token returns ErrExpired; every other defect returns
// ErrInvalid.
func (i *Issuer) Validate(token string) (Session, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return i.key, nil
	}, jwt.WithIssuer(i.issuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrExpired
		}
		return Session{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !parsed.Valid {
		return Session{}, ErrInvalid
	}

	return claims.session(), nil
}
