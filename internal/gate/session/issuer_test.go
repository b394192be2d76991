package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/harborchat/harbor/internal/gate/domain"
)

func testIdentity() domain.Identity {
	return domain.Identity{
		SubjectID:     "harbor/alice",
		DisplayName:   "Alice",
		Email:         "alice@example.com",
		EmailVerified: true,
		AvatarURL:     "https://cdn.example.com/alice.png",
		Role:          "user",
		Kind:          domain.KindRegular,
	}
}

func TestIssueValidateRoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := NewIssuer("test-secret", "http://localhost:3005", time.Hour)
	require.NoError(t, err)

	bearer := domain.BearerToken{Token: "provider-token", Grant: domain.GrantPassword, Scope: "openid"}

	signed, err := issuer.Issue(testIdentity(), bearer)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	sess, err := issuer.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "harbor/alice", sess.Identity.SubjectID)
	require.Equal(t, "Alice", sess.Identity.DisplayName)
	require.Equal(t, "alice@example.com", sess.Identity.Email)
	require.Equal(t, domain.KindRegular, sess.Identity.Kind)
	require.Equal(t, "user", sess.Identity.Role)
	require.Equal(t, "provider-token", sess.Bearer.Token)
	require.Equal(t, domain.GrantPassword, sess.Bearer.Grant)
	require.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)
}

func TestValidateGuestKind(t *testing.T) {
	t.Parallel()

	issuer, err := NewIssuer("test-secret", "http://localhost:3005", time.Hour)
	require.NoError(t, err)

	guest := domain.Identity{
		SubjectID:   "7d33cbe1-0000-4000-8000-000000000000",
		DisplayName: "Guest",
		Role:        "user",
		Kind:        domain.KindGuest,
	}

	signed, err := issuer.Issue(guest, domain.BearerToken{})
	require.NoError(t, err)

	sess, err := issuer.Validate(signed)
	require.NoError(t, err)
	require.True(t, sess.Identity.IsGuest())
	require.True(t, sess.Bearer.IsZero())
}

func TestValidateExpired(t *testing.T) {
	t.Parallel()

	issuer, err := NewIssuer("test-secret", "http://localhost:3005", time.Hour)
	require.NoError(t, err)

	claims := deriveClaims(
		testIdentity(),
		domain.BearerToken{},
		issuer.issuer,
		time.Minute,
		time.Now().UTC().Add(-2*time.Minute),
	)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.key)
	require.NoError(t, err)

	_, err = issuer.Validate(signed)
	require.ErrorIs(t, err, ErrExpired)
}

func TestValidateRejectsTampering(t *testing.T) {
	t.Parallel()

	issuer, err := NewIssuer("test-secret", "http://localhost:3005", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(testIdentity(), domain.BearerToken{})
	require.NoError(t, err)

	t.Run("flipped payload byte", func(t *testing.T) {
		raw := []byte(signed)
		raw[len(raw)/2] ^= 0x01
		_, err := issuer.Validate(string(raw))
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("different secret", func(t *testing.T) {
		other, err := NewIssuer("other-secret", "http://localhost:3005", time.Hour)
		require.NoError(t, err)
		_, err = other.Validate(signed)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("different issuer claim", func(t *testing.T) {
		other, err := NewIssuer("test-secret", "http://elsewhere", time.Hour)
		require.NoError(t, err)
		_, err = other.Validate(signed)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := issuer.Validate("")
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestProjectStripsBearer(t *testing.T) {
	t.Parallel()

	issuer, err := NewIssuer("test-secret", "http://localhost:3005", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(testIdentity(), domain.BearerToken{
		Token: "provider-token",
		Grant: domain.GrantPassword,
	})
	require.NoError(t, err)

	sess, err := issuer.Validate(signed)
	require.NoError(t, err)

	view := Project(sess)
	require.Equal(t, "harbor/alice", view.ID)
	require.Equal(t, "regular", view.Kind)
	require.Equal(t, "Alice", view.Name)

	encoded, err := json.Marshal(view)
	require.NoError(t, err)
	require.NotContains(t, string(encoded), "provider-token")
}

func TestEachSessionGetsUniqueToken(t *testing.T) {
	t.Parallel()

	issuer, err := NewIssuer("test-secret", "http://localhost:3005", time.Hour)
	require.NoError(t, err)

	// jti is a fresh ULID per Issue, so two tokens for the same
	// identity never collide.
	a, err := issuer.Issue(testIdentity(), domain.BearerToken{})
	require.NoError(t, err)
	b, err := issuer.Issue(testIdentity(), domain.BearerToken{})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
