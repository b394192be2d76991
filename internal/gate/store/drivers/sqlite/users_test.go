package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "gate_test.db")
	st, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestUpsertAndGetUser(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	users := st.Users()
	ctx := context.Background()

	verified := time.Now().UTC().Truncate(time.Second)
	err := users.UpsertUser(ctx, domain.LocalUserRecord{
		ID:              "harbor/alice",
		Name:            "Alice",
		Email:           "alice@example.com",
		EmailVerifiedAt: &verified,
		AvatarURL:       "https://cdn.example.com/alice.png",
	})
	require.NoError(t, err)

	got, err := users.GetUserByID(ctx, "harbor/alice")
	require.NoError(t, err)
	require.Equal(t, "harbor/alice", got.ID)
	require.Equal(t, "Alice", got.Name)
	require.Equal(t, "alice@example.com", got.Email)
	require.NotNil(t, got.EmailVerifiedAt)
	require.WithinDuration(t, verified, *got.EmailVerifiedAt, time.Second)
	require.False(t, got.CreatedAt.IsZero())
	require.False(t, got.UpdatedAt.IsZero())
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	_, err := st.Users().GetUserByID(context.Background(), "harbor/ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertRefreshesMutableFields(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	users := st.Users()
	ctx := context.Background()

	require.NoError(t, users.UpsertUser(ctx, domain.LocalUserRecord{
		ID:    "harbor/alice",
		Name:  "Alice",
		Email: "alice@example.com",
	}))

	first, err := users.GetUserByID(ctx, "harbor/alice")
	require.NoError(t, err)

	require.NoError(t, users.UpsertUser(ctx, domain.LocalUserRecord{
		ID:        "harbor/alice",
		Name:      "Alice Cooper",
		AvatarURL: "https://cdn.example.com/new.png",
	}))

	got, err := users.GetUserByID(ctx, "harbor/alice")
	require.NoError(t, err)
	require.Equal(t, "Alice Cooper", got.Name)
	require.Equal(t, "https://cdn.example.com/new.png", got.AvatarURL)
	// Clearing works: empty email overwrites the stored one.
	require.Empty(t, got.Email)
	require.Nil(t, got.EmailVerifiedAt)
	// Insert timestamps survive updates.
	require.Equal(t, first.CreatedAt, got.CreatedAt)

	count, err := users.CountUsers(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestCountUsers(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	users := st.Users()
	ctx := context.Background()

	count, err := users.CountUsers(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	for _, id := range []string{"harbor/a", "harbor/b", "harbor/c"} {
		require.NoError(t, users.UpsertUser(ctx, domain.LocalUserRecord{ID: id, Name: id}))
	}

	count, err = users.CountUsers(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}
