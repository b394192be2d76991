package urlx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	const origin = "http://example.com:3005"

	t.Run("rewrites scheme and host", func(t *testing.T) {
		got := Normalize("http://localhost:3000/chat/9?tab=files#top", origin)
		require.Equal(t, "http://example.com:3005/chat/9?tab=files#top", got)
	})

	t.Run("https target keeps path on http origin", func(t *testing.T) {
		got := Normalize("https://10.0.0.4/settings", origin)
		require.Equal(t, "http://example.com:3005/settings", got)
	})

	t.Run("matching origin is unchanged", func(t *testing.T) {
		got := Normalize("http://example.com:3005/chat/9", origin)
		require.Equal(t, "http://example.com:3005/chat/9", got)
	})

	t.Run("relative target resolves against origin", func(t *testing.T) {
		got := Normalize("/chat/9", origin)
		require.Equal(t, "http://example.com:3005/chat/9", got)
	})

	t.Run("empty target falls back to origin", func(t *testing.T) {
		require.Equal(t, origin, Normalize("", origin))
	})

	t.Run("unparsable target falls back to origin", func(t *testing.T) {
		require.Equal(t, origin, Normalize("http://exa mple\x7f", origin))
	})

	t.Run("unparsable origin leaves target alone", func(t *testing.T) {
		require.Equal(t, "/chat/9", Normalize("/chat/9", "not-an-origin"))
	})
}

func TestSameOrigin(t *testing.T) {
	t.Parallel()

	require.True(t, SameOrigin("http://example.com/x", "http://example.com"))
	require.True(t, SameOrigin("HTTP://EXAMPLE.COM/x", "http://example.com"))
	require.False(t, SameOrigin("https://example.com/x", "http://example.com"))
	require.False(t, SameOrigin("http://other.com/x", "http://example.com"))
}
