package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/session"
)

const testOrigin = "http://example.com:3005"

func newTestIssuer(t *testing.T) *session.Issuer {
	t.Helper()

	issuer, err := session.NewIssuer("test-secret", testOrigin, time.Hour)
	require.NoError(t, err)
	return issuer
}

func newAdmission(t *testing.T) *Admission {
	t.Helper()

	return &Admission{
		Issuer:       newTestIssuer(t),
		PublicOrigin: testOrigin,
		GuestPath:    "/api/auth/guest",
		HomePath:     "/",
	}
}

func sessionCookie(t *testing.T, issuer *session.Issuer, identity domain.Identity) *http.Cookie {
	t.Helper()

	signed, err := issuer.Issue(identity, domain.BearerToken{})
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: signed}
}

func regularIdentity() domain.Identity {
	return domain.Identity{SubjectID: "harbor/alice", DisplayName: "Alice", Role: "user", Kind: domain.KindRegular}
}

func guestIdentity() domain.Identity {
	return domain.Identity{SubjectID: "11111111-2222-4333-8444-555555555555", DisplayName: "Guest", Kind: domain.KindGuest}
}

func TestDecide(t *testing.T) {
	t.Parallel()

	a := newAdmission(t)

	t.Run("bypass paths always allowed", func(t *testing.T) {
		for _, path := range []string{"/ping", "/livez", "/readyz", "/api/auth/login", "/api/auth/guest", "/casdoor-api/api/get-account", "/swagger/index.html"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			decision, _ := a.Decide(req)
			require.Equal(t, DecisionAllow, decision, "path %s", path)
		}
	})

	t.Run("no token on app path provisions a guest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://localhost:3000/chat/9?tab=files", nil)
		decision, target := a.Decide(req)
		require.Equal(t, DecisionGuest, decision)
		// The target is rewritten to the canonical origin, path and
		// query intact.
		require.Equal(t, testOrigin+"/chat/9?tab=files", target)
	})

	t.Run("no token on auth pages allowed", func(t *testing.T) {
		for _, path := range []string{"/login", "/register"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			decision, _ := a.Decide(req)
			require.Equal(t, DecisionAllow, decision, "path %s", path)
		}
	})

	t.Run("garbage token behaves like no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/9", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "not-a-jwt"})
		decision, _ := a.Decide(req)
		require.Equal(t, DecisionGuest, decision)
	})

	t.Run("expired token behaves like no token", func(t *testing.T) {
		expired, err := session.NewIssuer("test-secret", testOrigin, time.Nanosecond)
		require.NoError(t, err)
		signed, err := expired.Issue(regularIdentity(), domain.BearerToken{})
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)

		req := httptest.NewRequest(http.MethodGet, "/chat/9", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: signed})
		decision, _ := a.Decide(req)
		require.Equal(t, DecisionGuest, decision)
	})

	t.Run("valid regular token allowed on app paths", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/9", nil)
		req.AddCookie(sessionCookie(t, a.Issuer, regularIdentity()))
		decision, _ := a.Decide(req)
		require.Equal(t, DecisionAllow, decision)
	})

	t.Run("valid regular token bounced off auth pages", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(sessionCookie(t, a.Issuer, regularIdentity()))
		decision, _ := a.Decide(req)
		require.Equal(t, DecisionHome, decision)
	})

	t.Run("guest token may visit auth pages to upgrade", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(sessionCookie(t, a.Issuer, guestIdentity()))
		decision, _ := a.Decide(req)
		require.Equal(t, DecisionAllow, decision)
	})

	t.Run("guest token allowed on app paths", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/9", nil)
		req.AddCookie(sessionCookie(t, a.Issuer, guestIdentity()))
		decision, _ := a.Decide(req)
		require.Equal(t, DecisionAllow, decision)
	})
}

func TestAdmissionMiddleware(t *testing.T) {
	t.Parallel()

	a := newAdmission(t)

	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("guest redirect carries escaped target", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://internal-host:3000/chat/9?tab=files", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		loc := rec.Header().Get("Location")
		require.True(t, strings.HasPrefix(loc, "/api/auth/guest?redirectUrl="))

		raw := strings.TrimPrefix(loc, "/api/auth/guest?redirectUrl=")
		target, err := url.QueryUnescape(raw)
		require.NoError(t, err)
		require.Equal(t, testOrigin+"/chat/9?tab=files", target)
	})

	t.Run("x-forwarded-proto wins for the target scheme", func(t *testing.T) {
		httpsOrigin := "https://example.com"
		secure := &Admission{Issuer: a.Issuer, PublicOrigin: httpsOrigin, GuestPath: "/api/auth/guest", HomePath: "/"}
		h := secure.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "http://edge/chat", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		raw := strings.TrimPrefix(rec.Header().Get("Location"), "/api/auth/guest?redirectUrl=")
		target, err := url.QueryUnescape(raw)
		require.NoError(t, err)
		require.Equal(t, httpsOrigin+"/chat", target)
	})

	t.Run("registered user redirected home from login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(sessionCookie(t, a.Issuer, regularIdentity()))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("valid session reaches handler with context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/9", nil)
		req.AddCookie(sessionCookie(t, a.Issuer, regularIdentity()))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bypass path reaches handler without session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}
