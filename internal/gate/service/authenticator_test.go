package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/idp"
)

// stubProvider fakes the identity provider endpoints the authenticator
// exercises and counts every request it receives.
type stubProvider struct {
	srv      *httptest.Server
	requests atomic.Int64
}

func newStubProvider(t *testing.T) *stubProvider {
	t.Helper()

	s := &stubProvider{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		require.NoError(t, r.ParseForm())
		switch r.PostFormValue("grant_type") {
		case "password":
			if r.PostFormValue("username") == "alice" && r.PostFormValue("password") == "secret" {
				stubJSON(w, map[string]string{"access_token": "user-token"})
				return
			}
			stubJSON(w, map[string]string{"error": "invalid_grant"})
		case "client_credentials":
			stubJSON(w, map[string]string{"access_token": "app-token"})
		}
	})

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		var body struct {
			Username string `json:"username"`
			Code     string `json:"code"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Code == "482913" {
			stubJSON(w, map[string]string{"status": "ok", "data": "harbor/" + body.Username})
			return
		}
		stubJSON(w, map[string]string{"status": "error", "msg": "wrong code"})
	})

	mux.HandleFunc("GET /api/get-user", func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		name := strings.TrimPrefix(r.URL.Query().Get("id"), "harbor/")
		stubJSON(w, map[string]any{
			"status": "ok",
			"data": map[string]any{
				"owner": "harbor",
				"name":  name,
				"email": name + "@example.com",
			},
		})
	})

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func stubJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func stubAuthenticator(t *testing.T, baseURL string) *Authenticator {
	t.Helper()

	client, err := idp.NewClient(idp.Config{
		BaseURL:      baseURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Organization: "harbor",
		Application:  "harbor-app",
	})
	require.NoError(t, err)
	return &Authenticator{IdP: client}
}

func TestAuthenticateGuest(t *testing.T) {
	t.Parallel()

	stub := newStubProvider(t)
	auth := stubAuthenticator(t, stub.srv.URL)

	first, tok, err := auth.Authenticate(context.Background(), domain.GuestCredential{})
	require.NoError(t, err)
	require.True(t, first.IsGuest())
	require.Equal(t, "Guest", first.DisplayName)
	require.Equal(t, domain.DefaultRole, first.Role)
	require.True(t, tok.IsZero())

	second, _, err := auth.Authenticate(context.Background(), domain.GuestCredential{})
	require.NoError(t, err)
	require.NotEqual(t, first.SubjectID, second.SubjectID)

	// Guest provisioning is purely local.
	require.Zero(t, stub.requests.Load())
}

func TestAuthenticatePassword(t *testing.T) {
	t.Parallel()

	stub := newStubProvider(t)
	auth := stubAuthenticator(t, stub.srv.URL)

	t.Run("success", func(t *testing.T) {
		identity, tok, err := auth.Authenticate(context.Background(), domain.PasswordCredential{
			Username: "alice",
			Password: "secret",
		})
		require.NoError(t, err)
		require.Equal(t, "harbor/alice", identity.SubjectID)
		require.Equal(t, domain.KindRegular, identity.Kind)
		require.Equal(t, "user-token", tok.Token)
		require.Equal(t, domain.GrantPassword, tok.Grant)
	})

	t.Run("wrong password short-circuits", func(t *testing.T) {
		before := stub.requests.Load()
		identity, tok, err := auth.Authenticate(context.Background(), domain.PasswordCredential{
			Username: "alice",
			Password: "wrong",
		})
		require.ErrorIs(t, err, idp.ErrInvalidCredentials)
		require.Empty(t, identity.SubjectID)
		require.True(t, tok.IsZero())
		// Only the token exchange fired, no profile lookup.
		require.Equal(t, before+1, stub.requests.Load())
	})
}

func TestAuthenticateCode(t *testing.T) {
	t.Parallel()

	stub := newStubProvider(t)
	auth := stubAuthenticator(t, stub.srv.URL)

	t.Run("correct code runs the two-token flow", func(t *testing.T) {
		identity, tok, err := auth.Authenticate(context.Background(), domain.CodeCredential{
			Phone: "13800000001",
			Code:  "482913",
		})
		require.NoError(t, err)
		require.Equal(t, "harbor/13800000001", identity.SubjectID)
		require.Equal(t, domain.KindRegular, identity.Kind)

		// The session token is the app-scoped one; code signin itself
		// yields none.
		require.Equal(t, "app-token", tok.Token)
		require.True(t, tok.AppScoped())
	})

	t.Run("wrong code stops before any token exchange", func(t *testing.T) {
		before := stub.requests.Load()
		_, _, err := auth.Authenticate(context.Background(), domain.CodeCredential{
			Phone: "13800000001",
			Code:  "000000",
		})
		require.ErrorIs(t, err, idp.ErrInvalidCode)
		require.Equal(t, before+1, stub.requests.Load())
	})
}

func TestPhoneHint(t *testing.T) {
	t.Parallel()

	require.Equal(t, "13800000001", phoneHint("13800000001"))
	require.Empty(t, phoneHint("alice"))
	require.Empty(t, phoneHint("138000000012345"))
}
