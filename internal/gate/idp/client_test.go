package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborchat/harbor/internal/gate/domain"
)

// fakeProvider is an in-process stand-in for the real identity
// provider, implementing just the endpoints the client calls.
type fakeProvider struct {
	srv *httptest.Server

	requireCaptcha bool
	sentCodes      int
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	f := &fakeProvider{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("client_id") != "client-id" || r.PostFormValue("client_secret") != "client-secret" {
			writeJSON(w, map[string]string{"error": "invalid_client"})
			return
		}
		switch r.PostFormValue("grant_type") {
		case "password":
			if r.PostFormValue("username") == "alice" && r.PostFormValue("password") == "secret" {
				writeJSON(w, map[string]string{"access_token": "user-token", "token_type": "Bearer"})
				return
			}
			writeJSON(w, map[string]string{"error": "invalid_grant", "error_description": "wrong credentials"})
		case "client_credentials":
			writeJSON(w, map[string]string{"access_token": "app-token", "token_type": "Bearer"})
		default:
			writeJSON(w, map[string]string{"error": "unsupported_grant_type"})
		}
	})

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Code     string `json:"code"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Code == "482913" {
			writeJSON(w, map[string]string{"status": "ok", "data": "harbor/" + body.Username})
			return
		}
		writeJSON(w, map[string]string{"status": "error", "msg": "wrong code"})
	})

	mux.HandleFunc("GET /api/get-user", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("accessToken") == "" {
			writeJSON(w, map[string]any{"status": "error", "msg": "unauthorized"})
			return
		}
		id := r.URL.Query().Get("id")
		name := strings.TrimPrefix(id, "harbor/")
		writeJSON(w, map[string]any{
			"status": "ok",
			"data": map[string]any{
				"owner":       "harbor",
				"name":        name,
				"displayName": "",
				"phone":       r.URL.Query().Get("phone"),
				"tag":         "",
			},
		})
	})

	mux.HandleFunc("POST /api/send-verification-code", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if f.requireCaptcha && r.PostFormValue("captchaType") == "none" {
			writeJSON(w, map[string]string{"status": "error", "msg": "Turing test failed"})
			return
		}
		f.sentCodes++
		writeJSON(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/get-captcha", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status": "ok",
			"data":   map[string]string{"captchaId": "challenge-1", "captchaImage": "aGk="},
		})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	c, err := NewClient(Config{
		BaseURL:       baseURL,
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		Organization:  "harbor",
		Application:   "harbor-app",
		ApplicationID: "admin/harbor-app",
	})
	require.NoError(t, err)
	return c
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{BaseURL: "http://idp"})
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewClient(Config{ClientID: "x", ClientSecret: "y"})
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestExchangePassword(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	c := testClient(t, f.srv.URL)

	t.Run("valid credentials", func(t *testing.T) {
		tok, err := c.ExchangePassword(context.Background(), "alice", "secret", "")
		require.NoError(t, err)
		require.Equal(t, "user-token", tok.Token)
		require.Equal(t, domain.GrantPassword, tok.Grant)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := c.ExchangePassword(context.Background(), "alice", "nope", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("provider down", func(t *testing.T) {
		down := testClient(t, "http://127.0.0.1:1")
		_, err := down.ExchangePassword(context.Background(), "alice", "secret", "")
		require.ErrorIs(t, err, ErrProviderUnavailable)
	})
}

func TestExchangeClientCredentials(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	c := testClient(t, f.srv.URL)

	tok, err := c.ExchangeClientCredentials(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "app-token", tok.Token)
	require.Equal(t, domain.GrantClientCredentials, tok.Grant)
	require.True(t, tok.AppScoped())
}

func TestVerifySigninCode(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	c := testClient(t, f.srv.URL)

	t.Run("correct code yields subject id", func(t *testing.T) {
		subject, err := c.VerifySigninCode(context.Background(), "13800000001", "482913")
		require.NoError(t, err)
		require.Equal(t, "harbor/13800000001", subject)
	})

	t.Run("wrong code", func(t *testing.T) {
		_, err := c.VerifySigninCode(context.Background(), "13800000001", "000000")
		require.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestSendVerificationCode(t *testing.T) {
	t.Parallel()

	t.Run("without captcha", func(t *testing.T) {
		f := newFakeProvider(t)
		c := testClient(t, f.srv.URL)

		err := c.SendVerificationCode(context.Background(), "13800000001", "login", domain.CaptchaChallenge{})
		require.NoError(t, err)
		require.Equal(t, 1, f.sentCodes)
	})

	t.Run("captcha demanded then satisfied", func(t *testing.T) {
		f := newFakeProvider(t)
		f.requireCaptcha = true
		c := testClient(t, f.srv.URL)

		err := c.SendVerificationCode(context.Background(), "13800000001", "login", domain.CaptchaChallenge{})
		require.ErrorIs(t, err, ErrCaptchaRequired)
		require.Zero(t, f.sentCodes)

		captcha, err := c.FetchCaptcha(context.Background())
		require.NoError(t, err)
		require.Equal(t, "challenge-1", captcha.ChallengeID)

		err = c.SendVerificationCode(context.Background(), "13800000001", "login", domain.CaptchaChallenge{
			ChallengeID: captcha.ChallengeID,
			Proof:       "solved",
		})
		require.NoError(t, err)
		require.Equal(t, 1, f.sentCodes)
	})
}

func TestFetchProfile(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	c := testClient(t, f.srv.URL)

	identity, err := c.FetchProfile(
		context.Background(),
		"harbor/13800000001",
		domain.BearerToken{Token: "app-token", Grant: domain.GrantClientCredentials},
		"13800000001",
	)
	require.NoError(t, err)
	require.Equal(t, "harbor/13800000001", identity.SubjectID)
	require.Equal(t, domain.KindRegular, identity.Kind)
	// No display name on the provider record: the login name stands in.
	require.Equal(t, "13800000001", identity.DisplayName)
	require.Equal(t, domain.DefaultRole, identity.Role)
}

func TestMapProfileDefaults(t *testing.T) {
	t.Parallel()

	t.Run("display name preferred", func(t *testing.T) {
		id := mapProfile("harbor/alice", profilePayload{Owner: "harbor", Name: "alice", DisplayName: "Alice"})
		require.Equal(t, "Alice", id.DisplayName)
	})

	t.Run("tag wins over role", func(t *testing.T) {
		id := mapProfile("harbor/alice", profilePayload{Owner: "harbor", Name: "alice", Tag: "moderator", Role: "user"})
		require.Equal(t, "moderator", id.Role)
	})

	t.Run("subject id rebuilt from owner and name", func(t *testing.T) {
		id := mapProfile("stale/id", profilePayload{Owner: "harbor", Name: "alice"})
		require.Equal(t, "harbor/alice", id.SubjectID)
	})

	t.Run("everything empty falls back to subject id", func(t *testing.T) {
		id := mapProfile("harbor/ghost", profilePayload{})
		require.Equal(t, "harbor/ghost", id.SubjectID)
		require.Equal(t, "harbor/ghost", id.DisplayName)
		require.Equal(t, domain.DefaultRole, id.Role)
	})
}

func TestSubjectID(t *testing.T) {
	t.Parallel()

	f := newFakeProvider(t)
	c := testClient(t, f.srv.URL)
	require.Equal(t, "harbor/alice", c.SubjectID("alice"))
}
