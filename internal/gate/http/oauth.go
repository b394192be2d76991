package http

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/service"
	"github.com/harborchat/harbor/internal/gate/session"
	"github.com/harborchat/harbor/pkg/httpx"
	"github.com/harborchat/harbor/pkg/slogx"
	"github.com/harborchat/harbor/pkg/urlx"
)

const (
	stateCookie    = "harbor_oauth_state"
	verifierCookie = "harbor_oauth_verifier"
	resumeCookie   = "harbor_oauth_resume"

	// How long the browser has to complete the round trip to the
	// provider before the transient cookies expire.
	oauthFlowTTL = 5 * time.Minute
)

// OAuthHandler drives the browser authorization-code flow with PKCE.
// Sessions minted here carry no provider token: the flow proves
// identity at the provider's own pages, and nothing downstream needs
// delegated API access for these users.
type OAuthHandler struct {
	Sync   *service.Synchronizer
	Issuer *session.Issuer

	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier

	PublicOrigin string
	Secure       bool
}

// NewOAuthHandler discovers the provider's OIDC endpoints. Discovery is
// a startup-time network call, so a dead provider surfaces here rather
// than on the first login.
func NewOAuthHandler(
	ctx context.Context,
	issuerURL, clientID, clientSecret, publicOrigin string,
	sync *service.Synchronizer,
	sessions *session.Issuer,
	secure bool,
) (*OAuthHandler, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery against %s: %w", issuerURL, err)
	}

	return &OAuthHandler{
		Sync:   sync,
		Issuer: sessions,
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  publicOrigin + "/api/auth/oauth/callback",
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier:     provider.Verifier(&oidc.Config{ClientID: clientID}),
		PublicOrigin: publicOrigin,
		Secure:       secure,
	}, nil
}

// Start godoc
//
//	@Summary		Begin the browser sign-in flow
//	@Description	Redirects to the identity provider's authorization page with PKCE.
//	@Tags			Auth
//	@Param			redirectUrl	query	string	false	"Absolute URL to resume after sign-in"
//	@Success		302
//	@Router			/api/auth/oauth/start [get]
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	state := randomToken()
	verifier := oauth2.GenerateVerifier()
	resume := urlx.Normalize(r.URL.Query().Get("redirectUrl"), h.PublicOrigin)

	for name, value := range map[string]string{
		stateCookie:    state,
		verifierCookie: verifier,
		resumeCookie:   resume,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/api/auth/oauth/",
			MaxAge:   int(oauthFlowTTL.Seconds()),
			HttpOnly: true,
			Secure:   h.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	http.Redirect(w, r, h.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), http.StatusFound)
}

// Callback godoc
//
//	@Summary	Complete the browser sign-in flow
//	@Tags		Auth
//	@Success	302
//	@Failure	400	{object}	httpx.APIError
//	@Router		/api/auth/oauth/callback [get]
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	stateC, err := r.Cookie(stateCookie)
	if err != nil || stateC.Value == "" || r.URL.Query().Get("state") != stateC.Value {
		httpx.NewAPIError(http.StatusBadRequest, "invalid_state", "state mismatch or expired sign-in attempt").WriteError(w)
		return
	}
	verifierC, err := r.Cookie(verifierCookie)
	if err != nil || verifierC.Value == "" {
		httpx.NewAPIError(http.StatusBadRequest, "invalid_state", "missing code verifier").WriteError(w)
		return
	}

	resume := h.PublicOrigin
	if c, err := r.Cookie(resumeCookie); err == nil && c.Value != "" {
		resume = urlx.Normalize(c.Value, h.PublicOrigin)
	}
	h.clearFlowCookies(w)

	token, err := h.oauth.Exchange(ctx, r.URL.Query().Get("code"), oauth2.VerifierOption(verifierC.Value))
	if err != nil {
		log.Error("authorization code exchange failed", "err", err)
		httpx.NewAPIError(http.StatusBadRequest, "exchange_failed", "authorization code was not accepted").WriteError(w)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		httpx.NewAPIError(http.StatusBadRequest, "exchange_failed", "provider returned no id_token").WriteError(w)
		return
	}

	idToken, err := h.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		log.Error("id token verification failed", "err", err)
		httpx.NewAPIError(http.StatusBadRequest, "exchange_failed", "id_token failed verification").WriteError(w)
		return
	}

	identity, err := identityFromIDToken(idToken)
	if err != nil {
		log.Error("id token claims unusable", "err", err)
		httpx.NewAPIError(http.StatusBadRequest, "exchange_failed", "id_token claims unusable").WriteError(w)
		return
	}

	h.Sync.Reconcile(ctx, identity)

	signed, err := h.Issuer.Issue(identity, domain.BearerToken{})
	if err != nil {
		log.Error("session issue failed", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	sess, err := h.Issuer.Validate(signed)
	if err != nil {
		log.Error("fresh session failed validation", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	session.SetCookie(w, signed, sess.ExpiresAt, h.Secure)
	http.Redirect(w, r, resume, http.StatusFound)
}

func (h *OAuthHandler) clearFlowCookies(w http.ResponseWriter) {
	for _, name := range []string{stateCookie, verifierCookie, resumeCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/api/auth/oauth/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func identityFromIDToken(t *oidc.IDToken) (domain.Identity, error) {
	var claims struct {
		Owner         string `json:"owner"`
		Name          string `json:"name"`
		DisplayName   string `json:"displayName"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Avatar        string `json:"avatar"`
		Tag           string `json:"tag"`
	}
	if err := t.Claims(&claims); err != nil {
		return domain.Identity{}, err
	}
	if claims.Owner == "" || claims.Name == "" {
		return domain.Identity{}, fmt.Errorf("id token missing owner/name claims")
	}

	name := claims.DisplayName
	if name == "" {
		name = claims.Name
	}
	role := claims.Tag
	if role == "" {
		role = domain.DefaultRole
	}

	return domain.Identity{
		SubjectID:     claims.Owner + "/" + claims.Name,
		DisplayName:   name,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		AvatarURL:     claims.Avatar,
		Role:          role,
		Kind:          domain.KindRegular,
	}, nil
}

func randomToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
