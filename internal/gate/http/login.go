package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/idp"
	"github.com/harborchat/harbor/internal/gate/service"
	"github.com/harborchat/harbor/internal/gate/session"
	"github.com/harborchat/harbor/pkg/httpx"
	"github.com/harborchat/harbor/pkg/slogx"
)

// LoginHandler serves POST /api/auth/login for the password and
// verification-code flows. A successful login reconciles the local user
// projection and sets the session cookie.
type LoginHandler struct {
	Auth   *service.Authenticator
	Sync   *service.Synchronizer
	Issuer *session.Issuer
	Secure bool
}

type loginRequest struct {
	Method   string `json:"method"` // "password" or "code"
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Code     string `json:"code"`
}

// ServeHTTP godoc
//
//	@Summary		Sign in
//	@Description	Authenticates with a username/password pair or a phone/verification-code pair and issues a session cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	session.PublicSessionView
//	@Failure		400		{object}	httpx.APIError
//	@Failure		401		{object}	httpx.APIError
//	@Failure		503		{object}	httpx.APIError
//	@Router			/api/auth/login [post]
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrInvalidFormBody.WriteError(w)
		return
	}

	var cred domain.Credential
	switch req.Method {
	case "code":
		if req.Phone == "" || req.Code == "" {
			httpx.ErrInvalidRequest.WriteError(w)
			return
		}
		cred = domain.CodeCredential{Phone: req.Phone, Code: req.Code}
	case "password", "":
		if req.Username == "" || req.Password == "" {
			httpx.ErrInvalidRequest.WriteError(w)
			return
		}
		cred = domain.PasswordCredential{Username: req.Username, Password: req.Password}
	default:
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	identity, bearer, err := h.Auth.Authenticate(ctx, cred)
	if err != nil {
		writeAuthError(w, log, err)
		return
	}

	// Best-effort: a local-store outage must not block the session.
	h.Sync.Reconcile(ctx, identity)

	signed, err := h.Issuer.Issue(identity, bearer)
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
	httpx.WriteJSON(w, http.StatusOK, session.Project(sess))
}

// writeAuthError maps provider errors to JSON responses. User-correctable
// failures go back verbatim; everything else is a gateway-side problem.
func writeAuthError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, idp.ErrInvalidCredentials):
		httpx.NewAPIError(http.StatusUnauthorized, "invalid_grant", "invalid username or password").WriteError(w)
	case errors.Is(err, idp.ErrInvalidCode):
		httpx.NewAPIError(http.StatusUnauthorized, "invalid_code", "wrong or expired verification code").WriteError(w)
	case errors.Is(err, idp.ErrCaptchaRequired):
		httpx.NewAPIError(http.StatusConflict, "captcha_required", "solve the captcha and retry").WriteError(w)
	case errors.Is(err, idp.ErrProviderUnavailable):
		log.Error("identity provider unavailable", "err", err)
		httpx.NewAPIError(http.StatusServiceUnavailable, "provider_unavailable", "identity provider is unreachable").WriteError(w)
	default:
		log.Error("authentication failed", "err", err)
		httpx.ErrServerError.WriteError(w)
	}
}

// LogoutHandler serves POST /api/auth/logout. Sessions are stateless,
// so logout is purely clearing the cookie; the token stays valid until
// expiry on any client that kept a copy.
type LogoutHandler struct {
	Secure bool
}

// ServeHTTP godoc
//
//	@Summary	Sign out
//	@Tags		Auth
//	@Success	204
//	@Router		/api/auth/logout [post]
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	session.ClearCookie(w, h.Secure)
	w.WriteHeader(http.StatusNoContent)
}
