package http

import (
	"net/http"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/service"
	"github.com/harborchat/harbor/internal/gate/session"
	"github.com/harborchat/harbor/pkg/slogx"
	"github.com/harborchat/harbor/pkg/urlx"
)

// GuestHandler serves GET /api/auth/guest. It mints an anonymous
// identity, sets the session cookie and bounces back to the original
// target. The redirect happens no matter what: a provisioning failure
// just means the visitor arrives without a session and the admission
// middleware gets another go on the next request.
type GuestHandler struct {
	Auth   *service.Authenticator
	Issuer *session.Issuer

	PublicOrigin string
	Secure       bool
}

// ServeHTTP godoc
//
//	@Summary		Provision a guest session
//	@Description	Issues an anonymous session and redirects to the requested target.
//	@Tags			Auth
//	@Param			redirectUrl	query	string	false	"Absolute URL to resume after provisioning"
//	@Success		302
//	@Router			/api/auth/guest [get]
func (h *GuestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	raw := r.URL.Query().Get("redirectUrl")
	if raw != "" && !urlx.SameOrigin(raw, h.PublicOrigin) {
		log.Debug("rewriting off-origin redirect target", "target", raw)
	}
	target := urlx.Normalize(raw, h.PublicOrigin)

	identity, bearer, err := h.Auth.Authenticate(ctx, domain.GuestCredential{})
	if err != nil {
		log.Error("guest provisioning failed", "err", err)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	signed, err := h.Issuer.Issue(identity, bearer)
	if err != nil {
		log.Error("guest session issue failed", "err", err)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	sess, err := h.Issuer.Validate(signed)
	if err != nil {
		log.Error("fresh guest session failed validation", "err", err)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	session.SetCookie(w, signed, sess.ExpiresAt, h.Secure)
	http.Redirect(w, r, target, http.StatusFound)
}
