package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/harborchat/harbor/internal/gate/session"
	"github.com/harborchat/harbor/pkg/urlx"
)

// Decision is the admission outcome for one request.
type Decision int

const (
	// DecisionAllow passes the request through unchanged.
	DecisionAllow Decision = iota
	// DecisionGuest redirects to the guest-provisioning endpoint,
	// carrying the original target so the visitor lands where they
	// were headed once a session exists.
	DecisionGuest
	// DecisionHome sends an already-registered user away from the
	// login/registration pages.
	DecisionHome
)

func (d Decision) String() string {
	switch d {
	case DecisionGuest:
		return "guest_provision"
	case DecisionHome:
		return "redirect_home"
	default:
		return "allow"
	}
}

// authPages are the targets an unauthenticated visitor may reach
// directly; everything else gets a guest session first.
var authPages = map[string]struct{}{
	"/login":    {},
	"/register": {},
}

// bypassPrefixes must stay reachable before any session exists: health
// probes, the auth API itself (including the guest and OAuth callback
// endpoints) and the identity-provider proxy.
var bypassPrefixes = []string{
	"/ping",
	"/livez",
	"/readyz",
	"/api/auth/",
	"/casdoor-api/",
	"/swagger/",
}

// Admission is the single enforcement point deciding, per request,
// whether to pass through, provision a guest, or bounce home. It never
// produces an error page: expired and malformed tokens are treated
// exactly like absent ones.
type Admission struct {
	Issuer *session.Issuer

	// PublicOrigin is the scheme+host the end user's browser can
	// actually reach. Redirect targets are always rewritten to it; the
	// origin this process observes may be a loopback or container
	// address that would dead-end the browser after authentication.
	PublicOrigin string

	GuestPath string // guest-provisioning endpoint, e.g. /api/auth/guest
	HomePath  string // where regular users are sent away from auth pages
}

// Decide returns the admission decision and, for DecisionGuest, the
// normalized absolute target to resume after provisioning.
func (a *Admission) Decide(r *http.Request) (Decision, string) {
	path := r.URL.Path

	for _, prefix := range bypassPrefixes {
		if strings.HasPrefix(path, prefix) {
			return DecisionAllow, ""
		}
	}

	_, isAuthPage := authPages[path]

	sess, err := a.Issuer.Validate(session.FromRequest(r))
	if err != nil {
		// No token, expired, or tampered: all the same thing here.
		if isAuthPage {
			return DecisionAllow, ""
		}
		return DecisionGuest, a.normalizedTarget(r)
	}

	if isAuthPage {
		if sess.Identity.IsGuest() {
			// Guests may visit login/register to upgrade.
			return DecisionAllow, ""
		}
		return DecisionHome, ""
	}

	return DecisionAllow, ""
}

// Middleware applies Decide to every request and attaches the validated
// session, when there is one, to the request context.
func (a *Admission) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, err := a.Issuer.Validate(session.FromRequest(r)); err == nil {
			r = r.WithContext(contextWithSession(r.Context(), sess))
		}

		decision, target := a.Decide(r)
		switch decision {
		case DecisionGuest:
			u := a.GuestPath + "?redirectUrl=" + url.QueryEscape(target)
			http.Redirect(w, r, u, http.StatusFound)
		case DecisionHome:
			http.Redirect(w, r, a.HomePath, http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// normalizedTarget rebuilds the absolute URL the caller was trying to
// reach and rewrites its scheme+host to the canonical public origin.
func (a *Admission) normalizedTarget(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	raw := scheme + "://" + r.Host + r.URL.RequestURI()
	return urlx.Normalize(raw, a.PublicOrigin)
}

type sessionCtxKey struct{}

func contextWithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext returns the validated session attached by the
// admission middleware, if any.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(session.Session)
	return s, ok
}
