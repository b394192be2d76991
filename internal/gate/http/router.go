package http

import (
	"log/slog"
	"net/http"

	"github.com/harborchat/harbor/internal/gate/idp"
	"github.com/harborchat/harbor/internal/gate/service"
	"github.com/harborchat/harbor/internal/gate/session"
	"github.com/harborchat/harbor/internal/gate/store"
	"github.com/harborchat/harbor/pkg/httpx"
	"github.com/harborchat/harbor/pkg/slogx"

	_ "github.com/harborchat/harbor/api/gate" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers. Every request
// passes through the logging middleware and then the admission check
// before reaching its handler.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	logger *slog.Logger

	store     store.Store
	idpClient *idp.Client
	issuer    *session.Issuer

	Authenticator  *service.Authenticator
	Synchronizer   *service.Synchronizer
	AccountService *service.AccountService
	OAuth          *OAuthHandler // Optional: only when OIDC discovery succeeded

	PublicOrigin string
	Secure       bool
}

func NewRouter(
	st store.Store,
	idpClient *idp.Client,
	issuer *session.Issuer,
	publicOrigin string,
	secure bool,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		logger:       logger,
		store:        st,
		idpClient:    idpClient,
		issuer:       issuer,
		PublicOrigin: publicOrigin,
		Secure:       secure,
	}

	admission := &Admission{
		Issuer:       issuer,
		PublicOrigin: publicOrigin,
		GuestPath:    "/api/auth/guest",
		HomePath:     "/",
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		admission.Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Harbor Gate API
//	@version		0.1.0
//	@description	Session and identity gateway in front of a Casdoor-compatible identity provider.
//	@description
//	@description	Sessions are HS256-signed JWTs carried in the harbor_session cookie or as a Bearer token.
//
//	@host			localhost:3005
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit (authentication attempts)
	login := &LoginHandler{
		Auth:   r.Authenticator,
		Sync:   r.Synchronizer,
		Issuer: r.issuer,
		Secure: r.Secure,
	}
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /guest - moderate limit; every cold visitor lands here once
	guest := &GuestHandler{
		Auth:         r.Authenticator,
		Issuer:       r.issuer,
		PublicOrigin: r.PublicOrigin,
		Secure:       r.Secure,
	}
	r.Mux.Handle("GET /api/auth/guest",
		httpx.Chain(guest,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/session",
		httpx.Chain(&SessionHandler{},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(&LogoutHandler{Secure: r.Secure},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Code delivery costs the provider an SMS per call, so stay strict.
	r.Mux.Handle("POST /api/auth/send-code",
		httpx.Chain(&SendCodeHandler{IdP: r.idpClient},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /api/auth/captcha",
		httpx.Chain(&CaptchaHandler{IdP: r.idpClient},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(&RegisterHandler{Accounts: r.AccountService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	if r.OAuth != nil {
		r.Mux.Handle("GET /api/auth/oauth/start",
			httpx.Chain(http.HandlerFunc(r.OAuth.Start),
				httpx.RateLimitByIP(httpx.ModerateLimit),
			),
		)
		r.Mux.Handle("GET /api/auth/oauth/callback",
			httpx.Chain(http.HandlerFunc(r.OAuth.Callback),
				httpx.RateLimitByIP(httpx.ModerateLimit),
			),
		)
	}
}

func (r *Router) registerAccount() {
	h := &AccountHandler{Accounts: r.AccountService}

	r.Mux.Handle("GET /api/user/details",
		httpx.Chain(http.HandlerFunc(h.Details),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Password changes carry a credential check, keep them strict.
	r.Mux.Handle("POST /api/user/password",
		httpx.Chain(http.HandlerFunc(h.ChangePassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/user/update",
		httpx.Chain(http.HandlerFunc(h.UpdateProfile),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/user/upload",
		httpx.Chain(http.HandlerFunc(h.UploadAvatar),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	h := &SystemHandler{Store: r.store}

	r.Mux.Handle("GET /ping",
		httpx.Chain(http.HandlerFunc(h.Ping),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /livez",
		httpx.Chain(http.HandlerFunc(h.Livez),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(http.HandlerFunc(h.Readyz),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// RegisterIdPProxy mounts the pass-through to the identity provider.
// Registered separately because building it can fail on a bad base URL.
func (r *Router) RegisterIdPProxy(idpBaseURL string) error {
	proxy, err := NewIdPProxy(idpBaseURL)
	if err != nil {
		return err
	}
	r.Mux.Handle("/casdoor-api/", proxy)
	return nil
}
