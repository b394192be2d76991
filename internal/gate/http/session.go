package http

import (
	"net/http"

	"github.com/harborchat/harbor/internal/gate/session"
	"github.com/harborchat/harbor/pkg/httpx"
)

// SessionHandler serves GET /api/auth/session, echoing the caller's
// current session in its public projection. The bearer token never
// appears in the response.
type SessionHandler struct{}

// ServeHTTP godoc
//
//	@Summary	Current session
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	session.PublicSessionView
//	@Failure	401	{object}	httpx.APIError
//	@Router		/api/auth/session [get]
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		httpx.ErrUnauthorized.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, session.Project(sess))
}
