package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harborchat/harbor/internal/gate/idp"
	"github.com/harborchat/harbor/internal/gate/service"
	"github.com/harborchat/harbor/pkg/httpx"
	"github.com/harborchat/harbor/pkg/slogx"
)

// RegisterHandler serves POST /api/auth/register. Accounts are created
// on the identity provider under the administrator credential; the
// caller still signs in through the normal login flow afterwards.
type RegisterHandler struct {
	Accounts *service.AccountService
}

type registerRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Register an account
//	@Description	Creates a provider account keyed by phone number or username. Password is optional for phone accounts.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	registerRequest	true	"New account"
//	@Success		201
//	@Failure		400	{object}	httpx.APIError
//	@Failure		502	{object}	httpx.APIError
//	@Router			/api/auth/register [post]
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrInvalidFormBody.WriteError(w)
		return
	}

	var err error
	switch {
	case req.Phone != "":
		err = h.Accounts.RegisterWithPhone(ctx, req.Phone, req.Password)
	case req.Username != "" && req.Password != "":
		err = h.Accounts.RegisterWithPassword(ctx, req.Username, req.Password)
	default:
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	switch {
	case err == nil:
		w.WriteHeader(http.StatusCreated)
	case errors.Is(err, idp.ErrProviderUnavailable):
		log.Error("identity provider unavailable", "err", err)
		httpx.NewAPIError(http.StatusServiceUnavailable, "provider_unavailable", "identity provider is unreachable").WriteError(w)
	default:
		log.Error("registration failed", "err", err)
		httpx.NewAPIError(http.StatusBadGateway, "registration_failed", "provider rejected the account").WriteError(w)
	}
}
