package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/idp"
	"github.com/harborchat/harbor/pkg/httpx"
	"github.com/harborchat/harbor/pkg/slogx"
)

// SendCodeHandler serves POST /api/auth/send-code. When the provider
// demands a captcha the response is a 409 with code "captcha_required";
// the client fetches one from /api/auth/captcha and retries with the
// challenge pair attached.
type SendCodeHandler struct {
	IdP *idp.Client
}

type sendCodeRequest struct {
	Phone        string `json:"phone"`
	Action       string `json:"action"` // "login" or "signup", defaults to "login"
	CaptchaID    string `json:"captchaId"`
	CaptchaProof string `json:"captchaProof"`
}

// ServeHTTP godoc
//
//	@Summary		Send a verification code
//	@Description	Asks the identity provider to text a one-time code to the given phone number.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	sendCodeRequest	true	"Destination and optional captcha answer"
//	@Success		204
//	@Failure		400	{object}	httpx.APIError
//	@Failure		409	{object}	httpx.APIError
//	@Failure		503	{object}	httpx.APIError
//	@Router			/api/auth/send-code [post]
func (h *SendCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrInvalidFormBody.WriteError(w)
		return
	}
	if req.Phone == "" {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	action := req.Action
	if action == "" {
		action = "login"
	}

	captcha := domain.CaptchaChallenge{ChallengeID: req.CaptchaID, Proof: req.CaptchaProof}

	err := h.IdP.SendVerificationCode(ctx, req.Phone, action, captcha)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, idp.ErrCaptchaRequired):
		httpx.NewAPIError(http.StatusConflict, "captcha_required", "solve the captcha and retry").WriteError(w)
	case errors.Is(err, idp.ErrProviderUnavailable):
		log.Error("identity provider unavailable", "err", err)
		httpx.NewAPIError(http.StatusServiceUnavailable, "provider_unavailable", "identity provider is unreachable").WriteError(w)
	default:
		log.Error("send verification code failed", "err", err)
		httpx.NewAPIError(http.StatusBadGateway, "send_code_failed", "provider rejected the request").WriteError(w)
	}
}

// CaptchaHandler serves GET /api/auth/captcha, returning a fresh
// graphical challenge for the send-code retry path.
type CaptchaHandler struct {
	IdP *idp.Client
}

// ServeHTTP godoc
//
//	@Summary	Fetch a captcha challenge
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	idp.Captcha
//	@Failure	503	{object}	httpx.APIError
//	@Router		/api/auth/captcha [get]
func (h *CaptchaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	captcha, err := h.IdP.FetchCaptcha(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("captcha fetch failed", "err", err)
		httpx.NewAPIError(http.StatusServiceUnavailable, "provider_unavailable", "identity provider is unreachable").WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, captcha)
}
