package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/idp"
	"github.com/harborchat/harbor/internal/gate/service"
	"github.com/harborchat/harbor/internal/gate/session"
	"github.com/harborchat/harbor/pkg/httpx"
	"github.com/harborchat/harbor/pkg/slogx"
)

const maxAvatarBytes = 4 << 20

// AccountHandler groups the /api/user endpoints. Every one of them
// needs a registered session carrying a provider token; guests get 401.
type AccountHandler struct {
	Accounts *service.AccountService
}

// bearerFromRequest extracts the provider token from the caller's
// session. Guest sessions and sessions issued without a token (the
// OAuth browser flow strips it) are rejected here.
func bearerFromRequest(r *http.Request) (domain.BearerToken, bool) {
	sess, ok := SessionFromContext(r.Context())
	if !ok || sess.Identity.IsGuest() || sess.Bearer.IsZero() {
		return domain.BearerToken{}, false
	}
	return sess.Bearer, true
}

// Details godoc
//
//	@Summary	Fetch the signed-in user's profile
//	@Tags		User
//	@Produce	json
//	@Success	200	{object}	session.PublicSessionView
//	@Failure	401	{object}	httpx.APIError
//	@Router		/api/user/details [get]
func (h *AccountHandler) Details(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok || sess.Identity.IsGuest() {
		httpx.ErrUnauthorized.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, session.Project(sess))
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword godoc
//
//	@Summary		Change password
//	@Description	Re-validates the old password before storing the new one.
//	@Tags			User
//	@Accept			json
//	@Param			request	body	changePasswordRequest	true	"Old and new password"
//	@Success		204
//	@Failure		401	{object}	httpx.APIError
//	@Router			/api/user/password [post]
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bearer, ok := bearerFromRequest(r)
	if !ok {
		httpx.ErrUnauthorized.WriteError(w)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrInvalidFormBody.WriteError(w)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Accounts.ChangePassword(ctx, bearer, req.OldPassword, req.NewPassword); err != nil {
		writeAccountError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateProfile godoc
//
//	@Summary		Update profile fields
//	@Description	Merges the posted fields into the provider account record.
//	@Tags			User
//	@Accept			json
//	@Success		204
//	@Failure		401	{object}	httpx.APIError
//	@Router			/api/user/update [post]
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bearer, ok := bearerFromRequest(r)
	if !ok {
		httpx.ErrUnauthorized.WriteError(w)
		return
	}

	var changes map[string]any
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		httpx.ErrInvalidFormBody.WriteError(w)
		return
	}
	if len(changes) == 0 {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	// Identity and credential fields only move through their dedicated
	// endpoints.
	for _, k := range []string{"owner", "name", "id", "password"} {
		delete(changes, k)
	}

	if err := h.Accounts.UpdateProfile(ctx, bearer, changes); err != nil {
		writeAccountError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar godoc
//
//	@Summary		Upload an avatar
//	@Description	Stores the file in the provider's resource store and returns its URL.
//	@Tags			User
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Avatar image"
//	@Success		200		{object}	map[string]string
//	@Failure		401		{object}	httpx.APIError
//	@Router			/api/user/upload [post]
func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bearer, ok := bearerFromRequest(r)
	if !ok {
		httpx.ErrUnauthorized.WriteError(w)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		httpx.ErrInvalidFormBody.WriteError(w)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}
	defer file.Close()

	storedURL, err := h.Accounts.UploadAvatar(ctx, bearer, header.Filename, file)
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"url": storedURL})
}

func writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())
	switch {
	case errors.Is(err, idp.ErrInvalidCredentials):
		httpx.NewAPIError(http.StatusUnauthorized, "invalid_grant", "old password is wrong").WriteError(w)
	case errors.Is(err, idp.ErrProviderUnavailable):
		log.Error("identity provider unavailable", "err", err)
		httpx.NewAPIError(http.StatusServiceUnavailable, "provider_unavailable", "identity provider is unreachable").WriteError(w)
	default:
		log.Error("account operation failed", "err", err)
		httpx.NewAPIError(http.StatusBadGateway, "account_operation_failed", "provider rejected the request").WriteError(w)
	}
}
