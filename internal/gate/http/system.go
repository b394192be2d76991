package http

import (
	"net/http"

	"github.com/harborchat/harbor/internal/gate/store"
	"github.com/harborchat/harbor/pkg/httpx"
	"github.com/harborchat/harbor/pkg/slogx"
)

// SystemHandler serves the liveness and readiness probes.
type SystemHandler struct {
	Store store.Store
}

// Ping godoc
//
//	@Summary	Ping
//	@Tags		System
//	@Produce	plain
//	@Success	200	{string}	string	"pong"
//	@Router		/ping [get]
func (h *SystemHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// Livez godoc
//
//	@Summary	Liveness probe
//	@Tags		System
//	@Success	204
//	@Router		/livez [get]
func (h *SystemHandler) Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Readyz godoc
//
//	@Summary	Readiness probe
//	@Tags		System
//	@Produce	json
//	@Success	204
//	@Failure	503	{object}	httpx.APIError
//	@Router		/readyz [get]
func (h *SystemHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		slogx.FromContext(r.Context()).Error("store ping failed", "err", err)
		httpx.NewAPIError(http.StatusServiceUnavailable, "not_ready", "user store is unreachable").WriteError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
