package handler

import (
	"net/http"

	"github.com/gopay-wallet-api/internal/application/rewards"
	"github.com/gopay-wallet-api/internal/transport/http/middleware"
)

// RewardsHandler handles the rewards summary endpoint.
type RewardsHandler struct {
	svc rewards.Service
}

func NewRewardsHandler(svc rewards.Service) *RewardsHandler { return &RewardsHandler{svc: svc} }

func (h *RewardsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rw, err := h.svc.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rw)
}
