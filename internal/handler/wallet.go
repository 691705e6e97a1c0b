package handler

import (
	"net/http"

	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/wallet"
)

// HandleGetBalance returns a user's credit wallet.
func HandleGetBalance(svc wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}

		wal, err := svc.GetBalance(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get balance", err)
			return
		}

		respondJSON(w, http.StatusOK, wal)
	}
}

type GrantCreditsRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Amount int64  `json:"amount" validate:"required,gt=0,lte=1000000"`
}

// HandleGrantCredits credits a user's wallet outside any purchase flow (admin).
func HandleGrantCredits(svc wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req GrantCreditsRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Grant credits"); err != nil {
			return
		}

		wal, err := svc.Grant(r.Context(), req.UserID, req.Amount)
		if err != nil {
			respondServiceError(w, r, "Grant credits", err)
			return
		}

		log.Info("Credits granted", "user_id", req.UserID, "amount", req.Amount, "balance", wal.Balance)
		respondJSON(w, http.StatusOK, wal)
	}
}
