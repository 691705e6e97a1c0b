package handler

import (
	"net/http"

	"github.com/quartzlab/tradepost/internal/economy"
	"github.com/quartzlab/tradepost/internal/logger"
)

type PurchaseItemRequest struct {
	UserID string   `json:"user_id" validate:"required,max=64"`
	ItemID int      `json:"item_id" validate:"required,gt=0"`
	Roles  []string `json:"roles,omitempty" validate:"omitempty,max=32,dive,max=64"`
}

// HandlePurchaseItem buys a catalog item with wallet credits. Debit and grant
// settle in one transaction; a failed purchase leaves the wallet untouched.
func HandlePurchaseItem(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req PurchaseItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Purchase item"); err != nil {
			return
		}

		result, err := svc.PurchaseItem(r.Context(), req.UserID, req.ItemID, req.Roles)
		if err != nil {
			respondServiceError(w, r, "Purchase item", err)
			return
		}

		log.Info("Item purchased",
			"user_id", req.UserID,
			"item_id", req.ItemID,
			"price", result.Item.Price,
			"balance", result.Wallet.Balance)

		respondJSON(w, http.StatusOK, result)
	}
}
