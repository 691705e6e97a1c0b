package handler

import (
	"net/http"

	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/lootbox"
)

type OpenCaseRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

// HandleOpenCase consumes one copy of an owned case and resolves its roll.
// The raw roll value stays server-side; callers get the public view.
func HandleOpenCase(svc lootbox.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		caseInstanceID, ok := URLParamUUID(r, w, "instanceID")
		if !ok {
			return
		}

		var req OpenCaseRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Open case"); err != nil {
			return
		}

		result, err := svc.OpenCase(r.Context(), req.UserID, caseInstanceID)
		if err != nil {
			respondServiceError(w, r, "Open case", err)
			return
		}

		log.Info("Case opened",
			"user_id", req.UserID,
			"case_item_id", result.CaseItemID,
			"won_item_id", result.WonItem.ID,
			"already_owned", result.AlreadyOwned)

		respondJSON(w, http.StatusOK, result.PublicView())
	}
}

// HandleAuditOpenCase is the admin variant of HandleOpenCase. The response
// keeps the raw roll value so operators can audit drop rates.
func HandleAuditOpenCase(svc lootbox.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		caseInstanceID, ok := URLParamUUID(r, w, "instanceID")
		if !ok {
			return
		}

		var req OpenCaseRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Audit open case"); err != nil {
			return
		}

		result, err := svc.OpenCase(r.Context(), req.UserID, caseInstanceID)
		if err != nil {
			respondServiceError(w, r, "Audit open case", err)
			return
		}

		log.Info("Case opened for audit",
			"user_id", req.UserID,
			"case_item_id", result.CaseItemID,
			"won_item_id", result.WonItem.ID,
			"roll_value", result.RollValue)

		respondJSON(w, http.StatusOK, result)
	}
}
