package handler

import (
	"net/http"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/inventory"
	"github.com/quartzlab/tradepost/internal/logger"
)

type GetInventoryResponse struct {
	UserID string                  `json:"user_id"`
	Items  []domain.InventoryEntry `json:"items"`
}

// HandleGetInventory returns every instance a user owns, joined with its
// catalog definition.
func HandleGetInventory(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}

		items, err := svc.GetInventory(r.Context(), userID)
		if err != nil {
			log.Error("Failed to get inventory", "error", err, "user_id", userID)
			respondError(w, http.StatusInternalServerError, ErrMsgGetInventoryFailed)
			return
		}

		log.Info("Inventory retrieved", "user_id", userID, "item_count", len(items))
		respondJSON(w, http.StatusOK, GetInventoryResponse{UserID: userID, Items: items})
	}
}

// HandleGetInstance returns a single item instance by ID.
func HandleGetInstance(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		instanceID, ok := URLParamUUID(r, w, "instanceID")
		if !ok {
			return
		}

		inst, err := svc.GetInstance(r.Context(), instanceID)
		if err != nil {
			respondServiceError(w, r, "Get instance", err)
			return
		}

		respondJSON(w, http.StatusOK, inst)
	}
}

type GrantInstanceRequest struct {
	UserID   string `json:"user_id" validate:"required,max=64"`
	ItemID   int    `json:"item_id" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"min=1,max=10000"`
}

// HandleGrantInstance grants a user copies of a catalog item outside any
// purchase flow (admin).
func HandleGrantInstance(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req GrantInstanceRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Grant instance"); err != nil {
			return
		}

		inst, err := svc.CreateInstance(r.Context(), req.UserID, req.ItemID, req.Quantity)
		if err != nil {
			respondServiceError(w, r, "Grant instance", err)
			return
		}

		log.Info("Instance granted", "user_id", req.UserID, "item_id", req.ItemID, "quantity", req.Quantity)
		respondJSON(w, http.StatusCreated, inst)
	}
}

type AddExperienceRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	XP     int    `json:"xp" validate:"required,gt=0,lte=1000000"`
}

// HandleAddExperience adds rod experience to an instance and recomputes its
// level.
func HandleAddExperience(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		instanceID, ok := URLParamUUID(r, w, "instanceID")
		if !ok {
			return
		}

		var req AddExperienceRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Add experience"); err != nil {
			return
		}

		inst, err := svc.AddExperience(r.Context(), req.UserID, instanceID, req.XP)
		if err != nil {
			respondServiceError(w, r, "Add experience", err)
			return
		}

		respondJSON(w, http.StatusOK, inst)
	}
}

type MutateDurabilityRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Delta  int    `json:"delta" validate:"required"`
}

// HandleMutateDurability applies wear (negative delta) or restoration to a
// durable instance. Durability clamps at zero and at the item's maximum.
func HandleMutateDurability(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		instanceID, ok := URLParamUUID(r, w, "instanceID")
		if !ok {
			return
		}

		var req MutateDurabilityRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Mutate durability"); err != nil {
			return
		}

		inst, err := svc.MutateDurability(r.Context(), req.UserID, instanceID, req.Delta)
		if err != nil {
			respondServiceError(w, r, "Mutate durability", err)
			return
		}

		respondJSON(w, http.StatusOK, inst)
	}
}

type RepairInstanceRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

// HandleRepairInstance restores a rod's durability, bounded by the item's
// repair limit.
func HandleRepairInstance(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		instanceID, ok := URLParamUUID(r, w, "instanceID")
		if !ok {
			return
		}

		var req RepairInstanceRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Repair instance"); err != nil {
			return
		}

		inst, err := svc.RepairInstance(r.Context(), req.UserID, instanceID)
		if err != nil {
			respondServiceError(w, r, "Repair instance", err)
			return
		}

		log.Info("Instance repaired", "user_id", req.UserID, "instance_id", instanceID)
		respondJSON(w, http.StatusOK, inst)
	}
}
