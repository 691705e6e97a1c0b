package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/equip"
	"github.com/quartzlab/tradepost/internal/logger"
)

// EquipHandler serves the equip and rod assembly endpoints.
type EquipHandler struct {
	svc equip.Service
}

// NewEquipHandler creates a new equip handler
func NewEquipHandler(svc equip.Service) *EquipHandler {
	return &EquipHandler{svc: svc}
}

type GetEquippedResponse struct {
	UserID string                `json:"user_id"`
	Items  []domain.ItemInstance `json:"items"`
}

// HandleGetEquipped returns everything a user has equipped.
func (h *EquipHandler) HandleGetEquipped(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	items, err := h.svc.GetEquipped(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get equipped items", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, ErrMsgGetEquippedFailed)
		return
	}

	respondJSON(w, http.StatusOK, GetEquippedResponse{UserID: userID, Items: items})
}

type EquipRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

// HandleEquip equips an owned instance. Exclusive categories swap the
// previous holder out in the same transaction.
func (h *EquipHandler) HandleEquip(w http.ResponseWriter, r *http.Request) {
	h.handleSingle(w, r, "Equip", h.svc.Equip)
}

// HandleUnequip clears an instance's equipped flag.
func (h *EquipHandler) HandleUnequip(w http.ResponseWriter, r *http.Request) {
	h.handleSingle(w, r, "Unequip", h.svc.Unequip)
}

func (h *EquipHandler) handleSingle(w http.ResponseWriter, r *http.Request, opName string, action func(ctx context.Context, userID string, instanceID uuid.UUID) (*domain.ItemInstance, error)) {
	log := logger.FromContext(r.Context())

	instanceID, ok := URLParamUUID(r, w, "instanceID")
	if !ok {
		return
	}

	var req EquipRequest
	if err := DecodeAndValidateRequest(r, w, &req, opName); err != nil {
		return
	}

	inst, err := action(r.Context(), req.UserID, instanceID)
	if err != nil {
		respondServiceError(w, r, opName, err)
		return
	}

	log.Info("Equip state changed", "operation", opName, "user_id", req.UserID, "instance_id", instanceID)
	respondJSON(w, http.StatusOK, inst)
}

type BatchEquipRequest struct {
	UserID      string   `json:"user_id" validate:"required,max=64"`
	InstanceIDs []string `json:"instance_ids" validate:"required,min=1,max=20,dive,uuid4"`
}

type BatchEquipResponse struct {
	Items []domain.ItemInstance `json:"items"`
}

// HandleBatchEquip equips several instances in one transaction. The batch is
// all-or-nothing; one bad instance rejects the lot.
func (h *EquipHandler) HandleBatchEquip(w http.ResponseWriter, r *http.Request) {
	h.handleBatch(w, r, "Batch equip", h.svc.BatchEquip)
}

// HandleBatchUnequip unequips several instances in one transaction.
func (h *EquipHandler) HandleBatchUnequip(w http.ResponseWriter, r *http.Request) {
	h.handleBatch(w, r, "Batch unequip", h.svc.BatchUnequip)
}

func (h *EquipHandler) handleBatch(w http.ResponseWriter, r *http.Request, opName string, action func(ctx context.Context, userID string, instanceIDs []uuid.UUID) ([]domain.ItemInstance, error)) {
	log := logger.FromContext(r.Context())

	var req BatchEquipRequest
	if err := DecodeAndValidateRequest(r, w, &req, opName); err != nil {
		return
	}

	ids, err := parseUUIDs(req.InstanceIDs)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
		return
	}

	items, err := action(r.Context(), req.UserID, ids)
	if err != nil {
		respondServiceError(w, r, opName, err)
		return
	}

	log.Info("Batch equip state changed", "operation", opName, "user_id", req.UserID, "count", len(items))
	respondJSON(w, http.StatusOK, BatchEquipResponse{Items: items})
}

type UnequipCategoryRequest struct {
	UserID   string `json:"user_id" validate:"required,max=64"`
	Category string `json:"category" validate:"required,max=32"`
}

// HandleUnequipCategory clears every equipped item of a category. An empty
// category is a no-op.
func (h *EquipHandler) HandleUnequipCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req UnequipCategoryRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Unequip category"); err != nil {
		return
	}

	category := domain.Category(req.Category)
	if !category.Valid() {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
		return
	}

	items, err := h.svc.UnequipCategory(r.Context(), req.UserID, category)
	if err != nil {
		respondServiceError(w, r, "Unequip category", err)
		return
	}

	log.Info("Category unequipped", "user_id", req.UserID, "category", category)
	respondJSON(w, http.StatusOK, BatchEquipResponse{Items: items})
}

type AttachRodPartRequest struct {
	UserID         string `json:"user_id" validate:"required,max=64"`
	Slot           string `json:"slot" validate:"required,max=16"`
	PartInstanceID string `json:"part_instance_id" validate:"required,uuid4"`
}

// HandleAttachRodPart mounts a rod part into a slot on an owned rod. An
// occupied slot swaps its previous part out.
func (h *EquipHandler) HandleAttachRodPart(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	rodInstanceID, ok := URLParamUUID(r, w, "instanceID")
	if !ok {
		return
	}

	var req AttachRodPartRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Attach rod part"); err != nil {
		return
	}

	partInstanceID, err := uuid.Parse(req.PartInstanceID)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
		return
	}

	rod, err := h.svc.AttachRodPart(r.Context(), req.UserID, rodInstanceID, domain.RodPartSlot(req.Slot), partInstanceID)
	if err != nil {
		respondServiceError(w, r, "Attach rod part", err)
		return
	}

	log.Info("Rod part attached", "user_id", req.UserID, "rod_instance_id", rodInstanceID, "slot", req.Slot)
	respondJSON(w, http.StatusOK, rod)
}

type DetachRodPartRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Slot   string `json:"slot" validate:"required,max=16"`
}

// HandleDetachRodPart removes the part in a rod's slot. An empty slot is a
// no-op.
func (h *EquipHandler) HandleDetachRodPart(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	rodInstanceID, ok := URLParamUUID(r, w, "instanceID")
	if !ok {
		return
	}

	var req DetachRodPartRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Detach rod part"); err != nil {
		return
	}

	rod, err := h.svc.DetachRodPart(r.Context(), req.UserID, rodInstanceID, domain.RodPartSlot(req.Slot))
	if err != nil {
		respondServiceError(w, r, "Detach rod part", err)
		return
	}

	log.Info("Rod part detached", "user_id", req.UserID, "rod_instance_id", rodInstanceID, "slot", req.Slot)
	respondJSON(w, http.StatusOK, rod)
}
