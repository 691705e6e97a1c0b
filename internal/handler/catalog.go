package handler

import (
	"net/http"

	"github.com/quartzlab/tradepost/internal/catalog"
	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/logger"
)

// CatalogHandler serves catalog reads and the admin item CRUD surface.
type CatalogHandler struct {
	svc catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type ListItemsResponse struct {
	Items []domain.CatalogItem `json:"items"`
}

// HandleListItems returns every catalog item, inactive ones included.
func (h *CatalogHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	items, err := h.svc.GetItems(r.Context())
	if err != nil {
		log.Error("Failed to list items", "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgListItemsFailed)
		return
	}

	log.Debug("Catalog listed", "item_count", len(items))
	respondJSON(w, http.StatusOK, ListItemsResponse{Items: items})
}

// HandleGetItem returns a single catalog item by ID.
func (h *CatalogHandler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := URLParamInt(r, w, "itemID")
	if !ok {
		return
	}

	item, err := h.svc.GetItem(r.Context(), itemID)
	if err != nil {
		respondServiceError(w, r, "Get item", err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

type CaseContentsResponse struct {
	CaseItemID int                  `json:"case_item_id"`
	Contents   []domain.CaseContent `json:"contents"`
}

// HandleGetCaseContents returns the drop table of a case item.
func (h *CatalogHandler) HandleGetCaseContents(w http.ResponseWriter, r *http.Request) {
	itemID, ok := URLParamInt(r, w, "itemID")
	if !ok {
		return
	}

	contents, err := h.svc.GetCaseContents(r.Context(), itemID)
	if err != nil {
		respondServiceError(w, r, "Get case contents", err)
		return
	}

	respondJSON(w, http.StatusOK, CaseContentsResponse{CaseItemID: itemID, Contents: contents})
}

// HandleCreateItem creates a catalog item (admin).
func (h *CatalogHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var input catalog.ItemInput
	if err := DecodeAndValidateRequest(r, w, &input, "Create item"); err != nil {
		return
	}

	item, err := h.svc.CreateItem(r.Context(), input)
	if err != nil {
		respondServiceError(w, r, "Create item", err)
		return
	}

	log.Info("Catalog item created", "item_id", item.ID, "name", item.Name)
	respondJSON(w, http.StatusCreated, item)
}

// HandleUpdateItem updates a catalog item (admin). Category changes are
// rejected by the service.
func (h *CatalogHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	itemID, ok := URLParamInt(r, w, "itemID")
	if !ok {
		return
	}

	var input catalog.ItemInput
	if err := DecodeAndValidateRequest(r, w, &input, "Update item"); err != nil {
		return
	}

	item, err := h.svc.UpdateItem(r.Context(), itemID, input)
	if err != nil {
		respondServiceError(w, r, "Update item", err)
		return
	}

	log.Info("Catalog item updated", "item_id", item.ID, "name", item.Name)
	respondJSON(w, http.StatusOK, item)
}

// HandleDeleteItem deletes a catalog item (admin). Items referenced by case
// contents or with live instances are refused.
func (h *CatalogHandler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	itemID, ok := URLParamInt(r, w, "itemID")
	if !ok {
		return
	}

	if err := h.svc.DeleteItem(r.Context(), itemID); err != nil {
		respondServiceError(w, r, "Delete item", err)
		return
	}

	log.Info("Catalog item deleted", "item_id", itemID)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgItemDeletedSuccess})
}

type SetCaseContentsRequest struct {
	Contents []CaseContentInput `json:"contents" validate:"required,min=1,dive"`
}

type CaseContentInput struct {
	ItemID   int     `json:"item_id" validate:"required,gt=0"`
	DropRate float64 `json:"drop_rate" validate:"required,gt=0,lte=100"`
}

// HandleSetCaseContents replaces a case's drop table (admin). The table must
// sum to 100% or the whole replacement is rejected.
func (h *CatalogHandler) HandleSetCaseContents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	caseItemID, ok := URLParamInt(r, w, "itemID")
	if !ok {
		return
	}

	var req SetCaseContentsRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Set case contents"); err != nil {
		return
	}

	contents := make([]domain.CaseContent, len(req.Contents))
	for i, c := range req.Contents {
		contents[i] = domain.CaseContent{
			CaseItemID: caseItemID,
			ItemID:     c.ItemID,
			DropRate:   c.DropRate,
		}
	}

	if err := h.svc.SetCaseContents(r.Context(), caseItemID, contents); err != nil {
		respondServiceError(w, r, "Set case contents", err)
		return
	}

	log.Info("Case contents replaced", "case_item_id", caseItemID, "entry_count", len(contents))
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgCaseContentsSetSuccess})
}

// HandleValidateCaseContents re-checks a stored drop table without changing it
// (admin).
func (h *CatalogHandler) HandleValidateCaseContents(w http.ResponseWriter, r *http.Request) {
	caseItemID, ok := URLParamInt(r, w, "itemID")
	if !ok {
		return
	}

	if err := h.svc.ValidateCaseContents(r.Context(), caseItemID); err != nil {
		respondServiceError(w, r, "Validate case contents", err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgCaseContentsValid})
}
