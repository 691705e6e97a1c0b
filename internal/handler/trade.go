package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/trade"
)

// TradeHandler serves the trade negotiation endpoints.
type TradeHandler struct {
	svc trade.Service
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(svc trade.Service) *TradeHandler {
	return &TradeHandler{svc: svc}
}

type ProposeTradeRequest struct {
	InitiatorID string   `json:"initiator_id" validate:"required,max=64"`
	ReceiverID  string   `json:"receiver_id" validate:"required,max=64"`
	Offered     []string `json:"offered" validate:"omitempty,max=20,dive,uuid4"`
	Requested   []string `json:"requested" validate:"omitempty,max=20,dive,uuid4"`
	TTLSeconds  int      `json:"ttl_seconds,omitempty" validate:"omitempty,gt=0"`
}

// HandleProposeTrade opens a PENDING trade and locks every referenced
// instance until it resolves.
func (h *TradeHandler) HandleProposeTrade(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req ProposeTradeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Propose trade"); err != nil {
		return
	}

	offered, err := parseUUIDs(req.Offered)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
		return
	}
	requested, err := parseUUIDs(req.Requested)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
		return
	}

	proposed, err := h.svc.ProposeTrade(r.Context(), trade.Proposal{
		InitiatorID: req.InitiatorID,
		ReceiverID:  req.ReceiverID,
		Offered:     offered,
		Requested:   requested,
		TTL:         time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		respondServiceError(w, r, "Propose trade", err)
		return
	}

	log.Info("Trade proposed",
		"trade_id", proposed.ID,
		"initiator_id", req.InitiatorID,
		"receiver_id", req.ReceiverID)

	respondJSON(w, http.StatusCreated, proposed)
}

// HandleGetTrade returns a trade with its offered items.
func (h *TradeHandler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := URLParamUUID(r, w, "tradeID")
	if !ok {
		return
	}

	t, err := h.svc.GetTrade(r.Context(), tradeID)
	if err != nil {
		respondServiceError(w, r, "Get trade", err)
		return
	}

	respondJSON(w, http.StatusOK, t)
}

type ListTradesResponse struct {
	Trades []domain.Trade `json:"trades"`
}

// HandleListTrades returns the trades a user participates in, optionally
// filtered by status.
func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	var status domain.TradeStatus
	if raw := GetOptionalQueryParam(r, "status", ""); raw != "" {
		status = domain.TradeStatus(strings.ToUpper(raw))
		switch status {
		case domain.TradePending, domain.TradeAccepted, domain.TradeDeclined,
			domain.TradeCancelled, domain.TradeExpired:
		default:
			respondError(w, http.StatusBadRequest, ErrMsgInvalidStatus)
			return
		}
	}

	trades, err := h.svc.GetUserTrades(r.Context(), userID, status)
	if err != nil {
		log.Error("Failed to list trades", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, ErrMsgListTradesFailed)
		return
	}

	respondJSON(w, http.StatusOK, ListTradesResponse{Trades: trades})
}

type TradeActionRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

// HandleAcceptTrade settles a pending trade. Only the receiver may accept;
// every item swaps owners atomically or the trade dies.
func (h *TradeHandler) HandleAcceptTrade(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, "Accept trade", h.svc.AcceptTrade)
}

// HandleDeclineTrade declines a pending trade. Only the receiver may decline.
func (h *TradeHandler) HandleDeclineTrade(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, "Decline trade", h.svc.DeclineTrade)
}

// HandleCancelTrade withdraws a pending trade. Only the initiator may cancel.
func (h *TradeHandler) HandleCancelTrade(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, "Cancel trade", h.svc.CancelTrade)
}

func (h *TradeHandler) handleAction(w http.ResponseWriter, r *http.Request, opName string, action func(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error)) {
	log := logger.FromContext(r.Context())

	tradeID, ok := URLParamUUID(r, w, "tradeID")
	if !ok {
		return
	}

	var req TradeActionRequest
	if err := DecodeAndValidateRequest(r, w, &req, opName); err != nil {
		return
	}

	t, err := action(r.Context(), req.UserID, tradeID)
	if err != nil {
		respondServiceError(w, r, opName, err)
		return
	}

	log.Info("Trade actioned", "operation", opName, "trade_id", tradeID, "status", t.Status)
	respondJSON(w, http.StatusOK, t)
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
