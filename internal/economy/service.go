package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/event"
	"github.com/quartzlab/tradepost/internal/inventory"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/metrics"
	"github.com/quartzlab/tradepost/internal/repository"
	"github.com/quartzlab/tradepost/internal/wallet"
)

// PurchaseResult contains the settled state after a purchase
type PurchaseResult struct {
	Item     domain.CatalogItem  `json:"item"`
	Instance domain.ItemInstance `json:"instance"`
	Wallet   domain.Wallet       `json:"wallet"`
}

// CatalogReader is the catalog slice the purchase flow needs.
type CatalogReader interface {
	GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error)
}

// Service defines the interface for purchase operations
type Service interface {
	PurchaseItem(ctx context.Context, userID string, catalogItemID int, roles []string) (*PurchaseResult, error)
}

type service struct {
	repo      repository.Economy
	catalog   CatalogReader
	publisher event.Publisher
	now       func() time.Time
}

// NewService creates a new economy service
func NewService(repo repository.Economy, catalog CatalogReader, publisher event.Publisher) Service {
	return &service{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		now:       time.Now,
	}
}

// PurchaseItem debits the item's price and grants an instance as one atomic
// unit. Roles are the caller-supplied opaque role set used for gate checks.
func (s *service) PurchaseItem(ctx context.Context, userID string, catalogItemID int, roles []string) (*PurchaseResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgPurchaseItemCalled, "userID", userID, "itemID", catalogItemID)

	// 1. Resolve and gate the definition
	item, err := s.catalog.GetItem(ctx, catalogItemID)
	if err != nil {
		return nil, err
	}
	if !item.Purchasable(s.now()) {
		return nil, fmt.Errorf("%w: item %d", domain.ErrItemNotPurchasable, catalogItemID)
	}
	if err := checkRoleGate(item, roles); err != nil {
		return nil, err
	}

	// 2. Begin transaction
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	// 3. Debit the price under the wallet lock. Zero-priced items skip the
	// debit but still report the wallet in the result.
	var w *domain.Wallet
	if item.Price > 0 {
		w, err = wallet.Debit(ctx, tx, userID, int64(item.Price))
	} else {
		w, err = tx.GetWalletForUpdate(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	// 4. Grant the instance
	inst, err := inventory.Grant(ctx, tx, item, userID, 1)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	// 5. Finalize: metrics and event, outside the transaction
	metrics.RecordPurchase(string(item.Category), item.Price)
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, event.Event{
			Version: event.EventSchemaVersion,
			Type:    event.Type(domain.EventTypeItemPurchased),
			Payload: domain.ItemPurchasedPayload{
				UserID:     userID,
				ItemID:     item.ID,
				ItemName:   item.Name,
				Price:      item.Price,
				InstanceID: inst.ID.String(),
				Timestamp:  s.now().Unix(),
			},
		})
	}

	log.Info(LogMsgItemPurchased, "userID", userID, "itemID", catalogItemID, "price", item.Price, "balance", w.Balance)
	return &PurchaseResult{Item: *item, Instance: *inst, Wallet: *w}, nil
}

// checkRoleGate verifies the caller holds the item's required role, if any.
func checkRoleGate(item *domain.CatalogItem, roles []string) error {
	if item.RequiredRole == nil {
		return nil
	}
	for _, role := range roles {
		if role == *item.RequiredRole {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrRoleRequired, *item.RequiredRole)
}
