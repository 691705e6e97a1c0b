package lootbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/event"
	"github.com/quartzlab/tradepost/internal/inventory"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/metrics"
	"github.com/quartzlab/tradepost/internal/repository"
	"github.com/quartzlab/tradepost/internal/utils"
	"github.com/quartzlab/tradepost/internal/wallet"
)

// Service defines the case-opening interface
type Service interface {
	OpenCase(ctx context.Context, userID string, caseInstanceID uuid.UUID) (*domain.RollResult, error)
}

type service struct {
	repo      repository.Lootbox
	publisher event.Publisher
	rnd       func() float64 // uniform [0,1), injectable for deterministic tests
	now       func() time.Time
}

// NewService creates a new lootbox service
func NewService(repo repository.Lootbox, publisher event.Publisher) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		rnd:       utils.RandomFloat,
		now:       time.Now,
	}
}

// OpenCase resolves one copy of an owned case into a won item. The case
// decrement, the grant (or duplicate compensation) and the roll settle as one
// transaction; a failure at any step leaves the case unopened.
func (s *service) OpenCase(ctx context.Context, userID string, caseInstanceID uuid.UUID) (*domain.RollResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgOpenCaseCalled, "userID", userID, "instanceID", caseInstanceID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	// 1. Lock the case instance and verify ownership
	caseInst, err := tx.GetInstanceForUpdate(ctx, caseInstanceID)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return nil, fmt.Errorf("%w: instance %s", domain.ErrCaseNotOwned, caseInstanceID)
		}
		return nil, err
	}
	if !caseInst.OwnedBy(userID) || caseInst.Quantity < 1 {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrCaseNotOwned, caseInstanceID)
	}

	caseItem, err := s.repo.GetItem(ctx, caseInst.CatalogItemID)
	if err != nil {
		return nil, err
	}
	if !caseItem.IsCase {
		return nil, fmt.Errorf("%w: item %d is not a case", domain.ErrCaseNotOwned, caseItem.ID)
	}

	// A case sitting in a pending trade cannot be opened out from under it
	locked, err := tx.LockedInstances(ctx, []uuid.UUID{caseInstanceID}, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgCheckLocksFailed, err)
	}
	if len(locked) > 0 {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrItemLocked, caseInstanceID)
	}

	// 2. Load and validate the loot table
	contents, err := s.repo.GetCaseContents(ctx, caseItem.ID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetContentsFailed, err)
	}
	items, err := s.snapshotItems(ctx, contents)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateCaseContents(caseItem.ID, contents, items); err != nil {
		return nil, err
	}

	// 3. Draw and resolve against the stable walk order
	roll := s.rnd() * domain.DropRateTarget
	domain.SortCaseContents(contents)
	wonItemID, ok := domain.ResolveRoll(contents, roll)
	if !ok {
		return nil, fmt.Errorf("%w: case %d resolved nothing", domain.ErrInvalidCaseContents, caseItem.ID)
	}
	wonItem := items[wonItemID]

	// 4. Consume one copy of the case
	if err := s.consumeCase(ctx, tx, caseInst); err != nil {
		return nil, err
	}

	result := &domain.RollResult{
		CaseItemID: caseItem.ID,
		CaseName:   caseItem.Name,
		WonItem:    wonItem,
		RollValue:  roll,
		RolledAt:   s.now().UTC(),
	}

	// 5. Grant the won item, or compensate a duplicate exactly once
	if err := s.settleWin(ctx, tx, userID, &wonItem, result); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	// 6. Finalize outside the transaction
	metrics.RecordCaseOpen(string(wonItem.Rarity), result.AlreadyOwned, result.CompensationCredits)
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, event.Event{
			Version: event.EventSchemaVersion,
			Type:    event.Type(domain.EventTypeCaseOpened),
			Payload: domain.CaseOpenedPayload{
				UserID:              userID,
				CaseItemID:          caseItem.ID,
				WonItemID:           wonItem.ID,
				AlreadyOwned:        result.AlreadyOwned,
				CompensationCredits: result.CompensationCredits,
				Timestamp:           s.now().Unix(),
			},
		})
	}

	log.Info(LogMsgCaseOpened,
		"userID", userID,
		"caseItemID", caseItem.ID,
		"wonItemID", wonItem.ID,
		"duplicate", result.AlreadyOwned)
	return result, nil
}

// snapshotItems resolves every item a loot table references. Missing items
// stay absent so validation can name them.
func (s *service) snapshotItems(ctx context.Context, contents []domain.CaseContent) (map[int]domain.CatalogItem, error) {
	items := make(map[int]domain.CatalogItem, len(contents))
	for _, c := range contents {
		item, err := s.repo.GetItem(ctx, c.ItemID)
		if err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				continue
			}
			return nil, err
		}
		items[c.ItemID] = *item
	}
	return items, nil
}

// consumeCase decrements the locked case stack, deleting the row at zero.
func (s *service) consumeCase(ctx context.Context, tx repository.LootboxTx, caseInst *domain.ItemInstance) error {
	if caseInst.Quantity > 1 {
		caseInst.Quantity--
		if err := tx.UpdateInstance(ctx, caseInst); err != nil {
			return fmt.Errorf(ErrMsgUpdateCaseFailed, err)
		}
		return nil
	}
	if err := tx.DeleteInstance(ctx, caseInst.ID); err != nil {
		return fmt.Errorf(ErrMsgUpdateCaseFailed, err)
	}
	return nil
}

// settleWin grants the won item. A duplicate non-stackable win converts to
// compensation instead: rarity-scaled credits, plus rod XP when the owned
// duplicate can carry it.
func (s *service) settleWin(ctx context.Context, tx repository.LootboxTx, userID string, wonItem *domain.CatalogItem, result *domain.RollResult) error {
	if !wonItem.Category.Stackable() {
		owned, err := tx.FindOwnedInstanceForUpdate(ctx, userID, wonItem.ID)
		if err != nil && !errors.Is(err, domain.ErrInstanceNotFound) {
			return err
		}
		if owned != nil {
			return s.compensateDuplicate(ctx, tx, userID, wonItem, owned, result)
		}
	}

	if _, err := inventory.Grant(ctx, tx, wonItem, userID, 1); err != nil {
		return err
	}
	return nil
}

func (s *service) compensateDuplicate(ctx context.Context, tx repository.LootboxTx, userID string, wonItem *domain.CatalogItem, owned *domain.ItemInstance, result *domain.RollResult) error {
	result.AlreadyOwned = true
	result.CompensationAwarded = true

	credits := CompensationCredits(wonItem.Rarity)
	if _, err := wallet.Credit(ctx, tx, userID, credits); err != nil {
		return err
	}
	result.CompensationCredits = credits

	// Rod duplicates also feed XP into the copy already owned
	if owned.Experience != nil {
		xp := CompensationXP(wonItem.Rarity)
		if err := inventory.ApplyExperience(owned, xp); err != nil {
			return err
		}
		if err := tx.UpdateInstance(ctx, owned); err != nil {
			return fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
		}
		result.CompensationXP = xp
	}
	return nil
}
