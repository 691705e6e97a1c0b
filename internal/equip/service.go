package equip

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/repository"
)

// CatalogReader is the catalog slice the equip manager needs: category and
// slot rules come from the definition, never from the instance.
type CatalogReader interface {
	GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error)
	GetItems(ctx context.Context) ([]domain.CatalogItem, error)
}

// Service defines the equip-manager interface. Equip state is presentation
// only; no operation here touches ownership or durability.
type Service interface {
	Equip(ctx context.Context, userID string, instanceID uuid.UUID) (*domain.ItemInstance, error)
	Unequip(ctx context.Context, userID string, instanceID uuid.UUID) (*domain.ItemInstance, error)
	BatchEquip(ctx context.Context, userID string, instanceIDs []uuid.UUID) ([]domain.ItemInstance, error)
	BatchUnequip(ctx context.Context, userID string, instanceIDs []uuid.UUID) ([]domain.ItemInstance, error)

	// UnequipCategory clears every equipped item of the category. Clearing an
	// empty category is a no-op; the returned slice is the category's equipped
	// set after the call (always empty on success).
	UnequipCategory(ctx context.Context, userID string, category domain.Category) ([]domain.ItemInstance, error)

	GetEquipped(ctx context.Context, userID string) ([]domain.ItemInstance, error)

	AttachRodPart(ctx context.Context, userID string, rodInstanceID uuid.UUID, slot domain.RodPartSlot, partInstanceID uuid.UUID) (*domain.ItemInstance, error)
	DetachRodPart(ctx context.Context, userID string, rodInstanceID uuid.UUID, slot domain.RodPartSlot) (*domain.ItemInstance, error)
}

type service struct {
	repo       repository.Equip
	catalog    CatalogReader
	badgeLimit int
}

// NewService creates a new equip service. badgeLimit <= 0 falls back to the
// default.
func NewService(repo repository.Equip, catalog CatalogReader, badgeLimit int) Service {
	if badgeLimit <= 0 {
		badgeLimit = domain.DefaultBadgeLimit
	}
	return &service{
		repo:       repo,
		catalog:    catalog,
		badgeLimit: badgeLimit,
	}
}

func (s *service) Equip(ctx context.Context, userID string, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgEquipCalled, "userID", userID, "instanceID", instanceID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	inst, err := s.equipLocked(ctx, tx, userID, instanceID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	log.Info(LogMsgItemEquipped, "instanceID", instanceID)
	return inst, nil
}

// equipLocked performs one equip inside an open transaction.
func (s *service) equipLocked(ctx context.Context, tx repository.EquipTx, userID string, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	inst, item, err := s.lockOwned(ctx, tx, userID, instanceID)
	if err != nil {
		return nil, err
	}

	switch item.Category {
	case domain.CategoryCase, domain.CategoryRodPart:
		// Cases aren't wearable; rod parts attach to rods, not to users
		return nil, fmt.Errorf("%w: category %s", domain.ErrNotEquippable, item.Category)
	}

	if inst.Equipped {
		return inst, nil
	}

	locked, err := tx.LockedInstances(ctx, []uuid.UUID{instanceID}, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgCheckLocksFailed, err)
	}
	if len(locked) > 0 {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrItemLocked, instanceID)
	}

	equipped, err := tx.GetEquippedForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetEquippedFailed, err)
	}

	if item.Category.Exclusive() {
		// Swap semantics: the previous holder of an exclusive slot comes off
		for i := range equipped {
			other := &equipped[i]
			otherItem, err := s.catalog.GetItem(ctx, other.CatalogItemID)
			if err != nil {
				return nil, err
			}
			if otherItem.Category == item.Category {
				other.Equipped = false
				if err := tx.UpdateInstance(ctx, other); err != nil {
					return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
				}
			}
		}
	}

	if item.Category == domain.CategoryBadge {
		count := 0
		for i := range equipped {
			otherItem, err := s.catalog.GetItem(ctx, equipped[i].CatalogItemID)
			if err != nil {
				return nil, err
			}
			if otherItem.Category == domain.CategoryBadge {
				count++
			}
		}
		if count >= s.badgeLimit {
			return nil, fmt.Errorf("%w: limit is %d", domain.ErrBadgeLimitExceeded, s.badgeLimit)
		}
	}

	inst.Equipped = true
	if err := tx.UpdateInstance(ctx, inst); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}
	return inst, nil
}

func (s *service) Unequip(ctx context.Context, userID string, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgUnequipCalled, "userID", userID, "instanceID", instanceID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	inst, err := s.unequipLocked(ctx, tx, userID, instanceID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	log.Info(LogMsgItemUnequipped, "instanceID", instanceID)
	return inst, nil
}

func (s *service) unequipLocked(ctx context.Context, tx repository.EquipTx, userID string, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	inst, _, err := s.lockOwned(ctx, tx, userID, instanceID)
	if err != nil {
		return nil, err
	}

	if !inst.Equipped {
		// Unequipping the unequipped is a no-op, not an error
		return inst, nil
	}

	locked, err := tx.LockedInstances(ctx, []uuid.UUID{instanceID}, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgCheckLocksFailed, err)
	}
	if len(locked) > 0 {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrItemLocked, instanceID)
	}

	inst.Equipped = false
	if err := tx.UpdateInstance(ctx, inst); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}
	return inst, nil
}

// BatchEquip equips up to MaxBatchEquipSize instances in one transaction.
// All-or-nothing: one failure rolls the whole batch back.
func (s *service) BatchEquip(ctx context.Context, userID string, instanceIDs []uuid.UUID) ([]domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgBatchEquipCalled, "userID", userID, "count", len(instanceIDs))

	if err := validateBatch(instanceIDs); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	results := make([]domain.ItemInstance, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		inst, err := s.equipLocked(ctx, tx, userID, id)
		if err != nil {
			return nil, err
		}
		results = append(results, *inst)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}
	return results, nil
}

// BatchUnequip unequips up to MaxBatchEquipSize instances in one transaction.
func (s *service) BatchUnequip(ctx context.Context, userID string, instanceIDs []uuid.UUID) ([]domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgBatchUnequipCalled, "userID", userID, "count", len(instanceIDs))

	if err := validateBatch(instanceIDs); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	results := make([]domain.ItemInstance, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		inst, err := s.unequipLocked(ctx, tx, userID, id)
		if err != nil {
			return nil, err
		}
		results = append(results, *inst)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}
	return results, nil
}

func (s *service) UnequipCategory(ctx context.Context, userID string, category domain.Category) ([]domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgUnequipCategoryCalled, "userID", userID, "category", category)

	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, category)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	equipped, err := tx.GetEquippedForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetEquippedFailed, err)
	}

	for i := range equipped {
		item, err := s.catalog.GetItem(ctx, equipped[i].CatalogItemID)
		if err != nil {
			return nil, err
		}
		if item.Category != category {
			continue
		}
		equipped[i].Equipped = false
		if err := tx.UpdateInstance(ctx, &equipped[i]); err != nil {
			return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}
	return nil, nil
}

func (s *service) GetEquipped(ctx context.Context, userID string) ([]domain.ItemInstance, error) {
	instances, err := s.repo.GetInstancesByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetInstancesFailed, err)
	}
	var equipped []domain.ItemInstance
	for _, inst := range instances {
		if inst.Equipped {
			equipped = append(equipped, inst)
		}
	}
	return equipped, nil
}

// lockOwned locks an instance and resolves its definition, verifying ownership.
func (s *service) lockOwned(ctx context.Context, tx repository.EquipTx, userID string, instanceID uuid.UUID) (*domain.ItemInstance, *domain.CatalogItem, error) {
	inst, err := tx.GetInstanceForUpdate(ctx, instanceID)
	if err != nil {
		return nil, nil, err
	}
	if !inst.OwnedBy(userID) {
		return nil, nil, fmt.Errorf("%w: instance %s", domain.ErrItemNotOwned, instanceID)
	}
	item, err := s.catalog.GetItem(ctx, inst.CatalogItemID)
	if err != nil {
		return nil, nil, err
	}
	return inst, item, nil
}

func validateBatch(instanceIDs []uuid.UUID) error {
	if len(instanceIDs) == 0 {
		return fmt.Errorf("%w: empty batch", domain.ErrInvalidInput)
	}
	if len(instanceIDs) > domain.MaxBatchEquipSize {
		return fmt.Errorf("%w: batch of %d exceeds limit of %d", domain.ErrInvalidInput, len(instanceIDs), domain.MaxBatchEquipSize)
	}
	return nil
}
