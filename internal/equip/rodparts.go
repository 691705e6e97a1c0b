package equip

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/repository"
)

// AttachRodPart mounts an owned rod part into one of the rod's slots. An
// occupied slot swaps its previous part out; a part already mounted on any
// rod cannot be mounted again.
func (s *service) AttachRodPart(ctx context.Context, userID string, rodInstanceID uuid.UUID, slot domain.RodPartSlot, partInstanceID uuid.UUID) (*domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgAttachRodPartCalled, "userID", userID, "rodInstanceID", rodInstanceID, "slot", slot, "partInstanceID", partInstanceID)

	if !domain.ValidRodPartSlot(slot) {
		return nil, fmt.Errorf("%w: unknown rod slot %q", domain.ErrInvalidInput, slot)
	}
	if rodInstanceID == partInstanceID {
		return nil, fmt.Errorf("%w: rod and part are the same instance", domain.ErrInvalidInput)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	rod, rodItem, err := s.lockOwned(ctx, tx, userID, rodInstanceID)
	if err != nil {
		return nil, err
	}
	if rodItem.Category != domain.CategoryFishingRod {
		return nil, fmt.Errorf("%w: instance %s is not a rod", domain.ErrInvalidInput, rodInstanceID)
	}

	part, partItem, err := s.lockOwned(ctx, tx, userID, partInstanceID)
	if err != nil {
		return nil, err
	}
	if partItem.Category != domain.CategoryRodPart {
		return nil, fmt.Errorf("%w: instance %s is not a rod part", domain.ErrInvalidInput, partInstanceID)
	}
	// Equipped on a part means mounted on some rod
	if part.Equipped {
		return nil, fmt.Errorf("%w: part %s is mounted on a rod", domain.ErrItemEquipped, partInstanceID)
	}

	locked, err := tx.LockedInstances(ctx, []uuid.UUID{rodInstanceID, partInstanceID}, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgCheckLocksFailed, err)
	}
	if len(locked) > 0 {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrItemLocked, locked[0])
	}

	// Swap out whatever occupied the slot
	if previousID, ok := rod.EquippedParts[slot]; ok {
		if err := s.releasePart(ctx, tx, previousID); err != nil {
			return nil, err
		}
	}

	if rod.EquippedParts == nil {
		rod.EquippedParts = make(map[domain.RodPartSlot]uuid.UUID, 1)
	}
	rod.EquippedParts[slot] = partInstanceID
	part.Equipped = true

	if err := tx.UpdateInstance(ctx, part); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}
	if err := tx.UpdateInstance(ctx, rod); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	log.Info(LogMsgRodPartAttached, "rodInstanceID", rodInstanceID, "slot", slot)
	return rod, nil
}

// DetachRodPart removes the part in the rod's slot. An empty slot is a no-op.
func (s *service) DetachRodPart(ctx context.Context, userID string, rodInstanceID uuid.UUID, slot domain.RodPartSlot) (*domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgDetachRodPartCalled, "userID", userID, "rodInstanceID", rodInstanceID, "slot", slot)

	if !domain.ValidRodPartSlot(slot) {
		return nil, fmt.Errorf("%w: unknown rod slot %q", domain.ErrInvalidInput, slot)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	rod, rodItem, err := s.lockOwned(ctx, tx, userID, rodInstanceID)
	if err != nil {
		return nil, err
	}
	if rodItem.Category != domain.CategoryFishingRod {
		return nil, fmt.Errorf("%w: instance %s is not a rod", domain.ErrInvalidInput, rodInstanceID)
	}

	partID, ok := rod.EquippedParts[slot]
	if !ok {
		return rod, nil
	}

	if err := s.releasePart(ctx, tx, partID); err != nil {
		return nil, err
	}
	delete(rod.EquippedParts, slot)
	if len(rod.EquippedParts) == 0 {
		rod.EquippedParts = nil
	}

	if err := tx.UpdateInstance(ctx, rod); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	log.Info(LogMsgRodPartDetached, "rodInstanceID", rodInstanceID, "slot", slot)
	return rod, nil
}

// releasePart clears the mounted flag on a part instance. A part deleted out
// from under the rod is tolerated.
func (s *service) releasePart(ctx context.Context, tx repository.EquipTx, partID uuid.UUID) error {
	part, err := tx.GetInstanceForUpdate(ctx, partID)
	if err != nil {
		if errorsIsNotFound(err) {
			return nil
		}
		return err
	}
	part.Equipped = false
	if err := tx.UpdateInstance(ctx, part); err != nil {
		return fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}
	return nil
}
