package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/repository"
)

// Grant creates or stacks an instance of the item for the owner inside an
// open transaction. Purchase and case-open flows call this so the grant
// commits or rolls back with the rest of their work.
func Grant(ctx context.Context, tx repository.InstanceOps, item *domain.CatalogItem, ownerID string, quantity int) (*domain.ItemInstance, error) {
	if item.Category.Stackable() {
		existing, err := tx.FindOwnedInstanceForUpdate(ctx, ownerID, item.ID)
		if err == nil {
			existing.Quantity += quantity
			if err := tx.UpdateInstance(ctx, existing); err != nil {
				return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
			}
			return existing, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	inst := newInstance(item, ownerID, quantity)
	if err := tx.InsertInstance(ctx, inst); err != nil {
		return nil, fmt.Errorf(ErrMsgInsertInstanceFailed, err)
	}
	return inst, nil
}

// Transfer moves an instance between users inside an open transaction. The
// instance is unequipped and any attached rod parts are released; parts stay
// with the original owner.
func Transfer(ctx context.Context, tx repository.InstanceOps, instanceID uuid.UUID, fromID, toID string) error {
	inst, err := tx.GetInstanceForUpdate(ctx, instanceID)
	if err != nil {
		return err
	}
	if !inst.OwnedBy(fromID) {
		return fmt.Errorf("%w: instance %s", domain.ErrItemNotOwned, instanceID)
	}

	for _, partID := range inst.EquippedParts {
		part, err := tx.GetInstanceForUpdate(ctx, partID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return err
		}
		part.Equipped = false
		if err := tx.UpdateInstance(ctx, part); err != nil {
			return fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
		}
	}

	inst.OwnerID = toID
	inst.Equipped = false
	inst.EquippedParts = nil
	if err := tx.UpdateInstance(ctx, inst); err != nil {
		return fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}
	return nil
}

// ApplyExperience adds XP to a leveled instance, applying every level-up the
// new total earns. Levels never exceed MaxRodLevel; XP past the cap is kept.
func ApplyExperience(inst *domain.ItemInstance, xp int) error {
	if inst.Experience == nil || inst.Level == nil {
		return fmt.Errorf("%w: instance %s carries no experience", domain.ErrNotDurable, inst.ID)
	}

	total := *inst.Experience + xp
	level := domain.RodLevelForXP(total)
	inst.Experience = &total
	inst.Level = &level
	return nil
}

// newInstance builds a fresh instance row for the item, initializing durable
// state from the catalog definition.
func newInstance(item *domain.CatalogItem, ownerID string, quantity int) *domain.ItemInstance {
	inst := &domain.ItemInstance{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		CatalogItemID: item.ID,
		Quantity:      quantity,
	}
	if item.Rod != nil {
		durability := item.Rod.MaxDurability
		zero := 0
		level := 0
		repairs := 0
		inst.Durability = &durability
		inst.Experience = &zero
		inst.Level = &level
		inst.RepairCount = &repairs
	}
	return inst
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrInstanceNotFound)
}
