package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/event"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/repository"
)

// CatalogReader is the slice of the catalog the instance ledger needs:
// definition lookups for stacking rules, durability maxima and view joins.
type CatalogReader interface {
	GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error)
	GetItems(ctx context.Context) ([]domain.CatalogItem, error)
}

// Service defines the interface for item-instance operations
type Service interface {
	GetInventory(ctx context.Context, userID string) ([]domain.InventoryEntry, error)
	GetInstance(ctx context.Context, instanceID uuid.UUID) (*domain.ItemInstance, error)
	CreateInstance(ctx context.Context, ownerID string, catalogItemID, quantity int) (*domain.ItemInstance, error)
	AddExperience(ctx context.Context, userID string, instanceID uuid.UUID, xp int) (*domain.ItemInstance, error)
	MutateDurability(ctx context.Context, userID string, instanceID uuid.UUID, delta int) (*domain.ItemInstance, error)
	RepairInstance(ctx context.Context, userID string, instanceID uuid.UUID) (*domain.ItemInstance, error)
}

type service struct {
	repo      repository.Inventory
	catalog   CatalogReader
	publisher event.Publisher
	now       func() time.Time
}

// NewService creates a new inventory service
func NewService(repo repository.Inventory, catalog CatalogReader, publisher event.Publisher) Service {
	return &service{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		now:       time.Now,
	}
}

// GetInventory joins the user's instances with catalog snapshots for display.
// Instances whose definition vanished are skipped rather than failing the view.
func (s *service) GetInventory(ctx context.Context, userID string) ([]domain.InventoryEntry, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgGetInventoryCalled, "userID", userID)

	instances, err := s.repo.GetInstancesByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetInstancesFailed, err)
	}
	if len(instances) == 0 {
		return nil, nil
	}

	items, err := s.catalog.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetCatalogFailed, err)
	}
	byID := make(map[int]domain.CatalogItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	entries := make([]domain.InventoryEntry, 0, len(instances))
	for _, inst := range instances {
		item, ok := byID[inst.CatalogItemID]
		if !ok {
			log.Warn(LogMsgOrphanedInstance, "instanceID", inst.ID, "itemID", inst.CatalogItemID)
			continue
		}
		entries = append(entries, domain.InventoryEntry{Instance: inst, Item: item})
	}
	return entries, nil
}

func (s *service) GetInstance(ctx context.Context, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	return s.repo.GetInstance(ctx, instanceID)
}

// CreateInstance grants copies of a catalog item to a user. Stackable
// categories increment the existing row's quantity; everything else gets a
// fresh row with per-copy state initialized from the definition.
func (s *service) CreateInstance(ctx context.Context, ownerID string, catalogItemID, quantity int) (*domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCreateInstanceCalled, "ownerID", ownerID, "itemID", catalogItemID, "quantity", quantity)

	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidInput, quantity)
	}

	item, err := s.catalog.GetItem(ctx, catalogItemID)
	if err != nil {
		return nil, err
	}

	if !item.Category.Stackable() && quantity != 1 {
		return nil, fmt.Errorf("%w: %s items are granted one at a time", domain.ErrInvalidInput, item.Category)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	inst, err := Grant(ctx, tx, item, ownerID, quantity)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	log.Info(LogMsgInstanceCreated, "instanceID", inst.ID, "ownerID", ownerID, "itemID", catalogItemID)
	return inst, nil
}

// AddExperience feeds XP into a leveled instance and applies every level-up
// the new total earns, capped at MaxRodLevel.
func (s *service) AddExperience(ctx context.Context, userID string, instanceID uuid.UUID, xp int) (*domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgAddExperienceCalled, "userID", userID, "instanceID", instanceID, "xp", xp)

	if xp <= 0 {
		return nil, fmt.Errorf("%w: xp must be positive, got %d", domain.ErrInvalidInput, xp)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	inst, err := tx.GetInstanceForUpdate(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !inst.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrItemNotOwned, instanceID)
	}
	if err := ensureUnlocked(ctx, tx, instanceID); err != nil {
		return nil, err
	}

	if err := ApplyExperience(inst, xp); err != nil {
		return nil, err
	}

	if err := tx.UpdateInstance(ctx, inst); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	log.Info(LogMsgExperienceAdded, "instanceID", instanceID, "xp", xp, "level", *inst.Level)
	return inst, nil
}

// MutateDurability applies wear (negative delta) or restoration to a durable
// instance, clamped to [0, catalog max].
func (s *service) MutateDurability(ctx context.Context, userID string, instanceID uuid.UUID, delta int) (*domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgMutateDurabilityCalled, "userID", userID, "instanceID", instanceID, "delta", delta)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	inst, err := tx.GetInstanceForUpdate(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !inst.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrItemNotOwned, instanceID)
	}
	if inst.Durability == nil {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrNotDurable, instanceID)
	}
	if err := ensureUnlocked(ctx, tx, instanceID); err != nil {
		return nil, err
	}

	item, err := s.catalog.GetItem(ctx, inst.CatalogItemID)
	if err != nil {
		return nil, err
	}
	maxDurability := 0
	if item.Rod != nil {
		maxDurability = item.Rod.MaxDurability
	}

	d := *inst.Durability + delta
	if d < 0 {
		d = 0
	}
	if maxDurability > 0 && d > maxDurability {
		d = maxDurability
	}
	inst.Durability = &d

	if err := tx.UpdateInstance(ctx, inst); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	log.Info(LogMsgDurabilityMutated, "instanceID", instanceID, "durability", d)
	return inst, nil
}

// ensureUnlocked rejects mutation of an instance a pending trade has frozen.
// The receiver inspected a specific state; it must not change underneath them.
func ensureUnlocked(ctx context.Context, tx repository.InstanceOps, instanceID uuid.UUID) error {
	locked, err := tx.LockedInstances(ctx, []uuid.UUID{instanceID}, uuid.Nil)
	if err != nil {
		return fmt.Errorf(ErrMsgCheckLocksFailed, err)
	}
	if len(locked) > 0 {
		return fmt.Errorf("%w: instance %s", domain.ErrItemLocked, instanceID)
	}
	return nil
}

// RepairInstance restores a durable instance to full durability, consuming
// one of its limited repairs.
func (s *service) RepairInstance(ctx context.Context, userID string, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgRepairInstanceCalled, "userID", userID, "instanceID", instanceID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	inst, err := tx.GetInstanceForUpdate(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !inst.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrItemNotOwned, instanceID)
	}
	if inst.Durability == nil || inst.RepairCount == nil {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrNotDurable, instanceID)
	}
	if err := ensureUnlocked(ctx, tx, instanceID); err != nil {
		return nil, err
	}

	item, err := s.catalog.GetItem(ctx, inst.CatalogItemID)
	if err != nil {
		return nil, err
	}
	if item.Rod == nil {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrNotDurable, instanceID)
	}
	if *inst.RepairCount >= item.Rod.MaxRepairs {
		return nil, fmt.Errorf("%w: %d of %d repairs used", domain.ErrRepairLimitExceeded, *inst.RepairCount, item.Rod.MaxRepairs)
	}

	restored := item.Rod.MaxDurability
	repairs := *inst.RepairCount + 1
	inst.Durability = &restored
	inst.RepairCount = &repairs

	if err := tx.UpdateInstance(ctx, inst); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateInstanceFailed, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, event.Event{
			Version: event.EventSchemaVersion,
			Type:    event.Type(domain.EventTypeItemRepaired),
			Payload: domain.ItemRepairedPayload{
				UserID:      userID,
				InstanceID:  instanceID.String(),
				RepairCount: repairs,
				Timestamp:   s.now().Unix(),
			},
		})
	}

	log.Info(LogMsgInstanceRepaired, "instanceID", instanceID, "repairCount", repairs)
	return inst, nil
}
