package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/repository"
	"github.com/quartzlab/tradepost/internal/validation"
)

// ItemInput is the admin payload for creating or updating a catalog item.
type ItemInput struct {
	Name         string              `json:"name" validate:"required,min=2,max=64,item_name"`
	Category     domain.Category     `json:"category" validate:"required"`
	Price        int                 `json:"price" validate:"gte=0"`
	Rarity       domain.Rarity       `json:"rarity" validate:"required"`
	Active       bool                `json:"active"`
	ExpiresAt    *time.Time          `json:"expires_at,omitempty"`
	RequiredRole *string             `json:"required_role,omitempty" validate:"omitempty,min=1,max=64"`
	Rod          *domain.RodModifiers `json:"rod,omitempty"`
}

// Service defines the interface for catalog operations. Reads are cached;
// admin writes invalidate the cache before returning.
type Service interface {
	GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error)
	GetItems(ctx context.Context) ([]domain.CatalogItem, error)
	GetCaseContents(ctx context.Context, caseItemID int) ([]domain.CaseContent, error)
	ValidateCaseContents(ctx context.Context, caseItemID int) error

	CreateItem(ctx context.Context, input ItemInput) (*domain.CatalogItem, error)
	UpdateItem(ctx context.Context, itemID int, input ItemInput) (*domain.CatalogItem, error)
	DeleteItem(ctx context.Context, itemID int) error
	SetCaseContents(ctx context.Context, caseItemID int, contents []domain.CaseContent) error
}

type service struct {
	repo          repository.Catalog
	validator     *validation.InputValidator
	itemCache     *lru.Cache[int, domain.CatalogItem]
	contentsCache *lru.Cache[int, []domain.CaseContent]
}

// NewService creates a new catalog service
func NewService(repo repository.Catalog) (Service, error) {
	itemCache, err := lru.New[int, domain.CatalogItem](ItemCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create item cache: %w", err)
	}
	contentsCache, err := lru.New[int, []domain.CaseContent](ContentsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create contents cache: %w", err)
	}
	return &service{
		repo:          repo,
		validator:     validation.NewInputValidator(),
		itemCache:     itemCache,
		contentsCache: contentsCache,
	}, nil
}

func (s *service) GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	if item, ok := s.itemCache.Get(itemID); ok {
		return &item, nil
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	s.itemCache.Add(itemID, *item)
	return item, nil
}

func (s *service) GetItems(ctx context.Context) ([]domain.CatalogItem, error) {
	// The full listing always hits the repository; individual lookups get
	// warmed as a side effect.
	items, err := s.repo.GetItems(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		s.itemCache.Add(item.ID, item)
	}
	return items, nil
}

func (s *service) GetCaseContents(ctx context.Context, caseItemID int) ([]domain.CaseContent, error) {
	if contents, ok := s.contentsCache.Get(caseItemID); ok {
		return contents, nil
	}

	contents, err := s.repo.GetCaseContents(ctx, caseItemID)
	if err != nil {
		return nil, err
	}
	s.contentsCache.Add(caseItemID, contents)
	return contents, nil
}

// ValidateCaseContents re-runs the loot-table integrity checks against the
// current catalog. Cases failing here cannot be opened.
func (s *service) ValidateCaseContents(ctx context.Context, caseItemID int) error {
	contents, err := s.GetCaseContents(ctx, caseItemID)
	if err != nil {
		return err
	}

	items, err := s.snapshotItems(ctx, contents)
	if err != nil {
		return err
	}
	return domain.ValidateCaseContents(caseItemID, contents, items)
}

// snapshotItems resolves every item referenced by a loot table. Missing items
// stay absent from the map so validation can report them.
func (s *service) snapshotItems(ctx context.Context, contents []domain.CaseContent) (map[int]domain.CatalogItem, error) {
	items := make(map[int]domain.CatalogItem, len(contents))
	for _, c := range contents {
		item, err := s.GetItem(ctx, c.ItemID)
		if err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				continue // validation reports the missing item
			}
			return nil, err
		}
		items[c.ItemID] = *item
	}
	return items, nil
}

func (s *service) validateInput(input *ItemInput) error {
	if err := s.validator.Validate(input); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	if !input.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, input.Category)
	}
	if !input.Rarity.Valid() {
		return fmt.Errorf("%w: unknown rarity %q", domain.ErrInvalidInput, input.Rarity)
	}
	if input.Rod != nil && input.Category != domain.CategoryFishingRod {
		return fmt.Errorf("%w: rod modifiers on non-rod category %q", domain.ErrInvalidInput, input.Category)
	}
	return nil
}

func itemFromInput(input ItemInput) domain.CatalogItem {
	return domain.CatalogItem{
		Name:         input.Name,
		Category:     input.Category,
		Price:        input.Price,
		Rarity:       input.Rarity,
		Active:       input.Active,
		ExpiresAt:    input.ExpiresAt,
		RequiredRole: input.RequiredRole,
		IsCase:       input.Category == domain.CategoryCase,
		Rod:          input.Rod,
	}
}

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*domain.CatalogItem, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCreateItemCalled, "name", input.Name, "category", input.Category)

	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	item := itemFromInput(input)
	if _, err := tx.InsertItem(ctx, &item); err != nil {
		return nil, fmt.Errorf(ErrMsgInsertItemFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	s.itemCache.Add(item.ID, item)
	log.Info(LogMsgItemCreated, "itemID", item.ID, "name", item.Name)
	return &item, nil
}

func (s *service) UpdateItem(ctx context.Context, itemID int, input ItemInput) (*domain.CatalogItem, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgUpdateItemCalled, "itemID", itemID)

	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	existing, err := tx.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item := itemFromInput(input)
	item.ID = itemID
	item.CreatedAt = existing.CreatedAt

	// Category changes would orphan instance state (stack quantities,
	// durability); keep the definition's category fixed after creation.
	if item.Category != existing.Category {
		return nil, fmt.Errorf("%w: category cannot change from %q to %q",
			domain.ErrInvalidInput, existing.Category, item.Category)
	}

	if err := tx.UpdateItem(ctx, itemID, &item); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateItemFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	s.itemCache.Remove(itemID)
	log.Info(LogMsgItemUpdated, "itemID", itemID)
	return &item, nil
}

// DeleteItem removes a catalog definition. It refuses while any case loot
// table references the item or any live instance exists, so the instance
// ledger never points at a missing definition.
func (s *service) DeleteItem(ctx context.Context, itemID int) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgDeleteItemCalled, "itemID", itemID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	item, err := tx.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	caseIDs, err := tx.CasesReferencingItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf(ErrMsgCheckReferencesFailed, err)
	}
	if len(caseIDs) > 0 {
		return &domain.CaseReferenceError{ItemID: itemID, CaseIDs: caseIDs}
	}

	count, err := tx.CountInstances(ctx, itemID)
	if err != nil {
		return fmt.Errorf(ErrMsgCountInstancesFailed, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: item %d has %d live instances", domain.ErrItemHasInstances, itemID, count)
	}

	// A case drops its own loot table with it.
	if item.IsCase {
		if err := tx.ReplaceCaseContents(ctx, itemID, nil); err != nil {
			return fmt.Errorf(ErrMsgReplaceContentsFailed, err)
		}
	}

	if err := tx.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf(ErrMsgDeleteItemFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	s.itemCache.Remove(itemID)
	s.contentsCache.Remove(itemID)
	log.Info(LogMsgItemDeleted, "itemID", itemID)
	return nil
}

// SetCaseContents replaces a case's loot table. Validation runs inside the
// same transaction as the write, so an invalid table never lands.
func (s *service) SetCaseContents(ctx context.Context, caseItemID int, contents []domain.CaseContent) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgSetCaseContentsCalled, "caseItemID", caseItemID, "entries", len(contents))

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	caseItem, err := tx.GetItem(ctx, caseItemID)
	if err != nil {
		return err
	}
	if !caseItem.IsCase {
		return fmt.Errorf("%w: item %d is not a case", domain.ErrInvalidInput, caseItemID)
	}

	items := make(map[int]domain.CatalogItem, len(contents))
	for _, c := range contents {
		item, err := tx.GetItem(ctx, c.ItemID)
		if err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				continue // validation reports the missing item
			}
			return err
		}
		items[c.ItemID] = *item
	}
	if err := domain.ValidateCaseContents(caseItemID, contents, items); err != nil {
		return err
	}

	for i := range contents {
		contents[i].CaseItemID = caseItemID
	}
	if err := tx.ReplaceCaseContents(ctx, caseItemID, contents); err != nil {
		return fmt.Errorf(ErrMsgReplaceContentsFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	s.contentsCache.Remove(caseItemID)
	log.Info(LogMsgCaseContentsSet, "caseItemID", caseItemID, "entries", len(contents))
	return nil
}
