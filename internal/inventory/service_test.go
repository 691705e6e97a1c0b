package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/event"
	"github.com/quartzlab/tradepost/internal/repository"
)

// MockRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetInstance(ctx context.Context, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemInstance), args.Error(1)
}

func (m *MockRepository) GetInstancesByOwner(ctx context.Context, ownerID string) ([]domain.ItemInstance, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ItemInstance), args.Error(1)
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.InventoryTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.InventoryTx), args.Error(1)
}

// MockCatalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogItem), args.Error(1)
}

func (m *MockCatalog) GetItems(ctx context.Context) ([]domain.CatalogItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithRetry(ctx context.Context, e event.Event) {
	m.Called(ctx, e)
}

// MockTx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) GetInstanceForUpdate(ctx context.Context, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemInstance), args.Error(1)
}

func (m *MockTx) FindOwnedInstanceForUpdate(ctx context.Context, ownerID string, catalogItemID int) (*domain.ItemInstance, error) {
	args := m.Called(ctx, ownerID, catalogItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemInstance), args.Error(1)
}

func (m *MockTx) InsertInstance(ctx context.Context, instance *domain.ItemInstance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockTx) UpdateInstance(ctx context.Context, instance *domain.ItemInstance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockTx) DeleteInstance(ctx context.Context, instanceID uuid.UUID) error {
	args := m.Called(ctx, instanceID)
	return args.Error(0)
}

func (m *MockTx) LockedInstances(ctx context.Context, instanceIDs []uuid.UUID, excludeTrade uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, instanceIDs, excludeTrade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func intPtr(v int) *int { return &v }

func rodItem(id int) *domain.CatalogItem {
	return &domain.CatalogItem{
		ID:       id,
		Name:     "Oak Rod",
		Category: domain.CategoryFishingRod,
		Rarity:   domain.RarityCommon,
		Active:   true,
		Rod:      &domain.RodModifiers{Multiplier: 1.2, MaxDurability: 100, MaxRepairs: 3},
	}
}

// ========================================
// GetInventory
// ========================================

func TestGetInventory_JoinsCatalog(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	instances := []domain.ItemInstance{
		{ID: uuid.New(), OwnerID: "user1", CatalogItemID: 1, Quantity: 1},
		{ID: uuid.New(), OwnerID: "user1", CatalogItemID: 2, Quantity: 3},
	}
	items := []domain.CatalogItem{
		{ID: 1, Name: "Plate"},
		{ID: 2, Name: "Starter Case", IsCase: true},
	}

	repo.On("GetInstancesByOwner", ctx, "user1").Return(instances, nil)
	catalog.On("GetItems", ctx).Return(items, nil)

	entries, err := s.GetInventory(ctx, "user1")

	assert.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Plate", entries[0].Item.Name)
	assert.Equal(t, 3, entries[1].Instance.Quantity)
	repo.AssertExpectations(t)
}

func TestGetInventory_SkipsOrphanedInstances(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	instances := []domain.ItemInstance{
		{ID: uuid.New(), OwnerID: "user1", CatalogItemID: 1},
		{ID: uuid.New(), OwnerID: "user1", CatalogItemID: 99},
	}
	repo.On("GetInstancesByOwner", ctx, "user1").Return(instances, nil)
	catalog.On("GetItems", ctx).Return([]domain.CatalogItem{{ID: 1, Name: "Plate"}}, nil)

	entries, err := s.GetInventory(ctx, "user1")

	assert.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Item.ID)
}

func TestGetInventory_Empty(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	repo.On("GetInstancesByOwner", ctx, "user1").Return([]domain.ItemInstance{}, nil)

	entries, err := s.GetInventory(ctx, "user1")

	assert.NoError(t, err)
	assert.Empty(t, entries)
	catalog.AssertNotCalled(t, "GetItems", mock.Anything)
}

// ========================================
// CreateInstance
// ========================================

func TestCreateInstance_StacksCases(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	caseItem := &domain.CatalogItem{ID: 10, Name: "Starter Case", Category: domain.CategoryCase, IsCase: true}
	existing := &domain.ItemInstance{ID: uuid.New(), OwnerID: "user1", CatalogItemID: 10, Quantity: 2}

	catalog.On("GetItem", ctx, 10).Return(caseItem, nil)
	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("FindOwnedInstanceForUpdate", ctx, "user1", 10).Return(existing, nil)
	tx.On("UpdateInstance", ctx, mock.MatchedBy(func(inst *domain.ItemInstance) bool {
		return inst.Quantity == 5
	})).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	inst, err := s.CreateInstance(ctx, "user1", 10, 3)

	assert.NoError(t, err)
	assert.Equal(t, 5, inst.Quantity)
	assert.Equal(t, existing.ID, inst.ID)
	tx.AssertNotCalled(t, "InsertInstance", mock.Anything, mock.Anything)
	tx.AssertExpectations(t)
}

func TestCreateInstance_NewStackRow(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	caseItem := &domain.CatalogItem{ID: 10, Category: domain.CategoryCase, IsCase: true}

	catalog.On("GetItem", ctx, 10).Return(caseItem, nil)
	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("FindOwnedInstanceForUpdate", ctx, "user1", 10).Return(nil, domain.ErrInstanceNotFound)
	tx.On("InsertInstance", ctx, mock.MatchedBy(func(inst *domain.ItemInstance) bool {
		return inst.Quantity == 4 && inst.OwnerID == "user1" && inst.Durability == nil
	})).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	inst, err := s.CreateInstance(ctx, "user1", 10, 4)

	assert.NoError(t, err)
	assert.Equal(t, 4, inst.Quantity)
	tx.AssertExpectations(t)
}

func TestCreateInstance_RodInitializesDurableState(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)

	catalog.On("GetItem", ctx, 3).Return(rodItem(3), nil)
	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("InsertInstance", ctx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	inst, err := s.CreateInstance(ctx, "user1", 3, 1)

	assert.NoError(t, err)
	require.NotNil(t, inst.Durability)
	assert.Equal(t, 100, *inst.Durability)
	require.NotNil(t, inst.Level)
	assert.Equal(t, 0, *inst.Level)
	require.NotNil(t, inst.RepairCount)
	assert.Equal(t, 0, *inst.RepairCount)
	tx.AssertNotCalled(t, "FindOwnedInstanceForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInstance_NonStackableQuantityRejected(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	badge := &domain.CatalogItem{ID: 2, Category: domain.CategoryBadge}
	catalog.On("GetItem", ctx, 2).Return(badge, nil)

	inst, err := s.CreateInstance(ctx, "user1", 2, 3)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, inst)
	repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestCreateInstance_NonPositiveQuantity(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	inst, err := s.CreateInstance(context.Background(), "user1", 2, 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, inst)
	catalog.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
}

// ========================================
// AddExperience
// ========================================

func TestAddExperience_LevelsUp(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{
		ID:            instanceID,
		OwnerID:       "user1",
		CatalogItemID: 3,
		Experience:    intPtr(150),
		Level:         intPtr(0),
	}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{}, nil)
	tx.On("UpdateInstance", ctx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	updated, err := s.AddExperience(ctx, "user1", instanceID, 350)

	assert.NoError(t, err)
	assert.Equal(t, 500, *updated.Experience)
	assert.Equal(t, 2, *updated.Level)
	tx.AssertExpectations(t)
}

func TestAddExperience_NotOwned(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{ID: instanceID, OwnerID: "someone-else", Experience: intPtr(0), Level: intPtr(0)}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.AddExperience(ctx, "user1", instanceID, 100)

	assert.ErrorIs(t, err, domain.ErrItemNotOwned)
	tx.AssertNotCalled(t, "UpdateInstance", mock.Anything, mock.Anything)
}

func TestAddExperience_NonPositiveXP(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	_, err := s.AddExperience(context.Background(), "user1", uuid.New(), 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestApplyExperience_NoLevelState(t *testing.T) {
	inst := &domain.ItemInstance{ID: uuid.New()}

	err := ApplyExperience(inst, 100)

	assert.Error(t, err)
}

func TestApplyExperience_CapsAtMaxLevel(t *testing.T) {
	inst := &domain.ItemInstance{
		ID:         uuid.New(),
		Experience: intPtr(0),
		Level:      intPtr(0),
	}

	err := ApplyExperience(inst, 100_000_000)

	assert.NoError(t, err)
	assert.Equal(t, domain.MaxRodLevel, *inst.Level)
	assert.Equal(t, 100_000_000, *inst.Experience, "XP past the cap is kept")
}

// ========================================
// MutateDurability
// ========================================

func TestMutateDurability_ClampsAtZero(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{ID: instanceID, OwnerID: "user1", CatalogItemID: 3, Durability: intPtr(10)}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{}, nil)
	catalog.On("GetItem", ctx, 3).Return(rodItem(3), nil)
	tx.On("UpdateInstance", ctx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	updated, err := s.MutateDurability(ctx, "user1", instanceID, -50)

	assert.NoError(t, err)
	assert.Equal(t, 0, *updated.Durability)
}

func TestMutateDurability_ClampsAtCatalogMax(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{ID: instanceID, OwnerID: "user1", CatalogItemID: 3, Durability: intPtr(90)}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{}, nil)
	catalog.On("GetItem", ctx, 3).Return(rodItem(3), nil)
	tx.On("UpdateInstance", ctx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	updated, err := s.MutateDurability(ctx, "user1", instanceID, 50)

	assert.NoError(t, err)
	assert.Equal(t, 100, *updated.Durability)
}

func TestMutateDurability_NotDurable(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{ID: instanceID, OwnerID: "user1", CatalogItemID: 1}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.MutateDurability(ctx, "user1", instanceID, -10)

	assert.ErrorIs(t, err, domain.ErrNotDurable)
	catalog.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
}

// ========================================
// RepairInstance
// ========================================

func TestRepairInstance_Success(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	publisher := new(MockPublisher)
	s := NewService(repo, catalog, publisher)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{
		ID:            instanceID,
		OwnerID:       "user1",
		CatalogItemID: 3,
		Durability:    intPtr(5),
		RepairCount:   intPtr(1),
	}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{}, nil)
	catalog.On("GetItem", ctx, 3).Return(rodItem(3), nil)
	tx.On("UpdateInstance", ctx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()
	publisher.On("PublishWithRetry", ctx, mock.MatchedBy(func(e event.Event) bool {
		return e.Type == event.Type(domain.EventTypeItemRepaired)
	})).Return()

	updated, err := s.RepairInstance(ctx, "user1", instanceID)

	assert.NoError(t, err)
	assert.Equal(t, 100, *updated.Durability)
	assert.Equal(t, 2, *updated.RepairCount)
	publisher.AssertExpectations(t)
}

func TestRepairInstance_LockedByPendingTrade(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	publisher := new(MockPublisher)
	s := NewService(repo, catalog, publisher)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{
		ID:            instanceID,
		OwnerID:       "user1",
		CatalogItemID: 3,
		Durability:    intPtr(5),
		RepairCount:   intPtr(0),
	}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{instanceID}, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.RepairInstance(ctx, "user1", instanceID)

	assert.ErrorIs(t, err, domain.ErrItemLocked)
	assert.Equal(t, 5, *inst.Durability, "durability untouched while the trade is pending")
	tx.AssertNotCalled(t, "UpdateInstance", mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
	publisher.AssertNotCalled(t, "PublishWithRetry", mock.Anything, mock.Anything)
}

func TestAddExperience_LockedByPendingTrade(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{ID: instanceID, OwnerID: "user1", Experience: intPtr(0), Level: intPtr(0)}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{instanceID}, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.AddExperience(ctx, "user1", instanceID, 100)

	assert.ErrorIs(t, err, domain.ErrItemLocked)
	tx.AssertNotCalled(t, "UpdateInstance", mock.Anything, mock.Anything)
}

func TestMutateDurability_LockedByPendingTrade(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{ID: instanceID, OwnerID: "user1", CatalogItemID: 3, Durability: intPtr(50)}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{instanceID}, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.MutateDurability(ctx, "user1", instanceID, -10)

	assert.ErrorIs(t, err, domain.ErrItemLocked)
	catalog.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "UpdateInstance", mock.Anything, mock.Anything)
}

func TestRepairInstance_LimitExceeded(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	s := NewService(repo, catalog, nil)

	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{
		ID:            instanceID,
		OwnerID:       "user1",
		CatalogItemID: 3,
		Durability:    intPtr(0),
		RepairCount:   intPtr(3),
	}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{}, nil)
	catalog.On("GetItem", ctx, 3).Return(rodItem(3), nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.RepairInstance(ctx, "user1", instanceID)

	assert.ErrorIs(t, err, domain.ErrRepairLimitExceeded)
	tx.AssertNotCalled(t, "UpdateInstance", mock.Anything, mock.Anything)
}

// ========================================
// Transfer
// ========================================

func TestTransfer_Success(t *testing.T) {
	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{ID: instanceID, OwnerID: "alice", Equipped: true}

	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	tx.On("UpdateInstance", ctx, mock.MatchedBy(func(i *domain.ItemInstance) bool {
		return i.OwnerID == "bob" && !i.Equipped && i.EquippedParts == nil
	})).Return(nil)

	err := Transfer(ctx, tx, instanceID, "alice", "bob")

	assert.NoError(t, err)
	tx.AssertExpectations(t)
}

func TestTransfer_ReleasesAttachedParts(t *testing.T) {
	ctx := context.Background()
	tx := new(MockTx)
	rodID := uuid.New()
	partID := uuid.New()
	rod := &domain.ItemInstance{
		ID:            rodID,
		OwnerID:       "alice",
		Equipped:      true,
		EquippedParts: map[domain.RodPartSlot]uuid.UUID{domain.RodSlotReel: partID},
	}
	part := &domain.ItemInstance{ID: partID, OwnerID: "alice", Equipped: true}

	tx.On("GetInstanceForUpdate", ctx, rodID).Return(rod, nil)
	tx.On("GetInstanceForUpdate", ctx, partID).Return(part, nil)
	tx.On("UpdateInstance", ctx, mock.MatchedBy(func(i *domain.ItemInstance) bool {
		return i.ID == partID && !i.Equipped && i.OwnerID == "alice"
	})).Return(nil)
	tx.On("UpdateInstance", ctx, mock.MatchedBy(func(i *domain.ItemInstance) bool {
		return i.ID == rodID && i.OwnerID == "bob" && i.EquippedParts == nil
	})).Return(nil)

	err := Transfer(ctx, tx, rodID, "alice", "bob")

	assert.NoError(t, err)
	tx.AssertExpectations(t)
}

func TestTransfer_NotOwned(t *testing.T) {
	ctx := context.Background()
	tx := new(MockTx)
	instanceID := uuid.New()
	inst := &domain.ItemInstance{ID: instanceID, OwnerID: "carol"}

	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)

	err := Transfer(ctx, tx, instanceID, "alice", "bob")

	assert.ErrorIs(t, err, domain.ErrItemNotOwned)
	tx.AssertNotCalled(t, "UpdateInstance", mock.Anything, mock.Anything)
}
