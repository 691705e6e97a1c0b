package lootbox

import (
	"context"
	"testing"
	"time"

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

func (m *MockRepository) GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogItem), args.Error(1)
}

func (m *MockRepository) GetCaseContents(ctx context.Context, caseItemID int) ([]domain.CaseContent, error) {
	args := m.Called(ctx, caseItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CaseContent), args.Error(1)
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.LootboxTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.LootboxTx), args.Error(1)
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

func (m *MockTx) GetWalletForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockTx) UpdateWallet(ctx context.Context, wallet *domain.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
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

// fixedService builds a service with a deterministic draw and clock.
func fixedService(repo repository.Lootbox, publisher event.Publisher, roll float64) *service {
	return &service{
		repo:      repo,
		publisher: publisher,
		rnd:       func() float64 { return roll / domain.DropRateTarget },
		now:       func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

// caseFixture wires the common happy-path expectations: user1 owns a case
// stack, the case holds item 1 at 60 and item 2 at 40.
type caseFixture struct {
	repo     *MockRepository
	tx       *MockTx
	caseInst *domain.ItemInstance
	caseItem *domain.CatalogItem
	won1     *domain.CatalogItem
	won2     *domain.CatalogItem
}

func newCaseFixture(ctx context.Context, quantity int) *caseFixture {
	f := &caseFixture{
		repo: new(MockRepository),
		tx:   new(MockTx),
		caseInst: &domain.ItemInstance{
			ID:            uuid.New(),
			OwnerID:       "user1",
			CatalogItemID: 10,
			Quantity:      quantity,
		},
		caseItem: &domain.CatalogItem{ID: 10, Name: "Starter Case", Category: domain.CategoryCase, IsCase: true, Active: true},
		won1:     &domain.CatalogItem{ID: 1, Name: "Plate", Category: domain.CategoryNameplate, Rarity: domain.RarityRare, Active: true},
		won2:     &domain.CatalogItem{ID: 2, Name: "Badge", Category: domain.CategoryBadge, Rarity: domain.RarityCommon, Active: true},
	}

	contents := []domain.CaseContent{
		{CaseItemID: 10, ItemID: 1, DropRate: 60},
		{CaseItemID: 10, ItemID: 2, DropRate: 40},
	}

	f.repo.On("BeginTx", ctx).Return(f.tx, nil)
	f.tx.On("GetInstanceForUpdate", ctx, f.caseInst.ID).Return(f.caseInst, nil)
	f.repo.On("GetItem", ctx, 10).Return(f.caseItem, nil)
	f.tx.On("LockedInstances", ctx, []uuid.UUID{f.caseInst.ID}, uuid.Nil).Return([]uuid.UUID{}, nil)
	f.repo.On("GetCaseContents", ctx, 10).Return(contents, nil)
	f.repo.On("GetItem", ctx, 1).Return(f.won1, nil)
	f.repo.On("GetItem", ctx, 2).Return(f.won2, nil)
	f.tx.On("Rollback", ctx).Return(nil).Maybe()
	return f
}

func TestOpenCase_Success(t *testing.T) {
	ctx := context.Background()
	f := newCaseFixture(ctx, 2)
	publisher := new(MockPublisher)
	s := fixedService(f.repo, publisher, 10) // roll 10 lands in item 1's 0-60 band

	f.tx.On("UpdateInstance", ctx, mock.MatchedBy(func(inst *domain.ItemInstance) bool {
		return inst.ID == f.caseInst.ID && inst.Quantity == 1
	})).Return(nil)
	f.tx.On("FindOwnedInstanceForUpdate", ctx, "user1", 1).Return(nil, domain.ErrInstanceNotFound)
	f.tx.On("InsertInstance", ctx, mock.MatchedBy(func(inst *domain.ItemInstance) bool {
		return inst.CatalogItemID == 1 && inst.OwnerID == "user1"
	})).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)
	publisher.On("PublishWithRetry", ctx, mock.MatchedBy(func(e event.Event) bool {
		return e.Type == event.Type(domain.EventTypeCaseOpened)
	})).Return()

	result, err := s.OpenCase(ctx, "user1", f.caseInst.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, result.WonItem.ID)
	assert.InDelta(t, 10.0, result.RollValue, 1e-9)
	assert.False(t, result.AlreadyOwned)
	assert.False(t, result.CompensationAwarded)
	f.tx.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOpenCase_RollOnBoundaryHitsNextEntry(t *testing.T) {
	ctx := context.Background()
	f := newCaseFixture(ctx, 2)
	s := fixedService(f.repo, nil, 60) // exactly on the 60 boundary: item 2

	f.tx.On("UpdateInstance", ctx, mock.Anything).Return(nil)
	f.tx.On("FindOwnedInstanceForUpdate", ctx, "user1", 2).Return(nil, domain.ErrInstanceNotFound)
	f.tx.On("InsertInstance", ctx, mock.MatchedBy(func(inst *domain.ItemInstance) bool {
		return inst.CatalogItemID == 2
	})).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	result, err := s.OpenCase(ctx, "user1", f.caseInst.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, result.WonItem.ID)
}

func TestOpenCase_LastCopyDeletesRow(t *testing.T) {
	ctx := context.Background()
	f := newCaseFixture(ctx, 1)
	s := fixedService(f.repo, nil, 10)

	f.tx.On("DeleteInstance", ctx, f.caseInst.ID).Return(nil)
	f.tx.On("FindOwnedInstanceForUpdate", ctx, "user1", 1).Return(nil, domain.ErrInstanceNotFound)
	f.tx.On("InsertInstance", ctx, mock.Anything).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	_, err := s.OpenCase(ctx, "user1", f.caseInst.ID)

	require.NoError(t, err)
	f.tx.AssertNotCalled(t, "UpdateInstance", mock.Anything, mock.Anything)
	f.tx.AssertExpectations(t)
}

func TestOpenCase_DuplicateCompensatedWithCredits(t *testing.T) {
	ctx := context.Background()
	f := newCaseFixture(ctx, 2)
	s := fixedService(f.repo, nil, 10) // wins item 1, rarity rare

	owned := &domain.ItemInstance{ID: uuid.New(), OwnerID: "user1", CatalogItemID: 1, Quantity: 1}

	f.tx.On("UpdateInstance", ctx, mock.MatchedBy(func(inst *domain.ItemInstance) bool {
		return inst.ID == f.caseInst.ID
	})).Return(nil)
	f.tx.On("FindOwnedInstanceForUpdate", ctx, "user1", 1).Return(owned, nil)
	f.tx.On("GetWalletForUpdate", ctx, "user1").Return(&domain.Wallet{UserID: "user1", Balance: 0}, nil)
	f.tx.On("UpdateWallet", ctx, mock.MatchedBy(func(w *domain.Wallet) bool {
		return w.Balance == 200
	})).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	result, err := s.OpenCase(ctx, "user1", f.caseInst.ID)

	require.NoError(t, err)
	assert.True(t, result.AlreadyOwned)
	assert.True(t, result.CompensationAwarded)
	assert.Equal(t, int64(200), result.CompensationCredits)
	assert.Zero(t, result.CompensationXP)
	f.tx.AssertNotCalled(t, "InsertInstance", mock.Anything, mock.Anything)
	f.tx.AssertExpectations(t)
}

func TestOpenCase_DuplicateRodAlsoEarnsXP(t *testing.T) {
	ctx := context.Background()
	f := newCaseFixture(ctx, 2)
	s := fixedService(f.repo, nil, 10)

	// Make the winning item a rod so the owned duplicate carries XP state
	f.won1.Category = domain.CategoryFishingRod
	f.won1.Rod = &domain.RodModifiers{MaxDurability: 100, MaxRepairs: 3}

	owned := &domain.ItemInstance{
		ID:            uuid.New(),
		OwnerID:       "user1",
		CatalogItemID: 1,
		Quantity:      1,
		Experience:    intPtr(0),
		Level:         intPtr(0),
	}

	f.tx.On("UpdateInstance", ctx, mock.MatchedBy(func(inst *domain.ItemInstance) bool {
		return inst.ID == f.caseInst.ID
	})).Return(nil)
	f.tx.On("FindOwnedInstanceForUpdate", ctx, "user1", 1).Return(owned, nil)
	f.tx.On("GetWalletForUpdate", ctx, "user1").Return(&domain.Wallet{UserID: "user1"}, nil)
	f.tx.On("UpdateWallet", ctx, mock.Anything).Return(nil)
	f.tx.On("UpdateInstance", ctx, mock.MatchedBy(func(inst *domain.ItemInstance) bool {
		return inst.ID == owned.ID && *inst.Experience == 300
	})).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	result, err := s.OpenCase(ctx, "user1", f.caseInst.ID)

	require.NoError(t, err)
	assert.True(t, result.AlreadyOwned)
	assert.Equal(t, int64(200), result.CompensationCredits)
	assert.Equal(t, 300, result.CompensationXP)
	assert.Equal(t, 1, *owned.Level, "300 XP reaches level 1")
}

func TestOpenCase_NotOwned(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)
	s := fixedService(repo, nil, 10)

	instanceID := uuid.New()
	someoneElses := &domain.ItemInstance{ID: instanceID, OwnerID: "user2", CatalogItemID: 10, Quantity: 1}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(someoneElses, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	result, err := s.OpenCase(ctx, "user1", instanceID)

	assert.ErrorIs(t, err, domain.ErrCaseNotOwned)
	assert.Nil(t, result)
}

func TestOpenCase_InstanceMissing(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)
	s := fixedService(repo, nil, 10)

	instanceID := uuid.New()
	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(nil, domain.ErrInstanceNotFound)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.OpenCase(ctx, "user1", instanceID)

	assert.ErrorIs(t, err, domain.ErrCaseNotOwned)
}

func TestOpenCase_LockedByPendingTrade(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)
	s := fixedService(repo, nil, 10)

	instanceID := uuid.New()
	caseInst := &domain.ItemInstance{ID: instanceID, OwnerID: "user1", CatalogItemID: 10, Quantity: 1}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(caseInst, nil)
	repo.On("GetItem", ctx, 10).Return(&domain.CatalogItem{ID: 10, IsCase: true}, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{instanceID}, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.OpenCase(ctx, "user1", instanceID)

	assert.ErrorIs(t, err, domain.ErrItemLocked)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestOpenCase_NotACase(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)
	s := fixedService(repo, nil, 10)

	instanceID := uuid.New()
	inst := &domain.ItemInstance{ID: instanceID, OwnerID: "user1", CatalogItemID: 5, Quantity: 1}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(inst, nil)
	repo.On("GetItem", ctx, 5).Return(&domain.CatalogItem{ID: 5, IsCase: false}, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.OpenCase(ctx, "user1", instanceID)

	assert.ErrorIs(t, err, domain.ErrCaseNotOwned)
}

func TestOpenCase_InvalidLootTableLeavesCaseUnopened(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	tx := new(MockTx)
	s := fixedService(repo, nil, 10)

	instanceID := uuid.New()
	caseInst := &domain.ItemInstance{ID: instanceID, OwnerID: "user1", CatalogItemID: 10, Quantity: 1}
	badContents := []domain.CaseContent{
		{CaseItemID: 10, ItemID: 1, DropRate: 50},
		{CaseItemID: 10, ItemID: 2, DropRate: 30},
	}

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetInstanceForUpdate", ctx, instanceID).Return(caseInst, nil)
	repo.On("GetItem", ctx, 10).Return(&domain.CatalogItem{ID: 10, IsCase: true}, nil)
	tx.On("LockedInstances", ctx, []uuid.UUID{instanceID}, uuid.Nil).Return([]uuid.UUID{}, nil)
	repo.On("GetCaseContents", ctx, 10).Return(badContents, nil)
	repo.On("GetItem", ctx, 1).Return(&domain.CatalogItem{ID: 1, Active: true}, nil)
	repo.On("GetItem", ctx, 2).Return(&domain.CatalogItem{ID: 2, Active: true}, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	_, err := s.OpenCase(ctx, "user1", instanceID)

	assert.ErrorIs(t, err, domain.ErrInvalidCaseContents)
	tx.AssertNotCalled(t, "DeleteInstance", mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "UpdateInstance", mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestCompensationTables_UnknownRarityPaysAsCommon(t *testing.T) {
	assert.Equal(t, int64(25), CompensationCredits(domain.Rarity("mythic")))
	assert.Equal(t, 50, CompensationXP(domain.Rarity("mythic")))

	assert.Equal(t, int64(1500), CompensationCredits(domain.RarityLegendary))
	assert.Equal(t, 2000, CompensationXP(domain.RarityLegendary))
}
