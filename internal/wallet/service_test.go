package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/repository"
)

// MockRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.WalletTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.WalletTx), args.Error(1)
}

// MockTx
type MockTx struct {
	mock.Mock
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

func TestGetBalance_Success(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo)

	ctx := context.Background()
	repo.On("GetWallet", ctx, "user1").Return(&domain.Wallet{UserID: "user1", Balance: 500}, nil)

	w, err := s.GetBalance(ctx, "user1")

	assert.NoError(t, err)
	assert.Equal(t, int64(500), w.Balance)
	repo.AssertExpectations(t)
}

func TestGetBalance_NotFound(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo)

	ctx := context.Background()
	repo.On("GetWallet", ctx, "ghost").Return(nil, domain.ErrWalletNotFound)

	w, err := s.GetBalance(ctx, "ghost")

	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	assert.Nil(t, w)
	repo.AssertExpectations(t)
}

func TestGrant_Success(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo)

	ctx := context.Background()
	tx := new(MockTx)

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetWalletForUpdate", ctx, "user1").Return(&domain.Wallet{UserID: "user1", Balance: 100}, nil)
	tx.On("UpdateWallet", ctx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	w, err := s.Grant(ctx, "user1", 250)

	assert.NoError(t, err)
	assert.Equal(t, int64(350), w.Balance)
	repo.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestGrant_NonPositiveAmount(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo)

	ctx := context.Background()
	tx := new(MockTx)

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("Rollback", ctx).Return(nil).Maybe()

	w, err := s.Grant(ctx, "user1", 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, w)
	repo.AssertExpectations(t)
}

func TestGrant_CommitFails(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo)

	ctx := context.Background()
	tx := new(MockTx)

	repo.On("BeginTx", ctx).Return(tx, nil)
	tx.On("GetWalletForUpdate", ctx, "user1").Return(&domain.Wallet{UserID: "user1"}, nil)
	tx.On("UpdateWallet", ctx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(errors.New("connection reset"))
	tx.On("Rollback", ctx).Return(nil).Maybe()

	w, err := s.Grant(ctx, "user1", 10)

	assert.Error(t, err)
	assert.Nil(t, w)
	assert.Contains(t, err.Error(), "failed to commit transaction")
}

func TestDebit_Success(t *testing.T) {
	ctx := context.Background()
	tx := new(MockTx)

	tx.On("GetWalletForUpdate", ctx, "user1").Return(&domain.Wallet{UserID: "user1", Balance: 300}, nil)
	tx.On("UpdateWallet", ctx, mock.MatchedBy(func(w *domain.Wallet) bool {
		return w.Balance == 100
	})).Return(nil)

	w, err := Debit(ctx, tx, "user1", 200)

	assert.NoError(t, err)
	assert.Equal(t, int64(100), w.Balance)
	tx.AssertExpectations(t)
}

func TestDebit_InsufficientCredits(t *testing.T) {
	ctx := context.Background()
	tx := new(MockTx)

	tx.On("GetWalletForUpdate", ctx, "user1").Return(&domain.Wallet{UserID: "user1", Balance: 50}, nil)

	w, err := Debit(ctx, tx, "user1", 200)

	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
	assert.Nil(t, w)
	tx.AssertNotCalled(t, "UpdateWallet", mock.Anything, mock.Anything)
}

func TestDebit_ExactBalance(t *testing.T) {
	ctx := context.Background()
	tx := new(MockTx)

	tx.On("GetWalletForUpdate", ctx, "user1").Return(&domain.Wallet{UserID: "user1", Balance: 200}, nil)
	tx.On("UpdateWallet", ctx, mock.Anything).Return(nil)

	w, err := Debit(ctx, tx, "user1", 200)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), w.Balance)
}

func TestDebit_NonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	tx := new(MockTx)

	_, err := Debit(ctx, tx, "user1", -5)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	tx.AssertNotCalled(t, "GetWalletForUpdate", mock.Anything, mock.Anything)
}

func TestCredit_Success(t *testing.T) {
	ctx := context.Background()
	tx := new(MockTx)

	tx.On("GetWalletForUpdate", ctx, "user1").Return(&domain.Wallet{UserID: "user1", Balance: 0}, nil)
	tx.On("UpdateWallet", ctx, mock.Anything).Return(nil)

	w, err := Credit(ctx, tx, "user1", 75)

	assert.NoError(t, err)
	assert.Equal(t, int64(75), w.Balance)
	tx.AssertExpectations(t)
}

func TestCredit_NonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	tx := new(MockTx)

	_, err := Credit(ctx, tx, "user1", 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	tx.AssertNotCalled(t, "GetWalletForUpdate", mock.Anything, mock.Anything)
}
