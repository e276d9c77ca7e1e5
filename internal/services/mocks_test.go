package services

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// MockTransactionRepository, TransactionRepositoryInterface için sahte (mock) bir yapıdır.
type MockTransactionRepository struct {
	mock.Mock
}

var _ interfaces.TransactionRepositoryInterface = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) GetByID(id int) (*models.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByUserID(userID, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetEarnByOrderID(userID int, orderID string) (*models.Transaction, error) {
	args := m.Called(userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetExpiringSoon(userID int, until time.Time) ([]*models.Transaction, error) {
	args := m.Called(userID, until)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetDistinctUserIDs() ([]int, error) {
	args := m.Called()
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockTransactionRepository) MarkReversed(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetLifetimeStats(userID int) (*models.LifetimeStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LifetimeStats), args.Error(1)
}

// MockOrderRepository, OrderRepositoryInterface için sahte (mock) bir yapıdır.
type MockOrderRepository struct {
	mock.Mock
}

var _ interfaces.OrderRepositoryInterface = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) GetByOrderID(orderID string) (*models.OrderPointsMeta, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderPointsMeta), args.Error(1)
}

func (m *MockOrderRepository) Upsert(meta *models.OrderPointsMeta) error {
	args := m.Called(meta)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkAwarded(orderID string, points int) error {
	args := m.Called(orderID, points)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkRedeemed(orderID string, points int, discount string) error {
	args := m.Called(orderID, points, discount)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkRefunded(orderID string, at time.Time) error {
	args := m.Called(orderID, at)
	return args.Error(0)
}

// MockAuditRepository, AuditRepositoryInterface için sahte (mock) bir yapıdır.
type MockAuditRepository struct {
	mock.Mock
}

var _ interfaces.AuditRepositoryInterface = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) Create(entry *models.AuditLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockAuditRepository) GetByUser(userID, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

// MockPointsService, PointsServiceInterface için sahte (mock) bir yapıdır.
type MockPointsService struct {
	mock.Mock
}

var _ interfaces.PointsServiceInterface = (*MockPointsService)(nil)

func (m *MockPointsService) CreateTransaction(req *models.CreateTransactionRequest) (*models.Transaction, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockPointsService) RegisterAccount(userID int) (*models.Transaction, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockPointsService) AwardReferralBonus(userID, referredUserID int) (*models.Transaction, error) {
	args := m.Called(userID, referredUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockPointsService) AwardBirthdayBonus(userID int) (*models.Transaction, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockPointsService) AdjustPoints(req *models.AdjustRequest) (*models.Transaction, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockPointsService) SyncTransactions(req *models.SyncRequest) (*models.SyncResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncResult), args.Error(1)
}

func (m *MockPointsService) GetTransactions(userID, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockSweeperService, SweeperServiceInterface için sahte (mock) bir yapıdır.
type MockSweeperService struct {
	mock.Mock
}

var _ interfaces.SweeperServiceInterface = (*MockSweeperService)(nil)

func (m *MockSweeperService) SweepUser(userID int) (*models.SweepResult, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SweepResult), args.Error(1)
}

func (m *MockSweeperService) SweepAll() (*models.SweepAllResult, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SweepAllResult), args.Error(1)
}

func (m *MockSweeperService) ExpiringSoon(userID, days int) ([]*models.Transaction, error) {
	args := m.Called(userID, days)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}
