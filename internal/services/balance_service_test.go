package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/onerilhan/go-loyalty-api/internal/cache"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

func newTestBalanceService(database *sql.DB, sweeper *MockSweeperService, transactionRepo *MockTransactionRepository) (*BalanceService, *cache.BalanceCache) {
	balanceCache := cache.NewBalanceCache(cache.NewInMemoryCache(), 300*time.Second)
	return NewBalanceService(transactionRepo, sweeper, balanceCache, database), balanceCache
}

// TestBalanceService_GetBalance_CacheHit, taze cache girdisinin database'e
// dokunmadan döndüğünü test eder.
func TestBalanceService_GetBalance_CacheHit(t *testing.T) {
	sweeper := new(MockSweeperService)
	service, balanceCache := newTestBalanceService(nil, sweeper, new(MockTransactionRepository))

	err := balanceCache.Set(context.Background(), 42, 120)
	assert.NoError(t, err)

	balance := service.GetBalance(42, false)

	assert.Equal(t, 120, balance)
	sweeper.AssertNotCalled(t, "SweepUser", mock.Anything)
}

// TestBalanceService_GetBalance_ForceRecalculates, force parametresinin önce
// tarama yapıp bakiyeyi yeniden hesaplattığını test eder.
func TestBalanceService_GetBalance_ForceRecalculates(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	sweeper := new(MockSweeperService)
	service, balanceCache := newTestBalanceService(database, sweeper, new(MockTransactionRepository))

	// Cache'te bayat bir değer var; force onu atlamalı
	assert.NoError(t, balanceCache.Set(context.Background(), 42, 999))

	sweeper.On("SweepUser", 42).Return(&models.SweepResult{NewBalance: 100}, nil)
	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"earned", "redeemed", "expired"}).AddRow(150, 50, 0))

	balance := service.GetBalance(42, true)

	assert.Equal(t, 100, balance)
	sweeper.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())

	// Yeni değer cache'lenmiş olmalı
	entry, err := balanceCache.Get(context.Background(), 42)
	assert.NoError(t, err)
	assert.Equal(t, 100, entry.Balance)
}

// TestBalanceService_GetBalance_SweepErrorContinues, tarama hatasının bakiye
// hesabını durdurmadığını test eder.
func TestBalanceService_GetBalance_SweepErrorContinues(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	sweeper := new(MockSweeperService)
	service, _ := newTestBalanceService(database, sweeper, new(MockTransactionRepository))

	sweeper.On("SweepUser", 42).Return(nil, errors.New("tarama hatası"))
	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"earned", "redeemed", "expired"}).AddRow(200, 60, 40))

	balance := service.GetBalance(42, true)

	assert.Equal(t, 100, balance)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestBalanceService_GetBalance_FallsBackToCache, hesaplama hatasında son
// cache değerine düşüldüğünü test eder.
func TestBalanceService_GetBalance_FallsBackToCache(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	sweeper := new(MockSweeperService)
	service, balanceCache := newTestBalanceService(database, sweeper, new(MockTransactionRepository))

	assert.NoError(t, balanceCache.Set(context.Background(), 42, 80))

	sweeper.On("SweepUser", 42).Return(&models.SweepResult{}, nil)
	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnError(errors.New("bağlantı koptu"))

	balance := service.GetBalance(42, true)

	assert.Equal(t, 80, balance)
}

// TestBalanceService_GetBalance_NoCacheReturnsZero, hem hesaplama hem cache
// boşken 0 döndüğünü test eder.
func TestBalanceService_GetBalance_NoCacheReturnsZero(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	sweeper := new(MockSweeperService)
	service, _ := newTestBalanceService(database, sweeper, new(MockTransactionRepository))

	sweeper.On("SweepUser", 42).Return(&models.SweepResult{}, nil)
	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnError(errors.New("bağlantı koptu"))

	balance := service.GetBalance(42, true)

	assert.Equal(t, 0, balance)
}

// TestBalanceService_GetBalanceBreakdown_ClampsNegative, negatif ham bakiyenin
// 0 olarak raporlandığını test eder.
func TestBalanceService_GetBalanceBreakdown_ClampsNegative(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, _ := newTestBalanceService(database, new(MockSweeperService), new(MockTransactionRepository))

	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"earned", "redeemed", "expired"}).AddRow(10, 50, 0))

	breakdown, err := service.GetBalanceBreakdown(42)

	assert.NoError(t, err)
	assert.Equal(t, 10, breakdown.Earned)
	assert.Equal(t, 50, breakdown.Redeemed)
	assert.Equal(t, 0, breakdown.Balance)
}

// TestBalanceService_GetLifetimeStats, istatistiklerin repository'den
// getirildiğini test eder.
func TestBalanceService_GetLifetimeStats(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	service, _ := newTestBalanceService(nil, new(MockSweeperService), transactionRepo)

	expected := &models.LifetimeStats{UserID: 42, LifetimeEarned: 1500, LifetimeRedeemed: 400}
	transactionRepo.On("GetLifetimeStats", 42).Return(expected, nil)

	stats, err := service.GetLifetimeStats(42)

	assert.NoError(t, err)
	assert.Equal(t, expected, stats)
	transactionRepo.AssertExpectations(t)
}
