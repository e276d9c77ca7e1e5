package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/go-loyalty-api/internal/cache"
	"github.com/onerilhan/go-loyalty-api/internal/config"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// newTestPointsService sqlmock destekli service ve tracker oluşturur
func newTestPointsService(database *sql.DB) (*PointsService, *FailureTracker) {
	cfg := &config.Config{
		SignupBonus:   100,
		ReferralBonus: 500,
		BirthdayBonus: 200,
	}
	tracker := NewFailureTracker(nil, 5, time.Hour)
	balanceCache := cache.NewBalanceCache(cache.NewInMemoryCache(), 300*time.Second)
	service := NewPointsService(new(MockTransactionRepository), new(MockAuditRepository), balanceCache, tracker, cfg, database)
	return service, tracker
}

func ledgerColumns() []string {
	return []string{"id", "user_id", "type", "points", "description", "order_id", "created_at", "expires_at", "is_expired"}
}

// TestPointsService_CreateTransaction_InvalidType, bilinmeyen tipin storage'a
// dokunmadan reddedildiğini test eder.
func TestPointsService_CreateTransaction_InvalidType(t *testing.T) {
	service, tracker := newTestPointsService(nil)

	result, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID: 1,
		Type:   "bogus",
		Points: 10,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, models.ErrInvalidTransactionType))
	assert.Equal(t, 0, tracker.State().Count)
}

// TestPointsService_CreateTransaction_ZeroPoints, sıfır puanın reddedildiğini test eder.
func TestPointsService_CreateTransaction_ZeroPoints(t *testing.T) {
	service, _ := newTestPointsService(nil)

	result, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID: 1,
		Type:   models.TypeEarn,
		Points: 0,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, models.ErrInvalidPoints))
}

// TestPointsService_CreateTransaction_NegativeEarn, adjust dışındaki tipler için
// negatif puanın reddedildiğini test eder.
func TestPointsService_CreateTransaction_NegativeEarn(t *testing.T) {
	service, _ := newTestPointsService(nil)

	result, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID: 1,
		Type:   models.TypeEarn,
		Points: -50,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, models.ErrInvalidPoints))
}

// TestPointsService_CreateTransaction_Success, earn kaydının tek transaction
// içinde yazıldığını test eder.
func TestPointsService_CreateTransaction_Success(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, tracker := newTestPointsService(database)

	orderID := "ORD-1001"

	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT user_id FROM loyalty_accounts").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))
	// Duplicate kontrolü: pencere içinde eşleşen kayıt yok
	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnError(sql.ErrNoRows)
	dbMock.ExpectQuery("INSERT INTO point_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))
	dbMock.ExpectCommit()

	result, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID:      42,
		Type:        models.TypeEarn,
		Points:      100,
		Description: "Points earned for order ORD-1001",
		OrderID:     &orderID,
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 7, result.ID)
	assert.Equal(t, 100, result.Points)
	assert.Equal(t, 0, tracker.State().Count)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestPointsService_CreateTransaction_InsufficientBalance, bakiyeyi aşan
// redeem'in reddedildiğini ve tracker'a yazılmadığını test eder.
func TestPointsService_CreateTransaction_InsufficientBalance(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, tracker := newTestPointsService(database)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT user_id FROM loyalty_accounts").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))
	// Mevcut bakiye 50, istenen 100
	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"earned", "redeemed", "expired"}).AddRow(50, 0, 0))
	dbMock.ExpectRollback()

	result, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID: 42,
		Type:   models.TypeRedeem,
		Points: 100,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, models.ErrInsufficientBalance))
	// Beklenen iş sonucu: failure sayılmaz
	assert.Equal(t, 0, tracker.State().Count)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestPointsService_CreateTransaction_DuplicateReplay, pencere içindeki aynı
// isteğin yeni satır yazmadan mevcut kaydı döndürdüğünü ve başarı sayıldığını
// test eder.
func TestPointsService_CreateTransaction_DuplicateReplay(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, tracker := newTestPointsService(database)

	// Önceden birikmiş bir failure replay başarısıyla temizlenmeli
	tracker.RecordFailure("create_transaction", "geçici hata")

	orderID := "ORD-1001"
	createdAt := time.Now().Add(-2 * time.Minute)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT user_id FROM loyalty_accounts").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))
	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnRows(sqlmock.NewRows(ledgerColumns()).
			AddRow(7, 42, "earn", 100, "Points earned for order ORD-1001", orderID, createdAt, nil, false))
	// INSERT beklenmez: commit doğrudan gelir
	dbMock.ExpectCommit()

	result, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID:  42,
		Type:    models.TypeEarn,
		Points:  100,
		OrderID: &orderID,
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 7, result.ID)
	assert.Equal(t, 0, tracker.State().Count)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestPointsService_CreateTransaction_SequentialRedeems, aynı bakiyeye gelen
// iki redeem'den sadece ilkinin geçtiğini test eder: ikincisi bakiyeyi kendi
// transaction'ı içinde yeniden hesaplar ve yetersiz bulur.
func TestPointsService_CreateTransaction_SequentialRedeems(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, _ := newTestPointsService(database)

	// İlk redeem: bakiye 50, istenen 50, yazılır
	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT user_id FROM loyalty_accounts").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))
	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"earned", "redeemed", "expired"}).AddRow(50, 0, 0))
	dbMock.ExpectQuery("INSERT INTO point_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))
	dbMock.ExpectCommit()

	// İkinci redeem: ilk commit'ten sonra kilidi alır, ledger'ı yeniden okur
	// ve tükenmiş bakiyeyi görür
	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT user_id FROM loyalty_accounts").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))
	dbMock.ExpectQuery("FROM point_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"earned", "redeemed", "expired"}).AddRow(50, 50, 0))
	dbMock.ExpectRollback()

	first, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID: 42,
		Type:   models.TypeRedeem,
		Points: 50,
	})
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID: 42,
		Type:   models.TypeRedeem,
		Points: 50,
	})
	assert.Error(t, err)
	assert.Nil(t, second)
	assert.True(t, errors.Is(err, models.ErrInsufficientBalance))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestPointsService_CreateTransaction_UserNotFound, hesap satırı olmayan
// kullanıcının reddedildiğini test eder.
func TestPointsService_CreateTransaction_UserNotFound(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, _ := newTestPointsService(database)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT user_id FROM loyalty_accounts").
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	dbMock.ExpectRollback()

	result, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID: 99,
		Type:   models.TypeEarn,
		Points: 10,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, models.ErrUserNotFound))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestPointsService_CreateTransaction_StorageFailure, storage hatasının
// failure tracker'a kaydedildiğini test eder.
func TestPointsService_CreateTransaction_StorageFailure(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, tracker := newTestPointsService(database)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT user_id FROM loyalty_accounts").
		WithArgs(42).
		WillReturnError(errors.New("bağlantı koptu"))
	dbMock.ExpectRollback()

	result, err := service.CreateTransaction(&models.CreateTransactionRequest{
		UserID: 42,
		Type:   models.TypeEarn,
		Points: 10,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, tracker.State().Count)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestPointsService_RegisterAccount_AwardsSignupBonus, yeni hesabın açılıp
// kayıt bonusunun yazıldığını test eder.
func TestPointsService_RegisterAccount_AwardsSignupBonus(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, _ := newTestPointsService(database)

	dbMock.ExpectExec("INSERT INTO loyalty_accounts").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT user_id FROM loyalty_accounts").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))
	// Kayıt bonusu order_id taşımaz ve earn bonus tipi değildir:
	// duplicate kontrolü atlanır, doğrudan INSERT gelir
	dbMock.ExpectQuery("INSERT INTO point_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))
	dbMock.ExpectCommit()

	result, err := service.RegisterAccount(42)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 100, result.Points)
	assert.Equal(t, "Signup bonus", result.Description)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestPointsService_RegisterAccount_AlreadyRegistered, mevcut hesabın ikinci
// kez açılamadığını ve bonusun tekrarlanmadığını test eder.
func TestPointsService_RegisterAccount_AlreadyRegistered(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, _ := newTestPointsService(database)

	dbMock.ExpectExec("INSERT INTO loyalty_accounts").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	result, err := service.RegisterAccount(42)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, models.ErrAccountExists))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestPointsService_AwardBirthdayBonus_AlreadyAwarded, aynı takvim yılında
// ikinci doğum günü bonusunun reddedildiğini test eder.
func TestPointsService_AwardBirthdayBonus_AlreadyAwarded(t *testing.T) {
	database, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer database.Close()

	service, _ := newTestPointsService(database)

	dbMock.ExpectQuery("SELECT id FROM point_transactions").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	result, err := service.AwardBirthdayBonus(42)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, models.ErrBonusAlreadyAwarded))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
