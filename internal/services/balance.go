package services

import (
	"database/sql"
	"fmt"

	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// queryRower hem *sql.DB hem db.TransactionRepository tarafından sağlanır;
// bakiye hesabı aynı sorguyla tx içinde de dışında da çalışabilir
type queryRower interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// calculateBalance ledger'dan türetilmiş bakiyeyi tek sorguyla hesaplar
//
//	earned   = earn/adjust/referral/birthday/refund toplamı
//	           (is_expired = false ve süresi geçmemiş kayıtlar)
//	redeemed = redeem toplamı
//	expired  = expire toplamı
//	balance  = max(0, earned - redeemed - expired)
//
// Süresi geçmiş ama henüz taranmamış earn kayıtları expires_at koşuluyla
// zaten dışarıda kalır; tarama beklemeden de sonuç doğrudur
func calculateBalance(q queryRower, userID int) (*models.BalanceBreakdown, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE
				WHEN type IN ('earn', 'adjust', 'referral', 'birthday', 'refund')
				AND is_expired = FALSE
				AND (expires_at IS NULL OR expires_at > NOW())
				THEN points ELSE 0 END), 0) AS earned,
			COALESCE(SUM(CASE WHEN type = 'redeem' THEN points ELSE 0 END), 0) AS redeemed,
			COALESCE(SUM(CASE WHEN type = 'expire' THEN points ELSE 0 END), 0) AS expired
		FROM point_transactions
		WHERE user_id = $1
	`

	breakdown := models.BalanceBreakdown{UserID: userID}
	err := q.QueryRow(query, userID).Scan(&breakdown.Earned, &breakdown.Redeemed, &breakdown.Expired)
	if err != nil {
		return nil, fmt.Errorf("bakiye sorgusu hatası: %w", err)
	}

	breakdown.Balance = breakdown.Earned - breakdown.Redeemed - breakdown.Expired
	if breakdown.Balance < 0 {
		// Bakiye asla negatif raporlanmaz
		breakdown.Balance = 0
	}

	return &breakdown, nil
}

// scanLedgerRow tek transaction satırını model'e çevirir (tx içi sorgular için)
func scanLedgerRow(row *sql.Row) (*models.Transaction, error) {
	var tx models.Transaction
	var description sql.NullString
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Type,
		&tx.Points,
		&description,
		&tx.OrderID,
		&tx.CreatedAt,
		&tx.ExpiresAt,
		&tx.IsExpired,
	)
	if err != nil {
		return nil, err
	}
	tx.Description = description.String
	return &tx, nil
}
