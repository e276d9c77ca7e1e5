package models

import "errors"

// Engine'in iş kuralı ve doğrulama hataları
// Handler katmanı bu sentinel'leri errors.Is ile reason koduna çevirir
var (
	// ErrInsufficientBalance redeem isteği bakiyeyi aşıyor (beklenen iş sonucu)
	ErrInsufficientBalance = errors.New("yetersiz puan bakiyesi")

	// ErrInvalidTransactionType bilinmeyen transaction tipi
	ErrInvalidTransactionType = errors.New("geçersiz transaction tipi")

	// ErrInvalidPoints puan miktarı kurallara uymuyor
	ErrInvalidPoints = errors.New("geçersiz puan miktarı")

	// ErrUserNotFound loyalty hesabı bulunamadı
	ErrUserNotFound = errors.New("kullanıcı hesabı bulunamadı")

	// ErrOrderNotFound sipariş meta kaydı bulunamadı
	ErrOrderNotFound = errors.New("sipariş kaydı bulunamadı")

	// ErrBonusAlreadyAwarded doğum günü bonusu bu yıl zaten verilmiş
	ErrBonusAlreadyAwarded = errors.New("bonus bu yıl zaten verilmiş")

	// ErrAccountExists loyalty hesabı zaten kayıtlı
	ErrAccountExists = errors.New("hesap zaten kayıtlı")
)

// Reason kodları (HTTP yanıtlarında kullanılır)
const (
	ReasonInsufficientBalance = "insufficient_balance"
	ReasonValidationError     = "validation_error"
	ReasonStorageError        = "storage_error"
)

// ReasonForError hatayı yapılandırılmış reason koduna çevirir
func ReasonForError(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return ReasonInsufficientBalance
	case errors.Is(err, ErrInvalidTransactionType),
		errors.Is(err, ErrInvalidPoints),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrBonusAlreadyAwarded),
		errors.Is(err, ErrAccountExists):
		return ReasonValidationError
	default:
		return ReasonStorageError
	}
}
