package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// FailureTracker engine başarısızlıklarının rolling-window sayacı
// Tamamen gözlemseldir: engine çağrılarını asla bloklamaz veya hataya
// düşürmez, persistence hataları log'lanıp yutulur
type FailureTracker struct {
	mu        sync.Mutex
	state     models.AlertState
	alertRepo interfaces.AlertRepositoryInterface
	threshold int
	window    time.Duration
}

// NewFailureTracker kayıtlı durumu yükleyerek tracker oluşturur
func NewFailureTracker(alertRepo interfaces.AlertRepositoryInterface, threshold int, window time.Duration) *FailureTracker {
	state := models.AlertState{WindowStart: time.Now()}

	if alertRepo != nil {
		loaded, err := alertRepo.Load()
		if err != nil {
			log.Warn().Err(err).Msg("Alert durumu yüklenemedi, sıfır durumla başlanıyor")
		} else {
			state = *loaded
		}
	}

	return &FailureTracker{
		state:     state,
		alertRepo: alertRepo,
		threshold: threshold,
		window:    window,
	}
}

// RecordFailure sayacı artırır; pencere dolmuşsa sayacı sıfırlayıp
// yeniden başlatır, eşik aşılırsa yapışkan alert'i aktifler
func (t *FailureTracker) RecordFailure(context, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if now.Sub(t.state.WindowStart) > t.window {
		t.state.Count = 0
		t.state.WindowStart = now
	}

	t.state.Count++
	t.state.LastContext = context
	t.state.LastMessage = message
	t.state.UpdatedAt = now

	if t.state.Count >= t.threshold {
		t.state.AlertActive = true
	}

	t.persist()

	log.Error().
		Str("context", context).
		Str("message", message).
		Int("count", t.state.Count).
		Bool("alert_active", t.state.AlertActive).
		Msg("🚨 Engine başarısızlığı kaydedildi")
}

// RecordSuccess alert'i temizler ve sayacı sıfırlar
func (t *FailureTracker) RecordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Count == 0 && !t.state.AlertActive {
		return // persist etmeye değer bir değişiklik yok
	}

	t.state.Count = 0
	t.state.WindowStart = time.Now()
	t.state.LastContext = ""
	t.state.LastMessage = ""
	t.state.AlertActive = false
	t.state.UpdatedAt = time.Now()

	t.persist()
}

// State güncel durumun kopyasını döner
func (t *FailureTracker) State() *models.AlertState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.state
	return &state
}

// Dismiss aktif alert'i kapatır; sayaç korunur, yeni başarısızlıklar
// eşiği tekrar aşarsa alert yeniden aktive olur
func (t *FailureTracker) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.AlertActive = false
	t.state.UpdatedAt = time.Now()
	t.persist()
}

// persist durumu kaydeder; hata engine'e yansıtılmaz
func (t *FailureTracker) persist() {
	if t.alertRepo == nil {
		return
	}
	if err := t.alertRepo.Save(&t.state); err != nil {
		log.Warn().Err(err).Msg("Alert durumu kaydedilemedi")
	}
}
