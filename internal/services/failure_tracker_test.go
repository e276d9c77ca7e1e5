package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestFailureTracker_ThresholdActivatesAlert, eşiğe ulaşınca alert'in
// aktiflendiğini test eder.
func TestFailureTracker_ThresholdActivatesAlert(t *testing.T) {
	tracker := NewFailureTracker(nil, 3, time.Hour)

	tracker.RecordFailure("sync", "hata 1")
	tracker.RecordFailure("sync", "hata 2")
	assert.False(t, tracker.State().AlertActive)

	tracker.RecordFailure("sync", "hata 3")

	state := tracker.State()
	assert.True(t, state.AlertActive)
	assert.Equal(t, 3, state.Count)
	assert.Equal(t, "sync", state.LastContext)
	assert.Equal(t, "hata 3", state.LastMessage)
}

// TestFailureTracker_WindowResetsCounter, pencere dolunca sayacın sıfırdan
// başladığını test eder.
func TestFailureTracker_WindowResetsCounter(t *testing.T) {
	tracker := NewFailureTracker(nil, 5, 50*time.Millisecond)

	tracker.RecordFailure("sync", "hata 1")
	tracker.RecordFailure("sync", "hata 2")
	assert.Equal(t, 2, tracker.State().Count)

	time.Sleep(60 * time.Millisecond)

	tracker.RecordFailure("sync", "hata 3")
	assert.Equal(t, 1, tracker.State().Count)
	assert.False(t, tracker.State().AlertActive)
}

// TestFailureTracker_SuccessClearsState, başarının sayacı ve alert'i
// temizlediğini test eder.
func TestFailureTracker_SuccessClearsState(t *testing.T) {
	tracker := NewFailureTracker(nil, 2, time.Hour)

	tracker.RecordFailure("sync", "hata 1")
	tracker.RecordFailure("sync", "hata 2")
	assert.True(t, tracker.State().AlertActive)

	tracker.RecordSuccess()

	state := tracker.State()
	assert.False(t, state.AlertActive)
	assert.Equal(t, 0, state.Count)
	assert.Empty(t, state.LastContext)
	assert.Empty(t, state.LastMessage)
}

// TestFailureTracker_AlertStickyUnderThreshold, eşik altına inen sayaçla
// alert'in aktif kaldığını test eder.
func TestFailureTracker_AlertStickyUnderThreshold(t *testing.T) {
	tracker := NewFailureTracker(nil, 2, 50*time.Millisecond)

	tracker.RecordFailure("sync", "hata 1")
	tracker.RecordFailure("sync", "hata 2")
	assert.True(t, tracker.State().AlertActive)

	// Pencere dolunca sayaç sıfırlanır ama alert yapışkandır
	time.Sleep(60 * time.Millisecond)
	tracker.RecordFailure("sync", "hata 3")

	state := tracker.State()
	assert.Equal(t, 1, state.Count)
	assert.True(t, state.AlertActive)
}

// TestFailureTracker_DismissKeepsCounter, dismiss'in alert'i kapatıp sayacı
// koruduğunu test eder.
func TestFailureTracker_DismissKeepsCounter(t *testing.T) {
	tracker := NewFailureTracker(nil, 2, time.Hour)

	tracker.RecordFailure("sync", "hata 1")
	tracker.RecordFailure("sync", "hata 2")
	assert.True(t, tracker.State().AlertActive)

	tracker.Dismiss()

	state := tracker.State()
	assert.False(t, state.AlertActive)
	assert.Equal(t, 2, state.Count)

	// Yeni başarısızlık eşiği tekrar aşar, alert yeniden aktive olur
	tracker.RecordFailure("sync", "hata 3")
	assert.True(t, tracker.State().AlertActive)
}
