package dashboard

import (
	"sync"
	"time"
)

// RecordingView keeps the dashboard counters in memory. The zero value is
// ready to use.
type RecordingView struct {
	mu         sync.RWMutex
	total      int
	hasTotal   bool
	lastUpdate time.Time
}

var _ View = (*RecordingView)(nil)

// SetTotal implements View.
func (v *RecordingView) SetTotal(total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.total, v.hasTotal = total, true
}

// SetLastUpdate implements View.
func (v *RecordingView) SetLastUpdate(t time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUpdate = t
}

// Total returns the displayed total and whether one was ever set.
func (v *RecordingView) Total() (int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.total, v.hasTotal
}

// LastUpdate returns when the latest cycle started.
func (v *RecordingView) LastUpdate() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastUpdate
}
