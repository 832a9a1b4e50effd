package mesh

import (
	"sync"
	"time"
)

// StateTracker holds the latest alignment for the HTTP endpoints. It is
// written by the MQTT handler and read by HTTP requests.
type StateTracker struct {
	mu        sync.RWMutex
	alignment *Alignment
	report    *Report
	lastError error
	updated   time.Time
}

// NewStateTracker creates an empty state tracker
func NewStateTracker() *StateTracker {
	return &StateTracker{}
}

// Update stores a new alignment and its report, clearing any previous error
func (st *StateTracker) Update(al *Alignment, r *Report) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.alignment = al
	st.report = r
	st.lastError = nil
	st.updated = time.Now()
}

// SetError records a failed run. The previous alignment is kept so the
// endpoints keep serving the last good result.
func (st *StateTracker) SetError(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.lastError = err
	st.updated = time.Now()
}

// Alignment returns the latest alignment, or nil
func (st *StateTracker) Alignment() *Alignment {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.alignment
}

// Report returns the latest report, or nil
func (st *StateTracker) Report() *Report {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.report
}

// LastError returns the error of the most recent run, if it failed
func (st *StateTracker) LastError() error {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.lastError
}

// HasResult reports whether any alignment has succeeded yet
func (st *StateTracker) HasResult() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.alignment != nil
}

// LastUpdated returns the time of the last Update or SetError
func (st *StateTracker) LastUpdated() time.Time {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.updated
}
