// Package lock provides per-participant mutual exclusion: one participant's
// inputs are applied one at a time without blocking other participants.
// It does not order waiters; callers that need send order must deliver
// inputs in that order.
package lock

import "sync"

// ParticipantLock holds one mutex per participant ID. Locks for different
// participants are independent.
type ParticipantLock struct {
	locks sync.Map // map[int64]*sync.Mutex
}

// NewParticipantLock creates an empty ParticipantLock.
func NewParticipantLock() *ParticipantLock {
	return &ParticipantLock{}
}

// getLock retrieves or creates the mutex for a participant.
func (pl *ParticipantLock) getLock(participantID int64) *sync.Mutex {
	if v, ok := pl.locks.Load(participantID); ok {
		return v.(*sync.Mutex)
	}

	// Store or load existing (handles concurrent first use)
	actual, _ := pl.locks.LoadOrStore(participantID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Lock acquires the lock for a participant.
func (pl *ParticipantLock) Lock(participantID int64) {
	pl.getLock(participantID).Lock()
}

// Unlock releases the lock for a participant.
func (pl *ParticipantLock) Unlock(participantID int64) {
	if v, ok := pl.locks.Load(participantID); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// WithLock executes fn while holding the participant's lock.
func (pl *ParticipantLock) WithLock(participantID int64, fn func()) {
	pl.Lock(participantID)
	defer pl.Unlock(participantID)
	fn()
}
